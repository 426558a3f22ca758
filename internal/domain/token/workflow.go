package token

// WorkflowInfo is the derived, non-persisted projection of a token's position
// in the lifecycle, suitable for rendering on every UI state recomputation.
type WorkflowInfo struct {
	CurrentStatus        Status   `json:"current_status"`
	DisplayName          string   `json:"display_name"`
	Description          string   `json:"description"`
	AvailableTransitions []Status `json:"available_transitions"`
	CanTransition        bool     `json:"can_transition"`
}

// DescribeWorkflow computes the workflow projection for a token. Pure and
// synchronous: legal successors filtered by the injected preconditions,
// display fields from the status catalog (with its fallback for unrecognized
// statuses).
func DescribeWorkflow(tok *Token, preconditions map[Status]Precondition) WorkflowInfo {
	info := DescribeStatus(tok.Status)

	available := []Status{}
	for _, next := range LegalNextStates(tok.Status) {
		if pre, ok := preconditions[next]; ok && pre != nil {
			if err := pre(tok); err != nil {
				continue
			}
		}
		available = append(available, next)
	}

	return WorkflowInfo{
		CurrentStatus:        tok.Status,
		DisplayName:          info.DisplayName,
		Description:          info.Description,
		AvailableTransitions: available,
		CanTransition:        len(available) > 0,
	}
}
