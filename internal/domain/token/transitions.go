package token

// transitionTable maps each status to its legal successors, in the order they
// should be offered to callers. Terminal statuses map to an empty slice.
var transitionTable = map[Status][]Status{
	StatusDraft:       {StatusUnderReview},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusReadyToMint, StatusRejected},
	StatusReadyToMint: {StatusMinted},
	StatusMinted:      {StatusDeployed},
	StatusDeployed:    {StatusPaused, StatusDistributed},
	StatusPaused:      {StatusDeployed},
	StatusRejected:    {},
	StatusDistributed: {},
}

// LegalNextStates returns the statuses a token in the given status may move
// to. Total and deterministic: every status, including terminals and
// unrecognized values, yields a defined (possibly empty) result. The returned
// slice is a copy.
func LegalNextStates(s Status) []Status {
	next, ok := transitionTable[s]
	if !ok {
		return []Status{}
	}
	return append([]Status{}, next...)
}

// CanReach returns true if to is a legal direct successor of from
func CanReach(from, to Status) bool {
	for _, s := range transitionTable[from] {
		if s == to {
			return true
		}
	}
	return false
}
