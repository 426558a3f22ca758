package token

// Status represents a lifecycle state of a token instrument
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusReadyToMint Status = "READY_TO_MINT"
	StatusMinted      Status = "MINTED"
	StatusDeployed    Status = "DEPLOYED"
	StatusPaused      Status = "PAUSED"
	StatusDistributed Status = "DISTRIBUTED"
)

var validStatuses = map[Status]bool{
	StatusDraft:       true,
	StatusUnderReview: true,
	StatusApproved:    true,
	StatusRejected:    true,
	StatusReadyToMint: true,
	StatusMinted:      true,
	StatusDeployed:    true,
	StatusPaused:      true,
	StatusDistributed: true,
}

var terminalStatuses = map[Status]bool{
	StatusRejected:    true,
	StatusDistributed: true,
}

// allStatuses lists every status in lifecycle order, for deterministic
// enumeration
var allStatuses = []Status{
	StatusDraft,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
	StatusReadyToMint,
	StatusMinted,
	StatusDeployed,
	StatusPaused,
	StatusDistributed,
}

// AllStatuses returns every status in lifecycle order
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// IsTerminal returns true if the status admits no outgoing transitions
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a member of the closed enumeration
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
