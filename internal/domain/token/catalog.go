package token

// StatusInfo carries the display metadata for one status
type StatusInfo struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

var statusCatalog = map[Status]StatusInfo{
	StatusDraft: {
		DisplayName: "Draft",
		Description: "Configuration is being authored and has not been submitted for review",
	},
	StatusUnderReview: {
		DisplayName: "Under Review",
		Description: "Submitted for compliance and risk review",
	},
	StatusApproved: {
		DisplayName: "Approved",
		Description: "Review passed; the instrument may be prepared for minting",
	},
	StatusRejected: {
		DisplayName: "Rejected",
		Description: "Review failed; the instrument cannot proceed (final)",
	},
	StatusReadyToMint: {
		DisplayName: "Ready to Mint",
		Description: "Approved and queued for on-chain minting",
	},
	StatusMinted: {
		DisplayName: "Minted",
		Description: "Supply has been minted and awaits deployment",
	},
	StatusDeployed: {
		DisplayName: "Deployed",
		Description: "Contract is live and operational",
	},
	StatusPaused: {
		DisplayName: "Paused",
		Description: "Transfers are suspended; the contract can be resumed",
	},
	StatusDistributed: {
		DisplayName: "Distributed",
		Description: "Supply has been distributed to holders (final)",
	},
}

// fallbackStatusInfo is returned for status strings outside the catalog so
// callers always receive a usable projection. Display only: an unrecognized
// status still has zero legal transitions.
var fallbackStatusInfo = StatusInfo{
	DisplayName: "Unknown",
	Description: "Status is not recognized by this catalog",
}

// DescribeStatus returns display metadata for a status. Total: unrecognized
// statuses map to the fallback entry.
func DescribeStatus(s Status) StatusInfo {
	if info, ok := statusCatalog[s]; ok {
		return info
	}
	return fallbackStatusInfo
}

// Catalog returns a copy of the full status catalog, for building selection UIs.
func Catalog() map[Status]StatusInfo {
	out := make(map[Status]StatusInfo, len(statusCatalog))
	for s, info := range statusCatalog {
		out[s] = info
	}
	return out
}
