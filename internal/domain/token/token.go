package token

import (
	"time"

	"github.com/google/uuid"
)

// Standard identifies which of the parallel configuration schemas a token
// uses. The core never interprets the per-standard configuration payload.
type Standard string

const (
	StandardERC20   Standard = "ERC-20"
	StandardERC721  Standard = "ERC-721"
	StandardERC1155 Standard = "ERC-1155"
	StandardERC1400 Standard = "ERC-1400"
	StandardERC3643 Standard = "ERC-3643"
	StandardERC4626 Standard = "ERC-4626"
)

var validStandards = map[Standard]bool{
	StandardERC20:   true,
	StandardERC721:  true,
	StandardERC1155: true,
	StandardERC1400: true,
	StandardERC3643: true,
	StandardERC4626: true,
}

// IsValid returns true if the standard is one of the supported schemas
func (s Standard) IsValid() bool {
	return validStandards[s]
}

// String returns the string representation of the standard
func (s Standard) String() string {
	return string(s)
}

// Token is a tokenized instrument governed by this lifecycle core. Status is
// mutated only through the workflow service's UpdateStatus command.
type Token struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Standard Standard  `json:"standard"`
	Status   Status    `json:"status"`
	// Configuration is the per-standard attribute bag, stored and returned
	// verbatim as JSON text.
	Configuration     string    `json:"configuration,omitempty"`
	DeploymentAddress string    `json:"deployment_address,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// StatusTransitionRecord is one immutable audit trail entry for an executed
// transition. Records are append-only, ordered by OccurredAt.
type StatusTransitionRecord struct {
	ID         int64     `json:"id"`
	TokenID    uuid.UUID `json:"token_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ActorID    string    `json:"actor_id,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
