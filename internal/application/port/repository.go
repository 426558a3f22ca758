package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alloycap/token-lifecycle/internal/domain/token"
)

// TokenRepository defines persistence operations for Token
type TokenRepository interface {
	Create(ctx context.Context, tok *token.Token) error

	// GetByID returns the token or nil when the id does not resolve
	GetByID(ctx context.Context, id uuid.UUID) (*token.Token, error)

	List(ctx context.Context, limit, offset int) ([]*token.Token, error)

	// UpdateStatus writes the new status and refreshed updated_at, comparing
	// against the loaded (status, updated_at) pair at commit time. Returns
	// token.ErrConflict when the row changed since it was loaded.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to token.Status, seenUpdatedAt, now time.Time) error
}

// TransitionRecordRepository defines the append-only audit trail contract.
// Records are never updated or deleted.
type TransitionRecordRepository interface {
	Create(ctx context.Context, rec *token.StatusTransitionRecord) error

	// GetByTokenID returns the token's records ordered by occurred_at
	GetByTokenID(ctx context.Context, tokenID uuid.UUID) ([]*token.StatusTransitionRecord, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
