package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alloycap/token-lifecycle/internal/application/dispatcher"
	"github.com/alloycap/token-lifecycle/internal/application/port"
	"github.com/alloycap/token-lifecycle/internal/domain/event"
	"github.com/alloycap/token-lifecycle/internal/domain/token"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// StatusChange reports a committed transition so callers can update cached
// views without re-fetching the token.
type StatusChange struct {
	PreviousStatus token.Status `json:"previous_status"`
	NewStatus      token.Status `json:"new_status"`
}

// WorkflowService governs the token lifecycle: the read-only workflow
// projection and the guarded, audited status update command.
type WorkflowService interface {
	// Describe computes the workflow projection for a token. No side effects,
	// safe to call on every render.
	Describe(tok *token.Token) token.WorkflowInfo

	// UpdateStatus validates the requested transition, then atomically writes
	// the new status and appends one audit record. Fails with
	// token.ErrTokenNotFound, a *token.TransitionError, token.ErrConflict or
	// token.ErrPersistence.
	UpdateStatus(ctx context.Context, tokenID uuid.UUID, to token.Status, actorID, notes string) (*StatusChange, error)

	// History returns the token's transition records ordered by occurrence
	History(ctx context.Context, tokenID uuid.UUID) ([]*token.StatusTransitionRecord, error)
}

type workflowServiceImpl struct {
	tokenRepo     port.TokenRepository
	recordRepo    port.TransitionRecordRepository
	txManager     port.TransactionManager
	dispatcher    dispatcher.Dispatcher
	preconditions map[token.Status]token.Precondition
	logger        Logger
}

// WorkflowOption configures the workflow service
type WorkflowOption func(*workflowServiceImpl)

// WithPrecondition installs a pure precondition gating entry into a status
func WithPrecondition(target token.Status, pre token.Precondition) WorkflowOption {
	return func(s *workflowServiceImpl) {
		s.preconditions[target] = pre
	}
}

// WithDispatcher sets the event dispatcher notified after committed transitions
func WithDispatcher(d dispatcher.Dispatcher) WorkflowOption {
	return func(s *workflowServiceImpl) {
		s.dispatcher = d
	}
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	tokenRepo port.TokenRepository,
	recordRepo port.TransitionRecordRepository,
	txManager port.TransactionManager,
	logger Logger,
	opts ...WorkflowOption,
) WorkflowService {
	s := &workflowServiceImpl{
		tokenRepo:     tokenRepo,
		recordRepo:    recordRepo,
		txManager:     txManager,
		preconditions: make(map[token.Status]token.Precondition),
		logger:        logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Describe computes the workflow projection for a token
func (s *workflowServiceImpl) Describe(tok *token.Token) token.WorkflowInfo {
	return token.DescribeWorkflow(tok, s.preconditions)
}

// UpdateStatus executes one guarded, audited status transition
func (s *workflowServiceImpl) UpdateStatus(ctx context.Context, tokenID uuid.UUID, to token.Status, actorID, notes string) (*StatusChange, error) {
	tok, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		s.logger.Error("Failed to load token", "token_id", tokenID, "error", err)
		return nil, fmt.Errorf("load token: %w", token.ErrPersistence)
	}
	if tok == nil {
		return nil, token.ErrTokenNotFound
	}

	previous := tok.Status

	if check := token.CheckTransition(tok, to, s.preconditions); !check.Allowed {
		s.logger.Info("Transition rejected",
			"token_id", tokenID,
			"from", previous,
			"to", to,
			"reason", check.Reason,
		)
		return nil, check.Err(previous, to)
	}

	now := time.Now().UTC()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.tokenRepo.UpdateStatus(txCtx, tokenID, previous, to, tok.UpdatedAt, now); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		rec := &token.StatusTransitionRecord{
			TokenID:    tokenID,
			FromStatus: previous,
			ToStatus:   to,
			ActorID:    actorID,
			Notes:      notes,
			OccurredAt: now,
		}

		if err := s.recordRepo.Create(txCtx, rec); err != nil {
			return fmt.Errorf("append transition record: %w", err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, token.ErrConflict) {
			s.logger.Info("Concurrent transition lost the race", "token_id", tokenID, "from", previous, "to", to)
			return nil, token.ErrConflict
		}
		s.logger.Error("Failed to commit transition", "token_id", tokenID, "from", previous, "to", to, "error", err)
		return nil, fmt.Errorf("commit transition: %w", token.ErrPersistence)
	}

	s.logger.Info("Status updated", "token_id", tokenID, "from", previous, "to", to, "actor_id", actorID)

	if s.dispatcher != nil {
		evt := event.NewEvent(event.TypeStatusChanged, tokenID, map[string]interface{}{
			"previous_status": previous.String(),
			"new_status":      to.String(),
			"actor_id":        actorID,
		})
		s.dispatcher.DispatchAsync(ctx, evt)
	}

	return &StatusChange{PreviousStatus: previous, NewStatus: to}, nil
}

// History returns the token's transition records ordered by occurrence
func (s *workflowServiceImpl) History(ctx context.Context, tokenID uuid.UUID) ([]*token.StatusTransitionRecord, error) {
	records, err := s.recordRepo.GetByTokenID(ctx, tokenID)
	if err != nil {
		s.logger.Error("Failed to load transition history", "token_id", tokenID, "error", err)
		return nil, fmt.Errorf("load history: %w", token.ErrPersistence)
	}
	return records, nil
}
