package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alloycap/token-lifecycle/internal/application/dispatcher"
	"github.com/alloycap/token-lifecycle/internal/application/port"
	"github.com/alloycap/token-lifecycle/internal/domain/event"
	"github.com/alloycap/token-lifecycle/internal/domain/token"
)

// CreateTokenInput carries the authoring payload for a new token. The
// configuration bag is stored verbatim; this core never interprets it.
type CreateTokenInput struct {
	Name              string
	Standard          token.Standard
	Configuration     string
	DeploymentAddress string
}

// TokenService manages token authoring and reads. Every token starts in
// Draft; status changes go through the workflow service only.
type TokenService interface {
	CreateToken(ctx context.Context, input CreateTokenInput) (*token.Token, error)
	GetToken(ctx context.Context, id uuid.UUID) (*token.Token, error)
	ListTokens(ctx context.Context, limit, offset int) ([]*token.Token, error)
}

type tokenServiceImpl struct {
	tokenRepo  port.TokenRepository
	dispatcher dispatcher.Dispatcher
	logger     Logger
}

// TokenOption configures the token service
type TokenOption func(*tokenServiceImpl)

// WithTokenDispatcher sets the event dispatcher notified on creation
func WithTokenDispatcher(d dispatcher.Dispatcher) TokenOption {
	return func(s *tokenServiceImpl) {
		s.dispatcher = d
	}
}

// NewTokenService creates a new TokenService
func NewTokenService(tokenRepo port.TokenRepository, logger Logger, opts ...TokenOption) TokenService {
	s := &tokenServiceImpl{
		tokenRepo: tokenRepo,
		logger:    logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateToken creates a new token in Draft
func (s *tokenServiceImpl) CreateToken(ctx context.Context, input CreateTokenInput) (*token.Token, error) {
	if input.Name == "" {
		return nil, token.ErrNameRequired
	}
	if !input.Standard.IsValid() {
		return nil, fmt.Errorf("%w: %s", token.ErrStandardInvalid, input.Standard)
	}

	now := time.Now().UTC()
	tok := &token.Token{
		ID:                uuid.New(),
		Name:              input.Name,
		Standard:          input.Standard,
		Status:            token.StatusDraft,
		Configuration:     input.Configuration,
		DeploymentAddress: input.DeploymentAddress,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.tokenRepo.Create(ctx, tok); err != nil {
		s.logger.Error("Failed to create token", "name", input.Name, "error", err)
		return nil, fmt.Errorf("create token: %w", token.ErrPersistence)
	}

	s.logger.Info("Token created", "token_id", tok.ID, "standard", tok.Standard)

	if s.dispatcher != nil {
		evt := event.NewEvent(event.TypeTokenCreated, tok.ID, map[string]interface{}{
			"standard": tok.Standard.String(),
		})
		s.dispatcher.DispatchAsync(ctx, evt)
	}

	return tok, nil
}

// GetToken retrieves a token by id
func (s *tokenServiceImpl) GetToken(ctx context.Context, id uuid.UUID) (*token.Token, error) {
	tok, err := s.tokenRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get token", "token_id", id, "error", err)
		return nil, fmt.Errorf("get token: %w", token.ErrPersistence)
	}
	if tok == nil {
		return nil, token.ErrTokenNotFound
	}
	return tok, nil
}

// ListTokens retrieves a paginated list of tokens
func (s *tokenServiceImpl) ListTokens(ctx context.Context, limit, offset int) ([]*token.Token, error) {
	tokens, err := s.tokenRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list tokens", "limit", limit, "offset", offset, "error", err)
		return nil, fmt.Errorf("list tokens: %w", token.ErrPersistence)
	}
	return tokens, nil
}
