package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alloycap/token-lifecycle/internal/domain/token"
)

func TestCreateToken(t *testing.T) {
	var created *token.Token
	tokenRepo := &mockTokenRepo{
		createFn: func(ctx context.Context, tok *token.Token) error {
			created = tok
			return nil
		},
	}

	svc := NewTokenService(tokenRepo, nopLogger{})

	tok, err := svc.CreateToken(context.Background(), CreateTokenInput{
		Name:          "Alloy Credit Fund",
		Standard:      token.StandardERC3643,
		Configuration: `{"decimals":18}`,
	})
	require.NoError(t, err)
	require.NotNil(t, tok)

	assert.Equal(t, token.StatusDraft, tok.Status, "new tokens always start in DRAFT")
	assert.NotEqual(t, uuid.Nil, tok.ID)
	assert.Equal(t, `{"decimals":18}`, tok.Configuration)
	assert.Equal(t, tok.CreatedAt, tok.UpdatedAt)
	assert.Same(t, tok, created)
}

func TestCreateToken_NameRequired(t *testing.T) {
	svc := NewTokenService(&mockTokenRepo{}, nopLogger{})

	_, err := svc.CreateToken(context.Background(), CreateTokenInput{
		Standard: token.StandardERC20,
	})
	assert.ErrorIs(t, err, token.ErrNameRequired)
}

func TestCreateToken_UnsupportedStandard(t *testing.T) {
	svc := NewTokenService(&mockTokenRepo{}, nopLogger{})

	_, err := svc.CreateToken(context.Background(), CreateTokenInput{
		Name:     "Alloy Credit Fund",
		Standard: token.Standard("ERC-777"),
	})
	assert.ErrorIs(t, err, token.ErrStandardInvalid)
	assert.Contains(t, err.Error(), "ERC-777")
}

func TestCreateToken_RepositoryFailure(t *testing.T) {
	tokenRepo := &mockTokenRepo{
		createFn: func(ctx context.Context, tok *token.Token) error {
			return errors.New("disk full")
		},
	}

	svc := NewTokenService(tokenRepo, nopLogger{})

	_, err := svc.CreateToken(context.Background(), CreateTokenInput{
		Name:     "Alloy Credit Fund",
		Standard: token.StandardERC20,
	})
	assert.ErrorIs(t, err, token.ErrPersistence)
}

func TestGetToken(t *testing.T) {
	expected := newTestToken(token.StatusApproved)
	tokenRepo := &mockTokenRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*token.Token, error) {
			assert.Equal(t, expected.ID, id)
			return expected, nil
		},
	}

	svc := NewTokenService(tokenRepo, nopLogger{})

	tok, err := svc.GetToken(context.Background(), expected.ID)
	require.NoError(t, err)
	assert.Same(t, expected, tok)
}

func TestGetToken_NotFound(t *testing.T) {
	tokenRepo := &mockTokenRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*token.Token, error) {
			return nil, nil
		},
	}

	svc := NewTokenService(tokenRepo, nopLogger{})

	_, err := svc.GetToken(context.Background(), uuid.New())
	assert.ErrorIs(t, err, token.ErrTokenNotFound)
}

func TestListTokens(t *testing.T) {
	expected := []*token.Token{
		newTestToken(token.StatusDraft),
		newTestToken(token.StatusDeployed),
	}
	tokenRepo := &mockTokenRepo{
		listFn: func(ctx context.Context, limit, offset int) ([]*token.Token, error) {
			assert.Equal(t, 20, limit)
			assert.Equal(t, 40, offset)
			return expected, nil
		},
	}

	svc := NewTokenService(tokenRepo, nopLogger{})

	tokens, err := svc.ListTokens(context.Background(), 20, 40)
	require.NoError(t, err)
	assert.Equal(t, expected, tokens)
}
