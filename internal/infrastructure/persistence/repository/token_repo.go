package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alloycap/token-lifecycle/internal/application/port"
	"github.com/alloycap/token-lifecycle/internal/domain/token"
	"github.com/alloycap/token-lifecycle/internal/infrastructure/persistence/sqlite"
)

// TokenRepository implements port.TokenRepository
type TokenRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *sql.DB, logger *zap.Logger) port.TokenRepository {
	return &TokenRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new token
func (r *TokenRepository) Create(ctx context.Context, tok *token.Token) error {
	query := `
		INSERT INTO tokens (
			id, name, standard, status, configuration, deployment_address,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		tok.ID.String(),
		tok.Name,
		tok.Standard.String(),
		tok.Status.String(),
		tok.Configuration,
		tok.DeploymentAddress,
		tok.CreatedAt,
		tok.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create token", zap.Error(err))
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// GetByID retrieves a token by id, returning nil when it does not exist
func (r *TokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*token.Token, error) {
	query := `
		SELECT id, name, standard, status, configuration, deployment_address,
			created_at, updated_at
		FROM tokens
		WHERE id = ?
	`

	tok, err := scanToken(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get token by ID", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return tok, nil
}

// List retrieves tokens with pagination, newest first
func (r *TokenRepository) List(ctx context.Context, limit, offset int) ([]*token.Token, error) {
	query := `
		SELECT id, name, standard, status, configuration, deployment_address,
			created_at, updated_at
		FROM tokens
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list tokens", zap.Error(err))
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*token.Token
	for rows.Next() {
		tok, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, tok)
	}

	return tokens, rows.Err()
}

// UpdateStatus writes the new status with an optimistic compare against the
// loaded (status, updated_at) pair. Zero rows affected means another writer
// got there first: the caller's view is stale and token.ErrConflict is
// returned.
func (r *TokenRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to token.Status, seenUpdatedAt, now time.Time) error {
	query := `
		UPDATE tokens
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ? AND updated_at = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		to.String(),
		now,
		id.String(),
		from.String(),
		seenUpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update token status",
			zap.String("id", id.String()),
			zap.String("status", to.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return token.ErrConflict
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanToken reads one token row
func scanToken(row rowScanner) (*token.Token, error) {
	var tok token.Token
	var id string

	err := row.Scan(
		&id,
		&tok.Name,
		&tok.Standard,
		&tok.Status,
		&tok.Configuration,
		&tok.DeploymentAddress,
		&tok.CreatedAt,
		&tok.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid token id %q: %w", id, err)
	}
	tok.ID = parsed

	return &tok, nil
}

// Verify interface compliance
var _ port.TokenRepository = (*TokenRepository)(nil)
