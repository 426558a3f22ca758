package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alloycap/token-lifecycle/internal/application/port"
	"github.com/alloycap/token-lifecycle/internal/domain/token"
	"github.com/alloycap/token-lifecycle/internal/infrastructure/persistence/sqlite"
)

// TransitionRecordRepository implements port.TransitionRecordRepository. The
// audit trail is append-only: this type exposes no update or delete.
type TransitionRecordRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTransitionRecordRepository creates a new transition record repository
func NewTransitionRecordRepository(db *sql.DB, logger *zap.Logger) port.TransitionRecordRepository {
	return &TransitionRecordRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a new transition record
func (r *TransitionRecordRepository) Create(ctx context.Context, rec *token.StatusTransitionRecord) error {
	query := `
		INSERT INTO status_transitions (
			token_id, from_status, to_status, actor_id, notes, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		rec.TokenID.String(),
		rec.FromStatus.String(),
		rec.ToStatus.String(),
		rec.ActorID,
		rec.Notes,
		rec.OccurredAt,
	)
	if err != nil {
		r.logger.Error("Failed to append transition record", zap.Error(err))
		return fmt.Errorf("failed to append transition record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	rec.ID = id
	return nil
}

// GetByTokenID retrieves all transition records for a token, oldest first
func (r *TransitionRecordRepository) GetByTokenID(ctx context.Context, tokenID uuid.UUID) ([]*token.StatusTransitionRecord, error) {
	query := `
		SELECT id, token_id, from_status, to_status, actor_id, notes, occurred_at
		FROM status_transitions
		WHERE token_id = ?
		ORDER BY occurred_at ASC, id ASC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, tokenID.String())
	if err != nil {
		r.logger.Error("Failed to get transition records",
			zap.String("token_id", tokenID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get transition records: %w", err)
	}
	defer rows.Close()

	var records []*token.StatusTransitionRecord
	for rows.Next() {
		var rec token.StatusTransitionRecord
		var id string

		err := rows.Scan(
			&rec.ID,
			&id,
			&rec.FromStatus,
			&rec.ToStatus,
			&rec.ActorID,
			&rec.Notes,
			&rec.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transition record: %w", err)
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid token id %q: %w", id, err)
		}
		rec.TokenID = parsed

		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Verify interface compliance
var _ port.TransitionRecordRepository = (*TransitionRecordRepository)(nil)
