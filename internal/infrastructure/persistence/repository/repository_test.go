package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alloycap/token-lifecycle/internal/domain/token"
	"github.com/alloycap/token-lifecycle/internal/infrastructure/persistence/sqlite"
)

const testSchema = `
	CREATE TABLE tokens (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		standard TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		configuration TEXT NOT NULL DEFAULT '',
		deployment_address TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE status_transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		token_id TEXT NOT NULL,
		from_status TEXT NOT NULL,
		to_status TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		occurred_at DATETIME NOT NULL,
		FOREIGN KEY (token_id) REFERENCES tokens(id)
	);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// A single connection keeps the in-memory database alive for the test
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func seedToken(t *testing.T, repo *TokenRepository, status token.Status) *token.Token {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	tok := &token.Token{
		ID:            uuid.New(),
		Name:          "Alloy Credit Fund",
		Standard:      token.StandardERC3643,
		Status:        status,
		Configuration: `{"decimals":18}`,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, repo.Create(context.Background(), tok))
	return tok
}

func TestTokenRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db, zap.NewNop()).(*TokenRepository)

	tok := seedToken(t, repo, token.StatusDraft)

	got, err := repo.GetByID(context.Background(), tok.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, tok.ID, got.ID)
	assert.Equal(t, tok.Name, got.Name)
	assert.Equal(t, token.StandardERC3643, got.Standard)
	assert.Equal(t, token.StatusDraft, got.Status)
	assert.Equal(t, `{"decimals":18}`, got.Configuration)
	assert.True(t, tok.CreatedAt.Equal(got.CreatedAt))
}

func TestTokenRepository_GetByID_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db, zap.NewNop()).(*TokenRepository)

	got, err := repo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTokenRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db, zap.NewNop()).(*TokenRepository)

	older := &token.Token{
		ID:        uuid.New(),
		Name:      "Older",
		Standard:  token.StandardERC20,
		Status:    token.StatusDraft,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := &token.Token{
		ID:        uuid.New(),
		Name:      "Newer",
		Standard:  token.StandardERC20,
		Status:    token.StatusDraft,
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), older))
	require.NoError(t, repo.Create(context.Background(), newer))

	tokens, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "Newer", tokens[0].Name, "listing is newest first")

	page, err := repo.List(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Older", page[0].Name)
}

func TestTokenRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db, zap.NewNop()).(*TokenRepository)

	tok := seedToken(t, repo, token.StatusDraft)
	now := time.Now().UTC().Truncate(time.Second).Add(time.Second)

	err := repo.UpdateStatus(context.Background(), tok.ID, token.StatusDraft, token.StatusUnderReview, tok.UpdatedAt, now)
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.Equal(t, token.StatusUnderReview, got.Status)
	assert.True(t, now.Equal(got.UpdatedAt))
}

func TestTokenRepository_UpdateStatus_StaleTimestamp(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db, zap.NewNop()).(*TokenRepository)

	tok := seedToken(t, repo, token.StatusDraft)

	stale := tok.UpdatedAt.Add(-time.Minute)
	err := repo.UpdateStatus(context.Background(), tok.ID, token.StatusDraft, token.StatusUnderReview, stale, time.Now().UTC())
	assert.ErrorIs(t, err, token.ErrConflict)

	got, err := repo.GetByID(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.Equal(t, token.StatusDraft, got.Status, "losing writer must not change the row")
}

func TestTokenRepository_UpdateStatus_StatusMoved(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db, zap.NewNop()).(*TokenRepository)

	tok := seedToken(t, repo, token.StatusDraft)
	now := time.Now().UTC().Truncate(time.Second).Add(time.Second)

	require.NoError(t, repo.UpdateStatus(context.Background(), tok.ID, token.StatusDraft, token.StatusUnderReview, tok.UpdatedAt, now))

	// Second writer still holds the DRAFT view
	err := repo.UpdateStatus(context.Background(), tok.ID, token.StatusDraft, token.StatusUnderReview, tok.UpdatedAt, now.Add(time.Second))
	assert.ErrorIs(t, err, token.ErrConflict)
}

func TestTransitionRecordRepository_AppendAndFetch(t *testing.T) {
	db := setupTestDB(t)
	tokenRepo := NewTokenRepository(db, zap.NewNop()).(*TokenRepository)
	recordRepo := NewTransitionRecordRepository(db, zap.NewNop()).(*TransitionRecordRepository)

	tok := seedToken(t, tokenRepo, token.StatusDraft)
	base := time.Now().UTC().Truncate(time.Second)

	first := &token.StatusTransitionRecord{
		TokenID:    tok.ID,
		FromStatus: token.StatusDraft,
		ToStatus:   token.StatusUnderReview,
		ActorID:    "analyst-7",
		OccurredAt: base,
	}
	second := &token.StatusTransitionRecord{
		TokenID:    tok.ID,
		FromStatus: token.StatusUnderReview,
		ToStatus:   token.StatusApproved,
		ActorID:    "reviewer-2",
		Notes:      "checks passed",
		OccurredAt: base.Add(time.Minute),
	}

	require.NoError(t, recordRepo.Create(context.Background(), first))
	require.NoError(t, recordRepo.Create(context.Background(), second))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	records, err := recordRepo.GetByTokenID(context.Background(), tok.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, token.StatusUnderReview, records[0].ToStatus, "records come back oldest first")
	assert.Equal(t, token.StatusApproved, records[1].ToStatus)
	assert.Equal(t, "checks passed", records[1].Notes)
}

func TestTransitionRecordRepository_EmptyHistory(t *testing.T) {
	db := setupTestDB(t)
	recordRepo := NewTransitionRecordRepository(db, zap.NewNop()).(*TransitionRecordRepository)

	records, err := recordRepo.GetByTokenID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWithTransaction_RollsBackBothWrites(t *testing.T) {
	db := setupTestDB(t)
	txManager := sqlite.NewDB(db, zap.NewNop())
	tokenRepo := NewTokenRepository(db, zap.NewNop()).(*TokenRepository)
	recordRepo := NewTransitionRecordRepository(db, zap.NewNop()).(*TransitionRecordRepository)

	tok := seedToken(t, tokenRepo, token.StatusDraft)
	now := time.Now().UTC().Truncate(time.Second).Add(time.Second)

	injected := errors.New("injected failure")
	err := txManager.WithTransaction(context.Background(), func(txCtx context.Context) error {
		if err := tokenRepo.UpdateStatus(txCtx, tok.ID, token.StatusDraft, token.StatusUnderReview, tok.UpdatedAt, now); err != nil {
			return err
		}
		if err := recordRepo.Create(txCtx, &token.StatusTransitionRecord{
			TokenID:    tok.ID,
			FromStatus: token.StatusDraft,
			ToStatus:   token.StatusUnderReview,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		return injected
	})
	require.ErrorIs(t, err, injected)

	got, err := tokenRepo.GetByID(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.Equal(t, token.StatusDraft, got.Status, "status write must roll back")

	records, err := recordRepo.GetByTokenID(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.Empty(t, records, "audit write must roll back")
}

func TestWithTransaction_CommitsBothWrites(t *testing.T) {
	db := setupTestDB(t)
	txManager := sqlite.NewDB(db, zap.NewNop())
	tokenRepo := NewTokenRepository(db, zap.NewNop()).(*TokenRepository)
	recordRepo := NewTransitionRecordRepository(db, zap.NewNop()).(*TransitionRecordRepository)

	tok := seedToken(t, tokenRepo, token.StatusDraft)
	now := time.Now().UTC().Truncate(time.Second).Add(time.Second)

	err := txManager.WithTransaction(context.Background(), func(txCtx context.Context) error {
		if err := tokenRepo.UpdateStatus(txCtx, tok.ID, token.StatusDraft, token.StatusUnderReview, tok.UpdatedAt, now); err != nil {
			return err
		}
		return recordRepo.Create(txCtx, &token.StatusTransitionRecord{
			TokenID:    tok.ID,
			FromStatus: token.StatusDraft,
			ToStatus:   token.StatusUnderReview,
			ActorID:    "analyst-7",
			OccurredAt: now,
		})
	})
	require.NoError(t, err)

	got, err := tokenRepo.GetByID(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.Equal(t, token.StatusUnderReview, got.Status)

	records, err := recordRepo.GetByTokenID(context.Background(), tok.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "analyst-7", records[0].ActorID)
}
