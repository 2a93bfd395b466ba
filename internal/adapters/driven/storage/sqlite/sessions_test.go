package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

func msg(id, q, a string) domain.Message {
	return domain.Message{
		ID:        id,
		Question:  q,
		Answer:    a,
		Model:     "gpt-4",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSessionRepository_LoadAll_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	sessions, err := store.SessionRepository().LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionRepository_SaveAndLoad(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	repo := store.SessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, "Intros"))
	require.NoError(t, repo.SaveSession(ctx, "Work"))
	require.NoError(t, repo.SaveSession(ctx, "Intros"), "saving twice is a no-op")

	require.NoError(t, repo.SaveMessage(ctx, "Work", 0, msg("m1", "q1", "a1")))
	require.NoError(t, repo.SaveMessage(ctx, "Work", 1, msg("m2", "q2", "")))

	sessions, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "Intros", sessions[0].Name)
	assert.Empty(t, sessions[0].Messages)

	assert.Equal(t, "Work", sessions[1].Name)
	require.Len(t, sessions[1].Messages, 2)
	assert.Equal(t, "m1", sessions[1].Messages[0].ID)
	assert.Equal(t, "a1", sessions[1].Messages[0].Answer)
	assert.Equal(t, "gpt-4", sessions[1].Messages[0].Model)
	assert.True(t, sessions[1].Messages[0].CreatedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "m2", sessions[1].Messages[1].ID)
}

func TestSessionRepository_SaveMessage_UpdatesAnswer(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	repo := store.SessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, "s"))
	m := msg("m1", "question", "")
	require.NoError(t, repo.SaveMessage(ctx, "s", 0, m))

	m.Answer = "full answer"
	require.NoError(t, repo.SaveMessage(ctx, "s", 0, m))

	sessions, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, sessions[0].Messages, 1)
	assert.Equal(t, "full answer", sessions[0].Messages[0].Answer)
}

func TestSessionRepository_SaveMessage_RequiresID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	repo := store.SessionRepository()

	require.NoError(t, repo.SaveSession(context.Background(), "s"))
	err := repo.SaveMessage(context.Background(), "s", 0, domain.Message{Question: "q"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionRepository_SaveMessage_UnknownSession(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.SessionRepository().SaveMessage(context.Background(), "missing", 0, msg("m", "q", ""))
	assert.Error(t, err, "foreign key rejects messages without a session")
}

func TestSessionRepository_DeleteMessage_ShiftsPositions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	repo := store.SessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, "s"))
	require.NoError(t, repo.SaveMessage(ctx, "s", 0, msg("a", "qa", "")))
	require.NoError(t, repo.SaveMessage(ctx, "s", 1, msg("b", "qb", "")))
	require.NoError(t, repo.SaveMessage(ctx, "s", 2, msg("c", "qc", "")))

	require.NoError(t, repo.DeleteMessage(ctx, "s", "b"))
	require.NoError(t, repo.DeleteMessage(ctx, "s", "missing"))

	// A new message appended after the delete lands after the survivors.
	require.NoError(t, repo.SaveMessage(ctx, "s", 2, msg("d", "qd", "")))

	sessions, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	ids := []string{}
	for _, m := range sessions[0].Messages {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"a", "c", "d"}, ids)
}

func TestSessionRepository_DeleteSession_Cascades(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	repo := store.SessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, "s"))
	require.NoError(t, repo.SaveMessage(ctx, "s", 0, msg("a", "q", "")))

	require.NoError(t, repo.DeleteSession(ctx, "s"))
	require.NoError(t, repo.DeleteSession(ctx, "never"))

	sessions, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count))
	assert.Zero(t, count)
}

func TestSessionRepository_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	repo := store.SessionRepository()
	require.NoError(t, repo.SaveSession(ctx, "kept"))
	require.NoError(t, repo.SaveMessage(ctx, "kept", 0, msg("m", "q", "a")))
	require.NoError(t, repo.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	sessions, err := store.SessionRepository().LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "kept", sessions[0].Name)
	require.Len(t, sessions[0].Messages, 1)
	assert.Equal(t, "a", sessions[0].Messages[0].Answer)
}

func TestFormatAndParseTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
	assert.True(t, parseTime(formatTime(ts)).Equal(ts))
	assert.True(t, parseTime("garbage").IsZero())
	assert.False(t, parseTime(formatTime(time.Time{})).IsZero(), "zero time is stamped with now")
}
