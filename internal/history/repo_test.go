package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anihub/pkg/database"
	"anihub/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON;`)
	require.NoError(t, err)
	require.NoError(t, database.MigrateFile(db, "../../docs/schema.sql"))

	_, err = db.Exec(`
		INSERT INTO users (id, username, email_encrypted, email_hash, password_hash)
		VALUES ('u-1', 'alice', 'enc', 'hash', 'pw')
	`)
	require.NoError(t, err)
	return db
}

func TestAddAndListNewestFirst(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for ep := 1; ep <= 3; ep++ {
		require.NoError(t, repo.Add(ctx, models.HistoryEntry{
			UserID: "u-1", AnimeID: "16498", Title: "Attack on Titan",
			Episode: ep, WatchedAt: base.Add(time.Duration(ep) * time.Hour),
		}))
	}

	items, total, err := repo.List(ctx, "u-1", "", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, 3, items[0].Episode, "newest entry first")
	assert.Equal(t, 1, items[2].Episode)
}

func TestListFiltersByAnime(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, models.HistoryEntry{UserID: "u-1", AnimeID: "1", Episode: 1}))
	require.NoError(t, repo.Add(ctx, models.HistoryEntry{UserID: "u-1", AnimeID: "2", Episode: 1}))
	require.NoError(t, repo.Add(ctx, models.HistoryEntry{UserID: "u-1", AnimeID: "2", Episode: 2}))

	items, total, err := repo.List(ctx, "u-1", "2", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	distinct, err := repo.DistinctAnime(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, distinct)
}

func TestDeleteOne(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, models.HistoryEntry{UserID: "u-1", AnimeID: "1", Episode: 1}))
	require.NoError(t, repo.Add(ctx, models.HistoryEntry{UserID: "u-1", AnimeID: "1", Episode: 2}))

	items, _, err := repo.List(ctx, "u-1", "", 50, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	ok, err := repo.Delete(ctx, "u-1", items[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// wrong user cannot delete the remaining entry
	ok, err = repo.Delete(ctx, "u-2", items[1].ID)
	require.NoError(t, err)
	assert.False(t, ok)

	count, err := repo.Count(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClear(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, models.HistoryEntry{UserID: "u-1", AnimeID: "1", Episode: 1}))
	require.NoError(t, repo.Add(ctx, models.HistoryEntry{UserID: "u-1", AnimeID: "1", Episode: 2}))

	n, err := repo.Clear(ctx, "u-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	count, err := repo.Count(ctx, "u-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}
