package watchlist

import (
	"context"
	"database/sql"
	"testing"

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

func TestUpsertUpdatesInPlace(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.WatchlistItem{
		UserID: "u-1", AnimeID: "16498", Title: "Attack on Titan",
		Status: "watching", CurrentEpisode: 3,
	}))
	require.NoError(t, repo.Upsert(ctx, models.WatchlistItem{
		UserID: "u-1", AnimeID: "16498", Title: "Attack on Titan",
		Status: "completed", CurrentEpisode: 25,
	}))

	it, err := repo.Get(ctx, "u-1", "16498")
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, "completed", it.Status)
	assert.Equal(t, 25, it.CurrentEpisode)

	_, total, err := repo.List(ctx, "u-1", "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestListFiltersByStatus(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.WatchlistItem{
		UserID: "u-1", AnimeID: "1", Status: "watching", CurrentEpisode: 5,
	}))
	require.NoError(t, repo.Upsert(ctx, models.WatchlistItem{
		UserID: "u-1", AnimeID: "2", Status: "planned",
	}))
	require.NoError(t, repo.Upsert(ctx, models.WatchlistItem{
		UserID: "u-1", AnimeID: "3", Status: "planned",
	}))

	items, total, err := repo.List(ctx, "u-1", "planned", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	byStatus, err := repo.CountByStatus(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"watching": 1, "planned": 2}, byStatus)
}

func TestSchemaRejectsUnknownStatus(t *testing.T) {
	repo := NewRepo(newTestDB(t))

	err := repo.Upsert(context.Background(), models.WatchlistItem{
		UserID: "u-1", AnimeID: "1", Status: "binging",
	})
	assert.Error(t, err)
}
