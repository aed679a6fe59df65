package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"anihub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Add(ctx context.Context, entry models.HistoryEntry) error {
	if entry.WatchedAt.IsZero() {
		entry.WatchedAt = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO watch_history (user_id, anime_id, title, image, episode, watched_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.UserID, entry.AnimeID, entry.Title, entry.Image, entry.Episode, entry.WatchedAt)
	if err != nil {
		return fmt.Errorf("insert watch history: %w", err)
	}
	return nil
}

// List returns history entries, newest first. animeID narrows to one
// title when non-empty.
func (r *Repo) List(ctx context.Context, userID, animeID string, limit, offset int) ([]models.HistoryEntry, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	var countErr error
	if animeID == "" {
		countErr = r.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM watch_history WHERE user_id = ?
		`, userID).Scan(&total)
	} else {
		countErr = r.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM watch_history WHERE user_id = ? AND anime_id = ?
		`, userID, animeID).Scan(&total)
	}
	if countErr != nil {
		return nil, 0, fmt.Errorf("count watch history: %w", countErr)
	}

	var rows *sql.Rows
	var err error

	if animeID == "" {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT id, user_id, anime_id, title, image, episode, watched_at
			FROM watch_history
			WHERE user_id = ?
			ORDER BY watched_at DESC
			LIMIT ? OFFSET ?
		`, userID, limit, offset)
	} else {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT id, user_id, anime_id, title, image, episode, watched_at
			FROM watch_history
			WHERE user_id = ? AND anime_id = ?
			ORDER BY watched_at DESC
			LIMIT ? OFFSET ?
		`, userID, animeID, limit, offset)
	}

	if err != nil {
		return nil, 0, fmt.Errorf("list watch history: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var entry models.HistoryEntry
		var watched time.Time

		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.AnimeID,
			&entry.Title, &entry.Image, &entry.Episode, &watched); err != nil {
			return nil, 0, fmt.Errorf("scan watch history: %w", err)
		}
		entry.WatchedAt = watched
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows watch history: %w", err)
	}

	return out, total, nil
}

// Delete removes a single entry by id, scoped to the owning user.
func (r *Repo) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM watch_history WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete watch history: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Clear wipes a user's entire history and reports how many rows went.
func (r *Repo) Clear(ctx context.Context, userID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM watch_history WHERE user_id = ?
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear watch history: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *Repo) Count(ctx context.Context, userID string) (int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM watch_history WHERE user_id = ?
	`, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count watch history: %w", err)
	}
	return total, nil
}

// DistinctAnime counts how many different titles appear in the history.
func (r *Repo) DistinctAnime(ctx context.Context, userID string) (int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT anime_id) FROM watch_history WHERE user_id = ?
	`, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count distinct anime: %w", err)
	}
	return total, nil
}
