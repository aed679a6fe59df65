package watchlist

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

// Upsert inserts or updates a user's watchlist entry
func (r *Repo) Upsert(ctx context.Context, item models.WatchlistItem) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO watchlist (user_id, anime_id, title, image, status, current_episode, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, anime_id) DO UPDATE SET
			title = excluded.title,
			image = excluded.image,
			status = excluded.status,
			current_episode = excluded.current_episode,
			updated_at = CURRENT_TIMESTAMP
	`, item.UserID, item.AnimeID, item.Title, item.Image, item.Status, item.CurrentEpisode)
	if err != nil {
		return fmt.Errorf("upsert watchlist item: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, animeID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM watchlist
		WHERE user_id = ? AND anime_id = ?
	`, userID, animeID)
	if err != nil {
		return false, fmt.Errorf("delete watchlist item: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) List(ctx context.Context, userID string, status string, limit, offset int) ([]models.WatchlistItem, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	var countErr error
	if status == "" {
		countErr = r.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM watchlist WHERE user_id = ?
		`, userID).Scan(&total)
	} else {
		countErr = r.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM watchlist WHERE user_id = ? AND status = ?
		`, userID, status).Scan(&total)
	}
	if countErr != nil {
		return nil, 0, fmt.Errorf("count watchlist: %w", countErr)
	}

	var rows *sql.Rows
	var err error

	if status == "" {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT user_id, anime_id, title, image, status, current_episode, updated_at
			FROM watchlist
			WHERE user_id = ?
			ORDER BY updated_at DESC
			LIMIT ? OFFSET ?
		`, userID, limit, offset)
	} else {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT user_id, anime_id, title, image, status, current_episode, updated_at
			FROM watchlist
			WHERE user_id = ? AND status = ?
			ORDER BY updated_at DESC
			LIMIT ? OFFSET ?
		`, userID, status, limit, offset)
	}

	if err != nil {
		return nil, 0, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	out := make([]models.WatchlistItem, 0, limit)
	for rows.Next() {
		var it models.WatchlistItem
		var updated time.Time

		if err := rows.Scan(&it.UserID, &it.AnimeID, &it.Title, &it.Image,
			&it.Status, &it.CurrentEpisode, &updated); err != nil {
			return nil, 0, fmt.Errorf("scan watchlist row: %w", err)
		}
		it.UpdatedAt = updated
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows watchlist: %w", err)
	}

	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, userID, animeID string) (*models.WatchlistItem, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, anime_id, title, image, status, current_episode, updated_at
		FROM watchlist
		WHERE user_id = ? AND anime_id = ?
	`, userID, animeID)

	var it models.WatchlistItem
	var updated time.Time
	if err := row.Scan(&it.UserID, &it.AnimeID, &it.Title, &it.Image,
		&it.Status, &it.CurrentEpisode, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get watchlist item: %w", err)
	}
	it.UpdatedAt = updated
	return &it, nil
}

// CountByStatus returns entry counts keyed by status.
func (r *Repo) CountByStatus(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM watchlist
		WHERE user_id = ?
		GROUP BY status
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("count watchlist by status: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan watchlist count: %w", err)
		}
		out[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows watchlist count: %w", err)
	}
	return out, nil
}
