package favorites

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

// Add saves a favorite. Re-adding the same anime refreshes the display
// snapshot instead of erroring.
func (r *Repo) Add(ctx context.Context, fav models.Favorite) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO favorites (user_id, anime_id, title, image, score, episodes, status, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, anime_id) DO UPDATE SET
			title = excluded.title,
			image = excluded.image,
			score = excluded.score,
			episodes = excluded.episodes,
			status = excluded.status
	`, fav.UserID, fav.AnimeID, fav.Title, fav.Image, fav.Score, fav.Episodes, fav.Status)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, animeID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM favorites
		WHERE user_id = ? AND anime_id = ?
	`, userID, animeID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) List(ctx context.Context, userID string, limit, offset int) ([]models.Favorite, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM favorites WHERE user_id = ?
	`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count favorites: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, anime_id, title, image, score, episodes, status, added_at
		FROM favorites
		WHERE user_id = ?
		ORDER BY added_at DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	out := make([]models.Favorite, 0, limit)
	for rows.Next() {
		var fav models.Favorite
		var added time.Time

		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.AnimeID, &fav.Title,
			&fav.Image, &fav.Score, &fav.Episodes, &fav.Status, &added); err != nil {
			return nil, 0, fmt.Errorf("scan favorite: %w", err)
		}
		fav.AddedAt = added
		out = append(out, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows favorites: %w", err)
	}

	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, userID, animeID string) (*models.Favorite, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, anime_id, title, image, score, episodes, status, added_at
		FROM favorites
		WHERE user_id = ? AND anime_id = ?
	`, userID, animeID)

	var fav models.Favorite
	var added time.Time
	if err := row.Scan(&fav.ID, &fav.UserID, &fav.AnimeID, &fav.Title,
		&fav.Image, &fav.Score, &fav.Episodes, &fav.Status, &added); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	fav.AddedAt = added
	return &fav, nil
}

func (r *Repo) Count(ctx context.Context, userID string) (int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM favorites WHERE user_id = ?
	`, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return total, nil
}
