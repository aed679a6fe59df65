package models

import "time"

// Favorite is a user's saved anime with a display snapshot, so the
// profile page renders without hitting the upstream catalogs again.
type Favorite struct {
	ID       int64     `json:"id"`
	UserID   string    `json:"user_id"`
	AnimeID  string    `json:"anime_id"`
	Title    string    `json:"title"`
	Image    string    `json:"image,omitempty"`
	Score    float64   `json:"score,omitempty"`
	Episodes int       `json:"episodes,omitempty"`
	Status   string    `json:"status,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// WatchlistItem tracks where a user stands with one anime.
type WatchlistItem struct {
	UserID         string    `json:"user_id"`
	AnimeID        string    `json:"anime_id"`
	Title          string    `json:"title"`
	Image          string    `json:"image,omitempty"`
	Status         string    `json:"status"` // watching, planned, completed, dropped
	CurrentEpisode int       `json:"current_episode"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HistoryEntry is one watched episode.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	AnimeID   string    `json:"anime_id"`
	Title     string    `json:"title"`
	Image     string    `json:"image,omitempty"`
	Episode   int       `json:"episode"`
	WatchedAt time.Time `json:"watched_at"`
}
