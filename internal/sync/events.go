package sync

import "time"

// Event is one account activity notification. Type names follow
// "<area>.<action>": favorites.add, favorites.remove, watchlist.update,
// watchlist.remove, history.add, history.remove, history.clear.
type Event struct {
	Type    string    `json:"type"`
	UserID  string    `json:"user_id"`
	AnimeID string    `json:"anime_id,omitempty"`
	Title   string    `json:"title,omitempty"`
	Status  string    `json:"status,omitempty"`
	Episode int       `json:"episode,omitempty"`
	At      time.Time `json:"at"`
}
