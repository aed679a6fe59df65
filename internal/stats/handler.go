// Package stats serves the profile summary: how much a user has saved,
// tracked and watched across the account tables.
package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anihub/internal/auth"
	"anihub/internal/favorites"
	"anihub/internal/history"
	"anihub/internal/watchlist"
)

type Handler struct {
	Favorites *favorites.Repo
	Watchlist *watchlist.Repo
	History   *history.Repo
}

func NewHandler(fav *favorites.Repo, wl *watchlist.Repo, hist *history.Repo) *Handler {
	return &Handler{Favorites: fav, Watchlist: wl, History: hist}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me/stats", h.me)
}

func (h *Handler) me(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ctx := c.Request.Context()

	favoritesCount, err := h.Favorites.Count(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}

	byStatus, err := h.Watchlist.CountByStatus(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	watchlistTotal := 0
	for _, n := range byStatus {
		watchlistTotal += n
	}

	episodesWatched, err := h.History.Count(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	animeWatched, err := h.History.DistinctAnime(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": favoritesCount,
		"watchlist": gin.H{
			"total":     watchlistTotal,
			"by_status": byStatus,
		},
		"episodes_watched": episodesWatched,
		"anime_watched":    animeWatched,
	})
}
