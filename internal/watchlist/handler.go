package watchlist

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"anihub/internal/auth"
	"anihub/internal/sync"
	"anihub/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *sync.Hub
}

func NewHandler(repo *Repo, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/watchlist", h.list)
	rg.POST("/watchlist", h.addOrUpdate)
	rg.PUT("/watchlist/:anime_id", h.addOrUpdate)
	rg.GET("/watchlist/:anime_id", h.getOne)
	rg.DELETE("/watchlist/:anime_id", h.remove)
}

type upsertReq struct {
	AnimeID        string `json:"anime_id"` // required for POST
	Title          string `json:"title"`
	Image          string `json:"image"`
	Status         string `json:"status"`
	CurrentEpisode int    `json:"current_episode"`
}

func (h *Handler) addOrUpdate(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	animeID := strings.TrimSpace(req.AnimeID)
	if animeID == "" {
		animeID = strings.TrimSpace(c.Param("anime_id"))
	}
	if animeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime_id required"})
		return
	}

	status := normalizeStatus(req.Status)
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "status must be one of: watching, planned, completed, dropped",
		})
		return
	}

	if req.CurrentEpisode < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_episode must be >= 0"})
		return
	}

	if status == "planned" && req.CurrentEpisode != 0 {
		req.CurrentEpisode = 0
	}

	item := models.WatchlistItem{
		UserID:         claims.UserID,
		AnimeID:        animeID,
		Title:          strings.TrimSpace(req.Title),
		Image:          req.Image,
		Status:         status,
		CurrentEpisode: req.CurrentEpisode,
	}
	if err := h.Repo.Upsert(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	// Return canonical stored row including updated_at
	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID, animeID)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	if h.Hub != nil {
		ev := sync.Event{
			Type:    "watchlist.update",
			UserID:  claims.UserID,
			AnimeID: animeID,
			Title:   saved.Title,
			Status:  saved.Status,
			Episode: saved.CurrentEpisode,
			At:      time.Now().UTC(),
		}
		go h.Hub.BroadcastUser(claims.UserID, ev)
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status := strings.TrimSpace(c.Query("status"))
	if status != "" {
		status = normalizeStatus(status)
		if status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	animeID := strings.TrimSpace(c.Param("anime_id"))
	if animeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime_id required"})
		return
	}

	it, err := h.Repo.Get(c.Request.Context(), claims.UserID, animeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if it == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	animeID := strings.TrimSpace(c.Param("anime_id"))
	if animeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime_id required"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, animeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		ev := sync.Event{
			Type:    "watchlist.remove",
			UserID:  claims.UserID,
			AnimeID: animeID,
			At:      time.Now().UTC(),
		}
		go h.Hub.BroadcastUser(claims.UserID, ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "watching":
		return "watching"
	case "planned", "plan_to_watch", "plan to watch":
		return "planned"
	case "completed":
		return "completed"
	case "dropped":
		return "dropped"
	default:
		return ""
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
