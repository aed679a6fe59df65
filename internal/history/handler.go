package history

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
	rg.GET("/history", h.list)
	rg.POST("/history", h.add)
	rg.DELETE("/history", h.clear)
	rg.DELETE("/history/:id", h.delete)
}

type addReq struct {
	AnimeID string `json:"anime_id"`
	Title   string `json:"title"`
	Image   string `json:"image"`
	Episode int    `json:"episode"`
}

func (h *Handler) add(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.AnimeID = strings.TrimSpace(req.AnimeID)
	if req.AnimeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime_id required"})
		return
	}
	if req.Episode < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "episode must be >= 1"})
		return
	}

	entry := models.HistoryEntry{
		UserID:    claims.UserID,
		AnimeID:   req.AnimeID,
		Title:     strings.TrimSpace(req.Title),
		Image:     req.Image,
		Episode:   req.Episode,
		WatchedAt: time.Now().UTC(),
	}
	if err := h.Repo.Add(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.Hub != nil {
		ev := sync.Event{
			Type:    "history.add",
			UserID:  claims.UserID,
			AnimeID: req.AnimeID,
			Title:   entry.Title,
			Episode: req.Episode,
			At:      entry.WatchedAt,
		}
		go h.Hub.BroadcastUser(claims.UserID, ev)
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	animeID := strings.TrimSpace(c.Query("anime_id"))
	limit := parseInt(c.Query("limit"), 50)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, animeID, limit, offset)
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

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	if h.Hub != nil {
		ev := sync.Event{
			Type:   "history.remove",
			UserID: claims.UserID,
			At:     time.Now().UTC(),
		}
		go h.Hub.BroadcastUser(claims.UserID, ev)
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) clear(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	n, err := h.Repo.Clear(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "clear failed"})
		return
	}

	if h.Hub != nil {
		ev := sync.Event{
			Type:   "history.clear",
			UserID: claims.UserID,
			At:     time.Now().UTC(),
		}
		go h.Hub.BroadcastUser(claims.UserID, ev)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": n})
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
