package favorites

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
	rg.GET("/favorites", h.list)
	rg.POST("/favorites", h.add)
	rg.GET("/favorites/:anime_id", h.getOne)
	rg.DELETE("/favorites/:anime_id", h.remove)
}

type addReq struct {
	AnimeID  string  `json:"anime_id"`
	Title    string  `json:"title"`
	Image    string  `json:"image"`
	Score    float64 `json:"score"`
	Episodes int     `json:"episodes"`
	Status   string  `json:"status"`
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
	req.Title = strings.TrimSpace(req.Title)
	if req.AnimeID == "" || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime_id and title required"})
		return
	}

	fav := models.Favorite{
		UserID:   claims.UserID,
		AnimeID:  req.AnimeID,
		Title:    req.Title,
		Image:    req.Image,
		Score:    req.Score,
		Episodes: req.Episodes,
		Status:   req.Status,
	}
	if err := h.Repo.Add(c.Request.Context(), fav); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID, req.AnimeID)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	if h.Hub != nil {
		ev := sync.Event{
			Type:    "favorites.add",
			UserID:  claims.UserID,
			AnimeID: req.AnimeID,
			Title:   req.Title,
			At:      time.Now().UTC(),
		}
		go h.Hub.BroadcastUser(claims.UserID, ev)
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, limit, offset)
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

	fav, err := h.Repo.Get(c.Request.Context(), claims.UserID, animeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if fav == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, fav)
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
			Type:    "favorites.remove",
			UserID:  claims.UserID,
			AnimeID: animeID,
			At:      time.Now().UTC(),
		}
		go h.Hub.BroadcastUser(claims.UserID, ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
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
