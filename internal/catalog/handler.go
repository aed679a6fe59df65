package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"anihub/pkg/models"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/anime/random", h.random)
	rg.GET("/anime/:id", h.getByID)
	rg.GET("/anime/:id/related", h.related)
	rg.GET("/anime/:id/recommendations", h.recommendations)
	rg.GET("/search", h.search)
	rg.GET("/search/advanced", h.advancedSearch)
	rg.GET("/top", h.top)
	rg.GET("/seasonal", h.seasonal)
	rg.GET("/trending", h.trending)
	rg.GET("/recent", h.recent)
	rg.GET("/seasons/:year/:season", h.seasonArchive)
	rg.GET("/schedule", h.popularSchedule)
	rg.GET("/schedule/weekly", h.weeklySchedule)
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	anime, err := h.Svc.AnimeByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	c.JSON(http.StatusOK, anime)
}

func (h *Handler) related(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	related, err := h.Svc.RelatedAnime(c.Request.Context(), id)
	if err != nil {
		// relation data is decorative, so a dead upstream degrades to
		// an empty list instead of erroring the page
		related = []models.Relation{}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(related), "items": related})
}

func (h *Handler) recommendations(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	items := h.Svc.Recommendations(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) random(c *gin.Context) {
	count := parseInt(c.Query("count"), 1)
	if count > 24 {
		count = 24
	}
	items := h.Svc.Random(c.Request.Context(), count)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q required"})
		return
	}

	limit := parseInt(c.Query("limit"), 24)
	items := h.Svc.Search(c.Request.Context(), query, limit)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) advancedSearch(c *gin.Context) {
	// genres=Action,Drama OR genres=Action&genres=Drama
	genres := c.QueryArray("genres")
	if len(genres) == 1 && strings.Contains(genres[0], ",") {
		genres = strings.Split(genres[0], ",")
	}

	filters := AdvancedSearchFilters{
		Query:   strings.TrimSpace(c.Query("query")),
		Type:    strings.TrimSpace(c.Query("type")),
		Genres:  genres,
		Status:  strings.TrimSpace(c.Query("status")),
		Season:  strings.TrimSpace(c.Query("season")),
		Year:    parseInt(c.Query("year"), 0),
		Page:    parseInt(c.Query("page"), 1),
		PerPage: parseInt(c.Query("perPage"), 24),
	}

	items := h.Svc.AdvancedSearch(c.Request.Context(), filters)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) top(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 24)
	items := h.Svc.Top(c.Request.Context(), page, limit)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) seasonal(c *gin.Context) {
	items := h.Svc.Seasonal(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) trending(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 24)
	items := h.Svc.Trending(c.Request.Context(), page, limit)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) recent(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 24)
	items := h.Svc.RecentEpisodes(c.Request.Context(), page, limit)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) seasonArchive(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1900 || year > 2100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}

	season := strings.ToLower(c.Param("season"))
	switch season {
	case models.SeasonWinter, models.SeasonSpring, models.SeasonSummer, models.SeasonFall:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "season must be one of: winter, spring, summer, fall",
		})
		return
	}

	items := h.Svc.SeasonArchive(c.Request.Context(), year, season)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) popularSchedule(c *gin.Context) {
	items := h.Svc.PopularSchedule(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) weeklySchedule(c *gin.Context) {
	items := h.Svc.WeeklySchedule(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
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
