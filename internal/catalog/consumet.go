package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"anihub/internal/fetch"
	"anihub/internal/ratelimit"
	"anihub/pkg/models"
)

// DefaultConsumetBase points at a hosted Consumet instance (meta/anilist
// routes). Self-hosters override it via ANIHUB_CONSUMET_URL.
const DefaultConsumetBase = "https://animesite-xi.vercel.app"

const consumetRate = 10

// Consumet wraps a Consumet REST deployment. It aggregates several
// sources itself, which makes it the first choice for search, top and
// trending lists.
type Consumet struct {
	base    string
	client  *fetch.Client
	limiter *ratelimit.Limiter
}

func NewConsumet(client *fetch.Client, base string) *Consumet {
	if base == "" {
		base = DefaultConsumetBase
	}
	return &Consumet{
		base:    strings.TrimRight(base, "/"),
		client:  client,
		limiter: ratelimit.New(consumetRate),
	}
}

func (c *Consumet) Name() string { return "consumet" }

type consumetAnime struct {
	ID    string `json:"id"`
	MalID int    `json:"malId"`
	Title struct {
		Romaji        string `json:"romaji"`
		English       string `json:"english"`
		Native        string `json:"native"`
		UserPreferred string `json:"userPreferred"`
	} `json:"title"`
	Image         string   `json:"image"`
	Cover         string   `json:"cover"`
	Description   string   `json:"description"`
	Status        string   `json:"status"`
	ReleaseDate   int      `json:"releaseDate"`
	Rating        float64  `json:"rating"`
	Genres        []string `json:"genres"`
	TotalEpisodes int      `json:"totalEpisodes"`
	Type          string   `json:"type"`
	Popularity    int      `json:"popularity"`
}

type consumetPage struct {
	Results []consumetAnime `json:"results"`
}

type consumetAiringItem struct {
	ID    string `json:"id"`
	MalID int    `json:"malId"`
	Title struct {
		Romaji        string `json:"romaji"`
		English       string `json:"english"`
		UserPreferred string `json:"userPreferred"`
	} `json:"title"`
	Image    string `json:"image"`
	Episode  int    `json:"episode"`
	AiringAt int64  `json:"airingAt"`
}

type consumetAiringPage struct {
	Results []consumetAiringItem `json:"results"`
}

func (c *Consumet) toAnime(item consumetAnime) models.Anime {
	title := item.Title.Romaji
	if title == "" {
		title = item.Title.UserPreferred
	}
	malID := item.MalID
	if malID == 0 {
		malID, _ = strconv.Atoi(item.ID)
	}
	genres := item.Genres
	if genres == nil {
		genres = []string{}
	}

	return models.Anime{
		ID:            item.ID,
		MalID:         malID,
		Title:         title,
		TitleEnglish:  item.Title.English,
		TitleOriginal: item.Title.Native,
		Poster:        item.Image,
		PosterLarge:   firstNonBlank(item.Cover, item.Image),
		Banner:        item.Cover,
		Description:   StripHTMLTags(item.Description),
		Score:         NormalizeScore(item.Rating, 100),
		Year:          item.ReleaseDate,
		Genres:        genres,
		Studios:       []string{},
		Episodes:      item.TotalEpisodes,
		Type:          NormalizeType(item.Type),
		Status:        NormalizeStatus(item.Status),
		Popularity:    item.Popularity,
		// consumet's meta routes proxy anilist data
		Source: models.SourceAniList,
	}
}

func (c *Consumet) get(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.client.GetJSON(ctx, c.base+endpoint, fetch.DefaultTTL, out)
}

// Trending fetches the trending list.
func (c *Consumet) Trending(ctx context.Context, page, perPage int) ([]models.Anime, error) {
	var resp consumetPage
	endpoint := fmt.Sprintf("/meta/anilist/trending?page=%d&perPage=%d", page, perPage)
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("consumet: trending: %w", err)
	}
	return c.toAnimeList(resp.Results), nil
}

// Popular fetches the all-time popular list.
func (c *Consumet) Popular(ctx context.Context, page, perPage int) ([]models.Anime, error) {
	var resp consumetPage
	endpoint := fmt.Sprintf("/meta/anilist/popular?page=%d&perPage=%d", page, perPage)
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("consumet: popular: %w", err)
	}
	return c.toAnimeList(resp.Results), nil
}

// Search queries anime by text.
func (c *Consumet) Search(ctx context.Context, query string, page, perPage int) ([]models.Anime, error) {
	var resp consumetPage
	endpoint := fmt.Sprintf("/meta/anilist/%s?page=%d&perPage=%d", url.PathEscape(query), page, perPage)
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("consumet: search %q: %w", query, err)
	}
	return c.toAnimeList(resp.Results), nil
}

// AdvancedSearchFilters mirrors the advanced-search route's query
// surface. Zero-valued fields are omitted from the request.
type AdvancedSearchFilters struct {
	Query   string
	Type    string
	Genres  []string
	Status  string
	Season  string
	Year    int
	Page    int
	PerPage int
}

// AdvancedSearch queries with structured filters.
func (c *Consumet) AdvancedSearch(ctx context.Context, f AdvancedSearchFilters) ([]models.Anime, error) {
	params := url.Values{}
	if f.Query != "" {
		params.Set("query", f.Query)
	}
	if f.Type != "" {
		params.Set("type", f.Type)
	}
	if len(f.Genres) > 0 {
		// the route expects a JSON array literal
		b, _ := json.Marshal(f.Genres)
		params.Set("genres", string(b))
	}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	if f.Season != "" {
		params.Set("season", f.Season)
	}
	if f.Year > 0 {
		params.Set("year", strconv.Itoa(f.Year))
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 24
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("perPage", strconv.Itoa(perPage))

	var resp consumetPage
	if err := c.get(ctx, "/meta/anilist/advanced-search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("consumet: advanced search: %w", err)
	}
	return c.toAnimeList(resp.Results), nil
}

// RecentEpisodes fetches recently released episodes.
func (c *Consumet) RecentEpisodes(ctx context.Context, page, perPage int) ([]models.Anime, error) {
	var resp consumetPage
	endpoint := fmt.Sprintf("/meta/anilist/recent-episodes?page=%d&perPage=%d", page, perPage)
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("consumet: recent episodes: %w", err)
	}
	return c.toAnimeList(resp.Results), nil
}

// WeeklySchedule fetches the airing schedule for the week.
func (c *Consumet) WeeklySchedule(ctx context.Context) ([]models.ScheduleItem, error) {
	var resp consumetAiringPage
	if err := c.get(ctx, "/meta/anilist/airing-schedule?page=1&perPage=100", &resp); err != nil {
		return nil, fmt.Errorf("consumet: weekly schedule: %w", err)
	}

	items := make([]models.ScheduleItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		title := r.Title.Romaji
		if title == "" {
			title = r.Title.UserPreferred
		}
		malID := r.MalID
		if malID == 0 {
			malID, _ = strconv.Atoi(r.ID)
		}
		episode := r.Episode
		if episode < 1 {
			episode = 1
		}
		items = append(items, models.ScheduleItem{
			ID:           r.ID,
			MalID:        malID,
			Title:        title,
			TitleEnglish: firstNonBlank(r.Title.English, r.Title.Romaji),
			Poster:       r.Image,
			Episode:      episode,
			AiringAt:     r.AiringAt,
			DayOfWeek:    int(time.Unix(r.AiringAt, 0).UTC().Weekday()),
		})
	}
	return items, nil
}

func (c *Consumet) toAnimeList(results []consumetAnime) []models.Anime {
	out := make([]models.Anime, 0, len(results))
	for _, item := range results {
		out = append(out, c.toAnime(item))
	}
	return out
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
