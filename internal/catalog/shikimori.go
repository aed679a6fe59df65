package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"anihub/internal/fetch"
	"anihub/internal/ratelimit"
	"anihub/pkg/models"
)

// DefaultShikimoriBase is the Shikimori REST API root. The site behind
// it serves image paths relative to its own host.
const (
	DefaultShikimoriBase = "https://shikimori.one/api"
	shikimoriSite        = "https://shikimori.one"
)

const shikimoriRate = 5

// Shikimori wraps the Shikimori REST API, used for per-season archive
// listings the other providers cover poorly.
type Shikimori struct {
	base    string
	site    string
	client  *fetch.Client
	limiter *ratelimit.Limiter
}

func NewShikimori(client *fetch.Client, base string) *Shikimori {
	site := shikimoriSite
	if base == "" {
		base = DefaultShikimoriBase
	} else {
		site = strings.TrimSuffix(strings.TrimRight(base, "/"), "/api")
	}
	return &Shikimori{
		base:    strings.TrimRight(base, "/"),
		site:    site,
		client:  client,
		limiter: ratelimit.New(shikimoriRate),
	}
}

func (s *Shikimori) Name() string { return "shikimori" }

type shikimoriAnime struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Russian string `json:"russian"`
	Image   struct {
		Original string `json:"original"`
		Preview  string `json:"preview"`
	} `json:"image"`
	Kind string `json:"kind"`
	// serialized as a string by some API versions, a number by others
	Score         json.Number `json:"score"`
	Status        string      `json:"status"`
	AiredOn       string   `json:"aired_on"`
	Episodes      int      `json:"episodes"`
	English       []string `json:"english"`
	MyAnimeListID int      `json:"myanimelist_id"`
}

func (s *Shikimori) toAnime(data shikimoriAnime) models.Anime {
	malID := data.MyAnimeListID
	if malID == 0 {
		// shikimori ids mirror MAL ids for almost all entries
		malID = data.ID
	}

	poster := data.Image.Original
	if poster == "" {
		poster = data.Image.Preview
	}
	if poster != "" && !strings.HasPrefix(poster, "http") {
		poster = s.site + poster
	}

	titleEnglish := ""
	if len(data.English) > 0 {
		titleEnglish = data.English[0]
	}

	score, _ := data.Score.Float64()

	return models.Anime{
		ID:           strconv.Itoa(data.ID),
		MalID:        malID,
		Title:        data.Name,
		TitleEnglish: titleEnglish,
		Poster:       poster,
		PosterLarge:  poster,
		Year:         ExtractYear(data.AiredOn),
		Status:       NormalizeStatus(data.Status),
		Type:         NormalizeType(data.Kind),
		Episodes:     data.Episodes,
		Score:        NormalizeScore(score, 10),
		Genres:       []string{},
		Studios:      []string{},
		// shikimori ids live in MAL's id space, so tag accordingly
		Source: models.SourceJikan,
	}
}

func (s *Shikimori) list(ctx context.Context, params url.Values) ([]models.Anime, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp []shikimoriAnime
	if err := s.client.GetJSON(ctx, s.base+"/animes?"+params.Encode(), fetch.DefaultTTL, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Anime, 0, len(resp))
	for _, item := range resp {
		out = append(out, s.toAnime(item))
	}
	return out, nil
}

// Season fetches the archive for a given year and season.
func (s *Shikimori) Season(ctx context.Context, year int, season string, limit int) ([]models.Anime, error) {
	params := url.Values{}
	params.Set("season", fmt.Sprintf("%d_%s", year, strings.ToLower(season)))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order", "popularity")

	out, err := s.list(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("shikimori: season %d/%s: %w", year, season, err)
	}
	return out, nil
}

// Airing fetches currently ongoing shows, popularity-ordered.
func (s *Shikimori) Airing(ctx context.Context, limit int) ([]models.Anime, error) {
	params := url.Values{}
	params.Set("status", "ongoing")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order", "popularity")

	out, err := s.list(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("shikimori: airing: %w", err)
	}
	return out, nil
}

// Search queries anime by name.
func (s *Shikimori) Search(ctx context.Context, query string, limit int) ([]models.Anime, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(limit))

	out, err := s.list(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("shikimori: search %q: %w", query, err)
	}
	return out, nil
}
