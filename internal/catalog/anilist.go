package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"anihub/internal/fetch"
	"anihub/internal/ratelimit"
	"anihub/pkg/models"
)

// DefaultAniListBase is the AniList GraphQL endpoint.
const DefaultAniListBase = "https://graphql.anilist.co"

const anilistRate = 30

// AniList wraps the AniList GraphQL API. Each operation carries its own
// query template; a single catch-all query would over-fetch on the
// cheap list operations.
type AniList struct {
	base    string
	client  *fetch.Client
	limiter *ratelimit.Limiter
	now     func() time.Time
}

func NewAniList(client *fetch.Client, base string) *AniList {
	if base == "" {
		base = DefaultAniListBase
	}
	return &AniList{
		base:    base,
		client:  client,
		limiter: ratelimit.New(anilistRate),
		now:     time.Now,
	}
}

func (a *AniList) Name() string { return "anilist" }

const anilistByIDQuery = `query ($id: Int) {
  Media(id: $id, type: ANIME) {
    id idMal
    title { romaji english native }
    description
    coverImage { large extraLarge }
    bannerImage
    episodes duration status season seasonYear format
    averageScore popularity genres
    studios { nodes { name } }
    trailer { id site }
    nextAiringEpisode { episode airingAt }
  }
}`

const anilistSearchQuery = `query ($search: String, $perPage: Int) {
  Page(perPage: $perPage) {
    media(search: $search, type: ANIME, sort: POPULARITY_DESC) {
      id idMal
      title { romaji english native }
      coverImage { large extraLarge }
      episodes status season seasonYear format averageScore genres
    }
  }
}`

const anilistTopQuery = `query ($perPage: Int) {
  Page(perPage: $perPage) {
    media(type: ANIME, sort: SCORE_DESC) {
      id idMal
      title { romaji english native }
      description
      coverImage { large extraLarge }
      bannerImage
      episodes status seasonYear format averageScore popularity genres
    }
  }
}`

const anilistSeasonalQuery = `query ($season: MediaSeason, $seasonYear: Int, $perPage: Int) {
  Page(perPage: $perPage) {
    media(season: $season, seasonYear: $seasonYear, type: ANIME, sort: POPULARITY_DESC) {
      id idMal
      title { romaji english native }
      coverImage { large extraLarge }
      episodes status season seasonYear format averageScore genres
    }
  }
}`

const anilistPosterQuery = `query ($malId: Int) {
  Media(idMal: $malId, type: ANIME) {
    coverImage { large extraLarge }
  }
}`

type anilistMedia struct {
	ID    int `json:"id"`
	IDMal int `json:"idMal"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	Description string `json:"description"`
	CoverImage  struct {
		Large      string `json:"large"`
		ExtraLarge string `json:"extraLarge"`
	} `json:"coverImage"`
	BannerImage  string   `json:"bannerImage"`
	Episodes     int      `json:"episodes"`
	Duration     int      `json:"duration"`
	Status       string   `json:"status"`
	Season       string   `json:"season"`
	SeasonYear   int      `json:"seasonYear"`
	Format       string   `json:"format"`
	AverageScore float64  `json:"averageScore"`
	Popularity   int      `json:"popularity"`
	Genres       []string `json:"genres"`
	Studios      struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"studios"`
	Trailer struct {
		ID   string `json:"id"`
		Site string `json:"site"`
	} `json:"trailer"`
	NextAiringEpisode *struct {
		Episode  int   `json:"episode"`
		AiringAt int64 `json:"airingAt"`
	} `json:"nextAiringEpisode"`
}

type anilistMediaResp struct {
	Data struct {
		Media *anilistMedia `json:"Media"`
	} `json:"data"`
}

type anilistPageResp struct {
	Data struct {
		Page struct {
			Media []anilistMedia `json:"media"`
		} `json:"Page"`
	} `json:"data"`
}

// anilist statuses are a closed vocabulary, so this stays an explicit
// table rather than going through the substring matcher
var anilistStatus = map[string]string{
	"FINISHED":         models.StatusCompleted,
	"RELEASING":        models.StatusOngoing,
	"NOT_YET_RELEASED": models.StatusAnnounced,
	"CANCELLED":        models.StatusCompleted,
	"HIATUS":           models.StatusOngoing,
}

func (a *AniList) toAnime(m anilistMedia) models.Anime {
	id := m.IDMal
	if id == 0 {
		id = m.ID
	}

	status, ok := anilistStatus[m.Status]
	if !ok {
		status = models.StatusAnnounced
	}

	poster := m.CoverImage.ExtraLarge
	if poster == "" {
		poster = m.CoverImage.Large
	}

	studios := make([]string, 0, len(m.Studios.Nodes))
	for _, s := range m.Studios.Nodes {
		studios = append(studios, s.Name)
	}
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}

	out := models.Anime{
		ID:            strconv.Itoa(id),
		MalID:         m.IDMal,
		AnilistID:     m.ID,
		Title:         m.Title.Romaji,
		TitleOriginal: m.Title.Native,
		TitleEnglish:  m.Title.English,
		Poster:        poster,
		PosterLarge:   m.CoverImage.Large,
		Banner:        m.BannerImage,
		Description:   StripHTMLTags(m.Description),
		Year:          m.SeasonYear,
		Season:        NormalizeSeason(m.Season),
		Status:        status,
		Type:          NormalizeType(m.Format),
		Episodes:      m.Episodes,
		Duration:      m.Duration,
		Score:         NormalizeScore(m.AverageScore, 100),
		Popularity:    m.Popularity,
		Genres:        genres,
		Studios:       studios,
		Source:        models.SourceAniList,
	}
	if m.Trailer.ID != "" {
		out.Trailer = &models.Trailer{ID: m.Trailer.ID, Site: m.Trailer.Site}
	}
	if m.NextAiringEpisode != nil {
		out.NextAiringEpisode = &models.NextEpisode{
			Episode:  m.NextAiringEpisode.Episode,
			AiringAt: m.NextAiringEpisode.AiringAt,
		}
	}
	return out
}

func (a *AniList) query(ctx context.Context, query string, variables map[string]any, ttl time.Duration, out any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	payload := map[string]any{"query": query, "variables": variables}
	return a.client.PostJSON(ctx, a.base, payload, ttl, out)
}

// AnimeByID looks up one anime by AniList id.
func (a *AniList) AnimeByID(ctx context.Context, id int) (*models.Anime, error) {
	var resp anilistMediaResp
	if err := a.query(ctx, anilistByIDQuery, map[string]any{"id": id}, fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("anilist: anime %d: %w", id, err)
	}
	if resp.Data.Media == nil {
		return nil, fmt.Errorf("anilist: anime %d: not found", id)
	}
	anime := a.toAnime(*resp.Data.Media)
	return &anime, nil
}

// Search queries anime by text, popularity-ordered.
func (a *AniList) Search(ctx context.Context, query string, limit int) ([]models.Anime, error) {
	var resp anilistPageResp
	vars := map[string]any{"search": query, "perPage": limit}
	if err := a.query(ctx, anilistSearchQuery, vars, fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("anilist: search %q: %w", query, err)
	}
	return a.toAnimeList(resp.Data.Page.Media), nil
}

// Top fetches the highest-scored anime.
func (a *AniList) Top(ctx context.Context, limit int) ([]models.Anime, error) {
	var resp anilistPageResp
	if err := a.query(ctx, anilistTopQuery, map[string]any{"perPage": limit}, fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("anilist: top: %w", err)
	}
	return a.toAnimeList(resp.Data.Page.Media), nil
}

// Seasonal fetches the season currently on air.
func (a *AniList) Seasonal(ctx context.Context) ([]models.Anime, error) {
	now := a.now()
	season := seasonOfMonth(int(now.Month()))

	var resp anilistPageResp
	vars := map[string]any{"season": season, "seasonYear": now.Year(), "perPage": 24}
	if err := a.query(ctx, anilistSeasonalQuery, vars, fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("anilist: seasonal: %w", err)
	}
	return a.toAnimeList(resp.Data.Page.Media), nil
}

// PosterByMalID resolves a poster through AniList's MAL cross-reference.
func (a *AniList) PosterByMalID(ctx context.Context, malID int) (string, error) {
	var resp anilistMediaResp
	if err := a.query(ctx, anilistPosterQuery, map[string]any{"malId": malID}, fetch.PosterTTL, &resp); err != nil {
		return "", fmt.Errorf("anilist: poster %d: %w", malID, err)
	}
	if resp.Data.Media == nil {
		return "", fmt.Errorf("anilist: poster %d: not found", malID)
	}
	img := resp.Data.Media.CoverImage.ExtraLarge
	if img == "" {
		img = resp.Data.Media.CoverImage.Large
	}
	if img == "" {
		return "", fmt.Errorf("anilist: poster %d: no image", malID)
	}
	return img, nil
}

func (a *AniList) toAnimeList(media []anilistMedia) []models.Anime {
	out := make([]models.Anime, 0, len(media))
	for _, m := range media {
		out = append(out, a.toAnime(m))
	}
	return out
}

func seasonOfMonth(month int) string {
	switch {
	case month <= 3:
		return "WINTER"
	case month <= 6:
		return "SPRING"
	case month <= 9:
		return "SUMMER"
	default:
		return "FALL"
	}
}
