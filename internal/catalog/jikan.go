package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"anihub/internal/fetch"
	"anihub/internal/ratelimit"
	"anihub/pkg/models"
)

// DefaultJikanBase is the public Jikan v4 instance (unofficial
// MyAnimeList API). Strictest rate limit of the bunch: 3 req/sec.
const DefaultJikanBase = "https://api.jikan.moe/v4"

const jikanRate = 3

// Jikan wraps the Jikan REST API. It is the primary source for by-id
// lookups, recommendations, relations and the broadcast schedule.
type Jikan struct {
	base    string
	client  *fetch.Client
	limiter *ratelimit.Limiter
}

func NewJikan(client *fetch.Client, base string) *Jikan {
	if base == "" {
		base = DefaultJikanBase
	}
	return &Jikan{
		base:    strings.TrimRight(base, "/"),
		client:  client,
		limiter: ratelimit.New(jikanRate),
	}
}

func (j *Jikan) Name() string { return "jikan" }

// raw response shapes

type jikanAnime struct {
	MalID         int    `json:"mal_id"`
	Title         string `json:"title"`
	TitleEnglish  string `json:"title_english"`
	TitleJapanese string `json:"title_japanese"`
	Images        struct {
		JPG  jikanImageSet `json:"jpg"`
		WebP jikanImageSet `json:"webp"`
	} `json:"images"`
	Trailer struct {
		YoutubeID string `json:"youtube_id"`
		URL       string `json:"url"`
	} `json:"trailer"`
	Synopsis   string `json:"synopsis"`
	Background string `json:"background"`
	Type       string `json:"type"`
	SourceType string `json:"source"`
	Episodes   int    `json:"episodes"`
	Status     string `json:"status"`
	Duration   string `json:"duration"`
	Rating     string `json:"rating"`
	Score      float64 `json:"score"`
	ScoredBy   int    `json:"scored_by"`
	Rank       int    `json:"rank"`
	Popularity int    `json:"popularity"`
	Members    int    `json:"members"`
	Season     string `json:"season"`
	Year       int    `json:"year"`
	URL        string `json:"url"`
	Aired      struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"aired"`
	Broadcast struct {
		Day  string `json:"day"`
		Time string `json:"time"`
	} `json:"broadcast"`
	Genres       []jikanNamed `json:"genres"`
	Themes       []jikanNamed `json:"themes"`
	Studios      []jikanNamed `json:"studios"`
}

type jikanImageSet struct {
	ImageURL      string `json:"image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type jikanNamed struct {
	Name string `json:"name"`
}

type jikanSingle struct {
	Data jikanAnime `json:"data"`
}

type jikanPage struct {
	Data []jikanAnime `json:"data"`
}

// JikanRelationGroup is one relation category with its entries, as the
// relations endpoint returns them.
type JikanRelationGroup struct {
	Relation string `json:"relation"`
	Entry    []struct {
		MalID int    `json:"mal_id"`
		Type  string `json:"type"`
		Name  string `json:"name"`
		URL   string `json:"url"`
	} `json:"entry"`
}

type jikanRelationsResp struct {
	Data []JikanRelationGroup `json:"data"`
}

type jikanRecommendationsResp struct {
	Data []struct {
		Entry struct {
			MalID  int    `json:"mal_id"`
			Title  string `json:"title"`
			URL    string `json:"url"`
			Images struct {
				JPG  jikanImageSet `json:"jpg"`
				WebP jikanImageSet `json:"webp"`
			} `json:"images"`
		} `json:"entry"`
	} `json:"data"`
}

func (j *Jikan) toAnime(data jikanAnime) models.Anime {
	poster := data.Images.WebP.LargeImageURL
	if poster == "" {
		poster = data.Images.JPG.LargeImageURL
	}
	if poster == "" {
		poster = data.Images.JPG.ImageURL
	}

	year := data.Year
	if year == 0 {
		year = ExtractYear(data.Aired.From)
	}

	// jikan reports duration as "24 min per ep"
	duration := 0
	if data.Duration != "" {
		if n, err := strconv.Atoi(strings.Fields(data.Duration)[0]); err == nil {
			duration = n
		}
	}

	genres := make([]string, 0, len(data.Genres)+len(data.Themes))
	for _, g := range data.Genres {
		genres = append(genres, g.Name)
	}
	for _, t := range data.Themes {
		genres = append(genres, t.Name)
	}
	studios := make([]string, 0, len(data.Studios))
	for _, s := range data.Studios {
		studios = append(studios, s.Name)
	}

	a := models.Anime{
		ID:            strconv.Itoa(data.MalID),
		MalID:         data.MalID,
		Title:         data.Title,
		TitleOriginal: data.TitleJapanese,
		TitleEnglish:  data.TitleEnglish,
		Poster:        poster,
		PosterLarge:   poster,
		Description:   data.Synopsis,
		Background:    data.Background,
		Year:          year,
		Season:        NormalizeSeason(data.Season),
		Status:        NormalizeStatus(data.Status),
		Type:          NormalizeType(data.Type),
		Episodes:      data.Episodes,
		Duration:      duration,
		Score:         NormalizeScore(data.Score, 10),
		ScoredBy:      data.ScoredBy,
		Rank:          data.Rank,
		Popularity:    data.Popularity,
		Genres:        genres,
		Studios:       studios,
		Rating:        data.Rating,
		SourceType:    data.SourceType,
		URL:           data.URL,
		Source:        models.SourceJikan,
	}
	if data.Aired.From != "" || data.Aired.To != "" {
		a.Aired = &models.Aired{From: data.Aired.From, To: data.Aired.To}
	}
	if data.Trailer.YoutubeID != "" {
		a.Trailer = &models.Trailer{
			ID:   data.Trailer.YoutubeID,
			URL:  data.Trailer.URL,
			Site: "youtube",
		}
	}
	return a
}

// AnimeByID fetches one anime through the /full endpoint and tries to
// enrich it with a seasons list from the relation graph. The secondary
// call is best-effort: its failure never fails the lookup.
func (j *Jikan) AnimeByID(ctx context.Context, id int) (*models.Anime, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp jikanSingle
	if err := j.client.GetJSON(ctx, fmt.Sprintf("%s/anime/%d/full", j.base, id), fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("jikan: anime %d: %w", id, err)
	}
	if resp.Data.MalID == 0 {
		return nil, fmt.Errorf("jikan: anime %d: empty payload", id)
	}

	anime := j.toAnime(resp.Data)
	if seasons, err := j.seasons(ctx, id); err == nil && len(seasons) > 0 {
		anime.Seasons = seasons
	}
	return &anime, nil
}

// seasons derives prequel/sequel references from the relation graph.
func (j *Jikan) seasons(ctx context.Context, id int) ([]models.SeasonRef, error) {
	groups, err := j.Relations(ctx, id)
	if err != nil {
		return nil, err
	}

	var seasons []models.SeasonRef
	for _, group := range groups {
		if group.Relation != "Sequel" && group.Relation != "Prequel" {
			continue
		}
		for _, entry := range group.Entry {
			if entry.Type != "anime" {
				continue
			}
			number := 1
			if group.Relation == "Sequel" {
				number = 2
			}
			seasons = append(seasons, models.SeasonRef{
				ID:     entry.MalID,
				Number: number,
				Title:  entry.Name,
				MalID:  entry.MalID,
			})
		}
	}
	return seasons, nil
}

// Relations fetches the raw relation graph for an anime.
func (j *Jikan) Relations(ctx context.Context, id int) ([]JikanRelationGroup, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp jikanRelationsResp
	if err := j.client.GetJSON(ctx, fmt.Sprintf("%s/anime/%d/relations", j.base, id), fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("jikan: relations %d: %w", id, err)
	}
	return resp.Data, nil
}

// Search queries anime by text, popularity-ordered.
func (j *Jikan) Search(ctx context.Context, query string, limit int) ([]models.Anime, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order_by", "popularity")
	params.Set("sort", "asc")

	var resp jikanPage
	if err := j.client.GetJSON(ctx, j.base+"/anime?"+params.Encode(), fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("jikan: search %q: %w", query, err)
	}
	return j.toAnimeList(resp.Data), nil
}

// Top fetches the top-rated anime page.
func (j *Jikan) Top(ctx context.Context, page, limit int) ([]models.Anime, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var resp jikanPage
	if err := j.client.GetJSON(ctx, j.base+"/top/anime?"+params.Encode(), fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("jikan: top: %w", err)
	}
	return j.toAnimeList(resp.Data), nil
}

// Seasonal fetches the currently airing season.
func (j *Jikan) Seasonal(ctx context.Context) ([]models.Anime, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp jikanPage
	if err := j.client.GetJSON(ctx, j.base+"/seasons/now?limit=24", fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("jikan: seasonal: %w", err)
	}
	return j.toAnimeList(resp.Data), nil
}

// Season fetches the archive for a specific year and season.
func (j *Jikan) Season(ctx context.Context, year int, season string) ([]models.Anime, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp jikanPage
	u := fmt.Sprintf("%s/seasons/%d/%s", j.base, year, url.PathEscape(season))
	if err := j.client.GetJSON(ctx, u, fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("jikan: season %d/%s: %w", year, season, err)
	}
	return j.toAnimeList(resp.Data), nil
}

// Recommendations returns up to 12 recommended titles for an anime.
func (j *Jikan) Recommendations(ctx context.Context, id int) ([]models.Anime, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp jikanRecommendationsResp
	if err := j.client.GetJSON(ctx, fmt.Sprintf("%s/anime/%d/recommendations", j.base, id), fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("jikan: recommendations %d: %w", id, err)
	}

	out := make([]models.Anime, 0, 12)
	for _, rec := range resp.Data {
		if len(out) == 12 {
			break
		}
		poster := rec.Entry.Images.WebP.LargeImageURL
		if poster == "" {
			poster = rec.Entry.Images.JPG.LargeImageURL
		}
		out = append(out, models.Anime{
			ID:      strconv.Itoa(rec.Entry.MalID),
			MalID:   rec.Entry.MalID,
			Title:   rec.Entry.Title,
			Poster:  poster,
			Status:  models.StatusCompleted,
			Type:    models.TypeTV,
			Genres:  []string{},
			Studios: []string{},
			URL:     rec.Entry.URL,
			Source:  models.SourceJikan,
		})
	}
	return out, nil
}

// Broadcast lists top ongoing shows that publish a broadcast slot,
// ordered by member count.
func (j *Jikan) Broadcast(ctx context.Context) ([]models.BroadcastItem, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("status", "airing")
	params.Set("order_by", "members")
	params.Set("sort", "desc")
	params.Set("limit", "100")

	var resp jikanPage
	if err := j.client.GetJSON(ctx, j.base+"/anime?"+params.Encode(), fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("jikan: broadcast: %w", err)
	}

	items := make([]models.BroadcastItem, 0, len(resp.Data))
	for _, a := range resp.Data {
		if a.Broadcast.Day == "" {
			continue
		}
		titleEnglish := a.TitleEnglish
		if titleEnglish == "" {
			titleEnglish = a.Title
		}
		broadcastTime := a.Broadcast.Time
		if broadcastTime == "" {
			broadcastTime = "00:00"
		}
		genres := make([]string, 0, len(a.Genres))
		for _, g := range a.Genres {
			genres = append(genres, g.Name)
		}
		items = append(items, models.BroadcastItem{
			ID:            a.MalID,
			MalID:         a.MalID,
			Title:         a.Title,
			TitleEnglish:  titleEnglish,
			Poster:        a.Images.JPG.LargeImageURL,
			Score:         NormalizeScore(a.Score, 10),
			Members:       a.Members,
			Episodes:      a.Episodes,
			BroadcastDay:  a.Broadcast.Day,
			BroadcastTime: broadcastTime,
			Status:        NormalizeStatus(a.Status),
			Genres:        genres,
		})
	}
	return items, nil
}

// Preview fetches the plain /anime/{id} payload (no /full, no relation
// walk). Cached on the long poster TTL since it backs batch enrichment.
func (j *Jikan) Preview(ctx context.Context, id int) (*models.Anime, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp jikanSingle
	if err := j.client.GetJSON(ctx, fmt.Sprintf("%s/anime/%d", j.base, id), fetch.PosterTTL, &resp); err != nil {
		return nil, fmt.Errorf("jikan: preview %d: %w", id, err)
	}
	if resp.Data.MalID == 0 {
		return nil, fmt.Errorf("jikan: preview %d: empty payload", id)
	}
	anime := j.toAnime(resp.Data)
	return &anime, nil
}

// PosterByID returns the large poster URL for an anime, or an error
// when the anime has none.
func (j *Jikan) PosterByID(ctx context.Context, id int) (string, error) {
	preview, err := j.Preview(ctx, id)
	if err != nil {
		return "", err
	}
	if preview.Poster == "" {
		return "", fmt.Errorf("jikan: poster %d: no image", id)
	}
	return preview.Poster, nil
}

func (j *Jikan) toAnimeList(data []jikanAnime) []models.Anime {
	out := make([]models.Anime, 0, len(data))
	for _, item := range data {
		out = append(out, j.toAnime(item))
	}
	return out
}
