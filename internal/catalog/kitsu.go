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

// DefaultKitsuBase is the public Kitsu JSON:API edge.
const DefaultKitsuBase = "https://kitsu.io/api/edge"

const kitsuRate = 5

// Kitsu wraps the Kitsu JSON:API. Mostly a fallback source; its scores
// arrive as a 0-100 string and need parsing before normalization.
type Kitsu struct {
	base    string
	client  *fetch.Client
	limiter *ratelimit.Limiter
}

func NewKitsu(client *fetch.Client, base string) *Kitsu {
	if base == "" {
		base = DefaultKitsuBase
	}
	return &Kitsu{
		base:    strings.TrimRight(base, "/"),
		client:  client,
		limiter: ratelimit.New(kitsuRate),
	}
}

func (k *Kitsu) Name() string { return "kitsu" }

type kitsuAnime struct {
	ID         string `json:"id"`
	Attributes struct {
		CanonicalTitle string `json:"canonicalTitle"`
		Titles         struct {
			En   string `json:"en"`
			EnJp string `json:"en_jp"`
			JaJp string `json:"ja_jp"`
		} `json:"titles"`
		Synopsis      string `json:"synopsis"`
		Description   string `json:"description"`
		StartDate     string `json:"startDate"`
		EndDate       string `json:"endDate"`
		Status        string `json:"status"`
		ShowType      string `json:"showType"`
		EpisodeCount  int    `json:"episodeCount"`
		EpisodeLength int    `json:"episodeLength"`
		AverageRating  string `json:"averageRating"`
		PopularityRank int    `json:"popularityRank"`
		RatingRank     int    `json:"ratingRank"`
		YoutubeVideoID string `json:"youtubeVideoId"`
		PosterImage    struct {
			Large    string `json:"large"`
			Original string `json:"original"`
		} `json:"posterImage"`
		CoverImage struct {
			Large    string `json:"large"`
			Original string `json:"original"`
		} `json:"coverImage"`
	} `json:"attributes"`
}

type kitsuSingle struct {
	Data kitsuAnime `json:"data"`
}

type kitsuList struct {
	Data []kitsuAnime `json:"data"`
}

func (k *Kitsu) toAnime(data kitsuAnime) models.Anime {
	attrs := data.Attributes

	// kitsu rates on a 0-100 scale, serialized as a string
	rating, _ := strconv.ParseFloat(attrs.AverageRating, 64)

	description := attrs.Synopsis
	if description == "" {
		description = attrs.Description
	}
	poster := attrs.PosterImage.Large
	if poster == "" {
		poster = attrs.PosterImage.Original
	}
	banner := attrs.CoverImage.Large
	if banner == "" {
		banner = attrs.CoverImage.Original
	}
	titleEnglish := attrs.Titles.En
	if titleEnglish == "" {
		titleEnglish = attrs.Titles.EnJp
	}

	a := models.Anime{
		ID:            data.ID,
		KitsuID:       data.ID,
		Title:         attrs.CanonicalTitle,
		TitleOriginal: attrs.Titles.JaJp,
		TitleEnglish:  titleEnglish,
		Poster:        poster,
		PosterLarge:   attrs.PosterImage.Original,
		Banner:        banner,
		Description:   description,
		Year:          ExtractYear(attrs.StartDate),
		Status:        NormalizeStatus(attrs.Status),
		Type:          NormalizeType(attrs.ShowType),
		Episodes:      attrs.EpisodeCount,
		Duration:      attrs.EpisodeLength,
		Score:         NormalizeScore(rating, 100),
		Popularity:    attrs.PopularityRank,
		Rank:          attrs.RatingRank,
		Genres:        []string{},
		Studios:       []string{},
		Source:        models.SourceKitsu,
	}
	if attrs.StartDate != "" || attrs.EndDate != "" {
		a.Aired = &models.Aired{From: attrs.StartDate, To: attrs.EndDate}
	}
	if attrs.YoutubeVideoID != "" {
		a.Trailer = &models.Trailer{ID: attrs.YoutubeVideoID, Site: "youtube"}
	}
	return a
}

// AnimeByID looks up one anime by Kitsu id.
func (k *Kitsu) AnimeByID(ctx context.Context, id int) (*models.Anime, error) {
	if err := k.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp kitsuSingle
	if err := k.client.GetJSON(ctx, fmt.Sprintf("%s/anime/%d", k.base, id), fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("kitsu: anime %d: %w", id, err)
	}
	if resp.Data.ID == "" {
		return nil, fmt.Errorf("kitsu: anime %d: empty payload", id)
	}
	anime := k.toAnime(resp.Data)
	return &anime, nil
}

// Search queries anime by text.
func (k *Kitsu) Search(ctx context.Context, query string, limit int) ([]models.Anime, error) {
	if err := k.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("filter[text]", query)
	params.Set("page[limit]", strconv.Itoa(limit))

	var resp kitsuList
	if err := k.client.GetJSON(ctx, k.base+"/anime?"+params.Encode(), fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("kitsu: search %q: %w", query, err)
	}
	return k.toAnimeList(resp.Data), nil
}

// Top fetches the highest-rated anime.
func (k *Kitsu) Top(ctx context.Context, limit int) ([]models.Anime, error) {
	if err := k.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("sort", "-averageRating")
	params.Set("page[limit]", strconv.Itoa(limit))

	var resp kitsuList
	if err := k.client.GetJSON(ctx, k.base+"/anime?"+params.Encode(), fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("kitsu: top: %w", err)
	}
	return k.toAnimeList(resp.Data), nil
}

// Trending fetches Kitsu's trending list.
func (k *Kitsu) Trending(ctx context.Context, limit int) ([]models.Anime, error) {
	if err := k.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("page[limit]", strconv.Itoa(limit))

	var resp kitsuList
	if err := k.client.GetJSON(ctx, k.base+"/trending/anime?"+params.Encode(), fetch.DefaultTTL, &resp); err != nil {
		return nil, fmt.Errorf("kitsu: trending: %w", err)
	}
	return k.toAnimeList(resp.Data), nil
}

// PosterByTitle searches by title text and returns the first match's
// poster. Least reliable of the poster sources; used last.
func (k *Kitsu) PosterByTitle(ctx context.Context, title string) (string, error) {
	if err := k.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("filter[text]", title)
	params.Set("page[limit]", "1")

	var resp kitsuList
	if err := k.client.GetJSON(ctx, k.base+"/anime?"+params.Encode(), fetch.PosterTTL, &resp); err != nil {
		return "", fmt.Errorf("kitsu: poster %q: %w", title, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].Attributes.PosterImage.Large == "" {
		return "", fmt.Errorf("kitsu: poster %q: no image", title)
	}
	return resp.Data[0].Attributes.PosterImage.Large, nil
}

func (k *Kitsu) toAnimeList(data []kitsuAnime) []models.Anime {
	out := make([]models.Anime, 0, len(data))
	for _, item := range data {
		out = append(out, k.toAnime(item))
	}
	return out
}
