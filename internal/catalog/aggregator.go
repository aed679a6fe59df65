// Package catalog aggregates several public anime catalog APIs behind
// one operation surface. Each operation tries its providers in a fixed
// priority order and returns the first usable result; provider failures
// are logged and swallowed so callers always get best-effort data.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"anihub/internal/fetch"
	"anihub/pkg/models"
)

// ErrNotFound is returned by single-item lookups once every provider
// has been exhausted.
var ErrNotFound = errors.New("anime not found in any source")

// Options configures the provider endpoints. Empty fields fall back to
// the public instances.
type Options struct {
	JikanBase     string
	AniListBase   string
	KitsuBase     string
	ConsumetBase  string
	ShikimoriBase string

	// Stagger is the per-index delay applied across the related-anime
	// poster enrichment batch. Defaults to 150ms.
	Stagger time.Duration
}

// Service is the aggregator. One instance holds one adapter per
// provider, each with its own rate limiter.
type Service struct {
	jikan     *Jikan
	anilist   *AniList
	kitsu     *Kitsu
	consumet  *Consumet
	shikimori *Shikimori

	stagger time.Duration
	sleep   func(context.Context, time.Duration) error
}

func NewService(client *fetch.Client, opts Options) *Service {
	stagger := opts.Stagger
	if stagger <= 0 {
		stagger = 150 * time.Millisecond
	}
	return &Service{
		jikan:     NewJikan(client, opts.JikanBase),
		anilist:   NewAniList(client, opts.AniListBase),
		kitsu:     NewKitsu(client, opts.KitsuBase),
		consumet:  NewConsumet(client, opts.ConsumetBase),
		shikimori: NewShikimori(client, opts.ShikimoriBase),
		stagger:   stagger,
		sleep:     sleepCtx,
	}
}

// attempt is one provider call within a fallback chain.
type attempt[T any] struct {
	source string
	run    func(context.Context) (T, error)
}

// tryEach walks the chain in order and returns the first result that
// passes usable. Failures are logged and skipped; the chain never
// re-attempts a provider (each adapter already retries internally).
func tryEach[T any](ctx context.Context, op string, attempts []attempt[T], usable func(T) bool) (T, bool) {
	var zero T
	for _, att := range attempts {
		result, err := att.run(ctx)
		if err != nil {
			log.Printf("[catalog] %s: %s failed: %v", op, att.source, err)
			continue
		}
		if usable == nil || usable(result) {
			return result, true
		}
	}
	return zero, false
}

func nonEmpty(list []models.Anime) bool { return len(list) > 0 }

// AnimeByID resolves one anime, trying Jikan (most complete data),
// then AniList, then Kitsu. Returns ErrNotFound when all three fail.
func (s *Service) AnimeByID(ctx context.Context, id int) (*models.Anime, error) {
	result, ok := tryEach(ctx, "anime_by_id", []attempt[*models.Anime]{
		{"jikan", func(ctx context.Context) (*models.Anime, error) { return s.jikan.AnimeByID(ctx, id) }},
		{"anilist", func(ctx context.Context) (*models.Anime, error) { return s.anilist.AnimeByID(ctx, id) }},
		{"kitsu", func(ctx context.Context) (*models.Anime, error) { return s.kitsu.AnimeByID(ctx, id) }},
	}, func(a *models.Anime) bool { return a != nil })
	if !ok {
		return nil, fmt.Errorf("anime %d: %w", id, ErrNotFound)
	}

	processed := ProcessAnime(*result)
	return &processed, nil
}

// Search tries Consumet first (it aggregates several sources itself),
// then Jikan, AniList and Kitsu. Exhaustion yields an empty list.
func (s *Service) Search(ctx context.Context, query string, limit int) []models.Anime {
	if limit <= 0 {
		limit = 24
	}
	results, _ := tryEach(ctx, "search", []attempt[[]models.Anime]{
		{"consumet", func(ctx context.Context) ([]models.Anime, error) { return s.consumet.Search(ctx, query, 1, limit) }},
		{"jikan", func(ctx context.Context) ([]models.Anime, error) { return s.jikan.Search(ctx, query, limit) }},
		{"anilist", func(ctx context.Context) ([]models.Anime, error) { return s.anilist.Search(ctx, query, limit) }},
		{"kitsu", func(ctx context.Context) ([]models.Anime, error) { return s.kitsu.Search(ctx, query, limit) }},
	}, nonEmpty)
	return ProcessAnimeList(results)
}

// Top returns the top-rated list: Consumet, then AniList (banner
// images), then Jikan, then Kitsu.
func (s *Service) Top(ctx context.Context, page, limit int) []models.Anime {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 24
	}
	results, _ := tryEach(ctx, "top", []attempt[[]models.Anime]{
		{"consumet", func(ctx context.Context) ([]models.Anime, error) { return s.consumet.Popular(ctx, page, limit) }},
		{"anilist", func(ctx context.Context) ([]models.Anime, error) { return s.anilist.Top(ctx, limit) }},
		{"jikan", func(ctx context.Context) ([]models.Anime, error) { return s.jikan.Top(ctx, page, limit) }},
		{"kitsu", func(ctx context.Context) ([]models.Anime, error) { return s.kitsu.Top(ctx, limit) }},
	}, nonEmpty)
	return ProcessAnimeList(results)
}

// Seasonal returns the currently airing season: Jikan, then AniList.
func (s *Service) Seasonal(ctx context.Context) []models.Anime {
	results, _ := tryEach(ctx, "seasonal", []attempt[[]models.Anime]{
		{"jikan", func(ctx context.Context) ([]models.Anime, error) { return s.jikan.Seasonal(ctx) }},
		{"anilist", func(ctx context.Context) ([]models.Anime, error) { return s.anilist.Seasonal(ctx) }},
	}, nonEmpty)
	return ProcessAnimeList(results)
}

// Trending returns what is hot right now: Consumet, then Kitsu, then
// the top list as a last resort.
func (s *Service) Trending(ctx context.Context, page, limit int) []models.Anime {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 24
	}
	results, ok := tryEach(ctx, "trending", []attempt[[]models.Anime]{
		{"consumet", func(ctx context.Context) ([]models.Anime, error) { return s.consumet.Trending(ctx, page, limit) }},
		{"kitsu", func(ctx context.Context) ([]models.Anime, error) { return s.kitsu.Trending(ctx, limit) }},
	}, nonEmpty)
	if !ok {
		return s.Top(ctx, 1, limit)
	}
	return ProcessAnimeList(results)
}

// AdvancedSearch runs a filtered query against Consumet; when that
// fails it degrades to basic search (with a query) or the top list.
func (s *Service) AdvancedSearch(ctx context.Context, f AdvancedSearchFilters) []models.Anime {
	results, err := s.consumet.AdvancedSearch(ctx, f)
	if err != nil {
		log.Printf("[catalog] advanced_search: consumet failed: %v", err)
		perPage := f.PerPage
		if perPage <= 0 {
			perPage = 24
		}
		if f.Query != "" {
			return s.Search(ctx, f.Query, perPage)
		}
		return s.Top(ctx, f.Page, perPage)
	}
	return ProcessAnimeList(results)
}

// SeasonArchive lists a past season: Shikimori first (its archive goes
// deep), Jikan as fallback.
func (s *Service) SeasonArchive(ctx context.Context, year int, season string) []models.Anime {
	results, _ := tryEach(ctx, "season_archive", []attempt[[]models.Anime]{
		{"shikimori", func(ctx context.Context) ([]models.Anime, error) { return s.shikimori.Season(ctx, year, season, 50) }},
		{"jikan", func(ctx context.Context) ([]models.Anime, error) { return s.jikan.Season(ctx, year, season) }},
	}, nonEmpty)
	return ProcessAnimeList(results)
}

// RecentEpisodes lists recently released episodes, degrading to the
// seasonal list when Consumet is down.
func (s *Service) RecentEpisodes(ctx context.Context, page, limit int) []models.Anime {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 24
	}
	results, err := s.consumet.RecentEpisodes(ctx, page, limit)
	if err != nil {
		log.Printf("[catalog] recent_episodes: consumet failed: %v", err)
		return s.Seasonal(ctx)
	}
	return ProcessAnimeList(results)
}

// Recommendations is Jikan-only; failure yields an empty list.
func (s *Service) Recommendations(ctx context.Context, id int) []models.Anime {
	results, err := s.jikan.Recommendations(ctx, id)
	if err != nil {
		log.Printf("[catalog] recommendations: jikan failed: %v", err)
		return []models.Anime{}
	}
	return ProcessAnimeList(results)
}

// Random picks count random titles from the top 100.
func (s *Service) Random(ctx context.Context, count int) []models.Anime {
	if count < 1 {
		count = 1
	}
	top := s.Top(ctx, 1, 100)
	if len(top) == 0 {
		return top
	}
	rand.Shuffle(len(top), func(i, j int) { top[i], top[j] = top[j], top[i] })
	if count > len(top) {
		count = len(top)
	}
	return top[:count]
}

// PopularSchedule returns the broadcast slots of the most-followed
// ongoing shows (Jikan-only; failure yields an empty list).
func (s *Service) PopularSchedule(ctx context.Context) []models.BroadcastItem {
	items, err := s.jikan.Broadcast(ctx)
	if err != nil {
		log.Printf("[catalog] popular_schedule: jikan failed: %v", err)
		return []models.BroadcastItem{}
	}
	return items
}

// WeeklySchedule returns the full airing schedule for the week
// (Consumet-only; failure yields an empty list).
func (s *Service) WeeklySchedule(ctx context.Context) []models.ScheduleItem {
	items, err := s.consumet.WeeklySchedule(ctx)
	if err != nil {
		log.Printf("[catalog] weekly_schedule: consumet failed: %v", err)
		return []models.ScheduleItem{}
	}
	return items
}
