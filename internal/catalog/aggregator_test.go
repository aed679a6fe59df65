package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anihub/internal/fetch"
	"anihub/internal/ratelimit"
)

// newTestService wires the aggregator at fake upstreams. Retries,
// limiter sleeps and the enrichment stagger are all disabled so tests
// run instantly.
func newTestService(t *testing.T, jikan, anilist, kitsu, consumet, shikimori http.Handler) *Service {
	t.Helper()

	serve := func(h http.Handler) string {
		if h == nil {
			h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "unavailable", http.StatusInternalServerError)
			})
		}
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)
		return srv.URL
	}

	client := fetch.NewClient()
	client.MaxRetries = 1

	svc := NewService(client, Options{
		JikanBase:     serve(jikan),
		AniListBase:   serve(anilist),
		KitsuBase:     serve(kitsu),
		ConsumetBase:  serve(consumet),
		ShikimoriBase: serve(shikimori) + "/api",
		Stagger:       time.Nanosecond,
	})

	noSleep := func(context.Context, time.Duration) error { return nil }
	svc.sleep = noSleep
	for _, l := range []**ratelimit.Limiter{
		&svc.jikan.limiter, &svc.anilist.limiter, &svc.kitsu.limiter,
		&svc.consumet.limiter, &svc.shikimori.limiter,
	} {
		*l = ratelimit.NewWithClock(1000, time.Now, noSleep)
	}
	return svc
}

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
}

func TestAnimeByIDFallsBackToAniList(t *testing.T) {
	anilist := jsonHandler(`{"data":{"Media":{
		"id":101,"idMal":5114,
		"title":{"romaji":"Hagane no Renkinjutsushi","english":"Fullmetal Alchemist: Brotherhood"},
		"coverImage":{"large":"https://img/fma.jpg"},
		"episodes":64,"status":"FINISHED","seasonYear":2009,"format":"TV","averageScore":93
	}}}`)

	svc := newTestService(t, nil, anilist, nil, nil, nil)

	anime, err := svc.AnimeByID(context.Background(), 5114)
	require.NoError(t, err)
	assert.Equal(t, "Fullmetal Alchemist: Brotherhood", anime.Title)
	assert.Equal(t, 5114, anime.MalID)
	assert.Equal(t, "completed", anime.Status)
	assert.InDelta(t, 9.3, anime.Score, 0.001)
	assert.Equal(t, "anilist", anime.Source)
}

func TestAnimeByIDExhaustionReturnsNotFound(t *testing.T) {
	svc := newTestService(t, nil, nil, nil, nil, nil)

	_, err := svc.AnimeByID(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSearchPrefersConsumet(t *testing.T) {
	jikanHits := 0
	jikan := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jikanHits++
		w.Write([]byte(`{"data":[{"mal_id":1,"title":"from jikan"}]}`))
	})
	consumet := jsonHandler(`{"results":[{"id":"21","malId":21,
		"title":{"romaji":"One Piece"},"image":"https://img/op.jpg","rating":88}]}`)

	svc := newTestService(t, jikan, nil, nil, consumet, nil)

	results := svc.Search(context.Background(), "one piece", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "One Piece", results[0].Title)
	assert.Equal(t, 0, jikanHits, "consumet succeeded, jikan must not be consulted")
}

func TestSearchFallsBackPastEmptyResults(t *testing.T) {
	consumet := jsonHandler(`{"results":[]}`)
	jikan := jsonHandler(`{"data":[{"mal_id":30,"title":"Neon Genesis Evangelion","score":8.3}]}`)

	svc := newTestService(t, jikan, nil, nil, consumet, nil)

	results := svc.Search(context.Background(), "evangelion", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "Neon Genesis Evangelion", results[0].Title)
	assert.Equal(t, "jikan", results[0].Source)
}

func TestSearchExhaustionReturnsEmptyList(t *testing.T) {
	svc := newTestService(t, nil, nil, nil, nil, nil)

	results := svc.Search(context.Background(), "nothing", 10)
	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestTrendingFallsBackToTop(t *testing.T) {
	// consumet and kitsu are down; Top's anilist chain works
	anilist := jsonHandler(`{"data":{"Page":{"media":[{
		"id":1,"idMal":1,"title":{"romaji":"Cowboy Bebop"},
		"coverImage":{"large":"https://img/cb.jpg"},"averageScore":86,"status":"FINISHED","format":"TV"
	}]}}}`)

	svc := newTestService(t, nil, anilist, nil, nil, nil)

	results := svc.Trending(context.Background(), 1, 10)
	require.Len(t, results, 1)
	assert.Equal(t, "Cowboy Bebop", results[0].Title)
}

func TestSeasonArchivePrefersShikimori(t *testing.T) {
	shikimori := jsonHandler(`[{"id":9253,"name":"Steins;Gate","score":"9.07",
		"kind":"tv","status":"released","aired_on":"2011-04-06","episodes":24,
		"image":{"original":"/system/animes/original/9253.jpg"}}]`)

	svc := newTestService(t, nil, nil, nil, nil, shikimori)

	results := svc.SeasonArchive(context.Background(), 2011, "spring")
	require.Len(t, results, 1)
	assert.Equal(t, "Steins;Gate", results[0].Title)
	assert.Equal(t, 9253, results[0].MalID)
	assert.Equal(t, "completed", results[0].Status)
	assert.InDelta(t, 9.1, results[0].Score, 0.001)
}

func TestAdvancedSearchDegradesToBasicSearch(t *testing.T) {
	jikan := jsonHandler(`{"data":[{"mal_id":20,"title":"Naruto"}]}`)

	svc := newTestService(t, jikan, nil, nil, nil, nil)

	results := svc.AdvancedSearch(context.Background(), AdvancedSearchFilters{Query: "naruto"})
	require.Len(t, results, 1)
	assert.Equal(t, "Naruto", results[0].Title)
}

func TestEnglishTitlePreferenceApplied(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/anime/16498/full", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"mal_id":16498,
			"title":"Shingeki no Kyojin","title_english":"Attack on Titan",
			"status":"Finished Airing","type":"TV",
			"genres":[{"name":"アクション"}]}}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	svc := newTestService(t, mux, nil, nil, nil, nil)

	anime, err := svc.AnimeByID(context.Background(), 16498)
	require.NoError(t, err)
	assert.Equal(t, "Attack on Titan", anime.Title)
	assert.Equal(t, []string{"Action"}, anime.Genres)
}

func TestPopularScheduleSwallowsProviderFailure(t *testing.T) {
	svc := newTestService(t, nil, nil, nil, nil, nil)

	items := svc.PopularSchedule(context.Background())
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestWeeklySchedule(t *testing.T) {
	consumet := jsonHandler(`{"results":[{"id":"21","malId":21,
		"title":{"romaji":"One Piece"},"image":"https://img/op.jpg",
		"episode":1100,"airingAt":1756598400}]}`)

	svc := newTestService(t, nil, nil, nil, consumet, nil)

	items := svc.WeeklySchedule(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, 21, items[0].MalID)
	assert.Equal(t, 1100, items[0].Episode)
	assert.Equal(t, int(time.Unix(1756598400, 0).UTC().Weekday()), items[0].DayOfWeek)
}
