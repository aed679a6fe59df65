package catalog

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelatedAnimeSortedByRelationKind(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/anime/1/relations", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"relation":"Character","entry":[{"mal_id":40,"type":"anime","name":"Crossover"}]},
			{"relation":"Sequel","entry":[{"mal_id":20,"type":"anime","name":"Season 2"}]},
			{"relation":"Adaptation","entry":[{"mal_id":99,"type":"manga","name":"The Manga"}]},
			{"relation":"Prequel","entry":[{"mal_id":10,"type":"anime","name":"Season 0"}]},
			{"relation":"Side story","entry":[{"mal_id":30,"type":"anime","name":"The OVA"}]}
		]}`))
	})
	mux.HandleFunc("/anime/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"mal_id":1,"title":"x","episodes":12,"status":"Finished",
			"images":{"jpg":{"large_image_url":"https://img%s.jpg"}}}}`, r.URL.Path)
	})

	svc := newTestService(t, mux, nil, nil, nil, nil)

	related, err := svc.RelatedAnime(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, related, 4, "manga entries are dropped")

	kinds := []string{related[0].Relation, related[1].Relation, related[2].Relation, related[3].Relation}
	assert.Equal(t, []string{"Prequel", "Sequel", "Side story", "Character"}, kinds)

	for _, rel := range related {
		assert.NotEmpty(t, rel.Image)
		assert.Equal(t, 12, rel.Episodes)
		assert.Equal(t, "completed", rel.Status)
	}
}

func TestRelatedAnimeCapsBatch(t *testing.T) {
	entries := ""
	for i := 1; i <= 20; i++ {
		if i > 1 {
			entries += ","
		}
		entries += fmt.Sprintf(`{"mal_id":%d,"type":"anime","name":"Entry %d"}`, i, i)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/anime/1/relations", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[{"relation":"Other","entry":[%s]}]}`, entries)
	})
	mux.HandleFunc("/anime/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	svc := newTestService(t, mux, nil, nil, nil, nil)

	related, err := svc.RelatedAnime(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, related, maxRelated)
}

func TestRelatedAnimePosterFallsBackToAniList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/anime/1/relations", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"relation":"Sequel","entry":[
			{"mal_id":2,"type":"anime","name":"Season 2"}]}]}`))
	})
	mux.HandleFunc("/anime/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	anilist := jsonHandler(`{"data":{"Media":{"coverImage":{"large":"https://img/anilist-poster.jpg"}}}}`)

	svc := newTestService(t, mux, anilist, nil, nil, nil)

	related, err := svc.RelatedAnime(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "https://img/anilist-poster.jpg", related[0].Image)
}

func TestRelatedAnimePosterFallsBackToKitsu(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/anime/1/relations", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"relation":"Sequel","entry":[
			{"mal_id":2,"type":"anime","name":"Season 2"}]}]}`))
	})
	mux.HandleFunc("/anime/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	kitsu := jsonHandler(`{"data":[{"id":"7","attributes":{
		"canonicalTitle":"Season 2",
		"posterImage":{"large":"https://img/kitsu-poster.jpg"}}}]}`)

	svc := newTestService(t, mux, nil, kitsu, nil, nil)

	related, err := svc.RelatedAnime(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "https://img/kitsu-poster.jpg", related[0].Image)
}

func TestRelatedAnimeItemFailureLeavesEntry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/anime/1/relations", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"relation":"Prequel","entry":[
			{"mal_id":2,"type":"anime","name":"Season 0"}]}]}`))
	})
	mux.HandleFunc("/anime/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	svc := newTestService(t, mux, nil, nil, nil, nil)

	related, err := svc.RelatedAnime(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "Season 0", related[0].Title)
	assert.Empty(t, related[0].Image)
}

func TestRelatedAnimeFullPriorityTable(t *testing.T) {
	// one entry per kind, listed in scrambled order
	kinds := []string{
		"Full story", "Summary", "Other", "Spin-off", "Side story",
		"Alternative setting", "Sequel", "Alternative version",
		"Parent story", "Prequel",
	}
	entries := ""
	for i, kind := range kinds {
		if i > 0 {
			entries += ","
		}
		entries += fmt.Sprintf(`{"relation":%q,"entry":[{"mal_id":%d,"type":"anime","name":"E%d"}]}`, kind, i+1, i+1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/anime/1/relations", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[%s]}`, entries)
	})
	mux.HandleFunc("/anime/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	svc := newTestService(t, mux, nil, nil, nil, nil)

	related, err := svc.RelatedAnime(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, related, len(kinds))

	got := make([]string, len(related))
	for i, rel := range related {
		got[i] = rel.Relation
	}
	assert.Equal(t, []string{
		"Prequel", "Sequel", "Parent story", "Side story",
		"Alternative version", "Alternative setting", "Spin-off",
		"Summary", "Full story", "Other",
	}, got)
}

func TestRelationRankUnknownKindSinks(t *testing.T) {
	assert.Less(t, relationRank("Prequel"), relationRank("Sequel"))
	assert.Less(t, relationRank("Other"), relationRank("Compilation"))
	assert.Equal(t, 99, relationRank("Compilation"))
}
