package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"anihub/pkg/models"
)

// maxRelated caps the enrichment batch; every kept entry costs at
// least one upstream request.
const maxRelated = 12

// relationOrder ranks relation kinds by how relevant they are to
// someone browsing a title. Unlisted kinds sink to the bottom.
var relationOrder = map[string]int{
	"Prequel":             1,
	"Sequel":              2,
	"Parent story":        3,
	"Side story":          4,
	"Alternative version": 5,
	"Alternative setting": 6,
	"Spin-off":            7,
	"Summary":             8,
	"Full story":          9,
	"Other":               10,
}

func relationRank(relation string) int {
	if rank, ok := relationOrder[relation]; ok {
		return rank
	}
	return 99
}

// RelatedAnime resolves the relation graph of an anime into a flat,
// ranked list and enriches each entry with a poster (plus episode
// count and status when the primary source has them). Entries are
// fetched concurrently with a per-index stagger so the batch does not
// land on the upstreams as a burst; one entry failing only leaves that
// entry without an image.
func (s *Service) RelatedAnime(ctx context.Context, id int) ([]models.Relation, error) {
	groups, err := s.jikan.Relations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("related %d: %w", id, err)
	}

	related := make([]models.Relation, 0, maxRelated)
	for _, group := range groups {
		for _, entry := range group.Entry {
			if entry.Type != "anime" {
				continue
			}
			related = append(related, models.Relation{
				ID:       entry.MalID,
				Title:    entry.Name,
				Type:     entry.Type,
				Relation: group.Relation,
			})
		}
	}

	sort.SliceStable(related, func(i, j int) bool {
		return relationRank(related[i].Relation) < relationRank(related[j].Relation)
	})
	if len(related) > maxRelated {
		related = related[:maxRelated]
	}

	var wg sync.WaitGroup
	for i := range related {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.sleep(ctx, time.Duration(i)*s.stagger); err != nil {
				return
			}
			s.enrichRelation(ctx, &related[i])
		}(i)
	}
	wg.Wait()

	return related, nil
}

// enrichRelation fills in the poster, falling through Jikan, AniList's
// MAL cross-reference, and a Kitsu title search. Jikan is the only one
// that also carries episode count and status.
func (s *Service) enrichRelation(ctx context.Context, rel *models.Relation) {
	if preview, err := s.jikan.Preview(ctx, rel.ID); err == nil {
		rel.Image = preview.Poster
		rel.Episodes = preview.Episodes
		rel.Status = preview.Status
		if rel.Image != "" {
			return
		}
	}

	if img, err := s.anilist.PosterByMalID(ctx, rel.ID); err == nil {
		rel.Image = img
		return
	}

	if img, err := s.kitsu.PosterByTitle(ctx, rel.Title); err == nil {
		rel.Image = img
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
