package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"anihub/pkg/models"
)

func TestAniListStatusMapping(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"FINISHED", models.StatusCompleted},
		{"RELEASING", models.StatusOngoing},
		{"NOT_YET_RELEASED", models.StatusAnnounced},
		{"CANCELLED", models.StatusCompleted},
		{"HIATUS", models.StatusOngoing},
		// anything outside the table means it has not aired yet
		{"SOME_NEW_STATUS", models.StatusAnnounced},
		{"", models.StatusAnnounced},
	}

	a := &AniList{}
	for _, tc := range cases {
		got := a.toAnime(anilistMedia{ID: 1, Status: tc.in})
		assert.Equal(t, tc.want, got.Status, "status %q", tc.in)
	}
}
