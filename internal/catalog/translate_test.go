package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"anihub/pkg/models"
)

func TestProcessAnimePrefersEnglishTitle(t *testing.T) {
	a := ProcessAnime(models.Anime{Title: "Shingeki no Kyojin", TitleEnglish: "Attack on Titan"})
	assert.Equal(t, "Attack on Titan", a.Title)

	b := ProcessAnime(models.Anime{Title: "Mononoke", TitleEnglish: "  "})
	assert.Equal(t, "Mononoke", b.Title)

	c := ProcessAnime(models.Anime{TitleOriginal: "もののけ姫"})
	assert.Equal(t, "もののけ姫", c.Title)
}

func TestProcessAnimeTranslatesGenres(t *testing.T) {
	a := ProcessAnime(models.Anime{
		Title:  "x",
		Genres: []string{"アクション", "Drama", "異世界"},
	})
	assert.Equal(t, []string{"Action", "Drama", "Isekai"}, a.Genres)
}

func TestProcessAnimeIdempotent(t *testing.T) {
	in := models.Anime{
		Title:         "Shingeki no Kyojin",
		TitleEnglish:  "Attack on Titan",
		TitleOriginal: "進撃の巨人",
		Genres:        []string{"アクション", "Fantasy"},
	}
	once := ProcessAnime(in)
	twice := ProcessAnime(once)
	assert.Equal(t, once, twice)
}
