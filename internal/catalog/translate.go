package catalog

import (
	"strings"

	"anihub/pkg/models"
)

// Display post-processing applied by the aggregator to every entity it
// returns, regardless of which provider produced it. Adapters stay out
// of this: they return normalized-enum data and nothing more.

// genre labels some providers return in Japanese
var genreTranslations = map[string]string{
	"アクション":    "Action",
	"アドベンチャー": "Adventure",
	"コメディ":     "Comedy",
	"ドラマ":       "Drama",
	"ファンタジー":  "Fantasy",
	"ホラー":       "Horror",
	"ミステリー":    "Mystery",
	"ロマンス":     "Romance",
	"SF":           "Sci-Fi",
	"スポーツ":     "Sports",
	"日常":         "Slice of Life",
	"異世界":       "Isekai",
	"超自然":       "Supernatural",
}

// EnglishTitle picks the best display title: the English variant when
// the provider has one, otherwise the main title, otherwise the
// original-language one.
func EnglishTitle(a models.Anime) string {
	if strings.TrimSpace(a.TitleEnglish) != "" {
		return a.TitleEnglish
	}
	if strings.TrimSpace(a.Title) != "" {
		return a.Title
	}
	if a.TitleOriginal != "" {
		return a.TitleOriginal
	}
	return "Unknown"
}

// TranslateGenre maps a non-English genre label to English; labels not
// in the table pass through untouched.
func TranslateGenre(genre string) string {
	if english, ok := genreTranslations[genre]; ok {
		return english
	}
	return genre
}

// ProcessAnime applies the display policy to one entity. Idempotent:
// processing an already-processed entity changes nothing.
func ProcessAnime(a models.Anime) models.Anime {
	title := EnglishTitle(a)
	a.Title = title
	a.TitleEnglish = title

	genres := make([]string, len(a.Genres))
	for i, g := range a.Genres {
		genres[i] = TranslateGenre(g)
	}
	a.Genres = genres
	return a
}

// ProcessAnimeList is ProcessAnime over a result set.
func ProcessAnimeList(list []models.Anime) []models.Anime {
	out := make([]models.Anime, len(list))
	for i, a := range list {
		out[i] = ProcessAnime(a)
	}
	return out
}
