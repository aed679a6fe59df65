package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"anihub/pkg/models"
)

// Pure normalizers mapping provider-native vocabularies into the
// canonical ones. Every adapter calls these on every record, so they
// are total: bad input yields the zero/default value, never an error.

// NormalizeScore maps a provider score onto a 0-10 scale rounded to one
// decimal. Zero or negative input means "no score yet" and stays 0.
func NormalizeScore(score float64, sourceMax float64) float64 {
	if score <= 0 {
		return 0
	}
	if sourceMax == 100 {
		score = score / 10
	}
	return math.Round(score*10) / 10
}

// NormalizeStatus substring-matches the known provider vocabularies.
// Anything that is neither airing nor finished is treated as announced.
func NormalizeStatus(status string) string {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "airing"),
		strings.Contains(s, "current"),
		strings.Contains(s, "releasing"),
		strings.Contains(s, "ongoing"):
		return models.StatusOngoing
	case strings.Contains(s, "finished"),
		strings.Contains(s, "complete"),
		strings.Contains(s, "released"):
		return models.StatusCompleted
	default:
		// not yet aired, upcoming, anons, ...
		return models.StatusAnnounced
	}
}

// NormalizeType maps a media format onto the canonical type enum.
// TV is the default; that is what most anime are.
func NormalizeType(mediaType string) string {
	t := strings.ToLower(mediaType)
	switch {
	case strings.Contains(t, "movie"):
		return models.TypeMovie
	case strings.Contains(t, "ova"):
		return models.TypeOVA
	case strings.Contains(t, "ona"):
		return models.TypeONA
	case strings.Contains(t, "special"):
		return models.TypeSpecial
	case strings.Contains(t, "music"):
		return models.TypeMusic
	default:
		return models.TypeTV
	}
}

// NormalizeSeason handles "WINTER", "winter 2024" and the like.
// Returns "" when no season can be recognized.
func NormalizeSeason(season string) string {
	s := strings.ToLower(season)
	switch {
	case strings.Contains(s, "winter"):
		return models.SeasonWinter
	case strings.Contains(s, "spring"):
		return models.SeasonSpring
	case strings.Contains(s, "summer"):
		return models.SeasonSummer
	case strings.Contains(s, "fall"), strings.Contains(s, "autumn"):
		return models.SeasonFall
	default:
		return ""
	}
}

// ExtractYear parses the leading four characters of a date string as a
// year. Values outside [1900, 2100] are rejected; no anime predates
// 1900 and anything past 2100 is upstream garbage.
func ExtractYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year < 1900 || year > 2100 {
		return 0
	}
	return year
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	htmlEntities = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&apos;", "'",
	)
)

// StripHTMLTags removes markup and decodes the handful of entities the
// upstream synopses actually contain, then collapses whitespace.
func StripHTMLTags(html string) string {
	s := htmlTagRe.ReplaceAllString(html, "")
	s = htmlEntities.Replace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
