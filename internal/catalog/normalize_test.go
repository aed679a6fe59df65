package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"anihub/pkg/models"
)

func TestNormalizeScore(t *testing.T) {
	assert.Equal(t, 8.5, NormalizeScore(85, 100))
	assert.Equal(t, 7.3, NormalizeScore(7.25, 10))
	assert.Equal(t, 10.0, NormalizeScore(100, 100))
	assert.Equal(t, 0.0, NormalizeScore(0, 10), "zero means no score yet")
	assert.Equal(t, 0.0, NormalizeScore(-1, 10))
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, models.StatusOngoing, NormalizeStatus("RELEASING"))
	assert.Equal(t, models.StatusOngoing, NormalizeStatus("Currently Airing"))
	assert.Equal(t, models.StatusOngoing, NormalizeStatus("current"))
	assert.Equal(t, models.StatusCompleted, NormalizeStatus("finished"))
	assert.Equal(t, models.StatusCompleted, NormalizeStatus("Completed"))
	assert.Equal(t, models.StatusAnnounced, NormalizeStatus(""))
	assert.Equal(t, models.StatusAnnounced, NormalizeStatus("Not yet aired"))
	assert.Equal(t, models.StatusAnnounced, NormalizeStatus("upcoming"))
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, models.TypeMovie, NormalizeType("Movie"))
	assert.Equal(t, models.TypeOVA, NormalizeType("OVA"))
	assert.Equal(t, models.TypeONA, NormalizeType("ona"))
	assert.Equal(t, models.TypeSpecial, NormalizeType("TV Special"))
	assert.Equal(t, models.TypeMusic, NormalizeType("MUSIC"))
	assert.Equal(t, models.TypeTV, NormalizeType("TV"))
	assert.Equal(t, models.TypeTV, NormalizeType(""), "tv is the default")
}

func TestNormalizeSeason(t *testing.T) {
	assert.Equal(t, models.SeasonWinter, NormalizeSeason("WINTER"))
	assert.Equal(t, models.SeasonSpring, NormalizeSeason("Spring 2024"))
	assert.Equal(t, models.SeasonFall, NormalizeSeason("autumn"))
	assert.Equal(t, "", NormalizeSeason("whenever"))
	assert.Equal(t, "", NormalizeSeason(""))
}

func TestExtractYear(t *testing.T) {
	assert.Equal(t, 2024, ExtractYear("2024-05-01"))
	assert.Equal(t, 1998, ExtractYear("1998"))
	assert.Equal(t, 0, ExtractYear("1850-01-01"), "outside sane range")
	assert.Equal(t, 0, ExtractYear("2150-01-01"))
	assert.Equal(t, 0, ExtractYear("soon"))
	assert.Equal(t, 0, ExtractYear(""))
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "Hello World", StripHTMLTags("<p>Hello&nbsp;World</p>"))
	assert.Equal(t, `"A & B" <ok>`, StripHTMLTags("&quot;A &amp; B&quot; &lt;ok&gt;"))
	assert.Equal(t, "it's fine", StripHTMLTags("it&#39;s   fine"))
	assert.Equal(t, "one two", StripHTMLTags("one\n\n  <br/>two  "))
	assert.Equal(t, "", StripHTMLTags(""))
}
