package models

// Canonical vocabularies every provider adapter converges on.
// No provider-native value ("RELEASING", "currently_airing", ...) may
// leave the adapter layer.
const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusAnnounced = "announced"
)

const (
	TypeTV      = "tv"
	TypeMovie   = "movie"
	TypeOVA     = "ova"
	TypeONA     = "ona"
	TypeSpecial = "special"
	TypeMusic   = "music"
)

const (
	SeasonWinter = "winter"
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonFall   = "fall"
)

// Provenance tags. Exactly one adapter produces any given Anime value;
// the aggregator never merges fields across providers.
const (
	SourceJikan   = "jikan"
	SourceAniList = "anilist"
	SourceKitsu   = "kitsu"
)

// Anime is the normalized form every external catalog source is mapped
// into before anything else touches it. Zero values mean "absent":
// Score 0 is "no score yet", Year 0 is "unknown year".
type Anime struct {
	ID        string `json:"id"` // id within Source's own id space
	MalID     int    `json:"mal_id,omitempty"`
	AnilistID int    `json:"anilist_id,omitempty"`
	KitsuID   string `json:"kitsu_id,omitempty"`

	Title         string `json:"title"`
	TitleOriginal string `json:"title_original,omitempty"`
	TitleEnglish  string `json:"title_english,omitempty"`

	Poster      string `json:"poster,omitempty"`
	PosterLarge string `json:"poster_large,omitempty"`
	Banner      string `json:"banner,omitempty"`

	Description string `json:"description,omitempty"`
	Background  string `json:"background,omitempty"`

	Year     int    `json:"year,omitempty"`
	Season   string `json:"season,omitempty"`
	Status   string `json:"status"`
	Type     string `json:"type"`
	Episodes int    `json:"episodes,omitempty"`
	Duration int    `json:"duration,omitempty"` // minutes per episode

	Score      float64 `json:"score,omitempty"` // normalized to 0-10
	ScoredBy   int     `json:"scored_by,omitempty"`
	Rank       int     `json:"rank,omitempty"`
	Popularity int     `json:"popularity,omitempty"`

	Genres  []string `json:"genres"`
	Studios []string `json:"studios"`

	Trailer *Trailer `json:"trailer,omitempty"`

	Rating     string `json:"rating,omitempty"`      // age rating (PG-13, R, ...)
	SourceType string `json:"source_type,omitempty"` // manga, light novel, ...
	URL        string `json:"url,omitempty"`

	Aired *Aired `json:"aired,omitempty"`

	// Populated by specific adapters only, best-effort.
	Seasons           []SeasonRef  `json:"seasons,omitempty"`
	NextAiringEpisode *NextEpisode `json:"next_airing_episode,omitempty"`

	Source string `json:"source"`
}

type Trailer struct {
	ID   string `json:"id,omitempty"`
	URL  string `json:"url,omitempty"`
	Site string `json:"site,omitempty"`
}

type Aired struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// SeasonRef is a lightweight pointer at a prequel/sequel entry.
type SeasonRef struct {
	ID     int    `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title,omitempty"`
	MalID  int    `json:"mal_id,omitempty"`
}

type NextEpisode struct {
	Episode  int   `json:"episode"`
	AiringAt int64 `json:"airing_at"` // unix seconds
}

// Relation is one entry of an anime's relation graph, as returned by
// the related-anime resolver. Relation is a free-text category used for
// sorting ("Prequel", "Sequel", "Side story", ...).
type Relation struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Relation string `json:"relation"`
	Image    string `json:"image,omitempty"`
	Episodes int    `json:"episodes,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ScheduleItem is one airing slot of the weekly schedule.
type ScheduleItem struct {
	ID           string `json:"id"`
	MalID        int    `json:"mal_id,omitempty"`
	Title        string `json:"title"`
	TitleEnglish string `json:"title_english,omitempty"`
	Poster       string `json:"poster,omitempty"`
	Episode      int    `json:"episode"`
	AiringAt     int64  `json:"airing_at"`    // unix seconds
	DayOfWeek    int    `json:"day_of_week"`  // 0 = Sunday
}

// BroadcastItem is one entry of the popular-broadcast schedule
// (top ongoing shows that publish a broadcast day).
type BroadcastItem struct {
	ID            int      `json:"id"`
	MalID         int      `json:"mal_id"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"title_english,omitempty"`
	Poster        string   `json:"poster,omitempty"`
	Score         float64  `json:"score,omitempty"`
	Members       int      `json:"members,omitempty"`
	Episodes      int      `json:"episodes,omitempty"`
	BroadcastDay  string   `json:"broadcast_day"`
	BroadcastTime string   `json:"broadcast_time"`
	Status        string   `json:"status,omitempty"`
	Genres        []string `json:"genres"`
}
