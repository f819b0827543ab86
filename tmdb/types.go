package tmdb

import (
	"fmt"
	"strings"
	"time"
)

// MediaType discriminates movie, TV and person records
type MediaType string

const (
	// MediaTypeMovie represents a movie
	MediaTypeMovie MediaType = "movie"
	// MediaTypeTV represents a TV show
	MediaTypeTV MediaType = "tv"
	// MediaTypePerson represents a person
	MediaTypePerson MediaType = "person"
)

// ParseMediaType parses a user supplied media type
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case MediaTypeMovie:
		return MediaTypeMovie, nil
	case MediaTypeTV:
		return MediaTypeTV, nil
	case MediaTypePerson:
		return MediaTypePerson, nil
	}
	return "", fmt.Errorf("invalid media type %q (must be 'movie', 'tv' or 'person')", s)
}

// IsTitle reports whether the media type is a movie or a TV show
func (mt MediaType) IsTitle() bool {
	return mt == MediaTypeMovie || mt == MediaTypeTV
}

// SearchMode selects which search endpoint is used
type SearchMode string

const (
	// SearchTitles searches movies and TV shows
	SearchTitles SearchMode = "titles"
	// SearchPeople searches people
	SearchPeople SearchMode = "people"
)

// Key identifies an item. Movie and TV ids come from independent numeric
// spaces, so the id alone is not unique.
type Key struct {
	ID        int
	MediaType MediaType
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.MediaType, k.ID)
}

// Item is the uniform shape of a catalog record regardless of endpoint
type Item struct {
	ID          int       `json:"id" yaml:"id"`
	MediaType   MediaType `json:"media_type" yaml:"media_type"`
	Title       string    `json:"title" yaml:"title"`
	ReleaseDate string    `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	PosterPath  string    `json:"poster_path,omitempty" yaml:"poster_path,omitempty"`
	VoteAverage *float64  `json:"vote_average,omitempty" yaml:"vote_average,omitempty"`
	Overview    string    `json:"overview,omitempty" yaml:"overview,omitempty"`
	Popularity  float64   `json:"popularity,omitempty" yaml:"popularity,omitempty"`
	// Character or job, set for items nested in a person's credits
	Role string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Key returns the composite identity of the item
func (i Item) Key() Key {
	return Key{ID: i.ID, MediaType: i.MediaType}
}

// Released parses the release date. The second value is false when the
// date is absent or malformed.
func (i Item) Released() (time.Time, bool) {
	return parseDate(i.ReleaseDate)
}

// Year returns the release year or 0 when unknown
func (i Item) Year() int {
	if t, ok := i.Released(); ok {
		return t.Year()
	}
	return 0
}

// Page is one page of a list endpoint
type Page struct {
	Page         int    `json:"page"`
	Results      []Item `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

// Genre is a named genre id
type Genre struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// SeasonSummary is a season entry on a TV show
type SeasonSummary struct {
	ID           int    `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	SeasonNumber int    `json:"season_number" yaml:"season_number"`
	EpisodeCount int    `json:"episode_count" yaml:"episode_count"`
	AirDate      string `json:"air_date,omitempty" yaml:"air_date,omitempty"`
}

// Details holds the full record of a movie or TV show
type Details struct {
	ID              int             `json:"id" yaml:"id"`
	MediaType       MediaType       `json:"media_type" yaml:"media_type"`
	Title           string          `json:"title" yaml:"title"`
	Tagline         string          `json:"tagline,omitempty" yaml:"tagline,omitempty"`
	Overview        string          `json:"overview,omitempty" yaml:"overview,omitempty"`
	Status          string          `json:"status,omitempty" yaml:"status,omitempty"`
	ReleaseDate     string          `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	Runtime         int             `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	NumberOfSeasons int             `json:"number_of_seasons,omitempty" yaml:"number_of_seasons,omitempty"`
	Genres          []Genre         `json:"genres,omitempty" yaml:"genres,omitempty"`
	VoteAverage     *float64        `json:"vote_average,omitempty" yaml:"vote_average,omitempty"`
	PosterPath      string          `json:"poster_path,omitempty" yaml:"poster_path,omitempty"`
	BackdropPath    string          `json:"backdrop_path,omitempty" yaml:"backdrop_path,omitempty"`
	Seasons         []SeasonSummary `json:"seasons,omitempty" yaml:"seasons,omitempty"`
}

// Item reduces the details to the uniform item shape
func (d *Details) Item() Item {
	return Item{
		ID:          d.ID,
		MediaType:   d.MediaType,
		Title:       d.Title,
		ReleaseDate: d.ReleaseDate,
		PosterPath:  d.PosterPath,
		VoteAverage: d.VoteAverage,
		Overview:    d.Overview,
	}
}

// CastMember is a credited actor
type CastMember struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Character   string `json:"character,omitempty" yaml:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty" yaml:"profile_path,omitempty"`
	Order       int    `json:"order" yaml:"order"`
}

// CrewMember is a credited crew member
type CrewMember struct {
	ID         int    `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Job        string `json:"job,omitempty" yaml:"job,omitempty"`
	Department string `json:"department,omitempty" yaml:"department,omitempty"`
}

// Credits lists cast and crew of a title
type Credits struct {
	Cast []CastMember `json:"cast" yaml:"cast"`
	Crew []CrewMember `json:"crew" yaml:"crew"`
}

// TopCast returns at most n cast members in billing order
func (c *Credits) TopCast(n int) []CastMember {
	if n < 0 || len(c.Cast) <= n {
		return c.Cast
	}
	return c.Cast[:n]
}

// Video is a clip attached to a title
type Video struct {
	Key  string `json:"key" yaml:"key"`
	Name string `json:"name" yaml:"name"`
	Site string `json:"site" yaml:"site"`
	Type string `json:"type" yaml:"type"`
}

// URL returns a watch link for the video when the site is known
func (v Video) URL() string {
	if v.Site == "YouTube" && v.Key != "" {
		return "https://www.youtube.com/watch?v=" + v.Key
	}
	return ""
}

// Videos is the list of clips attached to a title
type Videos []Video

// Featured returns the YouTube trailers and teasers
func (vs Videos) Featured() Videos {
	var out Videos
	for _, v := range vs {
		if v.Site == "YouTube" && (v.Type == "Trailer" || v.Type == "Teaser") {
			out = append(out, v)
		}
	}
	return out
}

// Person is a person record
type Person struct {
	ID                 int    `json:"id" yaml:"id"`
	Name               string `json:"name" yaml:"name"`
	Biography          string `json:"biography,omitempty" yaml:"biography,omitempty"`
	Birthday           string `json:"birthday,omitempty" yaml:"birthday,omitempty"`
	PlaceOfBirth       string `json:"place_of_birth,omitempty" yaml:"place_of_birth,omitempty"`
	KnownForDepartment string `json:"known_for_department,omitempty" yaml:"known_for_department,omitempty"`
	ProfilePath        string `json:"profile_path,omitempty" yaml:"profile_path,omitempty"`
}

// PersonCredits is a person's combined movie and TV credits
type PersonCredits struct {
	Cast []Item `json:"cast" yaml:"cast"`
	Crew []Item `json:"crew" yaml:"crew"`
}

// Episode is one episode of a season
type Episode struct {
	ID            int      `json:"id" yaml:"id"`
	EpisodeNumber int      `json:"episode_number" yaml:"episode_number"`
	Name          string   `json:"name" yaml:"name"`
	Overview      string   `json:"overview,omitempty" yaml:"overview,omitempty"`
	AirDate       string   `json:"air_date,omitempty" yaml:"air_date,omitempty"`
	Runtime       int      `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty" yaml:"vote_average,omitempty"`
}

// Season holds the details of a TV season
type Season struct {
	ID           int       `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	SeasonNumber int       `json:"season_number" yaml:"season_number"`
	AirDate      string    `json:"air_date,omitempty" yaml:"air_date,omitempty"`
	Overview     string    `json:"overview,omitempty" yaml:"overview,omitempty"`
	Episodes     []Episode `json:"episodes" yaml:"episodes"`
}

// Title bundles everything shown for a single movie or TV show
type Title struct {
	Details *Details `json:"details" yaml:"details"`
	Credits *Credits `json:"credits" yaml:"credits"`
	Videos  Videos   `json:"videos" yaml:"videos"`
}

// PersonProfile bundles a person and their credits
type PersonProfile struct {
	Person  *Person        `json:"person" yaml:"person"`
	Credits *PersonCredits `json:"credits" yaml:"credits"`
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

const dateLayout = "2006-01-02"
