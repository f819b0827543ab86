package tmdb

import (
	"sort"
)

// rawItem covers the movie, TV and person shapes returned by list endpoints
type rawItem struct {
	ID           int       `json:"id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title"`
	Name         string    `json:"name"`
	ReleaseDate  string    `json:"release_date"`
	FirstAirDate *string   `json:"first_air_date"`
	PosterPath   *string   `json:"poster_path"`
	ProfilePath  *string   `json:"profile_path"`
	VoteAverage  *float64  `json:"vote_average"`
	Overview     string    `json:"overview"`
	Popularity   float64   `json:"popularity"`
	Character    string    `json:"character"`
	Job          string    `json:"job"`
}

type rawPage struct {
	Page         int       `json:"page"`
	Results      []rawItem `json:"results"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
}

type rawPersonCredits struct {
	Cast []rawItem `json:"cast"`
	Crew []rawItem `json:"crew"`
}

// InferMediaType applies the discriminator rule: the API supplied value
// wins, otherwise a first-air-date marks a TV show and anything else is a
// movie.
func InferMediaType(provided MediaType, firstAirDate *string) MediaType {
	if provided != "" {
		return provided
	}
	if firstAirDate != nil && *firstAirDate != "" {
		return MediaTypeTV
	}
	return MediaTypeMovie
}

func (r rawItem) normalize() Item {
	item := Item{
		ID:          r.ID,
		MediaType:   InferMediaType(r.MediaType, r.FirstAirDate),
		Title:       r.Title,
		ReleaseDate: r.ReleaseDate,
		VoteAverage: r.VoteAverage,
		Overview:    r.Overview,
		Popularity:  r.Popularity,
		Role:        r.Character,
	}

	if item.Title == "" {
		item.Title = r.Name
	}
	if item.ReleaseDate == "" && r.FirstAirDate != nil {
		item.ReleaseDate = *r.FirstAirDate
	}
	if r.PosterPath != nil {
		item.PosterPath = *r.PosterPath
	} else if r.ProfilePath != nil {
		item.PosterPath = *r.ProfilePath
	}
	if item.Role == "" {
		item.Role = r.Job
	}

	return item
}

func normalizeItems(raw []rawItem) []Item {
	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, r.normalize())
	}
	return items
}

func (p rawPage) normalize() *Page {
	return &Page{
		Page:         p.Page,
		Results:      normalizeItems(p.Results),
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
	}
}

// stampMediaType sets the discriminator on results of a type-homogeneous
// endpoint before normalization
func stampMediaType(raw []rawItem, mt MediaType) {
	for i := range raw {
		if raw[i].MediaType == "" {
			raw[i].MediaType = mt
		}
	}
}

// dropPeople removes person records from a mixed result set
func dropPeople(items []Item) []Item {
	out := items[:0]
	for _, item := range items {
		if item.MediaType != MediaTypePerson {
			out = append(out, item)
		}
	}
	return out
}

// SortByPopularity orders items by popularity, most popular first
func SortByPopularity(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Popularity > items[j].Popularity
	})
}
