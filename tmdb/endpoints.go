package tmdb

import (
	"context"
	"fmt"
	"slices"
)

// Lists names the curated lists available per media type
var Lists = map[MediaType][]string{
	MediaTypeMovie: {"now_playing", "popular", "top_rated", "upcoming"},
	MediaTypeTV:    {"airing_today", "on_the_air", "popular", "top_rated"},
}

func requireTitleType(mt MediaType) error {
	if !mt.IsTitle() {
		return fmt.Errorf("invalid media type %q (must be 'movie' or 'tv')", mt)
	}
	return nil
}

// Trending retrieves today's trending movies, shows and people
func (c *Client) Trending(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/trending/all/day", pageParams{Page: page, Language: c.language})
}

// TrendingMedia retrieves today's trending titles of one media type
func (c *Client) TrendingMedia(ctx context.Context, mt MediaType, page int) (*Page, error) {
	if err := requireTitleType(mt); err != nil {
		return nil, err
	}
	return c.getPage(ctx, fmt.Sprintf("/trending/%s/day", mt), pageParams{Page: page, Language: c.language})
}

// Discover retrieves a page of titles matching the filter set
func (c *Client) Discover(ctx context.Context, filters DiscoverFilterSet, page int) (*Page, error) {
	if err := requireTitleType(filters.MediaType); err != nil {
		return nil, err
	}
	params := buildDiscoverParams(filters, page, c.language, c.now())
	return c.getPage(ctx, fmt.Sprintf("/discover/%s", filters.MediaType), params)
}

// List retrieves a page of a curated list such as popular or top_rated
func (c *Client) List(ctx context.Context, mt MediaType, listName string, page int) (*Page, error) {
	if err := requireTitleType(mt); err != nil {
		return nil, err
	}
	if !slices.Contains(Lists[mt], listName) {
		return nil, fmt.Errorf("unknown %s list %q", mt, listName)
	}
	return c.getPage(ctx, fmt.Sprintf("/%s/%s", mt, listName), pageParams{Page: page, Language: c.language})
}

// Search retrieves a page of search results. Title searches drop people,
// people searches only return people.
func (c *Client) Search(ctx context.Context, mode SearchMode, query string, page int) (*Page, error) {
	params := searchParams{Query: query, Page: page, Language: c.language}

	switch mode {
	case SearchPeople:
		var raw rawPage
		if err := c.getJSON(ctx, "/search/person", params, &raw); err != nil {
			return nil, err
		}
		stampMediaType(raw.Results, MediaTypePerson)
		return raw.normalize(), nil
	case SearchTitles, "":
		result, err := c.getPage(ctx, "/search/multi", params)
		if err != nil {
			return nil, err
		}
		result.Results = dropPeople(result.Results)
		return result, nil
	default:
		return nil, fmt.Errorf("invalid search mode %q (must be 'titles' or 'people')", mode)
	}
}

type rawDetails struct {
	ID              int             `json:"id"`
	Title           string          `json:"title"`
	Name            string          `json:"name"`
	Tagline         string          `json:"tagline"`
	Overview        string          `json:"overview"`
	Status          string          `json:"status"`
	ReleaseDate     string          `json:"release_date"`
	FirstAirDate    string          `json:"first_air_date"`
	Runtime         int             `json:"runtime"`
	NumberOfSeasons int             `json:"number_of_seasons"`
	Genres          []Genre         `json:"genres"`
	VoteAverage     *float64        `json:"vote_average"`
	PosterPath      *string         `json:"poster_path"`
	BackdropPath    *string         `json:"backdrop_path"`
	Seasons         []SeasonSummary `json:"seasons"`
}

// Details retrieves the full record of a movie or TV show
func (c *Client) Details(ctx context.Context, mt MediaType, id int) (*Details, error) {
	if err := requireTitleType(mt); err != nil {
		return nil, err
	}

	var raw rawDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%d", mt, id), languageParams{Language: c.language}, &raw); err != nil {
		return nil, err
	}

	details := &Details{
		ID:              raw.ID,
		MediaType:       mt,
		Title:           raw.Title,
		Tagline:         raw.Tagline,
		Overview:        raw.Overview,
		Status:          raw.Status,
		ReleaseDate:     raw.ReleaseDate,
		Runtime:         raw.Runtime,
		NumberOfSeasons: raw.NumberOfSeasons,
		Genres:          raw.Genres,
		VoteAverage:     raw.VoteAverage,
		Seasons:         raw.Seasons,
	}
	if details.Title == "" {
		details.Title = raw.Name
	}
	if details.ReleaseDate == "" {
		details.ReleaseDate = raw.FirstAirDate
	}
	if raw.PosterPath != nil {
		details.PosterPath = *raw.PosterPath
	}
	if raw.BackdropPath != nil {
		details.BackdropPath = *raw.BackdropPath
	}

	return details, nil
}

// Credits retrieves cast and crew of a movie or TV show
func (c *Client) Credits(ctx context.Context, mt MediaType, id int) (*Credits, error) {
	if err := requireTitleType(mt); err != nil {
		return nil, err
	}

	var credits Credits
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%d/credits", mt, id), languageParams{Language: c.language}, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// Videos retrieves the clips attached to a movie or TV show
func (c *Client) Videos(ctx context.Context, mt MediaType, id int) (Videos, error) {
	if err := requireTitleType(mt); err != nil {
		return nil, err
	}

	var resp struct {
		Results Videos `json:"results"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%d/videos", mt, id), languageParams{Language: c.language}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Person retrieves a person record
func (c *Client) Person(ctx context.Context, id int) (*Person, error) {
	var person Person
	if err := c.getJSON(ctx, fmt.Sprintf("/person/%d", id), languageParams{Language: c.language}, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// PersonCredits retrieves a person's combined credits. Nested items go
// through the same media type inference as list results.
func (c *Client) PersonCredits(ctx context.Context, id int) (*PersonCredits, error) {
	var raw rawPersonCredits
	if err := c.getJSON(ctx, fmt.Sprintf("/person/%d/combined_credits", id), languageParams{Language: c.language}, &raw); err != nil {
		return nil, err
	}
	return &PersonCredits{
		Cast: normalizeItems(raw.Cast),
		Crew: normalizeItems(raw.Crew),
	}, nil
}

// Genres retrieves the genre list of a media type
func (c *Client) Genres(ctx context.Context, mt MediaType) ([]Genre, error) {
	if err := requireTitleType(mt); err != nil {
		return nil, err
	}

	var resp struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/genre/%s/list", mt), languageParams{Language: c.language}, &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

// SeasonDetails retrieves one season of a TV show with its episodes
func (c *Client) SeasonDetails(ctx context.Context, tvID, seasonNumber int) (*Season, error) {
	var season Season
	path := fmt.Sprintf("/tv/%d/season/%d", tvID, seasonNumber)
	if err := c.getJSON(ctx, path, languageParams{Language: c.language}, &season); err != nil {
		return nil, err
	}
	return &season, nil
}
