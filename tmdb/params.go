package tmdb

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-querystring/query"
)

// DiscoverFilterSet is the user facing discover query. Any change to it
// invalidates the current result session.
type DiscoverFilterSet struct {
	MediaType       MediaType `validate:"required,oneof=movie tv"`
	SortKey         string    `validate:"required"`
	GenreID         *int      `validate:"omitempty,gt=0"`
	Year            string    `validate:"omitempty,len=4,numeric"`
	IncludeUpcoming bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the filter set
func (f DiscoverFilterSet) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidFilters, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidFilters, err)
	}
	return nil
}

type languageParams struct {
	Language string `url:"language,omitempty"`
}

type pageParams struct {
	Page     int    `url:"page,omitempty"`
	Language string `url:"language,omitempty"`
}

type searchParams struct {
	Query        string `url:"query,omitempty"`
	Page         int    `url:"page,omitempty"`
	IncludeAdult bool   `url:"include_adult"`
	Language     string `url:"language,omitempty"`
}

type discoverParams struct {
	Page                  int    `url:"page,omitempty"`
	IncludeAdult          bool   `url:"include_adult"`
	IncludeVideo          bool   `url:"include_video"`
	Language              string `url:"language,omitempty"`
	SortBy                string `url:"sort_by,omitempty"`
	WithGenres            *int   `url:"with_genres,omitempty"`
	PrimaryReleaseDateGTE string `url:"primary_release_date.gte,omitempty"`
	PrimaryReleaseDateLTE string `url:"primary_release_date.lte,omitempty"`
	FirstAirDateGTE       string `url:"first_air_date.gte,omitempty"`
	FirstAirDateLTE       string `url:"first_air_date.lte,omitempty"`
}

// encodeParams turns a parameter struct into query values. Empty strings
// never reach the wire: discover treats an empty genre differently from an
// absent one.
func encodeParams(params any) (url.Values, error) {
	if params == nil {
		return url.Values{}, nil
	}

	values, err := query.Values(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query parameters: %w", err)
	}

	for key, vals := range values {
		kept := vals[:0]
		for _, v := range vals {
			if v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			delete(values, key)
			continue
		}
		values[key] = kept
	}

	return values, nil
}

// buildDiscoverParams translates a filter set into discover query parameters
func buildDiscoverParams(f DiscoverFilterSet, page int, language string, now time.Time) discoverParams {
	params := discoverParams{
		Page:       page,
		Language:   language,
		SortBy:     f.SortKey,
		WithGenres: f.GenreID,
	}

	if len(f.Year) != 4 {
		return params
	}

	start := f.Year + "-01-01"
	end := f.Year + "-12-31"
	if year, err := strconv.Atoi(f.Year); err == nil && !f.IncludeUpcoming && year == now.Year() {
		end = now.Format(dateLayout)
	}

	switch f.MediaType {
	case MediaTypeMovie:
		params.PrimaryReleaseDateGTE = start
		params.PrimaryReleaseDateLTE = end
	case MediaTypeTV:
		params.FirstAirDateGTE = start
		params.FirstAirDateLTE = end
	}

	return params
}
