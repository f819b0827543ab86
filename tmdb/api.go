package tmdb

import (
	"context"
)

// API defines the catalog operations used by the rest of the application
type API interface {
	// TestConnection verifies the configured token
	TestConnection(ctx context.Context) error

	// Paged list endpoints
	Trending(ctx context.Context, page int) (*Page, error)
	TrendingMedia(ctx context.Context, mt MediaType, page int) (*Page, error)
	Discover(ctx context.Context, filters DiscoverFilterSet, page int) (*Page, error)
	List(ctx context.Context, mt MediaType, listName string, page int) (*Page, error)
	Search(ctx context.Context, mode SearchMode, query string, page int) (*Page, error)

	// Single record endpoints
	Details(ctx context.Context, mt MediaType, id int) (*Details, error)
	Credits(ctx context.Context, mt MediaType, id int) (*Credits, error)
	Videos(ctx context.Context, mt MediaType, id int) (Videos, error)
	Person(ctx context.Context, id int) (*Person, error)
	PersonCredits(ctx context.Context, id int) (*PersonCredits, error)
	Genres(ctx context.Context, mt MediaType) ([]Genre, error)
	SeasonDetails(ctx context.Context, tvID, seasonNumber int) (*Season, error)

	// Aggregates
	Title(ctx context.Context, mt MediaType, id int) (*Title, error)
	PersonProfile(ctx context.Context, id int) (*PersonProfile, error)

	// ImageURL builds a CDN URL, empty when path is empty
	ImageURL(path string, size ImageSize) string
}

var _ API = (*Client)(nil)
