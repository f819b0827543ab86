package tmdb

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestInferMediaType(t *testing.T) {
	tests := []struct {
		name         string
		provided     MediaType
		firstAirDate *string
		want         MediaType
	}{
		{"discriminator wins", MediaTypePerson, strPtr("2020-01-01"), MediaTypePerson},
		{"first air date means tv", "", strPtr("2020-01-01"), MediaTypeTV},
		{"null first air date means movie", "", nil, MediaTypeMovie},
		{"empty first air date means movie", "", strPtr(""), MediaTypeMovie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferMediaType(tt.provided, tt.firstAirDate))
		})
	}
}

func TestNormalizePage(t *testing.T) {
	body := `{
		"page": 1,
		"total_pages": 4,
		"total_results": 70,
		"results": [
			{"id": 10, "media_type": "movie", "title": "Heat", "release_date": "1995-12-15", "poster_path": "/heat.jpg", "vote_average": 7.9},
			{"id": 10, "name": "Lost", "first_air_date": "2004-09-22", "poster_path": null},
			{"id": 11, "name": "Someone", "media_type": "person", "profile_path": "/p.jpg"}
		]
	}`

	var raw rawPage
	require.NoError(t, json.Unmarshal([]byte(body), &raw))

	vote := 7.9
	want := &Page{
		Page:         1,
		TotalPages:   4,
		TotalResults: 70,
		Results: []Item{
			{ID: 10, MediaType: MediaTypeMovie, Title: "Heat", ReleaseDate: "1995-12-15", PosterPath: "/heat.jpg", VoteAverage: &vote},
			{ID: 10, MediaType: MediaTypeTV, Title: "Lost", ReleaseDate: "2004-09-22"},
			{ID: 11, MediaType: MediaTypePerson, Title: "Someone", PosterPath: "/p.jpg"},
		},
	}

	got := raw.normalize()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalize() mismatch (-want +got):\n%s", diff)
	}

	// Same id, different media type: distinct keys
	assert.NotEqual(t, got.Results[0].Key(), got.Results[1].Key())
}

func TestItemYear(t *testing.T) {
	assert.Equal(t, 1995, Item{ReleaseDate: "1995-12-15"}.Year())
	assert.Equal(t, 0, Item{}.Year())
	assert.Equal(t, 0, Item{ReleaseDate: "soon"}.Year())
}

func TestSortByPopularity(t *testing.T) {
	items := []Item{{ID: 1, Popularity: 2}, {ID: 2, Popularity: 10}, {ID: 3, Popularity: 2}}
	SortByPopularity(items)

	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []int{2, 1, 3}, ids)
}

func TestEncodeParams(t *testing.T) {
	genre := 0

	tests := []struct {
		name   string
		params any
		want   string
	}{
		{
			name:   "empty strings are dropped",
			params: searchParams{Query: "", Page: 1, Language: ""},
			want:   "include_adult=false&page=1",
		},
		{
			name:   "nil genre is omitted",
			params: discoverParams{Page: 2, SortBy: "vote_average.desc", Language: "en-US"},
			want:   "include_adult=false&include_video=false&language=en-US&page=2&sort_by=vote_average.desc",
		},
		{
			name:   "explicit genre is kept",
			params: discoverParams{WithGenres: &genre},
			want:   "include_adult=false&include_video=false&with_genres=0",
		},
		{
			name:   "nil params",
			params: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := encodeParams(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, values.Encode())
		})
	}
}

func TestDiscoverFilterSetValidate(t *testing.T) {
	genre := 28
	badGenre := -1

	tests := []struct {
		name    string
		filters DiscoverFilterSet
		wantErr bool
	}{
		{"valid movie", DiscoverFilterSet{MediaType: MediaTypeMovie, SortKey: "popularity.desc"}, false},
		{"valid tv with year and genre", DiscoverFilterSet{MediaType: MediaTypeTV, SortKey: "popularity.desc", Year: "2024", GenreID: &genre}, false},
		{"person is not discoverable", DiscoverFilterSet{MediaType: MediaTypePerson, SortKey: "popularity.desc"}, true},
		{"missing sort key", DiscoverFilterSet{MediaType: MediaTypeMovie}, true},
		{"short year", DiscoverFilterSet{MediaType: MediaTypeMovie, SortKey: "popularity.desc", Year: "24"}, true},
		{"non numeric year", DiscoverFilterSet{MediaType: MediaTypeMovie, SortKey: "popularity.desc", Year: "20x4"}, true},
		{"negative genre", DiscoverFilterSet{MediaType: MediaTypeMovie, SortKey: "popularity.desc", GenreID: &badGenre}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidFilters))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseMediaType(t *testing.T) {
	mt, err := ParseMediaType(" TV ")
	require.NoError(t, err)
	assert.Equal(t, MediaTypeTV, mt)

	_, err = ParseMediaType("music")
	require.Error(t, err)
}
