package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/marquee/tmdb"
)

var testNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func vote(v float64) *float64 { return &v }

func newTestCompiler() Compiler {
	return NewExprCompiler(WithCache(10), WithClock(func() time.Time { return testNow }))
}

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `isMovie()`,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `lower(Title, "unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown field",
			expression: `Rating > 5`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `Year + 1`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `isTV() and Year > 2020 and VoteAverage >= 7.0 and HasPoster`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := newTestCompiler().Compile(tt.expression)

			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.True(t, errors.As(err, &compErr))
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, filter)
			assert.Equal(t, tt.expression, filter.Expression())
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	movie := tmdb.Item{
		ID:          603,
		MediaType:   tmdb.MediaTypeMovie,
		Title:       "The Matrix",
		ReleaseDate: "1999-03-30",
		PosterPath:  "/matrix.jpg",
		VoteAverage: vote(8.2),
		Popularity:  85.5,
	}
	upcoming := tmdb.Item{
		ID:          1,
		MediaType:   tmdb.MediaTypeTV,
		Title:       "Next Season",
		ReleaseDate: "2025-09-01",
	}
	person := tmdb.Item{ID: 2, MediaType: tmdb.MediaTypePerson, Title: "Keanu Reeves"}

	tests := []struct {
		name       string
		expression string
		item       tmdb.Item
		expected   bool
	}{
		{"media type helper", `isMovie()`, movie, true},
		{"media type field", `MediaType == "tv"`, upcoming, true},
		{"person helper", `isPerson()`, person, true},
		{"year comparison", `Year < 2000`, movie, true},
		{"unknown year is zero", `Year == 0`, person, true},
		{"vote threshold", `VoteAverage >= 8`, movie, true},
		{"missing vote", `HasVote`, upcoming, false},
		{"poster", `HasPoster`, person, false},
		{"title contains", `lower(Title) contains "matrix"`, movie, true},
		{"starts with", `Title startsWith "Next"`, upcoming, true},
		{"ends with", `lower(Title) endsWith "season"`, upcoming, true},
		{"starts with is case sensitive", `Title startsWith "next"`, upcoming, false},
		{"released before", `releasedBefore(parseDate("2000-01-01"))`, movie, true},
		{"released after", `releasedAfter(yearsAgo(5))`, movie, false},
		{"unknown release never matches", `releasedBefore(now())`, person, false},
		{"upcoming", `isUpcoming()`, upcoming, true},
		{"released long ago", `daysSince(ReleaseDate) > 365`, movie, true},
		{"unknown release has no age", `daysSince(ReleaseDate) == -1`, person, true},
		{"unknown release is not old", `daysSince(ReleaseDate) > 365`, person, false},
		{"complex", `isMovie() and VoteAverage > 8 and Popularity > 50 and not isUpcoming()`, movie, true},
	}

	compiler := newTestCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filter.Evaluate(tt.item), "expression %q", tt.expression)
		})
	}
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isClassic": func(year int) bool { return year > 0 && year < 1980 },
	}))

	filter, err := compiler.Compile(`isClassic(Year)`)
	require.NoError(t, err)
	assert.True(t, filter.Evaluate(tmdb.Item{MediaType: tmdb.MediaTypeMovie, ReleaseDate: "1968-04-02"}))
	assert.False(t, filter.Evaluate(tmdb.Item{MediaType: tmdb.MediaTypeMovie, ReleaseDate: "1999-03-30"}))
}

func TestApplyKeepsOrder(t *testing.T) {
	items := generateTestItems(20)
	filter, err := newTestCompiler().Compile(`isTV()`)
	require.NoError(t, err)

	matches := Apply(filter, items)
	require.Len(t, matches, 10)
	for i := 1; i < len(matches); i++ {
		assert.Less(t, matches[i-1].ID, matches[i].ID)
	}
}

func TestConcurrentEvaluation(t *testing.T) {
	items := generateTestItems(1000)

	filter, err := newTestCompiler().Compile(`isMovie() and Year > 2021`)
	require.NoError(t, err)

	evaluator := NewConcurrentEvaluator(WithWorkers(4), WithBatchSize(50))
	matches, err := evaluator.Evaluate(context.Background(), filter, items)
	require.NoError(t, err)

	assert.Equal(t, Apply(filter, items), matches)
}

func TestConcurrentEvaluationCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	filter, err := newTestCompiler().Compile(`isMovie()`)
	require.NoError(t, err)

	evaluator := NewConcurrentEvaluator(WithWorkers(2), WithBatchSize(10))
	_, err = evaluator.Evaluate(ctx, filter, generateTestItems(100))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilterManager(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(WithCompiler(newTestCompiler()))

	err := manager.RegisterFilters(map[string]string{
		"movies":   `isMovie()`,
		"recent":   `Year >= 2023`,
		"acclaimed": `VoteAverage >= 8`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"acclaimed", "movies", "recent"}, manager.ListFilters())

	filter, exists := manager.GetFilter("movies")
	require.True(t, exists)
	assert.Equal(t, `isMovie()`, filter.Expression())

	items := generateTestItems(100)
	matches, err := manager.EvaluateFilter(ctx, "movies", items)
	require.NoError(t, err)
	assert.Len(t, matches, 50)

	results, err := manager.EvaluateAll(ctx, items)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	selected, err := manager.EvaluateSelected(ctx, []string{"recent"}, items)
	require.NoError(t, err)
	assert.Len(t, selected, 1)
	assert.Contains(t, selected, "recent")

	_, err = manager.EvaluateSelected(ctx, []string{"recent", "missing"}, items)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)

	manager.UnregisterFilter("movies")
	_, exists = manager.GetFilter("movies")
	assert.False(t, exists)

	_, err = manager.EvaluateFilter(ctx, "movies", items)
	assert.ErrorAs(t, err, &notFound)
}

func TestRegisterFiltersIsAllOrNothing(t *testing.T) {
	manager := NewManager()

	err := manager.RegisterFilters(map[string]string{
		"good": `isMovie()`,
		"bad":  `isMovie(`,
	})
	require.Error(t, err)
	assert.Empty(t, manager.ListFilters())
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := newTestCompiler()
	expression := `isMovie() and Year > 2020`

	first, err := compiler.Compile(expression)
	require.NoError(t, err)

	second, err := compiler.Compile(expression)
	require.NoError(t, err)
	assert.Same(t, first, second)

	cachingCompiler, ok := compiler.(CachingCompiler)
	require.True(t, ok)
	assert.Equal(t, 1, cachingCompiler.Size())

	cachingCompiler.Clear()
	assert.Equal(t, 0, cachingCompiler.Size())
}
