package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/session"
	"github.com/s0up4200/marquee/tmdb"
)

var (
	discoverMediaType string
	discoverSort      string
	discoverGenre     int
	discoverYear      string
	discoverUpcoming  bool
)

// trendingCmd represents the trending command
var trendingCmd = &cobra.Command{
	Use:   "trending [movie|tv]",
	Short: "List today's trending titles and people",
	Long: `List today's trending movies, TV shows and people. Pass a media type
to restrict the list to movies or TV shows.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrending,
}

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover movies or TV shows by genre and year",
	Long: `Discover movies or TV shows sorted by popularity or rating, optionally
restricted to a genre and release year. Titles released after today are
excluded unless --upcoming is set.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list <movie|tv> <list>",
	Short: "Show a curated list such as popular or top_rated",
	Long: `Show one of the curated lists.

Movie lists: now_playing, popular, top_rated, upcoming
TV lists:    airing_today, on_the_air, popular, top_rated`,
	Args: cobra.ExactArgs(2),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(listCmd)

	addListFlags(trendingCmd)
	addListFlags(discoverCmd)
	addListFlags(listCmd)

	discoverCmd.Flags().StringVarP(&discoverMediaType, "type", "t", "", "media type to discover (movie or tv, default from config)")
	discoverCmd.Flags().StringVarP(&discoverSort, "sort", "s", "", "sort key such as popularity.desc or vote_average.desc")
	discoverCmd.Flags().IntVarP(&discoverGenre, "genre", "g", 0, "genre id (see 'marquee genres')")
	discoverCmd.Flags().StringVarP(&discoverYear, "year", "y", "", "four digit release year")
	discoverCmd.Flags().BoolVar(&discoverUpcoming, "upcoming", false, "include titles that have not been released yet")
}

func runTrending(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	heading := "Trending today"
	fn := session.QueryFunc(client.Trending)
	if len(args) == 1 {
		mt, err := parseTitleType(args[0])
		if err != nil {
			return err
		}
		heading = fmt.Sprintf("Trending %s today", mt)
		fn = func(ctx context.Context, page int) (*tmdb.Page, error) {
			return client.TrendingMedia(ctx, mt, page)
		}
	}

	logger.Info().Int("pages", pages).Msg("Loading trending")

	state, err := loadPages(ctx, fn, pages)
	if err != nil {
		return fmt.Errorf("failed to load trending: %w", err)
	}
	return printItems(ctx, heading, state)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	filters, err := discoverFilters(cmd)
	if err != nil {
		return err
	}

	logger.Info().
		Str("media_type", string(filters.MediaType)).
		Str("sort", filters.SortKey).
		Str("year", filters.Year).
		Bool("upcoming", filters.IncludeUpcoming).
		Msg("Discovering titles")

	state, err := loadPages(ctx, func(ctx context.Context, page int) (*tmdb.Page, error) {
		return client.Discover(ctx, filters, page)
	}, pages)
	if err != nil {
		return fmt.Errorf("failed to discover titles: %w", err)
	}
	return printItems(ctx, fmt.Sprintf("Discover %s", filters.MediaType), state)
}

// discoverFilters builds the filter set from flags, falling back to config
func discoverFilters(cmd *cobra.Command) (tmdb.DiscoverFilterSet, error) {
	filters := tmdb.DiscoverFilterSet{
		MediaType:       tmdb.MediaType(cfg.Discover.MediaType),
		SortKey:         cfg.Discover.SortKey,
		Year:            strings.TrimSpace(discoverYear),
		IncludeUpcoming: cfg.Discover.IncludeUpcoming,
	}

	if discoverMediaType != "" {
		mt, err := parseTitleType(discoverMediaType)
		if err != nil {
			return filters, err
		}
		filters.MediaType = mt
	}
	if discoverSort != "" {
		filters.SortKey = discoverSort
	}
	if cmd.Flags().Changed("genre") {
		genre := discoverGenre
		filters.GenreID = &genre
	}
	if cmd.Flags().Changed("upcoming") {
		filters.IncludeUpcoming = discoverUpcoming
	}

	if err := filters.Validate(); err != nil {
		return filters, err
	}
	return filters, nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	mt, err := parseTitleType(args[0])
	if err != nil {
		return err
	}
	listName := strings.ToLower(args[1])

	logger.Info().Str("media_type", string(mt)).Str("list", listName).Msg("Loading list")

	state, err := loadPages(ctx, func(ctx context.Context, page int) (*tmdb.Page, error) {
		return client.List(ctx, mt, listName, page)
	}, pages)
	if err != nil {
		return fmt.Errorf("failed to load list: %w", err)
	}

	heading := fmt.Sprintf("%s %s", strings.ReplaceAll(listName, "_", " "), mt)
	return printItems(ctx, heading, state)
}

// parseTitleType parses a movie or tv argument
func parseTitleType(s string) (tmdb.MediaType, error) {
	mt, err := tmdb.ParseMediaType(s)
	if err != nil {
		return "", err
	}
	if !mt.IsTitle() {
		return "", fmt.Errorf("invalid media type %q (must be 'movie' or 'tv')", s)
	}
	return mt, nil
}
