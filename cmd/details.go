package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/tmdb"
)

var creditLimit int

// detailsCmd represents the details command
var detailsCmd = &cobra.Command{
	Use:   "details <movie|tv> <id>",
	Short: "Show details, cast and trailers of a movie or TV show",
	Args:  cobra.ExactArgs(2),
	RunE:  runDetails,
}

// personCmd represents the person command
var personCmd = &cobra.Command{
	Use:   "person <id>",
	Short: "Show a person's biography and best known credits",
	Args:  cobra.ExactArgs(1),
	RunE:  runPerson,
}

// seasonCmd represents the season command
var seasonCmd = &cobra.Command{
	Use:   "season <tv-id> <season-number>",
	Short: "List the episodes of a TV season",
	Args:  cobra.ExactArgs(2),
	RunE:  runSeason,
}

// genresCmd represents the genres command
var genresCmd = &cobra.Command{
	Use:   "genres <movie|tv>",
	Short: "List the genre ids used by discover",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenres,
}

func init() {
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(personCmd)
	rootCmd.AddCommand(seasonCmd)
	rootCmd.AddCommand(genresCmd)

	personCmd.Flags().IntVar(&creditLimit, "limit", 10, "number of credits to show")
}

func runDetails(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	mt, err := parseTitleType(args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	logger.Info().Str("media_type", string(mt)).Int("id", id).Msg("Loading details")

	title, err := client.Title(ctx, mt, id)
	if err != nil {
		return fmt.Errorf("failed to load details: %w", err)
	}

	inWatchlist := saved.Contains(ctx, tmdb.Key{ID: id, MediaType: mt})
	return printValue(title, func() string {
		return formatter.FormatTitle(title, inWatchlist)
	})
}

func runPerson(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	logger.Info().Int("id", id).Msg("Loading person")

	profile, err := client.PersonProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load person: %w", err)
	}

	return printValue(profile, func() string {
		return formatter.FormatPerson(profile, creditLimit)
	})
}

func runSeason(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	tvID, err := parseID(args[0])
	if err != nil {
		return err
	}
	number, err := strconv.Atoi(args[1])
	if err != nil || number < 0 {
		return fmt.Errorf("invalid season number: %s", args[1])
	}

	logger.Info().Int("tv_id", tvID).Int("season", number).Msg("Loading season")

	season, err := client.SeasonDetails(ctx, tvID, number)
	if err != nil {
		return fmt.Errorf("failed to load season: %w", err)
	}

	return printValue(season, func() string {
		return formatter.FormatSeason(season)
	})
}

func runGenres(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	mt, err := parseTitleType(args[0])
	if err != nil {
		return err
	}

	genres, err := client.Genres(ctx, mt)
	if err != nil {
		return fmt.Errorf("failed to load genres: %w", err)
	}

	return printValue(genres, func() string {
		return formatter.FormatGenres(mt, genres)
	})
}

// parseID parses a positive catalog id
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}
