package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/format"
	"github.com/s0up4200/marquee/search"
	"github.com/s0up4200/marquee/session"
	"github.com/s0up4200/marquee/tmdb"
)

var (
	searchPeople      bool
	searchInteractive bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search movies, TV shows or people",
	Long: `Search movies and TV shows, or people with --people.

With --interactive, queries are read line by line from stdin. Each line
replaces the query; a search runs once input has been quiet for the
configured debounce delay. The following commands are understood:

  :people   switch to people search
  :titles   switch to title search
  :more     load the next page of results`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	addListFlags(searchCmd)

	searchCmd.Flags().BoolVar(&searchPeople, "people", false, "search people instead of titles")
	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "read queries from stdin")
}

func runSearch(cmd *cobra.Command, args []string) error {
	mode := tmdb.SearchTitles
	if searchPeople {
		mode = tmdb.SearchPeople
	}

	if searchInteractive {
		return runInteractiveSearch(cmd.Context(), mode, strings.Join(args, " "))
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	ctx := cmd.Context()
	logger.Info().Str("query", query).Str("mode", string(mode)).Msg("Searching")

	state, err := loadPages(ctx, func(ctx context.Context, page int) (*tmdb.Page, error) {
		return client.Search(ctx, mode, query, page)
	}, pages)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printItems(ctx, fmt.Sprintf("Results for %q", query), state)
}

func runInteractiveSearch(ctx context.Context, mode tmdb.SearchMode, initial string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	driver := search.NewDriver(ctx, client, logger,
		search.WithDelay(cfg.Search.Debounce),
		search.WithMinQueryLength(cfg.Search.MinQueryLength),
	)
	defer driver.Close()

	unsubscribe := driver.Subscribe(func(result search.Result) {
		switch result.Status {
		case session.StatusIdle:
			if utf8.RuneCountInString(result.Query) < cfg.Search.MinQueryLength {
				return
			}
			if err := printItems(ctx, fmt.Sprintf("Results for %q", result.Query), result.State); err != nil {
				logger.Error().Err(err).Msg("Failed to print results")
			}
		case session.StatusError:
			fmt.Fprintf(os.Stderr, "Search for %q failed: %s\n", result.Query, result.LastError)
		}
	})
	defer unsubscribe()

	prompt := isatty.IsTerminal(os.Stdin.Fd())
	if prompt {
		fmt.Printf("Searching %s. Type a query, :people, :titles or :more (Ctrl-D to quit)\n", mode)
	}

	driver.SetMode(mode)
	if initial != "" {
		driver.SetQuery(initial)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case ":people":
			driver.SetMode(tmdb.SearchPeople)
		case ":titles":
			driver.SetMode(tmdb.SearchTitles)
		case ":more":
			driver.Flush()
			if err := driver.LoadMore(ctx); err != nil {
				fmt.Fprintln(os.Stderr, describeLoadMore(err))
			}
		default:
			driver.SetQuery(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	// Input is closed; run whatever is still waiting for the delay and let
	// a search already in flight finish before the driver is closed
	driver.Flush()
	if err := driver.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("search did not finish: %w", err)
	}

	if outputFormat == format.OutputConsole && prompt {
		fmt.Println()
	}
	return nil
}

// describeLoadMore turns a rejected load into a short message
func describeLoadMore(err error) string {
	switch {
	case errors.Is(err, session.ErrNoMorePages):
		return "No more results"
	case errors.Is(err, session.ErrBusy):
		return "Still loading, try again"
	default:
		return fmt.Sprintf("Loading more failed: %v", err)
	}
}
