package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/format"
	"github.com/s0up4200/marquee/tmdb"
	"github.com/s0up4200/marquee/watchlist"
)

// watchlistCmd represents the watchlist command
var watchlistCmd = &cobra.Command{
	Use:     "watchlist",
	Aliases: []string{"wl"},
	Short:   "Show the local watchlist",
	Long: `Show the titles and people saved to the local watchlist, newest first.
Use the toggle and clear subcommands to change it.`,
	Args: cobra.NoArgs,
	RunE: runWatchlist,
}

// watchlistToggleCmd represents the watchlist toggle command
var watchlistToggleCmd = &cobra.Command{
	Use:   "toggle <movie|tv|person> <id>",
	Short: "Add an item to the watchlist, or remove it if already saved",
	Args:  cobra.ExactArgs(2),
	RunE:  runWatchlistToggle,
}

// watchlistClearCmd represents the watchlist clear command
var watchlistClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every item from the watchlist",
	Args:  cobra.NoArgs,
	RunE:  runWatchlistClear,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(watchlistToggleCmd)
	watchlistCmd.AddCommand(watchlistClearCmd)

	watchlistCmd.Flags().StringVarP(&whereExpr, "where", "w", "", "filter expression applied to the entries")
}

func runWatchlist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	entries := saved.Load(ctx)
	if whereExpr != "" {
		f, err := filterManager.Compile(whereExpr)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		kept := entries[:0]
		for _, entry := range entries {
			if f.Evaluate(entry.Item) {
				kept = append(kept, entry)
			}
		}
		entries = kept
	}

	if outputFormat != format.OutputConsole {
		return format.Encode(os.Stdout, outputFormat, entries)
	}
	fmt.Println(formatter.FormatWatchlist(entries))
	return nil
}

func runWatchlistToggle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	mt, err := tmdb.ParseMediaType(args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	unsubscribe := saved.Subscribe(func(entries []watchlist.Entry) {
		logger.Debug().Int("entries", len(entries)).Msg("Watchlist saved")
	})
	defer unsubscribe()

	item, added, entries, err := toggleWatchlist(ctx, tmdb.Key{ID: id, MediaType: mt})
	if err != nil {
		return err
	}

	if added {
		fmt.Printf("Added %s to your watchlist (%d items)\n", item.Title, len(entries))
	} else {
		fmt.Printf("Removed %s from your watchlist (%d items)\n", item.Title, len(entries))
	}
	return nil
}

// toggleWatchlist removes a saved entry without contacting the catalog, or
// fetches the record for key and adds it
func toggleWatchlist(ctx context.Context, key tmdb.Key) (tmdb.Item, bool, []watchlist.Entry, error) {
	current := saved.Load(ctx)
	idx := slices.IndexFunc(current, func(e watchlist.Entry) bool { return e.Key() == key })

	var item tmdb.Item
	if idx >= 0 {
		item = current[idx].Item
	} else {
		var err error
		item, err = lookupItem(ctx, key.MediaType, key.ID)
		if err != nil {
			return item, false, nil, err
		}
	}

	entries, err := saved.Toggle(ctx, item)
	if err != nil {
		return item, false, entries, fmt.Errorf("failed to update watchlist: %w", err)
	}
	return item, idx < 0, entries, nil
}

func runWatchlistClear(cmd *cobra.Command, args []string) error {
	if err := saved.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear watchlist: %w", err)
	}
	fmt.Println("Watchlist cleared")
	return nil
}

// lookupItem fetches the record to save so the watchlist holds a full item
func lookupItem(ctx context.Context, mt tmdb.MediaType, id int) (tmdb.Item, error) {
	if mt == tmdb.MediaTypePerson {
		person, err := client.Person(ctx, id)
		if err != nil {
			return tmdb.Item{}, fmt.Errorf("failed to load person: %w", err)
		}
		return tmdb.Item{
			ID:         person.ID,
			MediaType:  tmdb.MediaTypePerson,
			Title:      person.Name,
			PosterPath: person.ProfilePath,
			Overview:   person.Biography,
		}, nil
	}

	details, err := client.Details(ctx, mt, id)
	if err != nil {
		return tmdb.Item{}, fmt.Errorf("failed to load details: %w", err)
	}
	return details.Item(), nil
}
