package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/format"
	"github.com/s0up4200/marquee/session"
	"github.com/s0up4200/marquee/tmdb"
)

// presetsCmd represents the presets command
var presetsCmd = &cobra.Command{
	Use:   "presets [name...]",
	Short: "Show how many trending items each filter preset matches",
	Long: `Evaluate the filter presets from config against today's trending items.
Without arguments every preset is evaluated.`,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.Flags().IntVar(&pages, "pages", 1, "number of trending pages to evaluate")
}

func runPresets(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(filterManager.ListFilters()) == 0 {
		return fmt.Errorf("no filter presets configured. Please set filter.presets in config")
	}

	state, err := loadPages(ctx, session.QueryFunc(client.Trending), pages)
	if err != nil {
		return fmt.Errorf("failed to load trending: %w", err)
	}

	var results map[string][]tmdb.Item
	if len(args) > 0 {
		results, err = filterManager.EvaluateSelected(ctx, args, state.Items)
	} else {
		results, err = filterManager.EvaluateAll(ctx, state.Items)
	}
	if err != nil {
		return err
	}

	if outputFormat != format.OutputConsole {
		return format.Encode(os.Stdout, outputFormat, results)
	}

	fmt.Printf("Evaluated against %d trending items\n", len(state.Items))
	for _, name := range filterManager.ListFilters() {
		matched, ok := results[name]
		if !ok {
			continue
		}
		f, _ := filterManager.GetFilter(name)
		fmt.Printf("\n%s: %s\n", name, f.Expression())
		fmt.Println(formatter.FormatItems(fmt.Sprintf("%s matches", name), matched, format.FormatOptions{}))
	}
	return nil
}
