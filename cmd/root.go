package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/s0up4200/marquee/config"
	"github.com/s0up4200/marquee/filter"
	"github.com/s0up4200/marquee/format"
	"github.com/s0up4200/marquee/kv"
	"github.com/s0up4200/marquee/session"
	"github.com/s0up4200/marquee/tmdb"
	"github.com/s0up4200/marquee/watchlist"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	client        *tmdb.Client
	store         kv.Store
	saved         *watchlist.Store
	filterManager *filter.Manager
	formatter     *format.ConsoleFormatter

	// Command flags
	outputFormat string
	whereExpr    string
	presetNames  []string
	pages        int
	showDetails  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "Browse movies, TV shows and people from TMDB",
	Long: `marquee is a CLI for The Movie Database. It lists trending titles,
discovers movies and shows by genre and year, searches titles and people,
shows details, and keeps a local watchlist.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", format.OutputConsole, "output format (console, json, yaml)")

	// Add subcommands
	rootCmd.AddCommand(testCmd)
}

// addListFlags registers the flags shared by commands that print item lists
func addListFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&pages, "pages", 1, "number of result pages to load")
	cmd.Flags().StringVarP(&whereExpr, "where", "w", "", "filter expression applied to the results")
	cmd.Flags().StringSliceVarP(&presetNames, "preset", "p", nil, "apply preset filters from config")
	cmd.Flags().BoolVar(&showDetails, "details", false, "show ids, ratings and poster links")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	outputFormat = strings.ToLower(outputFormat)
	switch outputFormat {
	case format.OutputConsole, format.OutputJSON, format.OutputYAML:
	default:
		return fmt.Errorf("invalid output format: %s (must be 'console', 'json' or 'yaml')", outputFormat)
	}

	// Create TMDB client
	client = tmdb.NewClient(cfg.TMDB.Credentials(), logger,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
	)
	if !client.HasCredential() {
		logger.Warn().Msg("No TMDB token configured; set MARQUEE_TMDB_TOKEN or TMDB_READ_TOKEN")
	}

	// Open local storage
	store, err = kv.Open(cfg.Storage.KV())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	saved = watchlist.New(store, logger)

	// Compile preset filters
	filterManager = filter.NewManager()
	if err := filterManager.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	formatter = format.NewConsoleFormatter(client.ImageBase())

	logger.Debug().
		Str("storage", cfg.Storage.Driver).
		Int("presets", len(cfg.Filter.Presets)).
		Msg("Initialized")

	return nil
}

// shutdownApp releases local storage
func shutdownApp(cmd *cobra.Command, args []string) error {
	if store == nil {
		return nil
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stderr

	// Console format
	if cfg.Format != "json" {
		tty := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    !cfg.Color || !tty,
		}
	}

	// Rotated log file, always JSON
	if cfg.File != "" {
		output = zerolog.MultiLevelWriter(output, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		})
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the TMDB token and local storage",
	Long:  `Verify the configured TMDB token and display where configuration and the watchlist are read from.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if used := config.ConfigFileUsed(cfgFile); used != "" {
		fmt.Printf("Config file: %s\n", used)
	} else {
		fmt.Println("Config file: none (using environment and defaults)")
	}

	fmt.Printf("Testing connection to %s...\n", cfg.TMDB.BaseURL)
	if err := client.TestConnection(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Println("✓ Connection successful!")

	fmt.Printf("\nStorage: %s", cfg.Storage.Driver)
	if cfg.Storage.Driver != kv.DriverMemory {
		fmt.Printf(" (%s)", cfg.Storage.Path)
	}
	fmt.Println()
	fmt.Printf("- Watchlist entries: %d\n", len(saved.Load(ctx)))

	if names := filterManager.ListFilters(); len(names) > 0 {
		fmt.Printf("\nFilter presets:\n")
		for _, name := range names {
			f, _ := filterManager.GetFilter(name)
			fmt.Printf("  • %s: %s\n", name, f.Expression())
		}
	}

	return nil
}

// loadPages drives a fresh session for up to n pages of fn
func loadPages(ctx context.Context, fn session.QueryFunc, n int) (session.State, error) {
	s := session.New(logger)
	defer s.Close()

	unsubscribe := s.Subscribe(func(state session.State) {
		logger.Debug().
			Str("status", state.Status.String()).
			Int("page", state.Page).
			Int("items", len(state.Items)).
			Bool("has_more", state.HasMore).
			Msg("Results updated")
	})
	defer unsubscribe()

	if err := s.LoadFirstPage(ctx, fn); err != nil {
		return s.Snapshot(), err
	}

	for i := 1; i < n; i++ {
		err := s.LoadNextPage(ctx, fn)
		if errors.Is(err, session.ErrNoMorePages) {
			break
		}
		if err != nil {
			return s.Snapshot(), err
		}
	}

	return s.Snapshot(), nil
}

// applyFilters narrows items by --where and every --preset
func applyFilters(ctx context.Context, items []tmdb.Item) ([]tmdb.Item, error) {
	if whereExpr != "" {
		f, err := filterManager.Compile(whereExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		items = filter.Apply(f, items)
	}

	for _, name := range presetNames {
		var err error
		items, err = filterManager.EvaluateFilter(ctx, name, items)
		if err != nil {
			return nil, err
		}
	}

	return items, nil
}

// printItems filters and prints a result list in the selected output format
func printItems(ctx context.Context, heading string, state session.State) error {
	items, err := applyFilters(ctx, state.Items)
	if err != nil {
		return err
	}

	if outputFormat != format.OutputConsole {
		return format.Encode(os.Stdout, outputFormat, items)
	}

	fmt.Println(formatter.FormatItems(heading, items, format.FormatOptions{ShowDetails: showDetails}))
	if state.HasMore {
		fmt.Printf("\nMore results available (page %d loaded, use --pages)\n", state.Page)
	}
	return nil
}

// printValue prints v with the console renderer or the selected encoder
func printValue(v any, console func() string) error {
	if outputFormat != format.OutputConsole {
		return format.Encode(os.Stdout, outputFormat, v)
	}
	fmt.Println(console())
	return nil
}
