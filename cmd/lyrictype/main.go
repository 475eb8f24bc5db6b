// Package main provides the CLI entrypoint for lyrictype.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/lyrictype/internal/config"
	"github.com/verte-zerg/lyrictype/internal/lyricsapi"
	"github.com/verte-zerg/lyrictype/internal/model"
	"github.com/verte-zerg/lyrictype/internal/queue"
	"github.com/verte-zerg/lyrictype/internal/recent"
	"github.com/verte-zerg/lyrictype/internal/stats"
	"github.com/verte-zerg/lyrictype/internal/statsui"
	"github.com/verte-zerg/lyrictype/internal/store"
	"github.com/verte-zerg/lyrictype/internal/tui"
)

const (
	defaultAPIURL      = "http://localhost:3000"
	defaultAPITimeout  = 10 * time.Second
	defaultSearchLimit = 8
	defaultPrefetch    = 5
	defaultLowWater    = 2
	defaultCurveWindow = 20
)

var (
	playArtist      string
	playArtistName  string
	playCaps        bool
	playPunct       bool
	playAPIURL      string
	playAPITimeout  time.Duration
	playSearchLimit int
	playPrefetch    int
	playLowWater    int

	statsArtist      string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lyrictype",
		Short:         "Typing trainer for song lyrics",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playArtist, "artist", "", "artist id to start with (skips search)")
	rootCmd.Flags().StringVar(&playArtistName, "artist-name", "", "display name for --artist")
	rootCmd.Flags().BoolVar(&playCaps, "caps", true, "keep capitalization")
	rootCmd.Flags().BoolVar(&playPunct, "punct", true, "keep punctuation")
	rootCmd.Flags().StringVar(&playAPIURL, "api-url", defaultAPIURL, "lyrics provider base URL")
	rootCmd.Flags().DurationVar(&playAPITimeout, "api-timeout", defaultAPITimeout, "lyrics provider request timeout")
	rootCmd.Flags().IntVar(&playSearchLimit, "search-limit", defaultSearchLimit, "max artist search results")
	rootCmd.Flags().IntVar(&playPrefetch, "prefetch", defaultPrefetch, "songs to load ahead in the background")
	rootCmd.Flags().IntVar(&playLowWater, "low-water", defaultLowWater, "songs left ahead before loading more")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "caps", &playCaps, fileCfg.Typing.Capitalization)
	applyBoolConfig(cmd, "punct", &playPunct, fileCfg.Typing.Punctuation)
	applyStringConfig(cmd, "api-url", &playAPIURL, fileCfg.API.BaseURL)
	applyDurationConfig(cmd, "api-timeout", &playAPITimeout, fileCfg.API.Timeout)
	applyIntConfig(cmd, "search-limit", &playSearchLimit, fileCfg.API.SearchLimit)
	applyIntConfig(cmd, "prefetch", &playPrefetch, fileCfg.Queue.Prefetch)
	applyIntConfig(cmd, "low-water", &playLowWater, fileCfg.Queue.LowWater)

	cfg := model.Config{
		Capitalization: playCaps,
		Punctuation:    playPunct,
		APIBaseURL:     strings.TrimRight(playAPIURL, "/"),
		APITimeout:     playAPITimeout,
		SearchLimit:    playSearchLimit,
		PrefetchCount:  playPrefetch,
		LowWater:       playLowWater,
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if playArtistName != "" && playArtist == "" {
		return fmt.Errorf("--artist-name requires --artist")
	}

	logPath := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(logPath, "lyrictype")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	seed, err := st.LoadRecentArtists(ctx)
	if err != nil {
		logErrf("failed to load recent artists: %v\n", err)
	}
	recents := recent.New(seed)

	client, err := lyricsapi.New(cfg.APIBaseURL, lyricsapi.WithTimeout(cfg.APITimeout))
	if err != nil {
		return fmt.Errorf("failed to create lyrics client: %w", err)
	}
	manager := queue.NewManager(client, queue.Options{
		PrefetchCount: cfg.PrefetchCount,
		LowWater:      cfg.LowWater,
		Recent:        recents,
	})
	defer manager.Close()

	opts := tui.Options{
		Config:  cfg,
		Store:   st,
		Manager: manager,
		Finder:  client,
		Recent:  recents,
	}
	if playArtist != "" {
		opts.Artist = &model.ArtistRef{ID: playArtist, Name: playArtistName}
	}

	program := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := st.SaveRecentArtists(ctx, recents.List()); err != nil {
		logErrf("failed to save recent artists: %v\n", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsArtist, "artist", "", "artist id filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N tests")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		ArtistID:    statsArtist,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		width := 0
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
		if err := report.Render(cmd.OutOrStdout(), width); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	program := tea.NewProgram(statsui.NewModel(statsui.StoreLoader(st), cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# lyrictype configuration
# Uncomment a value to enable it. CLI flags override config values.

[typing]
# capitalization = true   # Keep capitalization
# punctuation = true      # Keep punctuation

[api]
# base-url = %q           # Lyrics provider base URL
# timeout = %q            # Request timeout
# search-limit = %d       # Max artist search results

[queue]
# prefetch = %d           # Songs to load ahead in the background
# low-water = %d          # Songs left ahead before loading more
`,
		defaultAPIURL,
		defaultAPITimeout.String(),
		defaultSearchLimit,
		defaultPrefetch,
		defaultLowWater,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
