// Package main provides the CLI entrypoint for scdash.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/scdash/internal/analysis"
	"github.com/verte-zerg/scdash/internal/catalog"
	"github.com/verte-zerg/scdash/internal/command"
	"github.com/verte-zerg/scdash/internal/config"
	"github.com/verte-zerg/scdash/internal/dashboard"
	"github.com/verte-zerg/scdash/internal/export"
	"github.com/verte-zerg/scdash/internal/model"
	"github.com/verte-zerg/scdash/internal/pathcheck"
	"github.com/verte-zerg/scdash/internal/runner"
	"github.com/verte-zerg/scdash/internal/stats"
	"github.com/verte-zerg/scdash/internal/store"
	"github.com/verte-zerg/scdash/internal/watch"
)

const (
	defaultGamesLimit   = 20
	defaultHistoryLimit = 20
)

var (
	flagReplayDir string
	flagPlayer    string
	flagRecursive bool
	flagAnalyzers []string
	flagOutput    string
	flagFilters   []string
	flagRunner    string
	flagBinary    string
	flagValidator string
	flagDBPath    string
	flagVerbose   bool

	runRaw   bool
	runLimit int

	exportDir    string
	exportForce  bool
	exportStdout bool

	historyLimit int

	watchDebounce    time.Duration
	watchMinInterval time.Duration
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "scdash",
		Short:         "StarCraft replay statistics dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagReplayDir, "replay-dir", "", "directory containing replay files")
	flags.StringVar(&flagPlayer, "player", "", "your player name (enables player analyzers)")
	flags.BoolVar(&flagRecursive, "recursive", true, "search subdirectories for replays")
	flags.StringSliceVar(&flagAnalyzers, "analyzers", append([]string(nil), model.DefaultAnalyzers...), "comma-separated analyzer keys")
	flags.StringVar(&flagOutput, "output", string(model.FormatCSV), "sctool output format (csv or json)")
	flags.StringArrayVar(&flagFilters, "filter", nil, "analyzer filter as analyzer:operator:value (stored, not applied)")
	flags.StringVar(&flagRunner, "runner", config.RunnerStub, "runner mode (stub or exec)")
	flags.StringVar(&flagBinary, "binary", command.Binary, "sctool binary for the exec runner")
	flags.StringVar(&flagValidator, "validator", "", "path validator (simulated or dir; default depends on runner)")
	flags.StringVar(&flagDBPath, "db", "", "database path (default: $XDG_DATA_HOME/scdash/scdash.db)")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newCommandCmd())
	rootCmd.AddCommand(newAnalyzersCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds the components shared by every command.
type app struct {
	cfg       config.FileConfig
	settings  model.Settings
	catalog   *catalog.Catalog
	validator pathcheck.Validator
	store     *store.SQLite
	service   *analysis.Service
	exporter  *export.Exporter
	logger    *slog.Logger
	logFile   *os.File
}

func openApp(cmd *cobra.Command, logOut io.Writer) (*app, error) {
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a := &app{cfg: cfg}
	a.logger = newLogger(logOut, flagVerbose)

	a.catalog, err = cfg.Catalog()
	if err != nil {
		return nil, err
	}
	a.settings, err = buildSettings(cmd, cfg, a.catalog)
	if err != nil {
		return nil, err
	}

	applyStringConfig(cmd, "runner", &flagRunner, cfg.Runner.Mode)
	applyStringConfig(cmd, "binary", &flagBinary, cfg.Runner.Binary)
	applyStringConfig(cmd, "validator", &flagValidator, cfg.Runner.Validator)
	run, err := newRunner(flagRunner, flagBinary, a.logger)
	if err != nil {
		return nil, err
	}
	a.validator, err = newValidator(flagValidator, flagRunner)
	if err != nil {
		return nil, err
	}

	dbPath := flagDBPath
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	a.store, err = store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	a.service, err = analysis.New(analysis.Options{
		Runner:    run,
		Validator: a.validator,
		Results:   a.store,
		Runs:      a.store,
		Catalog:   a.catalog,
		Logger:    a.logger,
		Binary:    flagBinary,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.exporter = export.NewExporter(a.store, a.logger, nil)
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	if a.logFile != nil {
		if cerr := a.logFile.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newRunner(mode, binary string, logger *slog.Logger) (runner.Runner, error) {
	switch mode {
	case config.RunnerStub:
		return runner.NewStub(logger), nil
	case config.RunnerExec:
		return runner.Exec{Binary: binary, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("--runner must be %s or %s", config.RunnerStub, config.RunnerExec)
	}
}

func newValidator(mode, runnerMode string) (pathcheck.Validator, error) {
	if mode == "" {
		mode = config.ValidatorSimulated
		if runnerMode == config.RunnerExec {
			mode = config.ValidatorDir
		}
	}
	switch mode {
	case config.ValidatorSimulated:
		return pathcheck.NewSimulated(), nil
	case config.ValidatorDir:
		return pathcheck.Dir{}, nil
	default:
		return nil, fmt.Errorf("--validator must be %s or %s", config.ValidatorSimulated, config.ValidatorDir)
	}
}

// buildSettings merges config values and flags into analysis settings.
func buildSettings(cmd *cobra.Command, cfg config.FileConfig, cat *catalog.Catalog) (model.Settings, error) {
	applyStringConfig(cmd, "replay-dir", &flagReplayDir, cfg.Analysis.ReplayDir)
	applyStringConfig(cmd, "player", &flagPlayer, cfg.Analysis.Player)
	applyBoolConfig(cmd, "recursive", &flagRecursive, cfg.Analysis.Recursive)
	applySliceConfig(cmd, "analyzers", &flagAnalyzers, cfg.Analysis.Analyzers)
	applyStringConfig(cmd, "output", &flagOutput, cfg.Analysis.Output)

	format, err := model.ParseOutputFormat(flagOutput)
	if err != nil {
		return model.Settings{}, fmt.Errorf("invalid --output: %w", err)
	}
	analyzers := normalizeAnalyzers(flagAnalyzers)
	if err := cat.Validate(analyzers); err != nil {
		return model.Settings{}, err
	}

	filters := make([]model.FilterConfig, 0, len(flagFilters)+len(cfg.Analysis.Filters))
	if cmd.Flags().Changed("filter") {
		for _, raw := range flagFilters {
			f, err := parseFilter(raw)
			if err != nil {
				return model.Settings{}, err
			}
			filters = append(filters, f)
		}
	} else {
		for _, fc := range cfg.Analysis.Filters {
			op, err := model.ParseFilterOperator(fc.Operator)
			if err != nil {
				return model.Settings{}, fmt.Errorf("invalid filter in config: %w", err)
			}
			filters = append(filters, model.FilterConfig{Analyzer: fc.Analyzer, Operator: op, Value: fc.Value})
		}
	}

	return model.Settings{
		ReplayPath:        strings.TrimSpace(flagReplayDir),
		RecursiveSearch:   flagRecursive,
		PlayerName:        strings.TrimSpace(flagPlayer),
		OutputFormat:      format,
		SelectedAnalyzers: analyzers,
		Filters:           filters,
	}, nil
}

// normalizeAnalyzers trims keys and drops empties and duplicates.
func normalizeAnalyzers(keys []string) []string {
	s := model.Settings{SelectedAnalyzers: []string{}}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || s.HasAnalyzer(k) {
			continue
		}
		s.ToggleAnalyzer(k)
	}
	return s.SelectedAnalyzers
}

func parseFilter(raw string) (model.FilterConfig, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return model.FilterConfig{}, fmt.Errorf("invalid --filter %q (want analyzer:operator:value)", raw)
	}
	op, err := model.ParseFilterOperator(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.FilterConfig{}, fmt.Errorf("invalid --filter %q: %w", raw, err)
	}
	return model.FilterConfig{
		Analyzer: strings.TrimSpace(parts[0]),
		Operator: op,
		Value:    strings.TrimSpace(parts[2]),
	}, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	// Logs would corrupt the alternate screen, so they go to a file or nowhere.
	logOut := io.Discard
	var logFile *os.File
	if flagVerbose {
		path := config.DefaultLogPath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		logOut = f
	}
	a, err := openApp(cmd, logOut)
	if err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return err
	}
	a.logFile = logFile
	defer a.close()

	var latest *store.Latest
	cached, err := store.LoadLatest(cmd.Context(), a.store)
	switch {
	case err == nil:
		latest = &cached
	case !errors.Is(err, store.ErrNoResult):
		a.logger.Warn("failed to load cached result", "err", err)
	}

	exportOut := config.DefaultExportDir()
	if a.cfg.Export.Dir != nil {
		exportOut = *a.cfg.Export.Dir
	}
	overwrite := a.cfg.Export.Overwrite != nil && *a.cfg.Export.Overwrite

	m := dashboard.New(dashboard.Options{
		Service:   a.service,
		Exporter:  a.exporter,
		Catalog:   a.catalog,
		Validator: a.validator,
		Settings:  a.settings,
		Latest:    latest,
		Binary:    flagBinary,
		ExportDir: exportOut,
		Overwrite: overwrite,
		Logger:    a.logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an analysis and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runRunCmd,
	}
	cmd.Flags().BoolVar(&runRaw, "raw", false, "print raw sctool output instead of a summary")
	cmd.Flags().IntVar(&runLimit, "limit", defaultGamesLimit, "number of games to list (0 lists all)")
	return cmd
}

func runRunCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := a.service.Run(ctx, a.settings)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if runRaw {
		_, err := io.WriteString(out, result.Output)
		return err
	}
	rows := a.service.Rows(result, a.settings.OutputFormat)
	return printAnalysis(out, result, rows, a.settings.PlayerName != "", runLimit)
}

func printAnalysis(out io.Writer, result model.AnalysisResult, rows []model.ReplayData, withPlayer bool, limit int) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Analyzed %s replay files in %s\n\n",
		humanize.Comma(int64(result.FileCount)), result.ExecutionTime.Round(time.Millisecond))
	if err := stats.RenderSummary(&buf, stats.Summarize(rows)); err != nil {
		return err
	}
	if err := stats.RenderCounts(&buf, "Games per Matchup", "Matchup", stats.MatchupCounts(rows)); err != nil {
		return err
	}
	if err := stats.RenderCounts(&buf, "Games per Map", "Map", stats.MapCounts(rows)); err != nil {
		return err
	}
	if err := stats.RenderGames(&buf, rows, limit, withPlayer); err != nil {
		return err
	}
	return writeClipped(out, buf.String())
}

// writeClipped writes text, truncating lines to the terminal width when out
// is a terminal.
func writeClipped(out io.Writer, text string) error {
	width := 0
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}
	if width > 0 {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			if r := []rune(line); len(r) > width {
				lines[i] = string(r[:width])
			}
		}
		text = strings.Join(lines, "\n")
	}
	_, err := io.WriteString(out, text)
	return err
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the replay directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			v := a.service.Validate(cmd.Context(), a.settings)
			if !v.Valid {
				return fmt.Errorf("invalid replay path: %s", v.Error)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s replay files\n", a.settings.ReplayPath, humanize.Comma(int64(v.FileCount)))
			return err
		},
	}
}

func newCommandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "command",
		Short: "Print the sctool command line for the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(config.DefaultConfigPath())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cat, err := cfg.Catalog()
			if err != nil {
				return err
			}
			settings, err := buildSettings(cmd, cfg, cat)
			if err != nil {
				return err
			}
			applyStringConfig(cmd, "binary", &flagBinary, cfg.Runner.Binary)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), command.String(flagBinary, command.Build(settings)))
			return err
		},
	}
}

func newAnalyzersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyzers",
		Short: "List available analyzers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(config.DefaultConfigPath())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cat, err := cfg.Catalog()
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), cat)
		},
	}
}

func printCatalog(out io.Writer, cat *catalog.Catalog) error {
	groups := cat.ByCategory()
	for i, name := range cat.Categories() {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(out, name); err != nil {
			return err
		}
		rows := make([][]string, 0, len(groups[name]))
		for _, d := range groups[name] {
			rows = append(rows, []string{d.Key, d.Label, d.Description})
		}
		if err := stats.RenderTable(out, []string{"Key", "Label", "Description"}, rows, nil); err != nil {
			return err
		}
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the latest analysis result",
	}
	cmd.PersistentFlags().StringVar(&exportDir, "dir", "", "output directory (default: $XDG_DATA_HOME/scdash/exports)")
	cmd.PersistentFlags().BoolVar(&exportForce, "force", false, "overwrite an existing export")
	cmd.PersistentFlags().BoolVar(&exportStdout, "stdout", false, "write to stdout instead of a file")
	for _, kind := range []struct {
		kind  export.Kind
		short string
	}{
		{export.KindCSV, "Export raw sctool output as CSV"},
		{export.KindJSON, "Export settings and parsed rows as JSON"},
		{export.KindReport, "Export an HTML summary report"},
		{export.KindCharts, "Export an HTML page with charts"},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(kind.kind),
			Short: kind.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runExport(cmd, kind.kind)
			},
		})
	}
	return cmd
}

func runExport(cmd *cobra.Command, kind export.Kind) error {
	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	if exportStdout {
		err = a.exporter.Export(cmd.Context(), kind, cmd.OutOrStdout())
	} else {
		dir := config.DefaultExportDir()
		if a.cfg.Export.Dir != nil {
			dir = *a.cfg.Export.Dir
		}
		if exportDir != "" {
			dir = exportDir
		}
		overwrite := exportForce
		applyBoolConfig(cmd, "force", &overwrite, a.cfg.Export.Overwrite)
		var path string
		path, err = a.exporter.WriteFile(cmd.Context(), kind, export.Options{Dir: dir, Overwrite: overwrite})
		if err == nil {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
		}
	}
	if errors.Is(err, export.ErrNoResult) {
		return fmt.Errorf("%w; run an analysis first", err)
	}
	return err
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			runs, err := a.service.History(cmd.Context(), historyLimit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			return printHistory(cmd.OutOrStdout(), runs, time.Now())
		},
	}
	cmd.Flags().IntVar(&historyLimit, "limit", defaultHistoryLimit, "number of runs to list (0 lists all)")
	return cmd
}

func printHistory(out io.Writer, runs []model.RunRecord, now time.Time) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No runs recorded yet.")
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Error
		}
		rows = append(rows, []string{
			r.ID[:min(8, len(r.ID))],
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			(time.Duration(r.DurationMs) * time.Millisecond).String(),
			humanize.Comma(int64(r.FileCount)),
			status,
			r.Command,
		})
	}
	var buf bytes.Buffer
	if err := stats.RenderTable(&buf, []string{"ID", "Started", "Took", "Files", "Status", "Command"}, rows, map[int]bool{3: true}); err != nil {
		return err
	}
	return writeClipped(out, buf.String())
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the analysis when new replays appear",
		Args:  cobra.NoArgs,
		RunE:  runWatchCmd,
	}
	cmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before re-running")
	cmd.Flags().DurationVar(&watchMinInterval, "min-interval", watch.DefaultMinInterval, "minimum time between runs")
	return cmd
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	if a.settings.ReplayPath == "" {
		return analysis.ErrPathRequired
	}
	if !cmd.Flags().Changed("debounce") {
		watchDebounce = a.cfg.DebounceOr(watchDebounce)
	}
	if !cmd.Flags().Changed("min-interval") {
		watchMinInterval = a.cfg.MinIntervalOr(watchMinInterval)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	rerun := func(ctx context.Context) error {
		result, err := a.service.Run(ctx, a.settings)
		if err != nil {
			return err
		}
		rows := a.service.Rows(result, a.settings.OutputFormat)
		_, err = fmt.Fprintf(out, "[%s] %s games, average %d minutes\n",
			time.Now().Format("15:04:05"), humanize.Comma(int64(len(rows))), stats.Summarize(rows).AvgDuration)
		return err
	}
	if err := rerun(ctx); err != nil {
		return err
	}

	w := &watch.Watcher{
		Dir:         a.settings.ReplayPath,
		Recursive:   a.settings.RecursiveSearch,
		Debounce:    watchDebounce,
		MinInterval: watchMinInterval,
		OnChange:    rerun,
		Logger:      a.logger,
	}
	logErrf("Watching %s (Ctrl+C to stop)\n", a.settings.ReplayPath)
	return w.Run(ctx)
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
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

func applySliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# scdash configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# replay-dir = "/path/to/replays"   # Directory containing .rep files
# player = ""                       # Your player name; enables my-* analyzers
# recursive = true                  # Search subdirectories
# analyzers = [%s]
# output = %q                      # sctool output format: csv or json

# Filters are stored with exported settings but not applied.
# [[analysis.filters]]
# analyzer = "my-apm"
# operator = "greater"              # is, is-not, greater, lower
# value = "150"

[runner]
# mode = %q                       # stub (simulated output) or exec (run sctool)
# binary = %q                   # sctool binary for exec mode
# validator = "simulated"           # simulated or dir

[export]
# dir = %q
# overwrite = false

[watch]
# debounce = %q                     # Quiet period before re-running
# min-interval = %q                # Minimum time between runs

# Replace the analyzer catalog by listing every analyzer:
# [[analyzers]]
# key = "date"
# label = "Game Date"
# category = "Core"
# description = "Date when the game was played"
`,
		quoteList(model.DefaultAnalyzers),
		model.FormatCSV,
		config.RunnerStub,
		command.Binary,
		config.DefaultExportDir(),
		watch.DefaultDebounce.String(),
		watch.DefaultMinInterval.String(),
	)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
