// reflect is a terminal logic puzzle: place rotators and mirrors so the
// collector reaches the exit.
//
// Usage:
//
//	reflect list                - List levels with progress
//	reflect show <id>           - Print a level board
//	reflect play [id]           - Play the campaign interactively
//	reflect run <id> --tool ... - Run a fixed tool placement headlessly
//	reflect scores              - Show the fail ranking
//	reflect serve               - Start SSH server for remote play
//	reflect import <file>       - Add a level file to the campaign
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.reflect/config.yaml, ./configs/reflect.yaml)
//	--db <path>         - Database path (default: ~/.reflect/reflect.db)
//	--levels <dir>      - Directory of extra level files
//	--log-level <lvl>   - debug, info, warn or error
//	--tick <ms>         - Tick interval in milliseconds
//	--pace <preset>     - slow, normal or fast
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/logic-reflect/internal/campaign"
	"github.com/vovakirdan/logic-reflect/internal/config"
	"github.com/vovakirdan/logic-reflect/internal/levels"
	"github.com/vovakirdan/logic-reflect/internal/puzzle"
	"github.com/vovakirdan/logic-reflect/internal/storage"
)

var (
	// Global flags
	flagConfig    string
	flagDBPath    string
	flagLevelsDir string
	flagLogLevel  string
	flagTick      int
	flagPace      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reflect",
	Short: "Logic Reflect - steer the collector with rotators and mirrors",
	Long: `Logic Reflect is a tile puzzle played in the terminal. A collector
moves one cell per tick; place tools on the board so it picks up coins
and keys and reaches the exit.

Available commands:
  list     - Show all levels and your progress
  show     - Print a level board
  play     - Play the campaign interactively
  run      - Run a fixed tool placement without the UI
  scores   - View the fail ranking
  serve    - Start SSH server for remote play
  import   - Add a level file to the campaign

Examples:
  reflect list
  reflect play
  reflect play 05
  reflect run 01 --tool 4,1,rotator-cw
  reflect serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (default from config: ~/.reflect/reflect.db)")
	rootCmd.PersistentFlags().StringVar(&flagLevelsDir, "levels", "", "Directory of extra level files (default from config: ~/.reflect/levels)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&flagTick, "tick", 0, "Tick interval in milliseconds (overrides --pace)")
	rootCmd.PersistentFlags().StringVar(&flagPace, "pace", "", "Pace preset: slow, normal, fast")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
}

// app bundles what every command needs after flags are parsed.
type app struct {
	cfg    config.Config
	logger *log.Logger
	store  *storage.Store
}

// loadApp reads the config, applies the global flags and opens the store.
func loadApp(prefix string) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if flagPace != "" {
		p := config.Pace(flagPace)
		if !p.Valid() {
			return nil, fmt.Errorf("unknown pace %q (use slow, normal or fast)", flagPace)
		}
		config.ApplyPace(&cfg, p)
	}
	if flagTick > 0 {
		cfg.TickIntervalMs = flagTick
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	if flagLevelsDir != "" {
		cfg.LevelsDir = flagLevelsDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(prefix, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func newLogger(prefix, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	logger.SetLevel(lvl)
	return logger, nil
}

// baseLevels returns the builtin campaign followed by the files in the
// levels directory.
func (a *app) baseLevels() ([]*puzzle.Level, error) {
	builtin, err := levels.Builtin()
	if err != nil {
		return nil, fmt.Errorf("loading builtin levels: %w", err)
	}
	extra, err := levels.NewLoader(a.levelsDir()).LoadAll()
	if err != nil {
		a.logger.Warn("cannot load level directory", "dir", a.cfg.LevelsDir, "error", err)
	}
	return levels.Merge(builtin, extra), nil
}

func (a *app) levelsDir() string {
	return config.ExpandHome(a.cfg.LevelsDir)
}

func (a *app) newCampaign() (*campaign.Campaign, error) {
	base, err := a.baseLevels()
	if err != nil {
		return nil, err
	}
	return campaign.New(base, a.store, a.logger)
}

// teleportDelay maps the config value onto run.Options, where zero means
// the default and a negative value means no pause.
func (a *app) teleportDelay() time.Duration {
	if a.cfg.TeleportDelayMs == 0 {
		return -1
	}
	return a.cfg.TeleportDelay()
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("cannot close database", "error", err)
	}
}

// mustApp is loadApp for commands that cannot continue without it.
func mustApp(prefix string) *app {
	a, err := loadApp(prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return a
}

func exitErr(a *app, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	if a != nil {
		a.close()
	}
	os.Exit(1)
}
