package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/logic-reflect/internal/config"
	"github.com/vovakirdan/logic-reflect/internal/platform/tui"
)

var flagMonochrome bool

var playCmd = &cobra.Command{
	Use:   "play [id]",
	Short: "Play the campaign",
	Long: `Start the interactive player, optionally at a specific level.

Controls:
  Arrows/hjkl  - Move the cursor
  1 / 2 / 3    - Select rotator-cw / rotator-ccw / mirror
  0 / x        - Deselect
  Space        - Place or remove the selected tool
  Enter        - Play
  R            - Reset
  N            - Next level (after a win)
  Esc/B        - Level picker
  S            - Ranking
  ?            - All keys
  Q/Ctrl+C     - Quit

Examples:
  reflect play
  reflect play 07
  reflect play --pace fast
  reflect play --mono`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagMonochrome, "mono", false, "Render without colors")
}

func runPlay(cmd *cobra.Command, args []string) {
	a := mustApp("reflect")
	defer a.close()

	camp, err := a.newCampaign()
	if err != nil {
		exitErr(a, "%v", err)
	}
	if len(args) == 1 {
		if _, err := camp.Select(args[0]); err != nil {
			exitErr(a, "%v\nRun 'reflect list' to see available levels.", err)
		}
	}

	// The alternate screen owns the terminal; logs go to a file
	logPath := filepath.Join(filepath.Dir(config.ExpandHome(a.cfg.DBPath)), "reflect.log")
	if f, logErr := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); logErr == nil {
		defer f.Close()
		a.logger.SetOutput(f)
	} else {
		a.logger.SetOutput(io.Discard)
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	err = tui.Run(tui.Options{
		Campaign:      camp,
		TickInterval:  a.cfg.TickInterval(),
		TeleportDelay: a.teleportDelay(),
		RankingSize:   a.cfg.RankingSize,
		Logger:        a.logger,
		Monochrome:    flagMonochrome,
		Player:        os.Getenv("USER"),
		Width:         width,
		Height:        height,
	})
	if err != nil {
		exitErr(a, "running player: %v", err)
	}

	fmt.Printf("Total coins: %d\n", camp.TotalCoins())
}
