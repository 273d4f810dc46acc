package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/logic-reflect/internal/platform/ws"
	"github.com/vovakirdan/logic-reflect/internal/puzzle"
	"github.com/vovakirdan/logic-reflect/internal/run"
)

var (
	flagTools    []string
	flagInstant  bool
	flagBoard    bool
	flagWSAddr   string
	flagWSWait   bool
	flagWSLinger time.Duration
	flagMaxTicks int
)

var runCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run a fixed tool placement without the UI",
	Long: `Place tools, press play and print every frame until the run ends.

Each --tool is x,y,kind where kind is rotator-cw (cw), rotator-ccw (ccw)
or mirror (m). Coordinates are zero-based from the top-left cell.

A run that never ends (the collector loops forever) is stopped after
--max-ticks ticks.

With --ws the frames are also streamed as JSON to websocket clients on
ws://<addr>/ws.

Examples:
  reflect run 01 --tool 4,1,cw
  reflect run 03 --tool 2,0,m --tool 2,3,ccw --board
  reflect run 05 --instant
  reflect run 05 --ws :8080 --ws-wait`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().StringArrayVar(&flagTools, "tool", nil, "Tool placement x,y,kind (repeatable)")
	runCmd.Flags().BoolVar(&flagInstant, "instant", false, "Simulate without real-time pacing")
	runCmd.Flags().BoolVar(&flagBoard, "board", false, "Print the whole board on every frame")
	runCmd.Flags().StringVar(&flagWSAddr, "ws", "", "Stream frames to websocket clients on this address")
	runCmd.Flags().BoolVar(&flagWSWait, "ws-wait", false, "Wait for a websocket client before playing")
	runCmd.Flags().DurationVar(&flagWSLinger, "ws-linger", 2*time.Second, "Keep the websocket server up this long after the run ends")
	runCmd.Flags().IntVar(&flagMaxTicks, "max-ticks", 1000, "Stop a run that has not ended after this many ticks")
}

// placement is one parsed --tool flag.
type placement struct {
	at   puzzle.Coord
	kind puzzle.Tool
}

func parsePlacement(s string) (placement, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return placement{}, fmt.Errorf("tool %q: expected x,y,kind", s)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return placement{}, fmt.Errorf("tool %q: coordinates must be integers", s)
	}
	kind, ok := puzzle.ParseTool(parts[2])
	if !ok {
		return placement{}, fmt.Errorf("tool %q: unknown kind %q", s, parts[2])
	}
	return placement{at: puzzle.C(x, y), kind: kind}, nil
}

func runRun(cmd *cobra.Command, args []string) {
	a := mustApp("reflect")
	defer a.close()

	var placements []placement
	for _, s := range flagTools {
		p, err := parsePlacement(s)
		if err != nil {
			exitErr(a, "%v", err)
		}
		placements = append(placements, p)
	}
	if flagMaxTicks <= 0 {
		exitErr(a, "--max-ticks must be positive")
	}

	camp, err := a.newCampaign()
	if err != nil {
		exitErr(a, "%v", err)
	}
	lvl, err := camp.Select(args[0])
	if err != nil {
		exitErr(a, "%v\nRun 'reflect list' to see available levels.", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := run.MultiSink{camp}
	var hub *ws.Hub
	if flagWSAddr != "" {
		hub = ws.NewHub(a.logger)
		shutdown := serveHub(ctx, hub, a)
		defer shutdown()
		sinks = append(sinks, hub)
	}

	events := run.NewChanSink(256)
	ctl := run.New(lvl, run.Options{
		TickInterval:  a.cfg.TickInterval(),
		TeleportDelay: a.teleportDelay(),
		Sink:          append(run.MultiSink{events}, sinks...),
		Logger:        a.logger,
	})
	defer events.Close()

	for _, p := range placements {
		ctl.Select(p.kind)
		if !ctl.ToggleAt(p.at.X, p.at.Y) {
			exitErr(a, "cannot place %s at (%d,%d): off the board, cell taken or no %s left",
				p.kind, p.at.X, p.at.Y, p.kind)
		}
	}

	fmt.Printf("%s - %s\n", lvl.ID, lvl.Name)
	for _, t := range ctl.Tools() {
		fmt.Printf("  %s at (%d,%d)\n", t.Kind, t.At.X, t.At.Y)
	}
	fmt.Println()

	if hub != nil {
		hub.SetLevel(lvl, ctl.Tools())
		if flagWSWait {
			fmt.Printf("Waiting for a websocket client on ws://%s/ws\n", flagWSAddr)
			if err := hub.WaitForClient(ctx); err != nil {
				return
			}
		}
	}

	var result run.Result
	if flagInstant {
		result = runInstant(lvl, ctl.Tools(), sinks)
	} else {
		result = runLive(ctx, ctl, events)
	}

	fmt.Println()
	switch result.Status {
	case run.Win:
		best := camp.Progress(lvl.ID).HighScore
		fmt.Printf("WIN in %d ticks with %d/%d coins (best %d)\n", result.Ticks, result.Coins, lvl.TotalCoins(), best)
	case run.Fail:
		fmt.Printf("FAIL after %d ticks: %s (%d coins)\n", result.Ticks, result.Reason, result.Coins)
	default:
		fmt.Printf("Stopped after %d ticks without an outcome\n", result.Ticks)
	}

	if hub != nil && flagWSLinger > 0 {
		select {
		case <-time.After(flagWSLinger):
		case <-ctx.Done():
		}
	}
}

// runLive plays through the controller in real time. The run is reset
// when it exceeds --max-ticks or the process is interrupted.
func runLive(ctx context.Context, ctl *run.Controller, events *run.ChanSink) run.Result {
	ctl.Play()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			ctl.Reset()
			return run.Result{Status: run.Setup, Ticks: ticks}

		case evt := <-events.Events():
			switch evt := evt.(type) {
			case run.Frame:
				if evt.Status == run.Setup {
					continue
				}
				ticks = ctl.Ticks()
				printFrame(ticks, evt.Collector, evt.State, ctl.Render)
				if ticks >= flagMaxTicks && evt.Status == run.Running {
					ctl.Reset()
					return run.Result{Status: run.Setup, Ticks: ticks}
				}
			case run.Result:
				return evt
			}
		}
	}
}

// runInstant simulates synchronously and replays the trace to sinks so
// progress and run history are recorded as for a live run.
func runInstant(lvl *puzzle.Level, placed []puzzle.PlacedTool, sinks run.Sink) run.Result {
	tools := puzzle.NewPlacedTools(lvl.Inventory)
	for _, t := range placed {
		tools.ToggleAt(t.At, t.Kind, true)
	}

	trace := puzzle.Simulate(lvl, tools, flagMaxTicks)
	for _, f := range trace.Frames {
		sinks.Snapshot(run.Frame{Collector: f.Collector, State: f.State, Status: run.Running})
		printFrame(f.Tick, f.Collector, f.State, func() string {
			return puzzle.RenderASCII(lvl, tools, f.Restore())
		})
	}

	result := run.Result{Coins: trace.Coins, Ticks: trace.Ticks, Level: lvl.ID}
	switch trace.Outcome {
	case puzzle.Win:
		result.Status = run.Win
	case puzzle.Fail:
		result.Status, result.Reason = run.Fail, trace.Reason.String()
	default:
		result.Status = run.Setup
		return result
	}
	sinks.Outcome(result)
	return result
}

func printFrame(tick int, c puzzle.Collector, s puzzle.StateSnapshot, board func() string) {
	if flagBoard {
		fmt.Printf("tick %d\n%s\n", tick, board())
		return
	}
	note := ""
	if c.Teleporting {
		note = "  teleporting"
	}
	fmt.Printf("  tick %4d  (%2d,%2d) %c  coins %d  key %-5v%s\n",
		tick, c.X, c.Y, c.Direction.Arrow(), s.CollectedCoins, s.HasKey, note)
}

// serveHub starts the websocket server and returns a function that
// stops it.
func serveHub(ctx context.Context, hub *ws.Hub, a *app) func() {
	hubCtx, cancel := context.WithCancel(ctx)
	go hub.Run(hubCtx)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{
		Addr:              flagWSAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("websocket server listening", "address", flagWSAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("websocket server error", "error", err)
		}
	}()

	return func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("websocket server shutdown", "error", err)
		}
		cancel()
	}
}
