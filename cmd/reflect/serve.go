package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/logic-reflect/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Logic Reflect SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own run and campaign position.
Progress, user levels and the ranking are shared by everyone on the server.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.reflect/host_key

Examples:
  reflect serve                           # Listen on :23234 with auto-generated key
  reflect serve --ssh :2222               # Listen on port 2222
  reflect serve --host-key ./my_host_key  # Use specific host key
  reflect serve --db ./reflect.db         # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	a := mustApp("reflect-ssh")
	defer a.close()

	base, err := a.baseLevels()
	if err != nil {
		exitErr(a, "%v", err)
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Levels = base
	cfg.Store = a.store
	cfg.TickInterval = a.cfg.TickInterval()
	cfg.TeleportDelay = a.teleportDelay()
	cfg.RankingSize = a.cfg.RankingSize

	server, err := tui.NewSSHServer(cfg, a.logger)
	if err != nil {
		exitErr(a, "creating server: %v", err)
	}

	fmt.Printf("Starting Logic Reflect SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		exitErr(a, "server error: %v", err)
	}
}
