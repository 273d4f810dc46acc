package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all levels",
	Long:  `Shows the campaign in play order with best coins and run statistics.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	a := mustApp("reflect")
	defer a.close()

	camp, err := a.newCampaign()
	if err != nil {
		exitErr(a, "%v", err)
	}
	stats, err := a.store.AllLevelStats()
	if err != nil {
		exitErr(a, "%v", err)
	}

	lvls := camp.Levels()
	fmt.Println("Levels:")
	fmt.Println()

	// Calculate column widths
	maxIDLen, maxNameLen := 2, 4 // "ID", "Name" headers
	for _, l := range lvls {
		maxIDLen = max(maxIDLen, len(l.ID))
		maxNameLen = max(maxNameLen, len(l.Name))
	}

	// Print header
	fmt.Printf("  %-*s  %-*s  %-8s  %-6s  %-9s  %s\n", maxIDLen, "ID", maxNameLen, "Name", "Origin", "Coins", "Best", "Runs")
	fmt.Printf("  %-*s  %-*s  %-8s  %-6s  %-9s  %s\n", maxIDLen, "--", maxNameLen, "----", "------", "-----", "----", "----")

	for _, l := range lvls {
		best := "-"
		if p := camp.Progress(l.ID); p.Completed() {
			best = fmt.Sprintf("%d ✓", p.HighScore)
		}
		runs := "-"
		if st, ok := stats[l.ID]; ok {
			runs = fmt.Sprintf("%d (%d won)", st.Runs, st.Wins)
		}
		fmt.Printf("  %-*s  %-*s  %-8s  %-6d  %-9s  %s\n",
			maxIDLen, l.ID, maxNameLen, l.Name, l.Origin, l.TotalCoins(), best, runs)
	}

	fmt.Println()
	fmt.Printf("Total coins: %d\n", camp.TotalCoins())
	fmt.Println("Run 'reflect play <id>' to play a level.")
}
