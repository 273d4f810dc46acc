package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagScoresLimit int
	flagScoresRuns  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the fail ranking",
	Long: `Display the ranking of initials left after failed runs, best first.

Examples:
  reflect scores
  reflect scores --limit 20
  reflect scores --runs`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 0, "Number of entries (default from config: 10)")
	scoresCmd.Flags().BoolVar(&flagScoresRuns, "runs", false, "Also list the most recent runs")
}

func runScores(cmd *cobra.Command, args []string) {
	a := mustApp("reflect")
	defer a.close()

	limit := flagScoresLimit
	if limit <= 0 {
		limit = a.cfg.RankingSize
	}

	entries, err := a.store.LoadRanking(limit)
	if err != nil {
		exitErr(a, "retrieving ranking: %v", err)
	}

	fmt.Println("Ranking")
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No ranking entries yet.")
		fmt.Println()
		fmt.Println("Fail a level in 'reflect play' to leave your initials!")
	} else {
		// Print header
		fmt.Printf("  %-4s  %-4s  %-6s  %-20s  %s\n", "Rank", "Name", "Coins", "Level", "Date")
		fmt.Printf("  %-4s  %-4s  %-6s  %-20s  %s\n", "----", "----", "-----", "-----", "----")

		for i, e := range entries {
			dateStr := e.At.Local().Format("2006-01-02 15:04")
			fmt.Printf("  %-4d  %-4s  %-6d  %-20s  %s\n", i+1, e.Initials, e.Score, e.Level, dateStr)
		}
	}

	if !flagScoresRuns {
		return
	}

	runs, err := a.store.RecentRuns(limit)
	if err != nil {
		exitErr(a, "retrieving runs: %v", err)
	}
	fmt.Println()
	fmt.Println("Recent runs")
	fmt.Println()
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}
	fmt.Printf("  %-8s  %-12s  %-6s  %-6s  %s\n", "Level", "Status", "Coins", "Ticks", "Date")
	fmt.Printf("  %-8s  %-12s  %-6s  %-6s  %s\n", "-----", "------", "-----", "-----", "----")
	for _, r := range runs {
		fmt.Printf("  %-8s  %-12s  %-6d  %-6d  %s\n", r.LevelID, r.Status, r.Coins, r.Ticks, r.At.Local().Format("2006-01-02 15:04"))
	}
}
