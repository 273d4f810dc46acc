package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a level board",
	Long: `Print the board, inventory and teleporters of a level.

Legend:
  S start   E exit      # obstacle   T teleporter
  c coin    k key       G gate       r/l/m force tiles

Examples:
  reflect show 01`,
	Args: cobra.ExactArgs(1),
	Run:  runShow,
}

func runShow(cmd *cobra.Command, args []string) {
	a := mustApp("reflect")
	defer a.close()

	camp, err := a.newCampaign()
	if err != nil {
		exitErr(a, "%v", err)
	}
	lvl, err := camp.Select(args[0])
	if err != nil {
		exitErr(a, "%v\nRun 'reflect list' to see available levels.", err)
	}

	fmt.Print(puzzle.RenderASCII(lvl, nil, puzzle.NewSimState(lvl)))
	fmt.Println()
	fmt.Printf("Start heading: %s\n", lvl.StartDir)

	var inv []string
	for _, tool := range puzzle.AllTools() {
		inv = append(inv, fmt.Sprintf("%s x%d", tool, lvl.Inventory[tool]))
	}
	fmt.Printf("Inventory:     %s\n", strings.Join(inv, ", "))

	for _, tp := range lvl.Teleporters {
		if tp.Role == puzzle.RoleIn {
			continue
		}
		fmt.Printf("Teleporter %d:  exit at (%d,%d) heading %s\n", tp.PairID, tp.At.X, tp.At.Y, tp.Exit)
	}
	if lvl.CreatedBy != "" {
		fmt.Printf("Created by:    %s\n", lvl.CreatedBy)
	}
}
