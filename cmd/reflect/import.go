package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/logic-reflect/internal/levels"
)

var flagImportCopy bool

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Add level files to the campaign",
	Long: `Validate level YAML files and store them in the database as user
levels. They are played after the builtin campaign, ordered by ID.
Importing a level with the ID of an earlier import replaces it.

Examples:
  reflect import ./my-level.yaml
  reflect import ./pack/*.yaml --copy`,
	Args: cobra.MinimumNArgs(1),
	Run:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportCopy, "copy", false, "Also write the level into the levels directory")
}

func runImport(cmd *cobra.Command, args []string) {
	a := mustApp("reflect")
	defer a.close()

	camp, err := a.newCampaign()
	if err != nil {
		exitErr(a, "%v", err)
	}

	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", path, err)
			failed++
			continue
		}
		lvl, err := levels.Parse(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", path, err)
			failed++
			continue
		}
		if err := camp.AddLevel(lvl); err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", path, err)
			failed++
			continue
		}
		if flagImportCopy {
			dest, err := levels.NewLoader(a.levelsDir()).Save(lvl)
			if err != nil {
				a.logger.Warn("cannot copy level", "id", lvl.ID, "error", err)
			} else {
				a.logger.Debug("level copied", "id", lvl.ID, "path", dest)
			}
		}
		fmt.Printf("  imported %s - %s\n", lvl.ID, lvl.Name)
	}

	if failed > 0 {
		exitErr(a, "%d of %d files not imported", failed, len(args))
	}
}
