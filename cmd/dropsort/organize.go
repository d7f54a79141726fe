package main

import (
	"fmt"

	"dropsort/internal/organize"
	"dropsort/pkg/types"

	"github.com/spf13/cobra"
)

// NewOrganizeCmd creates the organize command
func NewOrganizeCmd() *cobra.Command {
	var (
		dir    string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "organize [directory]",
		Short: "Sweep a directory once and file everything by category",
		Long: `Organize every file in a directory into category subfolders in a
single pass. Without a directory argument the configured watch
directory is swept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flag wins over argument, argument wins over config
			targetDir := dir
			if targetDir == "" && len(args) > 0 {
				targetDir = args[0]
			}
			if targetDir == "" {
				var err error
				targetDir, err = cfg.WatchDir()
				if err != nil {
					return err
				}
			}

			if cmd.Flags().Changed("dry-run") {
				cfg.Settings.DryRun = dryRun
			}

			engine := organize.NewWithConfig(cfg)

			if cfg.Settings.Journal && !cfg.Settings.DryRun {
				store, err := openJournal()
				if err != nil {
					return err
				}
				defer store.Close()
				engine.SetRecorder(store)
			}

			if cfg.Settings.DryRun {
				fmt.Printf("Dry run: planning organization for %s\n", targetDir)
			} else {
				fmt.Printf("Organizing %s\n", targetDir)
			}

			report, err := engine.Scan(cmd.Context(), targetDir)
			if err != nil {
				return err
			}

			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "directory", "d", "", "directory to organize (overrides argument, defaults to the watch directory)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be done without moving files")

	return cmd
}

// printReport writes per-file outcomes and a summary line
func printReport(report types.ScanReport) {
	if report.Empty() {
		fmt.Println("No files to organize")
		return
	}

	for _, res := range report.Results {
		switch {
		case res.Error != nil:
			fmt.Printf("  - %s (error: %v)\n", res.SourcePath, res.Error)
		case res.Moved:
			fmt.Printf("  - %s -> %s\n", res.SourcePath, res.DestinationPath)
		default:
			fmt.Printf("  - %s -> %s (dry run)\n", res.SourcePath, res.DestinationPath)
		}
	}

	fmt.Printf("\n%d eligible, %d moved, %d failed\n", report.Eligible, report.Moved, report.Failed)
}
