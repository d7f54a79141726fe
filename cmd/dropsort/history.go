package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently organized files",
		Long:  `Show the most recent moves recorded in the journal, newest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.JournalPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("No journal yet, nothing has been organized")
				return nil
			}

			store, err := openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			moves, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(moves) == 0 {
				fmt.Println("Journal is empty")
				return nil
			}

			rows := make([][]string, 0, len(moves))
			for _, m := range moves {
				rows = append(rows, []string{
					m.MovedAt.Local().Format("2006-01-02 15:04"),
					filepath.Base(m.SourcePath),
					m.Category,
					formatBytes(m.SizeBytes),
				})
			}
			fmt.Println(renderTable(
				[]string{"When", "File", "Category", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				isTerminal(os.Stdout),
			))

			counts, err := store.CountByCategory(cmd.Context())
			if err != nil {
				return err
			}
			if line := renderTotals(counts); line != "" {
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of entries to show")

	return cmd
}

// renderTotals summarizes all-time counts per category, busiest first
func renderTotals(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}

	type total struct {
		category string
		count    int
	}
	totals := make([]total, 0, len(counts))
	for cat, n := range counts {
		totals = append(totals, total{cat, n})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].count != totals[j].count {
			return totals[i].count > totals[j].count
		}
		return totals[i].category < totals[j].category
	})

	parts := make([]string, 0, len(totals))
	for _, t := range totals {
		parts = append(parts, fmt.Sprintf("%s %d", t.category, t.count))
	}
	return "All time: " + strings.Join(parts, ", ")
}

// formatBytes renders a size in binary units
func formatBytes(value int64) string {
	const (
		kiB = 1024
		miB = kiB * 1024
		giB = miB * 1024
	)
	switch {
	case value >= giB:
		return fmt.Sprintf("%.2f GiB", float64(value)/float64(giB))
	case value >= miB:
		return fmt.Sprintf("%.2f MiB", float64(value)/float64(miB))
	case value >= kiB:
		return fmt.Sprintf("%.2f KiB", float64(value)/float64(kiB))
	default:
		return fmt.Sprintf("%d B", value)
	}
}
