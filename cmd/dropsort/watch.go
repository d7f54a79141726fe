package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"dropsort/internal/journal"
	"dropsort/internal/organize"
	"dropsort/internal/tui"
	"dropsort/internal/watch"
	"dropsort/pkg/types"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// notifyBacklog buffers daemon events headed for the live view
const notifyBacklog = 64

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var (
		dir         string
		dryRun      bool
		once        bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the downloads folder and organize new files",
		Long: `Watch the configured directory for finished downloads and move them
into category subfolders once activity settles. In-progress downloads
(.crdownload, .part, .tmp) are left alone until they finish.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir != "" {
				cfg.Watch.Directory = dir
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.Settings.DryRun = dryRun
			}

			watchDir, err := cfg.WatchDir()
			if err != nil {
				return err
			}
			if _, err := os.Stat(watchDir); os.IsNotExist(err) {
				fmt.Printf("Watch directory does not exist: %s\n", watchDir)
				return nil
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

			if once {
				report, err := engine.Scan(cmd.Context(), watchDir)
				if err != nil {
					return err
				}
				printReport(report)
				return nil
			}

			daemon, err := watch.NewDaemon(cfg, engine)
			if err != nil {
				return err
			}

			if interactive && isTerminal(os.Stdout) {
				return runInteractive(daemon, watchDir)
			}

			daemon.SetNotify(printEvent)

			if err := daemon.Start(); err != nil {
				return err
			}

			if cfg.Settings.DryRun {
				fmt.Println("Running in dry-run mode, no files will be moved")
			}
			fmt.Printf("Watching %s. Press Ctrl+C to stop.\n", watchDir)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			fmt.Println("\nStopping...")
			daemon.Stop()
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "directory", "d", "", "directory to watch (overrides the configured one)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "log moves without performing them")
	cmd.Flags().BoolVar(&once, "once", false, "sweep the directory once and exit")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "show a live view instead of plain output")

	return cmd
}

// runInteractive feeds daemon events into the live view and blocks until
// the user quits.
func runInteractive(daemon *watch.Daemon, watchDir string) error {
	events := make(chan types.WatchEvent, notifyBacklog)
	daemon.SetNotify(func(ev types.WatchEvent) {
		select {
		case events <- ev:
		default: // never stall the watch loop on a slow terminal
		}
	})

	if err := daemon.Start(); err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(watchDir, cfg.Settings.DryRun, events))
	_, runErr := p.Run()

	daemon.Stop()
	close(events)
	return runErr
}

// printEvent renders daemon notifications in plain, non-interactive mode
func printEvent(ev types.WatchEvent) {
	switch ev.Kind {
	case types.EventMoved:
		if ev.Move == nil {
			return
		}
		switch {
		case ev.Move.Error != nil:
			fmt.Printf("Failed to organize %s: %v\n", filepath.Base(ev.Move.SourcePath), ev.Move.Error)
		case ev.Move.Moved:
			fmt.Printf("Moved %s -> %s\n", filepath.Base(ev.Move.SourcePath), ev.Move.DestinationPath)
		default:
			fmt.Printf("Would move %s -> %s\n", filepath.Base(ev.Move.SourcePath), ev.Move.DestinationPath)
		}
	case types.EventScanned:
		if ev.Report != nil && ev.Report.Empty() {
			fmt.Println("No files to organize")
		}
	case types.EventError:
		fmt.Printf("Watch error: %v\n", ev.Err)
	}
}

// openJournal opens the move journal at the configured location
func openJournal() (*journal.Store, error) {
	path, err := cfg.JournalPath()
	if err != nil {
		return nil, err
	}
	return journal.Open(path)
}
