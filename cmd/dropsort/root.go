package main

import (
	"fmt"

	"dropsort/internal/config"
	"dropsort/internal/log"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dropsort",
		Short: "Keep your downloads folder organized",
		Long: `Dropsort watches your downloads folder and files finished downloads
into category subfolders (images, documents, videos, ...) based on
their extension. It can also sweep a folder once, and show a history
of everything it has moved.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetDebug(true)
			}

			var configErr error
			if cfgFile != "" {
				cfg, configErr = config.LoadConfigFile(cfgFile)
			} else {
				cfg, configErr = config.LoadConfig()
			}
			if configErr != nil {
				fmt.Printf("Warning: %v\n", configErr)
				fmt.Println("Using default settings.")
				cfg = config.New()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dropsort/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewOrganizeCmd())
	rootCmd.AddCommand(NewHistoryCmd())

	return rootCmd
}
