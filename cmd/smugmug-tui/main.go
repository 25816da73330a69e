package main

import (
	"fmt"
	"os"

	"github.com/handiism/smugmug-downloader/internal/config"
	"github.com/handiism/smugmug-downloader/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configFile string
		session    string
		output     string
	)

	rootCmd := &cobra.Command{
		Use:          "smugmug-tui",
		Short:        "Interactive SmugMug album downloader",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.DefaultSettings()
			if configFile != "" {
				var err error
				settings, err = config.Load(configFile)
				if err != nil {
					return fmt.Errorf("error loading config: %w", err)
				}
			}
			if cmd.Flags().Changed("session") {
				settings.Session = session
			} else if settings.Session == "" {
				settings.Session = os.Getenv("SMUGMUG_SESSION")
			}
			if cmd.Flags().Changed("output") {
				settings.OutputDir = output
			}

			return tui.Run(settings)
		},
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Settings file (YAML)")
	rootCmd.Flags().StringVarP(&session, "session", "s", "", "SMSESS cookie (default $SMUGMUG_SESSION)")
	rootCmd.Flags().StringVarP(&output, "output", "o", "output/", "Output directory")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
