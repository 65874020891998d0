// Package cmd holds the CLI commands.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"reelforge/config"
)

var (
	cfgPath string
	verbose bool
	quiet   bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reelforge",
	Short: "Generate narrated slideshow videos from a topic keyword",
	Long: `ReelForge turns a topic into a finished vertical video: it writes a
scene-by-scene script, synthesizes the narration, generates one image per
scene, and assembles everything into a Ken Burns slideshow with background
music and a matching SRT subtitle file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is for local runs; CI injects real env vars.
		_ = godotenv.Load()
		setupLogging()

		var err error
		cfg, err = config.LoadOrDefault(cfgPath)
		return err
	},
}

func setupLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.ErrorLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
}
