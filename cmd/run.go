package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelforge/pipeline"
)

var (
	runPersona string
	runUpload  bool
)

var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Run the full pipeline for a topic",
	Long: `Run every stage for the given topic: storyboard, narration audio,
scene images, video assembly, subtitles, and (with --upload) YouTube.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := pipeline.New(cfg)
		_, err := runner.Run(ctx, args[0], pipeline.Options{
			Persona: runPersona,
			Upload:  runUpload,
		})
		return err
	},
}

func init() {
	runCmd.Flags().StringVar(&runPersona, "persona", "", "narrator persona, e.g. \"a calm science teacher\"")
	runCmd.Flags().BoolVar(&runUpload, "upload", false, "upload the finished video to YouTube")
	rootCmd.AddCommand(runCmd)
}
