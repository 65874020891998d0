package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelforge/trend"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List trending topic candidates",
	Long:  "Scan the configured subreddits and print today's topic candidates, best first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scout, err := trend.New(cfg)
		if err != nil {
			return err
		}
		topics, err := scout.Topics(ctx)
		if err != nil {
			return err
		}
		for _, t := range topics {
			fmt.Printf("%6d  %-12s %s\n", t.Score, t.Source, t.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
