package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"yuzu/internal/queue"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Enqueue a generation task",
	Long:  `Enqueue a generation task for the worker to pick up.`,
}

var enqueueJobCmd = &cobra.Command{
	Use:   "job <job-id>",
	Short: "Enqueue a single generation job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return enqueue(func(ctx context.Context, c *queue.Client) error {
			return c.EnqueueJob(ctx, args[0])
		})
	},
}

var enqueueStoryCmd = &cobra.Command{
	Use:   "story <story-id>",
	Short: "Enqueue a story orchestration run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return enqueue(func(ctx context.Context, c *queue.Client) error {
			return c.EnqueueStory(ctx, args[0])
		})
	},
}

var enqueueMergeCmd = &cobra.Command{
	Use:   "merge <story-id>",
	Short: "Enqueue a story merge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return enqueue(func(ctx context.Context, c *queue.Client) error {
			return c.EnqueueMerge(ctx, args[0])
		})
	},
}

func init() {
	enqueueCmd.AddCommand(enqueueJobCmd)
	enqueueCmd.AddCommand(enqueueStoryCmd)
	enqueueCmd.AddCommand(enqueueMergeCmd)
	rootCmd.AddCommand(enqueueCmd)
}

func enqueue(fn func(ctx context.Context, c *queue.Client) error) error {
	cfg := GetConfig()

	client := queue.NewClient(&cfg.Redis)
	defer func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close queue client")
		}
	}()

	if err := fn(context.Background(), client); err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}
	return nil
}
