package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"yuzu/internal/creative"
)

var directCmd = &cobra.Command{
	Use:   "direct",
	Short: "Interactive creative director session",
	Long: `Start an interactive session with the creative director.
Describe your video idea; the director asks clarifying questions,
then produces an optimized storyboard as JSON.`,
	RunE: runDirect,
}

func init() {
	rootCmd.AddCommand(directCmd)
}

func runDirect(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	ctx := context.Background()
	director, err := creative.NewDirector(ctx, &cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to create director: %w", err)
	}

	fmt.Println("Describe your video idea (Ctrl-D to quit):")

	var history []creative.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		reply, storyboard, err := director.Chat(ctx, history, input)
		if err != nil {
			return fmt.Errorf("director chat failed: %w", err)
		}

		fmt.Println(reply)
		history = append(history,
			creative.Message{Role: "user", Content: input},
			creative.Message{Role: "assistant", Content: reply},
		)

		if storyboard != nil {
			out, err := json.MarshalIndent(storyboard, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode storyboard: %w", err)
			}
			fmt.Println("\n--- storyboard ---")
			fmt.Println(string(out))
			return nil
		}
	}

	return scanner.Err()
}
