package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Classify text against the configured topic vocabulary",
	Long: `Runs the zero-shot topic classifier over the given text and prints
the assigned label. Output not matching the vocabulary prints the
"error" sentinel.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text := strings.Join(args, " ")
	topic, err := classifier.Classify(ctx, text)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	cmd.Println(topic)
	return nil
}
