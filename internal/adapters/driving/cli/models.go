package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the inference service",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	models, err := inferenceService.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("listing models: %w", err)
	}

	if len(models) == 0 {
		cmd.Println("No models available.")
		return nil
	}

	for _, m := range models {
		if m.Family != "" {
			cmd.Printf("  %s (%s)\n", m.Name, m.Family)
		} else {
			cmd.Printf("  %s\n", m.Name)
		}
	}
	return nil
}
