package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest text files into the knowledge store",
	Long: `Chunks the given text files, embeds each chunk, and persists the
embeddings to the knowledge store. With no arguments, reads from
standard input.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		if err := chatService.ProcessText(ctx, string(data)); err != nil {
			return fmt.Errorf("ingesting stdin: %w", err)
		}
		cmd.Println("Ingested stdin.")
		return nil
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := chatService.ProcessText(ctx, string(data)); err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		cmd.Printf("Ingested %s (%d bytes)\n", path, len(data))
	}
	return nil
}
