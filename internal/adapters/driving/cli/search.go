package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esgdev/amaranth/internal/core/domain"
)

// queryTurn wraps a search query as an ephemeral user turn so the
// conversation embedding manager can embed it.
func queryTurn(query string) domain.ChatTurn {
	return domain.ChatTurn{Text: query, Role: domain.RoleUser}
}

var (
	searchLimit int
	searchChat  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored embeddings by similarity",
	Long: `Embeds the query and prints the nearest stored chunks by cosine
similarity. Searches the knowledge store by default; --chat searches
the conversation store instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchChat, "chat", false, "search conversation chunks instead of knowledge")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	query := args[0]

	type hit struct {
		chunk      string
		similarity float64
	}
	var hits []hit

	if searchChat {
		records, err := chatManager.GenerateEmbeddings(ctx, queryTurn(query))
		if err != nil {
			return fmt.Errorf("embedding query: %w", err)
		}
		if len(records) == 0 {
			cmd.Println("No results found.")
			return nil
		}
		for _, r := range chatManager.FindSimilar(ctx, records[0], searchLimit) {
			hits = append(hits, hit{chunk: r.Chunk, similarity: r.Similarity})
		}
	} else {
		records, err := textManager.GenerateEmbeddings(ctx, query)
		if err != nil {
			return fmt.Errorf("embedding query: %w", err)
		}
		if len(records) == 0 {
			cmd.Println("No results found.")
			return nil
		}
		for _, r := range textManager.FindSimilar(ctx, records[0], searchLimit) {
			hits = append(hits, hit{chunk: r.Chunk, similarity: r.Similarity})
		}
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, h := range hits {
		cmd.Printf("  [%d] (%.3f) %s\n", i+1, h.similarity, h.chunk)
	}
	return nil
}
