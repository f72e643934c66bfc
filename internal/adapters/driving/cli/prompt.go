package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Show or set the persisted system prompt",
}

var promptGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the persisted system prompt",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ensureServices(); err != nil {
			return err
		}
		prompt := chatService.SystemPrompt()
		if prompt == "" {
			cmd.Println("No system prompt set.")
			return nil
		}
		cmd.Println(prompt)
		return nil
	},
}

var promptSetCmd = &cobra.Command{
	Use:   "set [prompt]",
	Short: "Persist a system prompt for future sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureServices(); err != nil {
			return err
		}
		prompt := strings.Join(args, " ")
		if !chatService.SaveSystemPrompt(prompt) {
			return errors.New("saving system prompt failed")
		}
		cmd.Println("System prompt saved.")
		return nil
	},
}

func init() {
	promptCmd.AddCommand(promptGetCmd)
	promptCmd.AddCommand(promptSetCmd)
	rootCmd.AddCommand(promptCmd)
}
