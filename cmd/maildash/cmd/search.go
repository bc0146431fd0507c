package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/spf13/cobra"
)

var searchFolder string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search one folder on the server",
	Long: `Search the messages of one folder. Multiple arguments are joined into
a single query.

Examples:
  maildash search invoice
  maildash search --folder sent quarterly report`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return fmt.Errorf("empty search query")
		}
		folder, ok := mailbox.ParseFolder(searchFolder)
		if !ok || folder == mailbox.Templates {
			return fmt.Errorf("cannot search folder %q", searchFolder)
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		msgs, err := s.client.Search(cmd.Context(), query, folder)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d result(s) for %q in %s\n\n", len(msgs), query, folder.Title())
		printMessages(cmd.OutOrStdout(), msgs, 0, time.Now())
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchFolder, "folder", string(mailbox.Inbox), "folder to search")
	rootCmd.AddCommand(searchCmd)
}
