package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ajramos/maildash/internal/dashboard"
	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show account statistics and storage use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, func(ctl *dashboard.Controller, notes *cliNotifier) error {
			if err := ctl.LoadStats(cmd.Context()); err != nil {
				return err
			}
			if err := notes.Err(); err != nil {
				return err
			}
			snap := ctl.Snapshot()
			if snap.Stats == nil {
				return fmt.Errorf("no statistics returned")
			}
			printStats(cmd.OutOrStdout(), ctl.Account(), snap.Stats, snap.Storage)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printStats(out io.Writer, account string, st *mailbox.Stats, storage *mailbox.Storage) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Account:\t%s\n", account)
	fmt.Fprintf(w, "Received:\t%d\n", st.TotalReceived)
	fmt.Fprintf(w, "Sent:\t%d\n", st.TotalSent)
	fmt.Fprintf(w, "Unread:\t%d\n", st.UnreadCount)
	fmt.Fprintf(w, "Deleted:\t%d\n", st.DeletedCount)
	fmt.Fprintf(w, "Drafts:\t%d\n", st.DraftCount)
	if storage != nil {
		fmt.Fprintf(w, "Storage:\t%.1f / %.1f MB (%.0f%%) %s\n",
			storage.UsedMB, storage.TotalMB, storage.Percentage, storage.Status)
	}
	_ = w.Flush()
}
