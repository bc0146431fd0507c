package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/ajramos/maildash/internal/dashboard"
	"github.com/spf13/cobra"
)

var searchesCmd = &cobra.Command{
	Use:   "searches",
	Short: "List saved searches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, func(ctl *dashboard.Controller, notes *cliNotifier) error {
			saved, err := ctl.SavedSearches(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(saved) == 0 {
				fmt.Fprintln(out, "No saved searches.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tQUERY\tFOLDER\tUSED\tLAST USED")
			for _, q := range saved {
				last := "never"
				if !q.LastUsed.IsZero() {
					last = q.LastUsed.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", q.Name, q.Query, q.Folder, q.UseCount, last)
			}
			return w.Flush()
		})
	},
}

var searchesRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a saved search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, func(ctl *dashboard.Controller, notes *cliNotifier) error {
			if err := ctl.RunSavedSearch(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := notes.Err(); err != nil {
				return err
			}
			printMessages(cmd.OutOrStdout(), ctl.Displayed(), 0, time.Now())
			return nil
		})
	},
}

var searchesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, func(ctl *dashboard.Controller, notes *cliNotifier) error {
			if err := ctl.DeleteSavedSearch(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted saved search %q\n", args[0])
			return nil
		})
	},
}

func init() {
	searchesCmd.AddCommand(searchesRunCmd, searchesDeleteCmd)
	rootCmd.AddCommand(searchesCmd)
}

// withController opens a session and runs fn against a controller that
// reports to stderr.
func withController(cmd *cobra.Command, fn func(*dashboard.Controller, *cliNotifier) error) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	notes := newCLINotifier(cmd.ErrOrStderr())
	ctl, err := s.controller(notes)
	if err != nil {
		return err
	}
	return fn(ctl, notes)
}
