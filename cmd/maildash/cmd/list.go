package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/ajramos/maildash/internal/render"
	"github.com/spf13/cobra"
)

var listPreview int

var listCmd = &cobra.Command{
	Use:   "list [folder]",
	Short: "Print the messages of a folder",
	Long: `Print the messages of one folder: inbox (default), sent, drafts,
scheduled, trash or templates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := mailbox.Inbox
		if len(args) == 1 {
			f, ok := mailbox.ParseFolder(args[0])
			if !ok {
				return fmt.Errorf("unknown folder %q", args[0])
			}
			folder = f
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if folder == mailbox.Templates {
			tpls, err := s.client.ListTemplates(cmd.Context())
			if err != nil {
				return fmt.Errorf("list templates: %w", err)
			}
			printTemplates(cmd.OutOrStdout(), tpls)
			return nil
		}

		msgs, err := s.client.ListFolder(cmd.Context(), folder)
		if err != nil {
			return fmt.Errorf("list %s: %w", folder, err)
		}
		printMessages(cmd.OutOrStdout(), msgs, listPreview, time.Now())
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listPreview, "preview", 0, "append a body preview of this many characters")
	rootCmd.AddCommand(listCmd)
}

func printMessages(out io.Writer, msgs []mailbox.Message, preview int, now time.Time) {
	if len(msgs) == 0 {
		fmt.Fprintln(out, "No messages.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tWHO\tSUBJECT\tDATE")
	for _, m := range msgs {
		subject := m.Subject
		if subject == "" {
			subject = "(No subject)"
		}
		if preview > 0 {
			if p := render.Preview(m.Body, preview); p != "" {
				subject += " - " + p
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Status, render.Counterpart(m), oneLine(subject), render.RelativeDate(m.Time(), now))
	}
	_ = w.Flush()
}

func printTemplates(out io.Writer, tpls []mailbox.Template) {
	if len(tpls) == 0 {
		fmt.Fprintln(out, "No templates.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSUBJECT")
	for _, t := range tpls {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, oneLine(t.Subject))
	}
	_ = w.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
