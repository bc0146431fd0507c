package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/spf13/cobra"
)

var (
	sendTo       string
	sendSubject  string
	sendBody     string
	sendBodyFile string
	sendAttach   string
	sendAt       string
	sendTemplate string
	sendDraft    bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send, schedule or save a message without the dashboard",
	Long: `Compose a message from flags and send it now, schedule it with --at or
store it as a draft with --draft.

Examples:
  maildash send --to bob@example.com --subject Hi --body "See you soon"
  maildash send --to bob@example.com --template weekly --at "2026-11-02 09:00"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendAt != "" && sendDraft {
			return fmt.Errorf("--at and --draft cannot be combined")
		}
		body := sendBody
		if sendBodyFile != "" {
			data, err := os.ReadFile(sendBodyFile)
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}
			body = string(data)
		}

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
		ctx := cmd.Context()

		if err := ctl.ComposeNew(); err != nil {
			return err
		}
		if sendTemplate != "" {
			if err := ctl.SwitchFolder(ctx, mailbox.Templates); err != nil {
				return err
			}
			if err := ctl.ApplyTemplate(sendTemplate); err != nil {
				return err
			}
		}
		comp := ctl.Snapshot().Compose
		subject, text := sendSubject, body
		if comp != nil {
			if subject == "" {
				subject = comp.Subject
			}
			if text == "" {
				text = comp.Body
			}
		}
		if err := ctl.UpdateCompose(sendTo, subject, text); err != nil {
			return err
		}
		if sendAttach != "" {
			if err := ctl.ChooseAttachment(sendAttach); err != nil {
				return err
			}
			if err := ctl.UploadAttachment(ctx); err != nil {
				return err
			}
			if err := notes.Err(); err != nil {
				return err
			}
		}

		switch {
		case sendDraft:
			err = ctl.SaveDraft(ctx)
		case sendAt != "":
			date, clock, perr := parseAt(sendAt)
			if perr != nil {
				return perr
			}
			err = ctl.Schedule(ctx, date, clock)
		default:
			err = ctl.Send(ctx)
		}
		if err != nil {
			return err
		}
		return notes.Err()
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipients, comma separated")
	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "subject line")
	sendCmd.Flags().StringVar(&sendBody, "body", "", "message body")
	sendCmd.Flags().StringVar(&sendBodyFile, "body-file", "", "read the body from a file")
	sendCmd.Flags().StringVar(&sendAttach, "attach", "", "file to upload and attach")
	sendCmd.Flags().StringVar(&sendAt, "at", "", `schedule for a local time, "YYYY-MM-DD HH:MM"`)
	sendCmd.Flags().StringVar(&sendTemplate, "template", "", "start from a saved template")
	sendCmd.Flags().BoolVar(&sendDraft, "draft", false, "save as a draft instead of sending")
	sendCmd.MarkFlagsMutuallyExclusive("body", "body-file")
	rootCmd.AddCommand(sendCmd)
}

// parseAt splits "YYYY-MM-DD HH:MM" (or with a T separator) into the date
// and time fields the scheduler takes. Value checks happen when scheduling.
func parseAt(s string) (date, clock string, err error) {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == 'T' })
	if len(fields) != 2 {
		return "", "", fmt.Errorf(`invalid --at %q: want "YYYY-MM-DD HH:MM"`, s)
	}
	return fields[0], fields[1], nil
}
