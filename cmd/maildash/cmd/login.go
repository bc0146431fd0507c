package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ajramos/maildash/internal/config"
	"github.com/ajramos/maildash/internal/dashboard"
	"github.com/ajramos/maildash/pkg/auth"
	"github.com/ajramos/maildash/pkg/keystore"
	"github.com/spf13/cobra"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a session token for an account",
	Long: `Store the session token issued by the mail service for an account.
The token is read from --token, MAILDASH_TOKEN or the first line of stdin,
and saved to the session file and, when enabled, the OS keyring.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AccountID == "" {
			return fmt.Errorf("no account: pass --account or set %s", config.EnvAccount)
		}
		token := loginToken
		if token == "" {
			token = cfg.Token
		}
		if token == "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Token for %s: ", cfg.AccountID)
			line, err := readToken(cmd.InOrStdin())
			if err != nil {
				return err
			}
			token = line
		}

		sess := auth.Session{AccountID: cfg.AccountID, Token: token}
		if err := auth.SaveSessionFile(cfg.TokenFile, sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if cfg.UseKeyring {
			if err := keystore.Save(sess); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: keyring not updated: %v\n", err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", sess.AccountID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the server session and forget the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var account string
		err := withController(cmd, func(ctl *dashboard.Controller, notes *cliNotifier) error {
			account = ctl.Account()
			if err := ctl.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := notes.Err(); err != nil {
				// the local token is dropped regardless
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if err := os.Remove(cfg.TokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove session file: %w", err)
		}
		if cfg.UseKeyring {
			_ = keystore.Delete(account)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed out of %s\n", account)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "session token")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}

func readToken(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read token: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("empty token")
	}
	return line, nil
}
