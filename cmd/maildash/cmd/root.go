package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ajramos/maildash/internal/config"
	"github.com/ajramos/maildash/internal/dashboard"
	"github.com/ajramos/maildash/internal/db"
	"github.com/ajramos/maildash/internal/mailapi"
	"github.com/ajramos/maildash/internal/services"
	"github.com/ajramos/maildash/internal/tui"
	"github.com/ajramos/maildash/pkg/auth"
	"github.com/ajramos/maildash/pkg/keystore"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	serverURL  string
	accountID  string
	cfg        *config.Config
	logger     *log.Logger
	logCloser  io.Closer
	skipConfig = map[string]bool{"version": true, "help": true, "completion": true}
)

var rootCmd = &cobra.Command{
	Use:   "maildash",
	Short: "Terminal dashboard for a remote mailbox",
	Long: `maildash is a terminal dashboard for a remote mail service. It lists the
inbox, sent, drafts, scheduled, trash and templates folders, composes and
schedules messages, and keeps saved searches in a local database.

Run without a subcommand to start the interactive dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipConfig[cmd.Name()] {
			return nil
		}
		// .env is optional
		_ = godotenv.Load()

		mgr := config.NewManager()
		if err := mgr.LoadFromFile(configPath(cfgFile, os.Getenv)); err != nil {
			return err
		}
		cfg = mgr.GetConfig()
		applyFlags(cfg, serverURL, accountID)

		l, closer, err := tui.OpenLogger(cfg.LogPath())
		if err != nil {
			// logging is best effort; the dashboard still runs
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			return nil
		}
		logger, logCloser = l, closer
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
	RunE: runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/maildash/config.json)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "mail service base URL")
	rootCmd.PersistentFlags().StringVar(&accountID, "account", "", "account id to sign in as")
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// configPath picks the --config flag, then MAILDASH_CONFIG, then the default.
func configPath(flag string, getenv func(string) string) string {
	if flag != "" {
		return flag
	}
	if v := strings.TrimSpace(getenv(config.EnvConfig)); v != "" {
		return v
	}
	return config.DefaultConfigPath()
}

func applyFlags(c *config.Config, server, account string) {
	if server != "" {
		c.Server.BaseURL = server
	}
	if account != "" {
		c.AccountID = account
	}
}

func resolveSession() (auth.Session, error) {
	src := auth.Sources{
		AccountID: cfg.AccountID,
		Token:     cfg.Token,
		TokenFile: cfg.TokenFile,
	}
	if cfg.UseKeyring {
		src.Keyring = keystore.Token
	}
	sess, err := auth.Resolve(src)
	if errors.Is(err, auth.ErrNoSession) {
		return sess, fmt.Errorf("not signed in: run 'maildash login' or set %s and %s", config.EnvAccount, config.EnvToken)
	}
	return sess, err
}

// session bundles what every command that talks to the server needs.
type session struct {
	auth   auth.Session
	client *mailapi.Client
	store  *db.Store
}

func (s *session) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// openSession resolves credentials, builds the API client and opens the saved
// search store when it is enabled.
func openSession(ctx context.Context) (*session, error) {
	sess, err := resolveSession()
	if err != nil {
		return nil, err
	}
	client, err := mailapi.New(mailapi.Config{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.ServerTimeout(),
	}, sess)
	if err != nil {
		return nil, err
	}
	client.SetLogger(logger)

	s := &session{auth: sess, client: client}
	if cfg.SavedSearches.Enabled {
		store, err := db.Open(ctx, cfg.SavedSearches.DBPath)
		if err != nil {
			// saved searches stay disabled for this run
			if logger != nil {
				logger.Printf("saved search store unavailable: %v", err)
			}
		} else {
			s.store = store
		}
	}
	return s, nil
}

func (s *session) controller(notifier services.Notifier) (*dashboard.Controller, error) {
	opts := dashboard.Options{Logger: logger, Notifier: notifier}
	if s.store != nil {
		opts.Queries = db.NewQueryStore(s.store)
	}
	return dashboard.New(s.auth, s.client, opts)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	app := tui.NewApp(cfg, logger)
	ctl, err := s.controller(app.ErrorHandler())
	if err != nil {
		return err
	}
	app.SetController(ctl)
	return app.Run()
}
