// Package auth holds the session context the dashboard runs under.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

// ErrNoSession is returned when no source yields a session.
var ErrNoSession = errors.New("no session available")

// Session identifies the account and the bearer token issued for it.
type Session struct {
	AccountID string `json:"account_id"`
	Token     string `json:"token"`
}

// Validate checks that both halves of the session are present.
func (s Session) Validate() error {
	if strings.TrimSpace(s.AccountID) == "" {
		return fmt.Errorf("account id cannot be empty")
	}
	if strings.TrimSpace(s.Token) == "" {
		return fmt.Errorf("session token cannot be empty")
	}
	return nil
}

// TokenSource exposes the session token to oauth2 aware transports.
func (s Session) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: s.Token,
		TokenType:   "Bearer",
	})
}

// LoadSessionFile reads a session saved by SaveSessionFile.
func LoadSessionFile(path string) (Session, error) {
	var sess Session
	f, err := os.Open(path)
	if err != nil {
		return sess, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&sess); err != nil {
		return sess, fmt.Errorf("could not parse session file: %w", err)
	}
	return sess, sess.Validate()
}

// SaveSessionFile writes sess to path, readable by the owner only.
func SaveSessionFile(path string, sess Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(sess)
}

// Sources lists where Resolve looks for a session, in priority order.
type Sources struct {
	// AccountID and Token usually come from the environment.
	AccountID string
	Token     string
	// TokenFile is a JSON file written by SaveSessionFile.
	TokenFile string
	// Keyring, when set, looks up the stored token for AccountID.
	Keyring func(accountID string) (string, error)
}

// Resolve returns the first complete session found in src.
func Resolve(src Sources) (Session, error) {
	if src.AccountID != "" && src.Token != "" {
		return Session{AccountID: src.AccountID, Token: src.Token}, nil
	}

	if src.TokenFile != "" {
		sess, err := LoadSessionFile(src.TokenFile)
		if err == nil {
			if src.AccountID == "" || src.AccountID == sess.AccountID {
				return sess, nil
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Session{}, err
		}
	}

	if src.Keyring != nil && src.AccountID != "" {
		token, err := src.Keyring(src.AccountID)
		if err == nil {
			return Session{AccountID: src.AccountID, Token: token}, nil
		}
	}

	return Session{}, ErrNoSession
}
