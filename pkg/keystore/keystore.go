// Package keystore keeps session tokens in the OS keyring.
package keystore

import (
	"fmt"

	"github.com/99designs/keyring"
	"github.com/ajramos/maildash/pkg/auth"
)

const serviceName = "maildash"

// openKeyring is replaced in tests.
var openKeyring = func() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/maildash/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("maildash-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Token retrieves the token stored for accountID. Its signature matches
// auth.Sources.Keyring.
func Token(accountID string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(accountID)
	if err != nil {
		return "", fmt.Errorf("getting token for %q: %w", accountID, err)
	}
	return string(item.Data), nil
}

// Save stores the session token in the OS keyring.
func Save(sess auth.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   sess.AccountID,
		Data:  []byte(sess.Token),
		Label: "maildash session",
	})
	if err != nil {
		return fmt.Errorf("setting token for %q: %w", sess.AccountID, err)
	}
	return nil
}

// Delete forgets the token stored for accountID.
func Delete(accountID string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}
	if err := ring.Remove(accountID); err != nil {
		return fmt.Errorf("deleting token for %q: %w", accountID, err)
	}
	return nil
}
