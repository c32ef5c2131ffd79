package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/utils"
)

const (
	// AccountDatabase holds the full PostgreSQL connection string
	AccountDatabase = constants.DefaultKeyringUser
	// AccountRedis holds the Redis password for the page cache
	AccountRedis = "redis-password"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Accounts lists the keyring entries habitlens knows about
var Accounts = []string{AccountDatabase, AccountRedis}

// ValidAccount reports whether account is one of Accounts
func ValidAccount(account string) bool {
	for _, a := range Accounts {
		if a == account {
			return true
		}
	}
	return false
}

// Get retrieves the secret stored for account.
func Get(account string) (string, error) {
	secret, err := keyring.Get(constants.AppName, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores secret for account.
func Set(account, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret cannot be empty")
	}
	if err := keyring.Set(constants.AppName, account, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the secret stored for account.
func Delete(account string) error {
	if err := keyring.Delete(constants.AppName, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// ResolveDSN picks the database connection string. Precedence is the
// HABITLENS_DB_CONNECTION environment variable, then the keyring, then the
// configured value. Keyring lookups only apply to PostgreSQL DSNs.
func ResolveDSN(configured string) string {
	if env := strings.TrimSpace(os.Getenv(constants.EnvDBConnection)); env != "" {
		return env
	}
	if !utils.IsPostgresDSN(configured) {
		return configured
	}
	if stored, err := Get(AccountDatabase); err == nil && stored != "" {
		return stored
	}
	return configured
}

// ResolveRedisPassword returns the configured password, falling back to the keyring.
func ResolveRedisPassword(configured string) string {
	if configured != "" {
		return configured
	}
	if stored, err := Get(AccountRedis); err == nil {
		return stored
	}
	return ""
}
