package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/keyring"
	"github.com/julianstephens/habitlens/internal/storage/postgres"
	"github.com/julianstephens/habitlens/internal/utils"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show a stored secret (masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a stored secret."`
	Status KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
}

type KeyringSetCmd struct {
	Secret  string `arg:"" help:"PostgreSQL connection string, or the Redis password with --account redis-password."`
	Account string `help:"Keyring account." enum:"database-connection,redis-password" default:"database-connection"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if cmd.Account == keyring.AccountDatabase {
		if !utils.IsPostgresDSN(cmd.Secret) && !strings.Contains(cmd.Secret, "host=") {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if _, err := postgres.ValidateConnString(cmd.Secret); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			// the keyring is encrypted, so a password here is acceptable
			fmt.Println("⚠️  Connection string contains embedded credentials; storing it in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(cmd.Account, cmd.Secret); err != nil {
		return err
	}
	fmt.Printf("✓ Stored %s in OS keyring\n", cmd.Account)
	return nil
}

type KeyringGetCmd struct {
	Account string `help:"Keyring account." enum:"database-connection,redis-password" default:"database-connection"`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.Get(cmd.Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'habitlens keyring set' to store one", cmd.Account)
		}
		return err
	}

	if cmd.Account == keyring.AccountDatabase {
		fmt.Println(maskPassword(secret))
	} else {
		fmt.Println(strings.Repeat("*", 8))
	}
	return nil
}

type KeyringDeleteCmd struct {
	Account string `help:"Keyring account." enum:"database-connection,redis-password" default:"database-connection"`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.Delete(cmd.Account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", cmd.Account)
		}
		return err
	}
	fmt.Printf("✓ Deleted %s from OS keyring\n", cmd.Account)
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	fmt.Println("✓ OS keyring is available")
	for _, account := range keyring.Accounts {
		if _, err := keyring.Get(account); err == nil {
			fmt.Printf("✓ %s is stored\n", account)
		} else {
			fmt.Printf("ℹ %s is not stored\n", account)
		}
	}
	return nil
}

// maskPassword hides the password of a URL or key=value connection string
func maskPassword(connStr string) string {
	if utils.IsPostgresDSN(connStr) {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
		return connStr
	}

	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(part, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
