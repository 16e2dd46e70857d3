package config

import (
	"fmt"
	"os"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// WalletCatalog is the parsed wallet file: the accounts the daemon keeps in
// sync and the initially selected account/network pair.
type WalletCatalog struct {
	Accounts        []model.Account
	ActiveAccountID string
	ActiveNetworkID string
}

type walletFile struct {
	Active struct {
		AccountID string `yaml:"account_id"`
		NetworkID string `yaml:"network_id"`
	} `yaml:"active"`
	Wallets []walletEntry `yaml:"wallets"`
}

type walletEntry struct {
	ID       string         `yaml:"id"`
	Accounts []accountEntry `yaml:"accounts"`
}

type accountEntry struct {
	ID        string            `yaml:"id"`
	Kind      string            `yaml:"kind"`
	Name      string            `yaml:"name"`
	Address   string            `yaml:"address"`
	Addresses map[string]string `yaml:"addresses"`
}

// LoadWallets reads the YAML wallet file.
func LoadWallets(path string) (*WalletCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wallet file: %w", err)
	}
	return ParseWallets(raw)
}

// ParseWallets parses a YAML wallet document.
func ParseWallets(raw []byte) (*WalletCatalog, error) {
	var file walletFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse wallet file: %w", err)
	}

	catalog := &WalletCatalog{
		ActiveAccountID: file.Active.AccountID,
		ActiveNetworkID: file.Active.NetworkID,
	}

	seen := make(map[string]struct{})
	for _, wallet := range file.Wallets {
		if wallet.ID == "" {
			return nil, fmt.Errorf("wallet file: wallet with empty id")
		}
		for _, entry := range wallet.Accounts {
			account := model.Account{
				ID:        entry.ID,
				WalletID:  wallet.ID,
				Kind:      model.AccountKind(entry.Kind),
				Name:      entry.Name,
				Address:   entry.Address,
				Addresses: entry.Addresses,
			}
			if err := account.Validate(); err != nil {
				return nil, fmt.Errorf("wallet %q account %q: %w", wallet.ID, entry.ID, err)
			}
			if _, ok := seen[account.ID]; ok {
				return nil, fmt.Errorf("wallet file: duplicate account %q", account.ID)
			}
			seen[account.ID] = struct{}{}
			catalog.Accounts = append(catalog.Accounts, account)
		}
	}
	if len(catalog.Accounts) == 0 {
		return nil, fmt.Errorf("wallet file has no accounts")
	}

	if catalog.ActiveAccountID != "" {
		if _, ok := seen[catalog.ActiveAccountID]; !ok {
			return nil, fmt.Errorf("wallet file: active account %q not found", catalog.ActiveAccountID)
		}
	}
	return catalog, nil
}
