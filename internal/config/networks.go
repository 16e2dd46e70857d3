package config

import (
	"fmt"
	"os"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Catalog is the parsed reference-data file: the networks the daemon serves
// and each network's curated top token list.
type Catalog struct {
	Networks  []model.Network
	TopTokens map[string][]model.Token
}

type catalogFile struct {
	Networks []networkEntry `yaml:"networks"`
}

type networkEntry struct {
	ID                    string       `yaml:"id"`
	Name                  string       `yaml:"name"`
	Symbol                string       `yaml:"symbol"`
	Decimals              int          `yaml:"decimals"`
	NativeDisplayDecimals int          `yaml:"native_display_decimals"`
	TokenDisplayDecimals  int          `yaml:"token_display_decimals"`
	RPCURL                string       `yaml:"rpc_url"`
	Tokens                []tokenEntry `yaml:"tokens"`
}

type tokenEntry struct {
	ID       string `yaml:"id"`
	Symbol   string `yaml:"symbol"`
	Name     string `yaml:"name"`
	Decimals int    `yaml:"decimals"`
	LogoURI  string `yaml:"logo_uri"`
}

// LoadCatalog reads the YAML network catalog.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog parses a YAML network catalog document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse network catalog: %w", err)
	}
	if len(file.Networks) == 0 {
		return nil, fmt.Errorf("network catalog is empty")
	}

	catalog := &Catalog{
		Networks:  make([]model.Network, 0, len(file.Networks)),
		TopTokens: make(map[string][]model.Token, len(file.Networks)),
	}

	seen := make(map[string]struct{}, len(file.Networks))
	for i, entry := range file.Networks {
		if entry.ID == "" {
			return nil, fmt.Errorf("network catalog entry %d: id is empty", i)
		}
		if _, ok := seen[entry.ID]; ok {
			return nil, fmt.Errorf("network catalog: duplicate network %q", entry.ID)
		}
		if entry.Decimals < 0 {
			return nil, fmt.Errorf("network %q: negative decimals", entry.ID)
		}
		seen[entry.ID] = struct{}{}

		catalog.Networks = append(catalog.Networks, model.Network{
			ID:                    entry.ID,
			Name:                  entry.Name,
			Symbol:                entry.Symbol,
			Decimals:              entry.Decimals,
			NativeDisplayDecimals: entry.NativeDisplayDecimals,
			TokenDisplayDecimals:  entry.TokenDisplayDecimals,
			RPCURL:                entry.RPCURL,
		})

		tokens, err := parseTokenEntries(entry.ID, entry.Tokens)
		if err != nil {
			return nil, err
		}
		catalog.TopTokens[entry.ID] = tokens
	}
	return catalog, nil
}

func parseTokenEntries(networkID string, entries []tokenEntry) ([]model.Token, error) {
	seen := make(map[string]struct{}, len(entries))
	tokens := make([]model.Token, 0, len(entries))
	for i, entry := range entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("network %q token %d: id is empty", networkID, i)
		}
		if _, ok := seen[entry.ID]; ok {
			return nil, fmt.Errorf("network %q: duplicate token %q", networkID, entry.ID)
		}
		if entry.Decimals < 0 {
			return nil, fmt.Errorf("network %q token %q: negative decimals", networkID, entry.ID)
		}
		seen[entry.ID] = struct{}{}

		tokens = append(tokens, model.Token{
			NetworkID:        networkID,
			TokenIDOnNetwork: entry.ID,
			Symbol:           entry.Symbol,
			Name:             entry.Name,
			Decimals:         entry.Decimals,
			LogoURI:          entry.LogoURI,
		})
	}
	return tokens, nil
}
