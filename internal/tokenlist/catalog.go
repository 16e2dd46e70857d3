// Package tokenlist serves curated token lists to the vaults: the network
// catalog's top tokens plus the user's persisted custom tokens.
package tokenlist

import (
	"context"
	"fmt"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/emperorhan/wallet-balance-sync/internal/store"
)

type Catalog struct {
	topTokens map[string][]model.Token
	repo      store.TokenRepository
}

func NewCatalog(topTokens map[string][]model.Token) *Catalog {
	return &Catalog{topTokens: topTokens}
}

// WithRepository attaches persisted custom tokens to AccountTokens lookups.
func (c *Catalog) WithRepository(repo store.TokenRepository) *Catalog {
	c.repo = repo
	return c
}

// TopTokens returns the network's curated token list. A non-positive limit
// returns the whole list.
func (c *Catalog) TopTokens(_ context.Context, networkID string, limit int) ([]model.Token, error) {
	tokens, ok := c.topTokens[networkID]
	if !ok {
		return nil, fmt.Errorf("no token list for network %s", networkID)
	}
	if limit > 0 && limit < len(tokens) {
		tokens = tokens[:limit]
	}
	return append([]model.Token(nil), tokens...), nil
}

// AccountTokens returns the account's persisted custom tokens on a network.
// Without a repository every account has none.
func (c *Catalog) AccountTokens(ctx context.Context, networkID, accountID string) ([]model.Token, error) {
	if c.repo == nil {
		return nil, nil
	}
	tokens, err := c.repo.ListByAccount(ctx, networkID, accountID)
	if err != nil {
		return nil, fmt.Errorf("list custom tokens %s/%s: %w", networkID, accountID, err)
	}
	return tokens, nil
}
