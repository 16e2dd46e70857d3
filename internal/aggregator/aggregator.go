// Package aggregator orchestrates batched per-account native balance
// fetches: resolve every account's address, issue one vault batch call,
// scale raw integers to display decimals.
package aggregator

import (
	"context"
	"log/slog"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/emperorhan/wallet-balance-sync/internal/domain/numeric"
	"github.com/emperorhan/wallet-balance-sync/internal/vault"
	"golang.org/x/sync/errgroup"
)

// resolveConcurrency bounds concurrent address derivations per batch; UTXO
// derivation can hit the vault.
const resolveConcurrency = 8

type addressResolver interface {
	Resolve(ctx context.Context, account model.Account, networkID string) (string, error)
}

type Aggregator struct {
	vaults   *vault.Registry
	resolver addressResolver
	logger   *slog.Logger
}

func New(vaults *vault.Registry, resolver addressResolver, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		vaults:   vaults,
		resolver: resolver,
		logger:   logger.With("component", "aggregator"),
	}
}

// FetchBalances resolves addresses for a batch of accounts, fetches their
// native balances in one vault call, and returns formatted decimal strings
// keyed by account id. A nil entry means that account's balance is unknown:
// the address could not be resolved, the batch failed, or the value was
// absent. Malformed values are removed from the result entirely. Partial
// failure never discards the successes.
func (a *Aggregator) FetchBalances(ctx context.Context, accounts []model.Account, network model.Network) map[string]*string {
	result := make(map[string]*string, len(accounts))
	for _, account := range accounts {
		result[account.ID] = nil
	}
	if len(accounts) == 0 {
		return result
	}

	v, err := a.vaults.Get(network.ID)
	if err != nil {
		a.logger.Warn("no vault for balance batch", "network", network.ID, "error", err)
		return result
	}

	addresses := a.resolveAll(ctx, accounts, network.ID)

	requests := make([]vault.BalanceRequest, 0, len(accounts))
	requestAccounts := make([]string, 0, len(accounts))
	for i, account := range accounts {
		if addresses[i] == "" {
			continue
		}
		requests = append(requests, vault.BalanceRequest{Address: addresses[i]})
		requestAccounts = append(requestAccounts, account.ID)
	}
	if len(requests) == 0 {
		return result
	}

	balances, err := v.GetBalances(ctx, requests)
	if err != nil {
		// Whole-batch failure: every account stays unknown. No partial
		// success is fabricated.
		a.logger.Warn("balance batch failed", "network", network.ID, "accounts", len(requests), "error", err)
		return result
	}
	if len(balances) != len(requests) {
		a.logger.Warn("balance batch length mismatch", "network", network.ID, "got", len(balances), "want", len(requests))
		return result
	}

	for i, accountID := range requestAccounts {
		raw := balances[i]
		if raw == nil {
			continue
		}
		formatted := numeric.FormatUnits(raw, network.Decimals)
		if err := numeric.ValidateBalance(formatted); err != nil {
			// Malformed values are dropped outright, not published as nil.
			a.logger.Warn("dropping malformed balance", "account", accountID, "error", err)
			delete(result, accountID)
			continue
		}
		result[accountID] = &formatted
	}
	return result
}

// resolveAll resolves every account's address concurrently. The result is
// positional; an empty string marks an account excluded from the batch.
// Duplicate account ids reuse the first derivation within the batch.
func (a *Aggregator) resolveAll(ctx context.Context, accounts []model.Account, networkID string) []string {
	addresses := make([]string, len(accounts))

	firstIndex := make(map[string]int, len(accounts))
	dupes := make([][2]int, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, account := range accounts {
		if prev, ok := firstIndex[account.ID]; ok {
			dupes = append(dupes, [2]int{i, prev})
			continue
		}
		firstIndex[account.ID] = i

		i, account := i, account
		g.Go(func() error {
			address, err := a.resolver.Resolve(gctx, account, networkID)
			if err != nil {
				a.logger.Debug("account excluded from balance batch", "account", account.ID, "error", err)
				return nil
			}
			addresses[i] = address
			return nil
		})
	}
	// Resolution errors degrade to exclusion, never fail the group.
	_ = g.Wait()

	for _, d := range dupes {
		addresses[d[0]] = addresses[d[1]]
	}
	return addresses
}
