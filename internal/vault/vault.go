package vault

import (
	"context"
	"errors"
	"math/big"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
)

// ErrTokenNotFound is returned by QuickAddToken when the address does not
// resolve to a token contract on the network.
var ErrTokenNotFound = errors.New("token not found on network")

// BalanceRequest names one address whose native balance should be fetched.
type BalanceRequest struct {
	Address string
}

//go:generate mockgen -destination=mocks/vault_mock.go -package=mocks github.com/emperorhan/wallet-balance-sync/internal/vault Vault

// Vault abstracts per-network capability providers (address derivation,
// balance and token queries) so the sync core operates network-agnostically.
// Implementations own their transport, timeout, and retry policy.
type Vault interface {
	// NetworkID returns the network this vault serves.
	NetworkID() string

	// GetTopTokens returns up to limit well-known tokens on the network.
	GetTopTokens(ctx context.Context, limit int) ([]model.Token, error)

	// GetTokens returns the token list for an account, optionally including
	// the native token and the account's custom tokens. forceReload bypasses
	// any vault-side caching.
	GetTokens(ctx context.Context, accountID string, includeNative, includeAccountCustom, forceReload bool) ([]model.Token, error)

	// GetAccountBalance fetches balances for the given token ids and reports
	// any tokens discovered on the account that were not asked for.
	GetAccountBalance(ctx context.Context, accountID string, tokenIDs []string) (model.TokenBalanceMap, []model.Token, error)

	// GetBalances fetches raw integer native balances for a batch of
	// addresses. The result is positional; a nil entry means the balance
	// for that address could not be determined.
	GetBalances(ctx context.Context, requests []BalanceRequest) ([]*big.Int, error)

	// AddressFromBase derives the network-specific address for a variant
	// account's base address. Pure projection; never persisted here.
	AddressFromBase(ctx context.Context, baseAddress string) (string, error)

	// GetFetchBalanceAddress selects the balance-query address for a UTXO
	// account.
	GetFetchBalanceAddress(ctx context.Context, account model.Account) (string, error)

	// GetNativeTokenInfo describes the network's native currency.
	GetNativeTokenInfo(ctx context.Context) (model.Token, error)

	// QuickAddToken resolves token metadata for a contract address so the
	// token can be registered for an account.
	QuickAddToken(ctx context.Context, accountID, tokenAddress, logoURI string) (*model.Token, error)
}
