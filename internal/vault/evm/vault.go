package evm

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/emperorhan/wallet-balance-sync/internal/cache"
	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/emperorhan/wallet-balance-sync/internal/domain/numeric"
	"github.com/emperorhan/wallet-balance-sync/internal/vault"
	"github.com/emperorhan/wallet-balance-sync/internal/vault/breaker"
	"github.com/emperorhan/wallet-balance-sync/internal/vault/evm/rpc"
	"github.com/emperorhan/wallet-balance-sync/internal/vault/ratelimit"
)

// accountSource is the narrow wallet-database read surface this vault needs.
type accountSource interface {
	GetAccount(ctx context.Context, accountID string) (model.Account, error)
}

// tokenSource supplies known token lists for the network.
type tokenSource interface {
	TopTokens(ctx context.Context, networkID string, limit int) ([]model.Token, error)
	AccountTokens(ctx context.Context, networkID, accountID string) ([]model.Token, error)
}

// Vault is the reference EVM implementation of the vault capability
// interface: JSON-RPC native balances plus ERC-20 reads via eth_call.
type Vault struct {
	network  model.Network
	client   *rpc.Client
	accounts accountSource
	tokens   tokenSource
	logger   *slog.Logger

	// token list cache, bypassed by forceReload
	tokenCache *cache.TTL[string, []model.Token]
}

type Options struct {
	Timeout                 time.Duration
	RPS                     float64
	Burst                   int
	BreakerFailureThreshold int
	BreakerSuccessThreshold int
	BreakerOpenTimeout      time.Duration
	TokenCacheTTL           time.Duration
}

func New(network model.Network, accounts accountSource, tokens tokenSource, opts Options, logger *slog.Logger) *Vault {
	if opts.RPS <= 0 {
		opts.RPS = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 20
	}
	if opts.TokenCacheTTL <= 0 {
		opts.TokenCacheTTL = 5 * time.Minute
	}
	limiter := ratelimit.NewLimiter(opts.RPS, opts.Burst, network.ID)
	brk := breaker.New(breaker.Config{
		FailureThreshold: opts.BreakerFailureThreshold,
		SuccessThreshold: opts.BreakerSuccessThreshold,
		OpenTimeout:      opts.BreakerOpenTimeout,
	})
	return &Vault{
		network:    network,
		client:     rpc.NewClient(network.RPCURL, network.ID, opts.Timeout, limiter, brk, logger),
		accounts:   accounts,
		tokens:     tokens,
		logger:     logger.With("component", "evm_vault", "network", network.ID),
		tokenCache: cache.NewTTL[string, []model.Token](opts.TokenCacheTTL),
	}
}

func (v *Vault) NetworkID() string {
	return v.network.ID
}

func (v *Vault) GetNativeTokenInfo(ctx context.Context) (model.Token, error) {
	return model.Token{
		NetworkID: v.network.ID,
		Symbol:    v.network.Symbol,
		Name:      v.network.Name,
		Decimals:  v.network.Decimals,
	}, nil
}

func (v *Vault) GetTopTokens(ctx context.Context, limit int) ([]model.Token, error) {
	tokens, err := v.tokens.TopTokens(ctx, v.network.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("top tokens %s: %w", v.network.ID, err)
	}
	return tokens, nil
}

func (v *Vault) GetTokens(ctx context.Context, accountID string, includeNative, includeAccountCustom, forceReload bool) ([]model.Token, error) {
	cacheKey := fmt.Sprintf("%s|%t|%t", accountID, includeNative, includeAccountCustom)
	if !forceReload {
		if cached, ok := v.tokenCache.Get(cacheKey); ok {
			return append([]model.Token(nil), cached...), nil
		}
	}

	var tokens []model.Token
	if includeNative {
		native, err := v.GetNativeTokenInfo(ctx)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, native)
	}

	top, err := v.tokens.TopTokens(ctx, v.network.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("network tokens %s: %w", v.network.ID, err)
	}
	tokens = append(tokens, top...)

	if includeAccountCustom {
		custom, err := v.tokens.AccountTokens(ctx, v.network.ID, accountID)
		if err != nil {
			return nil, fmt.Errorf("account tokens %s/%s: %w", v.network.ID, accountID, err)
		}
		tokens = append(tokens, custom...)
	}

	deduped := dedupeTokens(tokens)
	v.tokenCache.Put(cacheKey, deduped)
	// Callers get their own slice; the cache entry must stay unaliased.
	return append([]model.Token(nil), deduped...), nil
}

func (v *Vault) GetAccountBalance(ctx context.Context, accountID string, tokenIDs []string) (model.TokenBalanceMap, []model.Token, error) {
	account, err := v.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("load account %s: %w", accountID, err)
	}
	address, err := v.balanceAddress(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	balances := make(model.TokenBalanceMap, len(tokenIDs)+1)

	native, err := v.client.GetBalance(ctx, address)
	if err != nil {
		v.logger.Warn("native balance fetch failed", "account", accountID, "error", err)
		balances[model.MainBalanceKey] = nil
	} else {
		formatted := numeric.FormatUnits(native, v.network.Decimals)
		balances[model.MainBalanceKey] = &formatted
	}

	contracts := make([]string, 0, len(tokenIDs))
	msgs := make([]rpc.CallMsg, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		if tokenID == "" {
			continue
		}
		data, err := encodeBalanceOf(address)
		if err != nil {
			return nil, nil, err
		}
		contracts = append(contracts, tokenID)
		msgs = append(msgs, rpc.CallMsg{To: tokenID, Data: data})
	}

	if len(msgs) > 0 {
		results, err := v.client.CallBatch(ctx, msgs)
		if err != nil {
			// Token balances stay unknown; the native result already
			// obtained is kept.
			v.logger.Warn("token balance batch failed", "account", accountID, "error", err)
			for _, contract := range contracts {
				balances[contract] = nil
			}
		} else {
			for i, contract := range contracts {
				raw, err := decodeUint(results[i])
				if err != nil {
					balances[contract] = nil
					continue
				}
				decimals, err := v.tokenDecimals(ctx, contract)
				if err != nil {
					balances[contract] = nil
					continue
				}
				formatted := numeric.FormatUnits(raw, decimals)
				balances[contract] = &formatted
			}
		}
	}

	// Token discovery needs log-index infrastructure a plain RPC endpoint
	// does not offer; discovery-capable vaults return new tokens here.
	return balances, nil, nil
}

func (v *Vault) GetBalances(ctx context.Context, requests []vault.BalanceRequest) ([]*big.Int, error) {
	addresses := make([]string, len(requests))
	for i, req := range requests {
		addresses[i] = req.Address
	}
	return v.client.GetBalances(ctx, addresses)
}

// AddressFromBase normalizes a variant account's base address; EVM addresses
// are network-invariant, so derivation is canonicalization.
func (v *Vault) AddressFromBase(ctx context.Context, baseAddress string) (string, error) {
	trimmed := strings.TrimSpace(baseAddress)
	raw := strings.TrimPrefix(strings.ToLower(trimmed), "0x")
	if len(raw) != 40 || !isHexString(raw) {
		return "", fmt.Errorf("invalid evm base address %q", baseAddress)
	}
	return "0x" + raw, nil
}

func (v *Vault) GetFetchBalanceAddress(ctx context.Context, account model.Account) (string, error) {
	return "", fmt.Errorf("network %s does not support utxo accounts", v.network.ID)
}

func (v *Vault) QuickAddToken(ctx context.Context, accountID, tokenAddress, logoURI string) (*model.Token, error) {
	normalized, err := v.AddressFromBase(ctx, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", vault.ErrTokenNotFound, tokenAddress)
	}

	results, err := v.client.CallBatch(ctx, []rpc.CallMsg{
		{To: normalized, Data: selectorName},
		{To: normalized, Data: selectorSymbol},
		{To: normalized, Data: selectorDecimals},
	})
	if err != nil {
		return nil, fmt.Errorf("token metadata %s: %w", normalized, err)
	}

	symbol, symErr := decodeString(results[1])
	decimalsRaw, decErr := decodeUint(results[2])
	if symErr != nil || decErr != nil {
		return nil, fmt.Errorf("%w: %s", vault.ErrTokenNotFound, normalized)
	}
	name, err := decodeString(results[0])
	if err != nil {
		name = symbol
	}

	return &model.Token{
		NetworkID:        v.network.ID,
		TokenIDOnNetwork: normalized,
		Symbol:           symbol,
		Name:             name,
		Decimals:         int(decimalsRaw.Int64()),
		LogoURI:          logoURI,
	}, nil
}

func (v *Vault) tokenDecimals(ctx context.Context, contract string) (int, error) {
	result, err := v.client.Call(ctx, rpc.CallMsg{To: contract, Data: selectorDecimals})
	if err != nil {
		return 0, err
	}
	decimals, err := decodeUint(result)
	if err != nil {
		return 0, err
	}
	return int(decimals.Int64()), nil
}

func (v *Vault) balanceAddress(ctx context.Context, account model.Account) (string, error) {
	switch account.Kind {
	case model.AccountKindVariant:
		if addr, ok := account.Addresses[v.network.ID]; ok && addr != "" {
			return addr, nil
		}
		return v.AddressFromBase(ctx, account.Address)
	case model.AccountKindUTXO:
		return v.GetFetchBalanceAddress(ctx, account)
	default:
		return account.Address, nil
	}
}

func dedupeTokens(tokens []model.Token) []model.Token {
	seen := make(map[model.TokenKey]struct{}, len(tokens))
	out := make([]model.Token, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t.Key()]; ok {
			continue
		}
		seen[t.Key()] = struct{}{}
		out = append(out, t)
	}
	return out
}
