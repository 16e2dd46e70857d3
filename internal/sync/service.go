// Package sync exposes the balance synchronization operations the rest of
// the application calls. It owns the coalescing windows, publishes
// immutable snapshots to the state store, and degrades fetch failures to
// unknown balances instead of surfacing them as errors.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emperorhan/wallet-balance-sync/internal/aggregator"
	"github.com/emperorhan/wallet-balance-sync/internal/cache"
	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/emperorhan/wallet-balance-sync/internal/domain/numeric"
	"github.com/emperorhan/wallet-balance-sync/internal/metrics"
	"github.com/emperorhan/wallet-balance-sync/internal/registry"
	"github.com/emperorhan/wallet-balance-sync/internal/store"
	"github.com/emperorhan/wallet-balance-sync/internal/tracing"
	"github.com/emperorhan/wallet-balance-sync/internal/vault"
	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const (
	// DefaultDebounceWindow is the coalescing window for debounced
	// operations; bursts within it collapse into one trailing execution.
	DefaultDebounceWindow = 600 * time.Millisecond

	// DefaultTopTokenLimit caps the network-wide top token list.
	DefaultTopTokenLimit = 50

	defaultNativeTokenTTL = time.Hour
)

type FetchTokensParams struct {
	AccountID   string
	NetworkID   string
	WithBalance bool
}

type FetchAccountTokensParams struct {
	AccountID         string
	NetworkID         string
	WithBalance       bool
	Wait              bool
	ForceReloadTokens bool
}

type FetchTokenBalanceParams struct {
	AccountID string
	NetworkID string
	// TokenIDs limits the fetch; nil means the union of the network and
	// account token lists from the store.
	TokenIDs []string
}

type BatchFetchAccountBalancesParams struct {
	WalletID   string
	NetworkID  string
	AccountIDs []string
}

type Options struct {
	DebounceWindow time.Duration
	TopTokenLimit  int
	NativeTokenTTL time.Duration
}

// Service is the sync coordinator.
type Service struct {
	store    store.StateStore
	active   store.ActiveState
	accounts store.AccountReader
	vaults   *vault.Registry
	networks map[string]model.Network
	agg      *aggregator.Aggregator
	logger   *slog.Logger

	mirror    store.SnapshotMirror
	tokenRepo store.TokenRepository

	topTokenLimit int
	nativeTokens  *cache.TTL[string, model.Token]

	accountTokensDeb *debouncer[FetchAccountTokensParams]
	batchBalancesDeb *debouncer[BatchFetchAccountBalancesParams]
}

func New(
	st store.StateStore,
	active store.ActiveState,
	accounts store.AccountReader,
	vaults *vault.Registry,
	networks []model.Network,
	agg *aggregator.Aggregator,
	opts Options,
	logger *slog.Logger,
) *Service {
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}
	if opts.TopTokenLimit <= 0 {
		opts.TopTokenLimit = DefaultTopTokenLimit
	}
	if opts.NativeTokenTTL <= 0 {
		opts.NativeTokenTTL = defaultNativeTokenTTL
	}

	networkMap := make(map[string]model.Network, len(networks))
	for _, n := range networks {
		networkMap[n.ID] = n
	}

	s := &Service{
		store:         st,
		active:        active,
		accounts:      accounts,
		vaults:        vaults,
		networks:      networkMap,
		agg:           agg,
		logger:        logger.With("component", "sync"),
		topTokenLimit: opts.TopTokenLimit,
		nativeTokens:  cache.NewTTL[string, model.Token](opts.NativeTokenTTL),
	}
	s.accountTokensDeb = newDebouncer("fetch_account_tokens", opts.DebounceWindow, func(ctx context.Context, p FetchAccountTokensParams) {
		if _, err := s.FetchAccountTokens(ctx, p); err != nil {
			s.logger.Warn("debounced account token fetch failed", "account", p.AccountID, "network", p.NetworkID, "error", err)
		}
	}, logger)
	s.batchBalancesDeb = newDebouncer("batch_fetch_balances", opts.DebounceWindow, s.runBatchFetchAccountBalances, logger)
	return s
}

// WithMirror attaches an out-of-process snapshot mirror.
func (s *Service) WithMirror(mirror store.SnapshotMirror) *Service {
	s.mirror = mirror
	return s
}

// WithTokenRepository attaches persistent storage for user-added tokens.
func (s *Service) WithTokenRepository(repo store.TokenRepository) *Service {
	s.tokenRepo = repo
	return s
}

// Close cancels coalescing windows. In-flight executions run to completion.
func (s *Service) Close() {
	s.accountTokensDeb.Close()
	s.batchBalancesDeb.Close()
}

// FetchTokens pulls the network's top token list, publishes it (keeping
// previously auto-detected tokens), and optionally refreshes balances for
// those tokens. Runs immediately; never coalesced.
func (s *Service) FetchTokens(ctx context.Context, p FetchTokensParams) ([]model.Token, error) {
	ctx, span := tracing.Tracer("sync").Start(ctx, "sync.fetch_tokens",
		otelTrace.WithAttributes(attribute.String("network", p.NetworkID)))
	defer span.End()
	start := time.Now()

	v, err := s.vaults.Get(p.NetworkID)
	if err != nil {
		s.observe("fetch_tokens", p.NetworkID, start, err)
		return nil, err
	}
	tokens, err := v.GetTopTokens(ctx, s.topTokenLimit)
	if err != nil {
		s.observe("fetch_tokens", p.NetworkID, start, err)
		return nil, fmt.Errorf("fetch top tokens %s: %w", p.NetworkID, err)
	}

	native, rest := registry.SplitNative(tokens)
	actions := []store.Action{store.SetNetworkTokens{
		NetworkID:        p.NetworkID,
		Tokens:           rest,
		KeepAutoDetected: true,
	}}
	if native != nil {
		actions = append(actions, store.SetNativeToken{NetworkID: p.NetworkID, Token: *native})
	}
	s.store.Dispatch(actions...)

	if p.WithBalance {
		if _, err := s.FetchTokenBalance(ctx, FetchTokenBalanceParams{
			AccountID: p.AccountID,
			NetworkID: p.NetworkID,
			TokenIDs:  tokenIDsOf(rest),
		}); err != nil {
			s.logger.Warn("post-fetch balance refresh failed", "network", p.NetworkID, "error", err)
		}
	}

	s.observe("fetch_tokens", p.NetworkID, start, nil)
	return rest, nil
}

// FetchAccountTokens loads the account's token list from the vault and
// publishes it, the native token going to its dedicated slot. With
// WithBalance the balances refresh too; Wait makes that refresh synchronous
// for call sites that need confirmation before returning.
func (s *Service) FetchAccountTokens(ctx context.Context, p FetchAccountTokensParams) ([]model.Token, error) {
	ctx, span := tracing.Tracer("sync").Start(ctx, "sync.fetch_account_tokens",
		otelTrace.WithAttributes(
			attribute.String("network", p.NetworkID),
			attribute.String("account", p.AccountID),
		))
	defer span.End()
	start := time.Now()

	v, err := s.vaults.Get(p.NetworkID)
	if err != nil {
		s.observe("fetch_account_tokens", p.NetworkID, start, err)
		return nil, err
	}
	tokens, err := v.GetTokens(ctx, p.AccountID, true, true, p.ForceReloadTokens)
	if err != nil {
		s.observe("fetch_account_tokens", p.NetworkID, start, err)
		return nil, fmt.Errorf("fetch account tokens %s/%s: %w", p.NetworkID, p.AccountID, err)
	}

	native, rest := registry.SplitNative(tokens)
	actions := []store.Action{store.SetAccountTokens{
		AccountID: p.AccountID,
		NetworkID: p.NetworkID,
		Tokens:    rest,
	}}
	if native != nil {
		actions = append(actions, store.SetNativeToken{NetworkID: p.NetworkID, Token: *native})
	}
	s.store.Dispatch(actions...)

	if p.WithBalance {
		balanceParams := FetchTokenBalanceParams{
			AccountID: p.AccountID,
			NetworkID: p.NetworkID,
			TokenIDs:  tokenIDsOf(rest),
		}
		if p.Wait {
			if _, err := s.FetchTokenBalance(ctx, balanceParams); err != nil {
				s.logger.Warn("account balance refresh failed", "account", p.AccountID, "error", err)
			}
		} else {
			go func() {
				if _, err := s.FetchTokenBalance(context.WithoutCancel(ctx), balanceParams); err != nil {
					s.logger.Warn("account balance refresh failed", "account", p.AccountID, "error", err)
				}
			}()
		}
	}

	s.observe("fetch_account_tokens", p.NetworkID, start, nil)
	return tokens, nil
}

// FetchAccountTokensDebounced coalesces bursts of account token refreshes
// (navigation, polling, modal animations) into one trailing execution per
// account/network pair. Fire-and-forget.
func (s *Service) FetchAccountTokensDebounced(p FetchAccountTokensParams) {
	p.Wait = false
	s.accountTokensDeb.Request(p.AccountID+":"+p.NetworkID, p)
}

// FetchTokenBalance fetches balances for the account's tokens and publishes
// one snapshot. Newly discovered tokens are registered in the account and
// network token sets within the same publish. Fetch failures degrade to
// unknown balances; the operation still resolves with the partial result.
func (s *Service) FetchTokenBalance(ctx context.Context, p FetchTokenBalanceParams) (model.TokenBalanceMap, error) {
	if p.AccountID == "" {
		return model.TokenBalanceMap{}, nil
	}

	ctx, span := tracing.Tracer("sync").Start(ctx, "sync.fetch_token_balance",
		otelTrace.WithAttributes(
			attribute.String("network", p.NetworkID),
			attribute.String("account", p.AccountID),
		))
	defer span.End()
	start := time.Now()

	v, err := s.vaults.Get(p.NetworkID)
	if err != nil {
		s.observe("fetch_token_balance", p.NetworkID, start, err)
		return nil, err
	}

	tokenIDs := p.TokenIDs
	if tokenIDs == nil {
		tokenIDs = tokenIDsOf(s.store.NetworkTokens(p.NetworkID))
		tokenIDs = append(tokenIDs, tokenIDsOf(s.store.AccountTokens(p.AccountID, p.NetworkID))...)
	}
	tokenIDs = dedupeStrings(tokenIDs)

	balances, discovered, err := v.GetAccountBalance(ctx, p.AccountID, tokenIDs)
	if err != nil {
		// The whole fetch failed: every requested slot becomes unknown.
		s.logger.Warn("token balance fetch failed", "account", p.AccountID, "network", p.NetworkID, "error", err)
		metrics.SyncOpErrors.WithLabelValues("fetch_token_balance", p.NetworkID).Inc()
		balances = make(model.TokenBalanceMap, len(tokenIDs)+1)
		balances[model.MainBalanceKey] = nil
		for _, id := range tokenIDs {
			balances[id] = nil
		}
		discovered = nil
	}

	var actions []store.Action
	if len(discovered) > 0 {
		merge := registry.Merge(s.store.AccountTokens(p.AccountID, p.NetworkID), discovered)
		if len(merge.Added) > 0 {
			// Both registries in one dispatch: a discovered token is never
			// visible in only one of them.
			actions = append(actions,
				store.AddAccountTokens{AccountID: p.AccountID, NetworkID: p.NetworkID, Tokens: merge.Added},
				store.AddNetworkTokens{NetworkID: p.NetworkID, Tokens: merge.Added},
			)
			metrics.TokensDiscovered.WithLabelValues(p.NetworkID).Add(float64(len(merge.Added)))
		}
		if merge.NativeToken != nil {
			actions = append(actions, store.SetNativeToken{NetworkID: p.NetworkID, Token: *merge.NativeToken})
		}
	}

	merged := s.store.AccountTokenBalances(p.AccountID, p.NetworkID)
	if merged == nil {
		merged = make(model.TokenBalanceMap, len(balances))
	}
	for id, value := range balances {
		if value != nil {
			if err := numeric.ValidateBalance(*value); err != nil {
				// Malformed values are excluded from the publish entirely.
				s.logger.Warn("dropping malformed balance value", "account", p.AccountID, "token", id, "error", err)
				continue
			}
		}
		merged[id] = value
	}

	snapshot := model.BalanceSnapshot{
		AccountID:     p.AccountID,
		NetworkID:     p.NetworkID,
		TokensBalance: merged,
	}
	actions = append(actions, store.SetAccountTokenBalances{Snapshot: snapshot})
	s.store.Dispatch(actions...)
	metrics.SnapshotsPublished.WithLabelValues(p.NetworkID).Inc()
	s.publishMirror(ctx, snapshot)

	s.observe("fetch_token_balance", p.NetworkID, start, nil)
	return merged.Clone(), nil
}

// RefreshTokenBalance is the bridge-facing trigger: refresh the pair,
// logging failures instead of returning them.
func (s *Service) RefreshTokenBalance(ctx context.Context, accountID, networkID string) {
	if _, err := s.FetchTokenBalance(ctx, FetchTokenBalanceParams{AccountID: accountID, NetworkID: networkID}); err != nil {
		s.logger.Warn("balance refresh failed", "account", accountID, "network", networkID, "error", err)
	}
}

// ClearActiveAccountTokenBalance publishes an empty snapshot for the active
// pair. No-op when nothing is selected.
func (s *Service) ClearActiveAccountTokenBalance(ctx context.Context) {
	accountID, okAccount := s.active.CurrentAccountID()
	networkID, okNetwork := s.active.CurrentNetworkID()
	if !okAccount || !okNetwork {
		return
	}
	snapshot := model.BalanceSnapshot{
		AccountID:     accountID,
		NetworkID:     networkID,
		TokensBalance: model.TokenBalanceMap{},
	}
	s.store.Dispatch(store.SetAccountTokenBalances{Snapshot: snapshot})
	s.publishMirror(ctx, snapshot)
}

// BatchFetchAccountBalances coalesces native-balance refreshes for a wallet's
// accounts. Fire-and-forget; bursts within the window collapse into one
// execution with the last call's parameters.
func (s *Service) BatchFetchAccountBalances(p BatchFetchAccountBalancesParams) {
	s.batchBalancesDeb.Request(p.WalletID+":"+p.NetworkID, p)
}

func (s *Service) runBatchFetchAccountBalances(ctx context.Context, p BatchFetchAccountBalancesParams) {
	ctx, span := tracing.Tracer("sync").Start(ctx, "sync.batch_fetch_account_balances",
		otelTrace.WithAttributes(
			attribute.String("network", p.NetworkID),
			attribute.Int("account_count", len(p.AccountIDs)),
		))
	defer span.End()
	start := time.Now()

	network, ok := s.networks[p.NetworkID]
	if !ok {
		s.logger.Warn("batch fetch for unknown network", "network", p.NetworkID)
		return
	}
	accounts, err := s.accounts.GetAccounts(ctx, p.AccountIDs)
	if err != nil {
		s.observe("batch_fetch_balances", p.NetworkID, start, err)
		s.logger.Warn("batch fetch account load failed", "network", p.NetworkID, "error", err)
		return
	}

	data := s.agg.FetchBalances(ctx, accounts, network)
	for accountID, value := range data {
		merged := s.store.AccountTokenBalances(accountID, p.NetworkID)
		if merged == nil {
			merged = make(model.TokenBalanceMap, 1)
		}
		merged[model.MainBalanceKey] = value

		snapshot := model.BalanceSnapshot{
			AccountID:     accountID,
			NetworkID:     p.NetworkID,
			TokensBalance: merged,
		}
		s.store.Dispatch(store.SetAccountTokenBalances{Snapshot: snapshot})
		metrics.SnapshotsPublished.WithLabelValues(p.NetworkID).Inc()
		s.publishMirror(ctx, snapshot)
	}

	s.observe("batch_fetch_balances", p.NetworkID, start, nil)
}

// AddAccountToken registers a user-chosen token for the account and
// refreshes the account token list. Returns nil without error when the
// token is already present. User-initiated, so failures propagate.
func (s *Service) AddAccountToken(ctx context.Context, networkID, accountID, address, logoURI string) (*model.Token, error) {
	if address == "" {
		return nil, nil
	}

	ctx, span := tracing.Tracer("sync").Start(ctx, "sync.add_account_token",
		otelTrace.WithAttributes(
			attribute.String("network", networkID),
			attribute.String("account", accountID),
		))
	defer span.End()
	start := time.Now()

	for _, t := range s.store.AccountTokens(accountID, networkID) {
		if t.TokenIDOnNetwork == address {
			return nil, nil
		}
	}

	v, err := s.vaults.Get(networkID)
	if err != nil {
		s.observe("add_account_token", networkID, start, err)
		return nil, err
	}
	token, err := v.QuickAddToken(ctx, accountID, address, logoURI)
	if err != nil {
		s.observe("add_account_token", networkID, start, err)
		return nil, fmt.Errorf("quick add token %s on %s: %w", address, networkID, err)
	}

	if s.tokenRepo != nil {
		id, err := s.tokenRepo.Upsert(ctx, accountID, token)
		if err != nil {
			s.observe("add_account_token", networkID, start, err)
			return nil, fmt.Errorf("persist token %s: %w", token.TokenIDOnNetwork, err)
		}
		token.ID = id
	}

	if _, err := s.FetchAccountTokens(ctx, FetchAccountTokensParams{
		AccountID: accountID,
		NetworkID: networkID,
	}); err != nil {
		s.observe("add_account_token", networkID, start, err)
		return nil, err
	}

	s.observe("add_account_token", networkID, start, nil)
	return token, nil
}

// GetNativeToken returns the network's native token, cache-first, falling
// back to the store and then the vault. User-initiated, so failures
// propagate.
func (s *Service) GetNativeToken(ctx context.Context, networkID string) (model.Token, error) {
	if token, ok := s.nativeTokens.Get(networkID); ok {
		return token, nil
	}
	if token, ok := s.store.NativeToken(networkID); ok {
		s.nativeTokens.Put(networkID, token)
		return token, nil
	}

	v, err := s.vaults.Get(networkID)
	if err != nil {
		return model.Token{}, err
	}
	token, err := v.GetNativeTokenInfo(ctx)
	if err != nil {
		return model.Token{}, fmt.Errorf("native token info %s: %w", networkID, err)
	}
	s.store.Dispatch(store.SetNativeToken{NetworkID: networkID, Token: token})
	s.nativeTokens.Put(networkID, token)
	return token, nil
}

func (s *Service) publishMirror(ctx context.Context, snapshot model.BalanceSnapshot) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.PublishSnapshot(ctx, snapshot); err != nil {
		metrics.MirrorPublishErrors.WithLabelValues(snapshot.NetworkID).Inc()
		s.logger.Warn("snapshot mirror publish failed", "account", snapshot.AccountID, "network", snapshot.NetworkID, "error", err)
	}
}

func (s *Service) observe(op, network string, start time.Time, err error) {
	metrics.SyncOpsTotal.WithLabelValues(op, network).Inc()
	if err != nil {
		metrics.SyncOpErrors.WithLabelValues(op, network).Inc()
	}
	metrics.SyncOpLatency.WithLabelValues(op, network).Observe(time.Since(start).Seconds())
}

func tokenIDsOf(tokens []model.Token) []string {
	ids := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.TokenIDOnNetwork == "" {
			continue
		}
		ids = append(ids, t.TokenIDOnNetwork)
	}
	return ids
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
