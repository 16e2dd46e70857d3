package sync

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/emperorhan/wallet-balance-sync/internal/aggregator"
	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/emperorhan/wallet-balance-sync/internal/resolver"
	"github.com/emperorhan/wallet-balance-sync/internal/store"
	"github.com/emperorhan/wallet-balance-sync/internal/vault"
	"github.com/emperorhan/wallet-balance-sync/internal/vault/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testNetworkID = "evm--1"

type fixture struct {
	vault   *mocks.MockVault
	state   *store.Memory
	service *Service
}

func newFixture(t *testing.T, accounts ...model.Account) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	v := mocks.NewMockVault(ctrl)
	v.EXPECT().NetworkID().Return(testNetworkID).AnyTimes()

	vaults := vault.NewRegistry()
	require.NoError(t, vaults.Register(v))

	state := store.NewMemory()
	directory := store.NewDirectory(accounts)
	networks := []model.Network{{ID: testNetworkID, Name: "Ethereum", Symbol: "ETH", Decimals: 18}}
	agg := aggregator.New(vaults, resolver.New(vaults), slog.Default())

	service := New(state, state, directory, vaults, networks, agg, Options{
		DebounceWindow: 15 * time.Millisecond,
		TopTokenLimit:  50,
	}, slog.Default())
	t.Cleanup(service.Close)

	return &fixture{vault: v, state: state, service: service}
}

func erc20(id, symbol string) model.Token {
	return model.Token{NetworkID: testNetworkID, TokenIDOnNetwork: id, Symbol: symbol, Decimals: 18}
}

func nativeETH() model.Token {
	return model.Token{NetworkID: testNetworkID, Symbol: "ETH", Name: "Ethereum", Decimals: 18}
}

func strPtr(s string) *string { return &s }

func TestFetchAccountTokens_PublishesListAndNativeSlot(t *testing.T) {
	f := newFixture(t)
	f.vault.EXPECT().
		GetTokens(gomock.Any(), "acct-1", true, true, false).
		Return([]model.Token{nativeETH(), erc20("0xaaa", "AAA")}, nil)

	tokens, err := f.service.FetchAccountTokens(context.Background(), FetchAccountTokensParams{
		AccountID: "acct-1",
		NetworkID: testNetworkID,
	})
	require.NoError(t, err)
	assert.Len(t, tokens, 2)

	accountTokens := f.state.AccountTokens("acct-1", testNetworkID)
	require.Len(t, accountTokens, 1)
	assert.Equal(t, "0xaaa", accountTokens[0].TokenIDOnNetwork)

	native, ok := f.state.NativeToken(testNetworkID)
	require.True(t, ok)
	assert.Equal(t, "ETH", native.Symbol)
}

func TestFetchAccountTokens_WaitRefreshesBalancesBeforeReturn(t *testing.T) {
	f := newFixture(t)
	f.vault.EXPECT().
		GetTokens(gomock.Any(), "acct-1", true, true, true).
		Return([]model.Token{nativeETH(), erc20("0xaaa", "AAA")}, nil)
	f.vault.EXPECT().
		GetAccountBalance(gomock.Any(), "acct-1", []string{"0xaaa"}).
		Return(model.TokenBalanceMap{
			model.MainBalanceKey: strPtr("1"),
			"0xaaa":              strPtr("2.5"),
		}, nil, nil)

	_, err := f.service.FetchAccountTokens(context.Background(), FetchAccountTokensParams{
		AccountID:         "acct-1",
		NetworkID:         testNetworkID,
		WithBalance:       true,
		Wait:              true,
		ForceReloadTokens: true,
	})
	require.NoError(t, err)

	balances := f.state.AccountTokenBalances("acct-1", testNetworkID)
	require.NotNil(t, balances[model.MainBalanceKey])
	assert.Equal(t, "1", *balances[model.MainBalanceKey])
	require.NotNil(t, balances["0xaaa"])
	assert.Equal(t, "2.5", *balances["0xaaa"])
}

func TestFetchTokenBalance_EmptyAccountID(t *testing.T) {
	f := newFixture(t)

	balances, err := f.service.FetchTokenBalance(context.Background(), FetchTokenBalanceParams{
		NetworkID: testNetworkID,
	})
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestFetchTokenBalance_NilTokenIDsUnionsStoreLists(t *testing.T) {
	f := newFixture(t)
	f.state.Dispatch(
		store.SetNetworkTokens{NetworkID: testNetworkID, Tokens: []model.Token{erc20("0xaaa", "AAA")}},
		store.SetAccountTokens{AccountID: "acct-1", NetworkID: testNetworkID, Tokens: []model.Token{
			erc20("0xaaa", "AAA"),
			erc20("0xbbb", "BBB"),
		}},
	)

	f.vault.EXPECT().
		GetAccountBalance(gomock.Any(), "acct-1", []string{"0xaaa", "0xbbb"}).
		Return(model.TokenBalanceMap{model.MainBalanceKey: strPtr("0")}, nil, nil)

	_, err := f.service.FetchTokenBalance(context.Background(), FetchTokenBalanceParams{
		AccountID: "acct-1",
		NetworkID: testNetworkID,
	})
	require.NoError(t, err)
}

func TestFetchTokenBalance_FetchFailureDegradesToUnknown(t *testing.T) {
	f := newFixture(t)
	f.state.Dispatch(store.SetAccountTokenBalances{Snapshot: model.BalanceSnapshot{
		AccountID:     "acct-1",
		NetworkID:     testNetworkID,
		TokensBalance: model.TokenBalanceMap{model.MainBalanceKey: strPtr("5")},
	}})

	f.vault.EXPECT().
		GetAccountBalance(gomock.Any(), "acct-1", gomock.Any()).
		Return(nil, nil, errors.New("rpc down"))

	balances, err := f.service.FetchTokenBalance(context.Background(), FetchTokenBalanceParams{
		AccountID: "acct-1",
		NetworkID: testNetworkID,
		TokenIDs:  []string{"0xaaa"},
	})
	require.NoError(t, err)

	// Every requested slot is published as unknown, replacing stale values.
	value, ok := balances[model.MainBalanceKey]
	require.True(t, ok)
	assert.Nil(t, value)
	value, ok = balances["0xaaa"]
	require.True(t, ok)
	assert.Nil(t, value)

	published := f.state.AccountTokenBalances("acct-1", testNetworkID)
	assert.Nil(t, published[model.MainBalanceKey])
}

func TestFetchTokenBalance_DiscoveredTokensRegisteredWithBalances(t *testing.T) {
	f := newFixture(t)
	discovered := erc20("0xfound", "FOUND")
	discovered.AutoDetected = true

	f.vault.EXPECT().
		GetAccountBalance(gomock.Any(), "acct-1", gomock.Any()).
		Return(model.TokenBalanceMap{
			model.MainBalanceKey: strPtr("1"),
			"0xfound":            strPtr("42"),
		}, []model.Token{discovered}, nil)

	_, err := f.service.FetchTokenBalance(context.Background(), FetchTokenBalanceParams{
		AccountID: "acct-1",
		NetworkID: testNetworkID,
		TokenIDs:  []string{},
	})
	require.NoError(t, err)

	accountTokens := f.state.AccountTokens("acct-1", testNetworkID)
	require.Len(t, accountTokens, 1)
	assert.Equal(t, "0xfound", accountTokens[0].TokenIDOnNetwork)

	networkTokens := f.state.NetworkTokens(testNetworkID)
	require.Len(t, networkTokens, 1)
	assert.Equal(t, "0xfound", networkTokens[0].TokenIDOnNetwork)

	balances := f.state.AccountTokenBalances("acct-1", testNetworkID)
	require.NotNil(t, balances["0xfound"])
	assert.Equal(t, "42", *balances["0xfound"])
}

func TestFetchTokenBalance_MalformedValueExcludedFromPublish(t *testing.T) {
	f := newFixture(t)
	f.vault.EXPECT().
		GetAccountBalance(gomock.Any(), "acct-1", gomock.Any()).
		Return(model.TokenBalanceMap{
			model.MainBalanceKey: strPtr("1"),
			"0xbad":              strPtr("not-a-number"),
		}, nil, nil)

	balances, err := f.service.FetchTokenBalance(context.Background(), FetchTokenBalanceParams{
		AccountID: "acct-1",
		NetworkID: testNetworkID,
		TokenIDs:  []string{"0xbad"},
	})
	require.NoError(t, err)

	_, ok := balances["0xbad"]
	assert.False(t, ok)
	published := f.state.AccountTokenBalances("acct-1", testNetworkID)
	_, ok = published["0xbad"]
	assert.False(t, ok)
	require.NotNil(t, published[model.MainBalanceKey])
}

func TestFetchTokenBalance_MergesWithExistingSnapshot(t *testing.T) {
	f := newFixture(t)
	f.state.Dispatch(store.SetAccountTokenBalances{Snapshot: model.BalanceSnapshot{
		AccountID:     "acct-1",
		NetworkID:     testNetworkID,
		TokensBalance: model.TokenBalanceMap{"0xold": strPtr("7")},
	}})

	f.vault.EXPECT().
		GetAccountBalance(gomock.Any(), "acct-1", gomock.Any()).
		Return(model.TokenBalanceMap{model.MainBalanceKey: strPtr("1")}, nil, nil)

	balances, err := f.service.FetchTokenBalance(context.Background(), FetchTokenBalanceParams{
		AccountID: "acct-1",
		NetworkID: testNetworkID,
		TokenIDs:  []string{},
	})
	require.NoError(t, err)

	require.NotNil(t, balances["0xold"])
	assert.Equal(t, "7", *balances["0xold"])
	require.NotNil(t, balances[model.MainBalanceKey])
	assert.Equal(t, "1", *balances[model.MainBalanceKey])
}

func TestFetchTokens_ReplacesNetworkListKeepingAutoDetected(t *testing.T) {
	f := newFixture(t)
	detected := erc20("0xauto", "AUTO")
	detected.AutoDetected = true
	f.state.Dispatch(store.AddNetworkTokens{NetworkID: testNetworkID, Tokens: []model.Token{detected}})

	f.vault.EXPECT().
		GetTopTokens(gomock.Any(), 50).
		Return([]model.Token{nativeETH(), erc20("0xtop", "TOP")}, nil)

	tokens, err := f.service.FetchTokens(context.Background(), FetchTokensParams{NetworkID: testNetworkID})
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "0xtop", tokens[0].TokenIDOnNetwork)

	ids := make([]string, 0)
	for _, tok := range f.state.NetworkTokens(testNetworkID) {
		ids = append(ids, tok.TokenIDOnNetwork)
	}
	assert.ElementsMatch(t, []string{"0xtop", "0xauto"}, ids)

	native, ok := f.state.NativeToken(testNetworkID)
	require.True(t, ok)
	assert.Equal(t, "ETH", native.Symbol)
}

func TestClearActiveAccountTokenBalance(t *testing.T) {
	f := newFixture(t)
	f.state.SetActive("acct-1", testNetworkID)
	f.state.Dispatch(store.SetAccountTokenBalances{Snapshot: model.BalanceSnapshot{
		AccountID:     "acct-1",
		NetworkID:     testNetworkID,
		TokensBalance: model.TokenBalanceMap{model.MainBalanceKey: strPtr("5")},
	}})

	f.service.ClearActiveAccountTokenBalance(context.Background())

	assert.Empty(t, f.state.AccountTokenBalances("acct-1", testNetworkID))
}

func TestClearActiveAccountTokenBalance_NoSelection(t *testing.T) {
	f := newFixture(t)
	// Must not panic or publish anything.
	f.service.ClearActiveAccountTokenBalance(context.Background())
	assert.Nil(t, f.state.AccountTokenBalances("", ""))
}

func TestAddAccountToken_EmptyAddress(t *testing.T) {
	f := newFixture(t)
	token, err := f.service.AddAccountToken(context.Background(), testNetworkID, "acct-1", "", "")
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestAddAccountToken_AlreadyPresent(t *testing.T) {
	f := newFixture(t)
	f.state.Dispatch(store.SetAccountTokens{
		AccountID: "acct-1",
		NetworkID: testNetworkID,
		Tokens:    []model.Token{erc20("0xaaa", "AAA")},
	})

	token, err := f.service.AddAccountToken(context.Background(), testNetworkID, "acct-1", "0xaaa", "")
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestAddAccountToken_ResolvesAndRefreshes(t *testing.T) {
	f := newFixture(t)
	added := erc20("0xnew", "NEW")

	f.vault.EXPECT().
		QuickAddToken(gomock.Any(), "acct-1", "0xnew", "https://logo").
		Return(&added, nil)
	f.vault.EXPECT().
		GetTokens(gomock.Any(), "acct-1", true, true, false).
		Return([]model.Token{nativeETH(), added}, nil)

	token, err := f.service.AddAccountToken(context.Background(), testNetworkID, "acct-1", "0xnew", "https://logo")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "NEW", token.Symbol)

	accountTokens := f.state.AccountTokens("acct-1", testNetworkID)
	require.Len(t, accountTokens, 1)
	assert.Equal(t, "0xnew", accountTokens[0].TokenIDOnNetwork)
}

func TestAddAccountToken_ResolutionFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.vault.EXPECT().
		QuickAddToken(gomock.Any(), "acct-1", "0xjunk", "").
		Return(nil, vault.ErrTokenNotFound)

	_, err := f.service.AddAccountToken(context.Background(), testNetworkID, "acct-1", "0xjunk", "")
	assert.ErrorIs(t, err, vault.ErrTokenNotFound)
}

func TestGetNativeToken_StoreThenCache(t *testing.T) {
	f := newFixture(t)
	f.state.Dispatch(store.SetNativeToken{NetworkID: testNetworkID, Token: nativeETH()})

	token, err := f.service.GetNativeToken(context.Background(), testNetworkID)
	require.NoError(t, err)
	assert.Equal(t, "ETH", token.Symbol)

	// Second call is served from the cache even if the store empties.
	token, err = f.service.GetNativeToken(context.Background(), testNetworkID)
	require.NoError(t, err)
	assert.Equal(t, "ETH", token.Symbol)
}

func TestGetNativeToken_VaultFallbackPublishes(t *testing.T) {
	f := newFixture(t)
	f.vault.EXPECT().
		GetNativeTokenInfo(gomock.Any()).
		Return(nativeETH(), nil)

	token, err := f.service.GetNativeToken(context.Background(), testNetworkID)
	require.NoError(t, err)
	assert.Equal(t, "ETH", token.Symbol)

	stored, ok := f.state.NativeToken(testNetworkID)
	require.True(t, ok)
	assert.Equal(t, "ETH", stored.Symbol)

	// Cached now; the vault is not asked again.
	_, err = f.service.GetNativeToken(context.Background(), testNetworkID)
	require.NoError(t, err)
}

func TestBatchFetchAccountBalances_EndToEnd(t *testing.T) {
	oneEther, ok := new(big.Int).SetString("1000000000000000000", 10)
	require.True(t, ok)

	f := newFixture(t,
		model.Account{ID: "acct-1", WalletID: "w1", Kind: model.AccountKindSimple, Address: "0x111"},
		model.Account{ID: "acct-2", WalletID: "w1", Kind: model.AccountKindVariant, Address: "0xabc"},
	)

	f.vault.EXPECT().
		AddressFromBase(gomock.Any(), "0xabc").
		Return("0xderived", nil)
	f.vault.EXPECT().
		GetBalances(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, requests []vault.BalanceRequest) ([]*big.Int, error) {
			require.Len(t, requests, 2)
			return []*big.Int{oneEther, big.NewInt(0)}, nil
		})

	f.service.BatchFetchAccountBalances(BatchFetchAccountBalancesParams{
		WalletID:   "w1",
		NetworkID:  testNetworkID,
		AccountIDs: []string{"acct-1", "acct-2"},
	})

	require.Eventually(t, func() bool {
		balances := f.state.AccountTokenBalances("acct-1", testNetworkID)
		return balances != nil && balances[model.MainBalanceKey] != nil
	}, time.Second, 5*time.Millisecond)

	first := f.state.AccountTokenBalances("acct-1", testNetworkID)
	assert.Equal(t, "1", *first[model.MainBalanceKey])
	second := f.state.AccountTokenBalances("acct-2", testNetworkID)
	require.NotNil(t, second[model.MainBalanceKey])
	assert.Equal(t, "0", *second[model.MainBalanceKey])
}

func TestBatchFetchAccountBalances_BurstCoalesces(t *testing.T) {
	f := newFixture(t,
		model.Account{ID: "acct-1", WalletID: "w1", Kind: model.AccountKindSimple, Address: "0x111"},
	)

	// A burst of requests within the window produces exactly one vault call.
	f.vault.EXPECT().
		GetBalances(gomock.Any(), gomock.Any()).
		Return([]*big.Int{big.NewInt(0)}, nil).
		Times(1)

	params := BatchFetchAccountBalancesParams{
		WalletID:   "w1",
		NetworkID:  testNetworkID,
		AccountIDs: []string{"acct-1"},
	}
	for i := 0; i < 5; i++ {
		f.service.BatchFetchAccountBalances(params)
	}

	require.Eventually(t, func() bool {
		return f.state.AccountTokenBalances("acct-1", testNetworkID) != nil
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, f.service.batchBalancesDeb.idle, time.Second, 5*time.Millisecond)
}

func TestRefreshTokenBalance_SwallowsErrors(t *testing.T) {
	f := newFixture(t)
	f.vault.EXPECT().
		GetAccountBalance(gomock.Any(), "acct-1", gomock.Any()).
		Return(nil, nil, errors.New("rpc down"))

	// Must not panic; failure degrades to an all-unknown publish.
	f.service.RefreshTokenBalance(context.Background(), "acct-1", testNetworkID)

	published := f.state.AccountTokenBalances("acct-1", testNetworkID)
	require.NotNil(t, published)
	assert.Nil(t, published[model.MainBalanceKey])
}
