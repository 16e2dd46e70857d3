package store

import (
	"sync"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/emperorhan/wallet-balance-sync/internal/registry"
)

type accountNetworkKey struct {
	accountID string
	networkID string
}

// Memory is the in-process StateStore. Every Dispatch computes fresh
// collections and swaps them in under one lock, so a reader never observes
// a partially applied action batch.
type Memory struct {
	mu sync.RWMutex

	accountTokens map[accountNetworkKey][]model.Token
	networkTokens map[string][]model.Token
	nativeTokens  map[string]model.Token
	balances      map[accountNetworkKey]model.TokenBalanceMap

	activeAccountID string
	activeNetworkID string
}

func NewMemory() *Memory {
	return &Memory{
		accountTokens: make(map[accountNetworkKey][]model.Token),
		networkTokens: make(map[string][]model.Token),
		nativeTokens:  make(map[string]model.Token),
		balances:      make(map[accountNetworkKey]model.TokenBalanceMap),
	}
}

func (m *Memory) Dispatch(actions ...Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, action := range actions {
		m.apply(action)
	}
}

func (m *Memory) apply(action Action) {
	switch a := action.(type) {
	case SetAccountTokens:
		key := accountNetworkKey{a.AccountID, a.NetworkID}
		m.accountTokens[key] = copyTokens(a.Tokens)
	case AddAccountTokens:
		key := accountNetworkKey{a.AccountID, a.NetworkID}
		merged, _ := registry.MergeAdd(m.accountTokens[key], a.Tokens)
		m.accountTokens[key] = merged
	case SetNetworkTokens:
		if a.KeepAutoDetected {
			m.networkTokens[a.NetworkID] = registry.ReplaceKeepAutoDetected(m.networkTokens[a.NetworkID], a.Tokens)
		} else {
			m.networkTokens[a.NetworkID] = copyTokens(a.Tokens)
		}
	case AddNetworkTokens:
		merged, _ := registry.MergeAdd(m.networkTokens[a.NetworkID], a.Tokens)
		m.networkTokens[a.NetworkID] = merged
	case SetNativeToken:
		m.nativeTokens[a.NetworkID] = a.Token
	case SetAccountTokenBalances:
		key := accountNetworkKey{a.Snapshot.AccountID, a.Snapshot.NetworkID}
		m.balances[key] = a.Snapshot.TokensBalance.Clone()
	}
}

func (m *Memory) AccountTokens(accountID, networkID string) []model.Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyTokens(m.accountTokens[accountNetworkKey{accountID, networkID}])
}

func (m *Memory) NetworkTokens(networkID string) []model.Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyTokens(m.networkTokens[networkID])
}

func (m *Memory) NativeToken(networkID string) (model.Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.nativeTokens[networkID]
	return t, ok
}

func (m *Memory) AccountTokenBalances(accountID, networkID string) model.TokenBalanceMap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[accountNetworkKey{accountID, networkID}].Clone()
}

// SetActive records the currently selected account/network pair. Called by
// the application shell on selection changes.
func (m *Memory) SetActive(accountID, networkID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeAccountID = accountID
	m.activeNetworkID = networkID
}

func (m *Memory) CurrentAccountID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeAccountID, m.activeAccountID != ""
}

func (m *Memory) CurrentNetworkID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeNetworkID, m.activeNetworkID != ""
}

func copyTokens(tokens []model.Token) []model.Token {
	if tokens == nil {
		return nil
	}
	return append([]model.Token(nil), tokens...)
}
