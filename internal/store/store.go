package store

import (
	"context"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/google/uuid"
)

// AccountReader is the wallet database's read-only contract. The sync
// service never writes accounts.
type AccountReader interface {
	GetAccount(ctx context.Context, accountID string) (model.Account, error)
	// GetAccounts returns records for the requested ids, preserving request
	// order and skipping unknown ids.
	GetAccounts(ctx context.Context, accountIDs []string) ([]model.Account, error)
}

// ActiveState is the narrow cross-cutting read contract for the currently
// selected account/network pair. Injected explicitly into the bridge rather
// than reached through ambient global state.
type ActiveState interface {
	CurrentAccountID() (string, bool)
	CurrentNetworkID() (string, bool)
}

// Action is one state mutation. A Dispatch call applies all its actions as
// a single atomic publish: readers observe either none or all of them.
type Action interface {
	isAction()
}

// SetAccountTokens replaces the token list for an (account, network) pair.
type SetAccountTokens struct {
	AccountID string
	NetworkID string
	Tokens    []model.Token
}

// AddAccountTokens merges tokens into the (account, network) list without
// overwriting entries already present.
type AddAccountTokens struct {
	AccountID string
	NetworkID string
	Tokens    []model.Token
}

// SetNetworkTokens replaces the network-wide token list. KeepAutoDetected
// retains previously auto-detected tokens missing from the new list.
type SetNetworkTokens struct {
	NetworkID        string
	Tokens           []model.Token
	KeepAutoDetected bool
}

// AddNetworkTokens merges tokens into the network-wide list without
// overwriting entries already present.
type AddNetworkTokens struct {
	NetworkID string
	Tokens    []model.Token
}

// SetNativeToken publishes the network's native token slot.
type SetNativeToken struct {
	NetworkID string
	Token     model.Token
}

// SetAccountTokenBalances replaces the balance snapshot for an
// (account, network) pair.
type SetAccountTokenBalances struct {
	Snapshot model.BalanceSnapshot
}

func (SetAccountTokens) isAction()        {}
func (AddAccountTokens) isAction()        {}
func (SetNetworkTokens) isAction()        {}
func (AddNetworkTokens) isAction()        {}
func (SetNativeToken) isAction()          {}
func (SetAccountTokenBalances) isAction() {}

// StateStore is the application state surface the sync service publishes
// to and selects from. Implementations must give readers complete,
// consistent snapshots; collections handed out are never mutated in place.
type StateStore interface {
	Dispatch(actions ...Action)

	AccountTokens(accountID, networkID string) []model.Token
	NetworkTokens(networkID string) []model.Token
	NativeToken(networkID string) (model.Token, bool)
	AccountTokenBalances(accountID, networkID string) model.TokenBalanceMap
}

// SnapshotMirror replicates published balance snapshots to out-of-process
// consumers.
type SnapshotMirror interface {
	PublishSnapshot(ctx context.Context, snapshot model.BalanceSnapshot) error
	Close() error
}

// TokenRepository persists user-added custom tokens across restarts.
type TokenRepository interface {
	Upsert(ctx context.Context, accountID string, token *model.Token) (uuid.UUID, error)
	ListByAccount(ctx context.Context, networkID, accountID string) ([]model.Token, error)
	ListByNetwork(ctx context.Context, networkID string) ([]model.Token, error)
}
