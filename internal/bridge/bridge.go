// Package bridge reacts to network-change signals by refreshing the active
// account's balances.
package bridge

import (
	"context"
	"log/slog"

	"github.com/emperorhan/wallet-balance-sync/internal/eventbus"
	"github.com/emperorhan/wallet-balance-sync/internal/store"
)

// balanceRefresher is the slice of the sync service the bridge drives.
type balanceRefresher interface {
	RefreshTokenBalance(ctx context.Context, accountID, networkID string)
}

// Bridge is constructed once at process start and holds its unsubscribe
// handle explicitly; Close must be called on teardown.
type Bridge struct {
	active      store.ActiveState
	refresher   balanceRefresher
	logger      *slog.Logger
	unsubscribe func()
}

func New(bus *eventbus.Bus, active store.ActiveState, refresher balanceRefresher, logger *slog.Logger) *Bridge {
	b := &Bridge{
		active:    active,
		refresher: refresher,
		logger:    logger.With("component", "bridge"),
	}
	b.unsubscribe = bus.Subscribe(eventbus.SignalNetworkChanged, b.onNetworkChanged)
	return b
}

func (b *Bridge) onNetworkChanged(any) {
	accountID, okAccount := b.active.CurrentAccountID()
	networkID, okNetwork := b.active.CurrentNetworkID()
	if !okAccount || !okNetwork {
		// Nothing selected yet; nothing to refresh.
		return
	}
	b.logger.Debug("network changed, refreshing balances", "account", accountID, "network", networkID)
	b.refresher.RefreshTokenBalance(context.Background(), accountID, networkID)
}

// Close releases the signal subscription.
func (b *Bridge) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}
