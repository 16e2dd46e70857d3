// Package resolver turns account records into the chain address to query.
// Every other component operates on resolved addresses, never on raw
// account records.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/emperorhan/wallet-balance-sync/internal/vault"
)

// ErrAddressUnavailable means no strategy could produce an address for the
// account on the requested network. Callers exclude such accounts from
// balance batches instead of failing the batch.
var ErrAddressUnavailable = errors.New("address unavailable")

type Resolver struct {
	vaults *vault.Registry
}

func New(vaults *vault.Registry) *Resolver {
	return &Resolver{vaults: vaults}
}

// Resolve produces the balance-query address for an account on a network.
// Variant derivation is a pure projection; the derived address is not
// written back to the account record here.
func (r *Resolver) Resolve(ctx context.Context, account model.Account, networkID string) (string, error) {
	switch account.Kind {
	case model.AccountKindUTXO:
		v, err := r.vaults.Get(networkID)
		if err != nil {
			return "", fmt.Errorf("%w: account %s: %v", ErrAddressUnavailable, account.ID, err)
		}
		address, err := v.GetFetchBalanceAddress(ctx, account)
		if err != nil {
			return "", fmt.Errorf("%w: account %s: %v", ErrAddressUnavailable, account.ID, err)
		}
		return address, nil

	case model.AccountKindVariant:
		if address, ok := account.Addresses[networkID]; ok && address != "" {
			return address, nil
		}
		if account.Address == "" {
			return "", fmt.Errorf("%w: account %s has no base address", ErrAddressUnavailable, account.ID)
		}
		v, err := r.vaults.Get(networkID)
		if err != nil {
			return "", fmt.Errorf("%w: account %s: %v", ErrAddressUnavailable, account.ID, err)
		}
		address, err := v.AddressFromBase(ctx, account.Address)
		if err != nil {
			return "", fmt.Errorf("%w: account %s: %v", ErrAddressUnavailable, account.ID, err)
		}
		return address, nil

	case model.AccountKindSimple:
		if account.Address == "" {
			return "", fmt.Errorf("%w: account %s has no address", ErrAddressUnavailable, account.ID)
		}
		return account.Address, nil

	default:
		return "", fmt.Errorf("%w: account %s has unknown kind %q", ErrAddressUnavailable, account.ID, account.Kind)
	}
}
