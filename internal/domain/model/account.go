package model

import "fmt"

// AccountKind is a closed set of account address models. Address resolution
// switches exhaustively over this tag; there are no ad-hoc casts on account
// records anywhere else.
type AccountKind string

const (
	// AccountKindSimple holds a single chain address used as-is.
	AccountKindSimple AccountKind = "simple"
	// AccountKindUTXO derives its fetch address through the network vault's
	// UTXO address-selection logic.
	AccountKindUTXO AccountKind = "utxo"
	// AccountKindVariant may carry a different address per network, either
	// cached in Addresses or derived from the base Address.
	AccountKindVariant AccountKind = "variant"
)

func (k AccountKind) Valid() bool {
	switch k {
	case AccountKindSimple, AccountKindUTXO, AccountKindVariant:
		return true
	}
	return false
}

func (k AccountKind) String() string {
	return string(k)
}

// Account is a read-only view of a persisted wallet account. The sync
// service never mutates accounts; the wallet database owns their lifecycle.
type Account struct {
	ID       string
	WalletID string
	Kind     AccountKind
	Name     string

	// Address is the account's base/display address. For variant accounts
	// it is the derivation base, not necessarily a valid on-chain address
	// for any particular network.
	Address string

	// Addresses caches per-network addresses for variant accounts,
	// keyed by network ID. May be nil.
	Addresses map[string]string
}

func (a Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("account id is empty")
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("account %s: unknown kind %q", a.ID, a.Kind)
	}
	return nil
}
