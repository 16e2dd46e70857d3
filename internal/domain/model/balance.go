package model

// MainBalanceKey is the TokenBalanceMap slot holding the native currency
// balance of an account.
const MainBalanceKey = "main"

// TokenBalanceMap maps a token id on network (or MainBalanceKey for the
// native currency) to a decimal string balance. A nil value records that
// the fetch failed or the balance is unknown; it is never coerced to "0".
type TokenBalanceMap map[string]*string

// Clone returns an independent copy so published snapshots are never
// mutated in place.
func (m TokenBalanceMap) Clone() TokenBalanceMap {
	if m == nil {
		return nil
	}
	out := make(TokenBalanceMap, len(m))
	for k, v := range m {
		if v == nil {
			out[k] = nil
			continue
		}
		s := *v
		out[k] = &s
	}
	return out
}

// BalanceSnapshot is the externally published result of one fetch cycle for
// one (account, network) pair. It replaces any prior snapshot for the same
// pair at the store level.
type BalanceSnapshot struct {
	AccountID     string
	NetworkID     string
	TokensBalance TokenBalanceMap
}
