// Package registry implements the token merge rules. Everything here is a
// pure function over token slices: callers compute a new registry state and
// publish it whole, never mutating a published collection in place.
package registry

import "github.com/emperorhan/wallet-balance-sync/internal/domain/model"

// MergeResult is the outcome of merging a fetched token set into an
// account's existing set.
type MergeResult struct {
	// AccountTokens is the merged per-account list, native token excluded.
	AccountTokens []model.Token
	// Added are the fetched tokens that were absent from the existing set;
	// they belong in the network-wide set in the same publish.
	Added []model.Token
	// NativeToken is the fetched entry with an empty on-chain id, if any.
	NativeToken *model.Token
}

// Merge folds fetched tokens into an account's existing token set.
// Tokens already present are left untouched, so user-visible metadata never
// gets overwritten by a fetch. Merging the same fetched set twice yields
// the same state.
func Merge(existing, fetched []model.Token) MergeResult {
	native, rest := SplitNative(fetched)
	merged, added := MergeAdd(existing, rest)
	return MergeResult{
		AccountTokens: merged,
		Added:         added,
		NativeToken:   native,
	}
}

// SplitNative extracts the native token (empty on-chain id) from a fetched
// list. The native token is surfaced through its own slot, never mixed into
// generic token lists. The first native entry wins.
func SplitNative(tokens []model.Token) (*model.Token, []model.Token) {
	var native *model.Token
	rest := make([]model.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.IsNative() {
			if native == nil {
				n := t
				native = &n
			}
			continue
		}
		rest = append(rest, t)
	}
	return native, rest
}

// MergeAdd appends incoming tokens absent from existing, deduplicated by
// token key. Existing entries are kept as-is. Returns the merged list and
// the entries actually added.
func MergeAdd(existing, incoming []model.Token) (merged, added []model.Token) {
	seen := make(map[model.TokenKey]struct{}, len(existing)+len(incoming))
	merged = make([]model.Token, 0, len(existing)+len(incoming))
	for _, t := range existing {
		if _, ok := seen[t.Key()]; ok {
			continue
		}
		seen[t.Key()] = struct{}{}
		merged = append(merged, t)
	}
	for _, t := range incoming {
		if _, ok := seen[t.Key()]; ok {
			continue
		}
		seen[t.Key()] = struct{}{}
		merged = append(merged, t)
		added = append(added, t)
	}
	return merged, added
}

// ReplaceKeepAutoDetected replaces a network token list with incoming,
// retaining existing auto-detected tokens that the new list does not carry.
func ReplaceKeepAutoDetected(existing, incoming []model.Token) []model.Token {
	out, _ := MergeAdd(dedupe(incoming), autoDetectedOnly(existing))
	return out
}

func autoDetectedOnly(tokens []model.Token) []model.Token {
	out := make([]model.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.AutoDetected {
			out = append(out, t)
		}
	}
	return out
}

func dedupe(tokens []model.Token) []model.Token {
	out, _ := MergeAdd(nil, tokens)
	return out
}
