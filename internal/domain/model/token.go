package model

import "github.com/google/uuid"

// Token describes one fungible token on one network. The native currency is
// represented as a Token with an empty TokenIDOnNetwork.
type Token struct {
	ID               uuid.UUID
	NetworkID        string
	TokenIDOnNetwork string
	Symbol           string
	Name             string
	Decimals         int
	LogoURI          string

	// AutoDetected marks tokens discovered through balance scans rather
	// than added explicitly by the user.
	AutoDetected bool
}

// TokenKey is the uniqueness key for tokens across all registries.
type TokenKey struct {
	NetworkID        string
	TokenIDOnNetwork string
}

func (t Token) Key() TokenKey {
	return TokenKey{NetworkID: t.NetworkID, TokenIDOnNetwork: t.TokenIDOnNetwork}
}

// IsNative reports whether the token is the network's base currency.
func (t Token) IsNative() bool {
	return t.TokenIDOnNetwork == ""
}
