package model

// Network is read-only reference data describing one chain network.
type Network struct {
	ID     string
	Name   string
	Symbol string

	// Decimals is the native currency's fixed-point precision. Raw integer
	// balances from a vault are scaled down by 10^Decimals for display.
	Decimals int

	NativeDisplayDecimals int
	TokenDisplayDecimals  int

	// RPCURL is the endpoint the network's vault talks to.
	RPCURL string
}
