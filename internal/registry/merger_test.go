package registry

import (
	"testing"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(networkID, id, symbol string) model.Token {
	return model.Token{NetworkID: networkID, TokenIDOnNetwork: id, Symbol: symbol}
}

func TestMerge_AddsOnlyNewTokens(t *testing.T) {
	existing := []model.Token{token("evm--1", "0xaaa", "AAA")}
	fetched := []model.Token{
		token("evm--1", "0xaaa", "AAA-RENAMED"),
		token("evm--1", "0xbbb", "BBB"),
	}

	result := Merge(existing, fetched)

	require.Len(t, result.AccountTokens, 2)
	// The existing entry keeps its metadata.
	assert.Equal(t, "AAA", result.AccountTokens[0].Symbol)
	assert.Equal(t, "BBB", result.AccountTokens[1].Symbol)

	require.Len(t, result.Added, 1)
	assert.Equal(t, "0xbbb", result.Added[0].TokenIDOnNetwork)
	assert.Nil(t, result.NativeToken)
}

func TestMerge_Idempotent(t *testing.T) {
	existing := []model.Token{token("evm--1", "0xaaa", "AAA")}
	fetched := []model.Token{token("evm--1", "0xbbb", "BBB")}

	first := Merge(existing, fetched)
	second := Merge(first.AccountTokens, fetched)

	assert.Equal(t, first.AccountTokens, second.AccountTokens)
	assert.Empty(t, second.Added)
}

func TestMerge_ExtractsNativeToken(t *testing.T) {
	native := model.Token{NetworkID: "evm--1", Symbol: "ETH"}
	fetched := []model.Token{native, token("evm--1", "0xaaa", "AAA")}

	result := Merge(nil, fetched)

	require.NotNil(t, result.NativeToken)
	assert.Equal(t, "ETH", result.NativeToken.Symbol)
	// The native token never lands in a generic list.
	for _, tok := range result.AccountTokens {
		assert.False(t, tok.IsNative())
	}
	for _, tok := range result.Added {
		assert.False(t, tok.IsNative())
	}
}

func TestSplitNative_FirstNativeWins(t *testing.T) {
	first := model.Token{NetworkID: "evm--1", Symbol: "ETH"}
	second := model.Token{NetworkID: "evm--1", Symbol: "WRONG"}

	native, rest := SplitNative([]model.Token{first, second, token("evm--1", "0xaaa", "AAA")})

	require.NotNil(t, native)
	assert.Equal(t, "ETH", native.Symbol)
	require.Len(t, rest, 1)
}

func TestMergeAdd_DeduplicatesIncoming(t *testing.T) {
	incoming := []model.Token{
		token("evm--1", "0xaaa", "AAA"),
		token("evm--1", "0xaaa", "AAA-DUP"),
	}

	merged, added := MergeAdd(nil, incoming)

	require.Len(t, merged, 1)
	require.Len(t, added, 1)
	assert.Equal(t, "AAA", merged[0].Symbol)
}

func TestMergeAdd_SameIDDifferentNetworks(t *testing.T) {
	existing := []model.Token{token("evm--1", "0xaaa", "AAA")}
	incoming := []model.Token{token("evm--137", "0xaaa", "AAA")}

	merged, added := MergeAdd(existing, incoming)

	assert.Len(t, merged, 2)
	assert.Len(t, added, 1)
}

func TestReplaceKeepAutoDetected(t *testing.T) {
	detected := token("evm--1", "0xauto", "AUTO")
	detected.AutoDetected = true
	existing := []model.Token{
		token("evm--1", "0xgone", "GONE"),
		detected,
	}
	incoming := []model.Token{token("evm--1", "0xnew", "NEW")}

	out := ReplaceKeepAutoDetected(existing, incoming)

	require.Len(t, out, 2)
	assert.Equal(t, "0xnew", out[0].TokenIDOnNetwork)
	assert.Equal(t, "0xauto", out[1].TokenIDOnNetwork)
}

func TestReplaceKeepAutoDetected_IncomingWinsOverDetected(t *testing.T) {
	detected := token("evm--1", "0xaaa", "OLD")
	detected.AutoDetected = true
	incoming := []model.Token{token("evm--1", "0xaaa", "NEW")}

	out := ReplaceKeepAutoDetected([]model.Token{detected}, incoming)

	require.Len(t, out, 1)
	assert.Equal(t, "NEW", out[0].Symbol)
}
