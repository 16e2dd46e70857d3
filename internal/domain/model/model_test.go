package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountKind_Valid(t *testing.T) {
	assert.True(t, AccountKindSimple.Valid())
	assert.True(t, AccountKindUTXO.Valid())
	assert.True(t, AccountKindVariant.Valid())
	assert.False(t, AccountKind("exotic").Valid())
	assert.False(t, AccountKind("").Valid())
}

func TestAccount_Validate(t *testing.T) {
	account := Account{ID: "acct-1", Kind: AccountKindSimple}
	assert.NoError(t, account.Validate())

	assert.Error(t, Account{Kind: AccountKindSimple}.Validate())
	assert.Error(t, Account{ID: "acct-1", Kind: "exotic"}.Validate())
}

func TestToken_IsNativeAndKey(t *testing.T) {
	native := Token{NetworkID: "evm--1", Symbol: "ETH"}
	assert.True(t, native.IsNative())

	erc20 := Token{NetworkID: "evm--1", TokenIDOnNetwork: "0xaaa"}
	assert.False(t, erc20.IsNative())

	assert.Equal(t, TokenKey{NetworkID: "evm--1", TokenIDOnNetwork: "0xaaa"}, erc20.Key())
	assert.NotEqual(t, native.Key(), erc20.Key())
}

func TestTokenBalanceMap_Clone(t *testing.T) {
	value := "1.5"
	original := TokenBalanceMap{
		MainBalanceKey: &value,
		"0xaaa":        nil,
	}

	clone := original.Clone()
	require.NotNil(t, clone)

	*clone[MainBalanceKey] = "tampered"
	clone["extra"] = nil

	assert.Equal(t, "1.5", *original[MainBalanceKey])
	assert.Len(t, original, 2)

	nilValue, ok := clone["0xaaa"]
	require.True(t, ok)
	assert.Nil(t, nilValue)
}

func TestTokenBalanceMap_CloneNil(t *testing.T) {
	var m TokenBalanceMap
	assert.Nil(t, m.Clone())
}
