package evm

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Minimal ABI helpers for the ERC-20 read surface this vault needs.

const (
	selectorBalanceOf = "0x70a08231"
	selectorName      = "0x06fdde03"
	selectorSymbol    = "0x95d89b41"
	selectorDecimals  = "0x313ce567"
)

func encodeBalanceOf(holder string) (string, error) {
	arg, err := encodeAddressArg(holder)
	if err != nil {
		return "", err
	}
	return selectorBalanceOf + arg, nil
}

func encodeAddressArg(address string) (string, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(address)), "0x")
	if len(raw) != 40 || !isHexString(raw) {
		return "", fmt.Errorf("invalid evm address %q", address)
	}
	return strings.Repeat("0", 24) + raw, nil
}

func decodeUint(data string) (*big.Int, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(data), "0x")
	if raw == "" {
		return nil, fmt.Errorf("empty return data")
	}
	value, ok := new(big.Int).SetString(raw, 16)
	if !ok {
		return nil, fmt.Errorf("parse uint return data %q", data)
	}
	return value, nil
}

// decodeString decodes a single ABI-encoded dynamic string return value.
// The offset word is honored, not assumed to be 32.
func decodeString(data string) (string, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(data), "0x")
	// offset word + length word
	if len(raw) < 128 {
		return "", fmt.Errorf("string return data too short")
	}
	offsetWord, ok := new(big.Int).SetString(raw[:64], 16)
	if !ok {
		return "", fmt.Errorf("parse string offset")
	}
	if !offsetWord.IsInt64() || offsetWord.Int64() > int64(len(raw)/2) {
		return "", fmt.Errorf("string offset out of range")
	}
	// byte offset -> hex digit offset
	offset := 2 * int(offsetWord.Int64())
	if offset+64 > len(raw) {
		return "", fmt.Errorf("string offset out of range")
	}
	length, ok := new(big.Int).SetString(raw[offset:offset+64], 16)
	if !ok {
		return "", fmt.Errorf("parse string length")
	}
	n := int(length.Int64())
	start := offset + 64
	if n < 0 || start+2*n > len(raw) {
		return "", fmt.Errorf("string length out of range")
	}
	decoded, err := hex.DecodeString(raw[start : start+2*n])
	if err != nil {
		return "", fmt.Errorf("decode string bytes: %w", err)
	}
	return string(decoded), nil
}

func isHexString(v string) bool {
	for _, ch := range v {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		default:
			return false
		}
	}
	return true
}
