package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// GetBalance fetches the latest native balance for an address.
func (c *Client) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	result, err := c.call(ctx, "eth_getBalance", []interface{}{address, "latest"})
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance(%s): %w", address, err)
	}
	return unmarshalHexBig(result)
}

// GetBalances fetches native balances for many addresses in one JSON-RPC
// batch. The result is positional; a nil entry marks an address whose
// balance could not be decoded.
func (c *Client) GetBalances(ctx context.Context, addresses []string) ([]*big.Int, error) {
	if len(addresses) == 0 {
		return []*big.Int{}, nil
	}

	requests := make([]Request, len(addresses))
	for i, address := range addresses {
		requests[i] = c.newRequest("eth_getBalance", []interface{}{address, "latest"})
	}

	responses, err := c.callBatch(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance batch: %w", err)
	}

	results := make([]*big.Int, len(addresses))
	for i, resp := range responses {
		if resp.Error != nil {
			c.logger.Warn("balance entry failed", "address", addresses[i], "error", resp.Error)
			continue
		}
		value, err := unmarshalHexBig(resp.Result)
		if err != nil {
			c.logger.Warn("balance entry undecodable", "address", addresses[i], "error", err)
			continue
		}
		results[i] = value
	}
	return results, nil
}

// Call executes eth_call against the latest block and returns the raw
// hex-encoded return data.
func (c *Client) Call(ctx context.Context, msg CallMsg) (string, error) {
	result, err := c.call(ctx, "eth_call", []interface{}{msg, "latest"})
	if err != nil {
		return "", fmt.Errorf("eth_call(%s): %w", msg.To, err)
	}
	var data string
	if err := json.Unmarshal(result, &data); err != nil {
		return "", fmt.Errorf("unmarshal call result: %w", err)
	}
	return data, nil
}

// CallBatch executes many eth_calls in one JSON-RPC batch. Entries whose
// call failed are returned as empty strings.
func (c *Client) CallBatch(ctx context.Context, msgs []CallMsg) ([]string, error) {
	if len(msgs) == 0 {
		return []string{}, nil
	}

	requests := make([]Request, len(msgs))
	for i, msg := range msgs {
		requests[i] = c.newRequest("eth_call", []interface{}{msg, "latest"})
	}

	responses, err := c.callBatch(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("eth_call batch: %w", err)
	}

	results := make([]string, len(msgs))
	for i, resp := range responses {
		if resp.Error != nil {
			c.logger.Warn("call entry failed", "to", msgs[i].To, "error", resp.Error)
			continue
		}
		var data string
		if err := json.Unmarshal(resp.Result, &data); err != nil {
			c.logger.Warn("call entry undecodable", "to", msgs[i].To, "error", err)
			continue
		}
		results[i] = data
	}
	return results, nil
}

func unmarshalHexBig(raw json.RawMessage) (*big.Int, error) {
	var hexValue string
	if err := json.Unmarshal(raw, &hexValue); err != nil {
		return nil, fmt.Errorf("unmarshal hex quantity: %w", err)
	}
	return ParseHexBig(hexValue)
}

// ParseHexBig parses a 0x-prefixed hex quantity into a big integer.
func ParseHexBig(value string) (*big.Int, error) {
	raw := strings.TrimSpace(strings.ToLower(value))
	raw = strings.TrimPrefix(raw, "0x")
	if raw == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(raw, 16)
	if !ok {
		return nil, fmt.Errorf("parse hex quantity %q", value)
	}
	return parsed, nil
}
