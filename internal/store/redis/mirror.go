// Package redis mirrors published balance snapshots onto a Redis stream so
// out-of-process consumers (widgets, notification workers) can follow
// balance changes without a round trip through the wallet process.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

type Mirror struct {
	client *redis.Client
	stream string
}

func NewMirror(url, stream string) (*Mirror, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Mirror{client: client, stream: stream}, nil
}

// PublishSnapshot appends one balance snapshot to the stream.
func (m *Mirror) PublishSnapshot(ctx context.Context, snapshot model.BalanceSnapshot) error {
	payload, err := json.Marshal(snapshot.TokensBalance)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	err = m.client.XAdd(ctx, &redis.XAddArgs{
		Stream: m.stream,
		Values: map[string]interface{}{
			"account_id": snapshot.AccountID,
			"network_id": snapshot.NetworkID,
			"balances":   string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd snapshot: %w", err)
	}
	return nil
}

func (m *Mirror) Close() error {
	return m.client.Close()
}
