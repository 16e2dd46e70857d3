package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/emperorhan/wallet-balance-sync/internal/metrics"
	"github.com/emperorhan/wallet-balance-sync/internal/vault/breaker"
	"github.com/emperorhan/wallet-balance-sync/internal/vault/ratelimit"
)

// Client is a JSON-RPC client for EVM-style endpoints. Every call goes
// through the network's rate limiter and circuit breaker.
type Client struct {
	httpClient *http.Client
	rpcURL     string
	network    string
	requestID  atomic.Int64
	limiter    *ratelimit.Limiter
	breaker    *breaker.Breaker
	logger     *slog.Logger
}

func NewClient(rpcURL, network string, timeout time.Duration, limiter *ratelimit.Limiter, brk *breaker.Breaker, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		rpcURL:     rpcURL,
		network:    network,
		limiter:    limiter,
		breaker:    brk,
		logger:     logger.With("component", "evm_rpc", "network", network),
	}
}

func (c *Client) newRequest(method string, params []interface{}) Request {
	return Request{
		JSONRPC: "2.0",
		ID:      int(c.requestID.Add(1)),
		Method:  method,
		Params:  params,
	}
}

func (c *Client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	start := time.Now()
	result, err := c.doCall(ctx, method, params)
	ratelimit.RecordCall(c.network, method, start, err)
	return result, err
}

func (c *Client) doCall(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if err := c.gate(ctx); err != nil {
		return nil, err
	}

	req := c.newRequest(method, params)
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.post(ctx, body)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, err
	}

	var rpcResp Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		c.breaker.RecordFailure()
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		// An RPC-level error is a live endpoint; only transport failures
		// count against the breaker.
		c.breaker.RecordSuccess()
		return nil, rpcResp.Error
	}

	c.breaker.RecordSuccess()
	return rpcResp.Result, nil
}

// callBatch issues a JSON-RPC batch request. Responses are reordered to
// match the request order by ID.
func (c *Client) callBatch(ctx context.Context, requests []Request) ([]Response, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	if err := c.gate(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("marshal batch request: %w", err)
	}

	respBody, err := c.post(ctx, body)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, err
	}

	var responses []Response
	if err := json.Unmarshal(respBody, &responses); err != nil {
		c.breaker.RecordFailure()
		return nil, fmt.Errorf("unmarshal batch response: %w", err)
	}
	if len(responses) != len(requests) {
		c.breaker.RecordFailure()
		return nil, fmt.Errorf("batch response length mismatch: got %d want %d", len(responses), len(requests))
	}
	c.breaker.RecordSuccess()

	byID := make(map[int]Response, len(responses))
	for _, resp := range responses {
		byID[resp.ID] = resp
	}
	ordered := make([]Response, len(requests))
	for i, req := range requests {
		resp, ok := byID[req.ID]
		if !ok {
			return nil, fmt.Errorf("batch response missing id %d", req.ID)
		}
		ordered[i] = resp
	}
	return ordered, nil
}

func (c *Client) gate(ctx context.Context) error {
	if err := c.breaker.Allow(); err != nil {
		metrics.VaultBreakerRejections.WithLabelValues(c.network).Inc()
		return fmt.Errorf("network %s: %w", c.network, err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
