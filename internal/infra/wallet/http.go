package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vietddude/artbid/internal/core/domain"
	"github.com/vietddude/artbid/internal/core/metrics"
)

// eventBuffer bounds undelivered wallet notifications.
const eventBuffer = 16

// HTTPProvider implements Provider for JSON-RPC over HTTP.
type HTTPProvider struct {
	name       string
	endpoint   string
	httpClient *http.Client
	nextID     atomic.Uint64
	events     chan domain.WalletEvent

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int
}

// NewHTTPProvider creates a new HTTP-based wallet provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		name:     name,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		events: make(chan domain.WalletEvent, eventBuffer),
		health: HealthStatus{
			Available:     true,
			LastSuccessAt: time.Now(),
		},
	}
}

// Call makes a single JSON-RPC call and returns the raw result.
func (p *HTTPProvider) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	start := time.Now()
	metrics.WalletCallsTotal.WithLabelValues(p.name, method).Inc()

	if params == nil {
		params = []any{}
	}
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      p.nextID.Add(1),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		p.recordFailure(method)
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		p.recordFailure(method)
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.recordFailure(method)
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.recordFailure(method)
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}

	// Some bridges answer errors with a non-200 status but a JSON-RPC body.
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		p.recordFailure(method)
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if rpcResp.Error != nil {
		p.recordFailure(method)
		return nil, rpcResp.Error
	}
	if resp.StatusCode != http.StatusOK {
		p.recordFailure(method)
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	latency := time.Since(start)
	metrics.WalletLatency.WithLabelValues(p.name, method).Observe(latency.Seconds())
	p.recordSuccess(latency)

	return rpcResp.Result, nil
}

// RequestAccounts asks the wallet for authorized accounts. Plain nodes that do
// not implement eth_requestAccounts are asked for eth_accounts instead.
func (p *HTTPProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	raw, err := p.Call(ctx, "eth_requestAccounts", nil)
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == CodeMethodNotFound {
		raw, err = p.Call(ctx, "eth_accounts", nil)
	}
	if err != nil {
		return nil, err
	}

	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("invalid accounts response: %w", err)
	}
	for i, a := range accounts {
		accounts[i] = strings.ToLower(a)
	}
	return accounts, nil
}

// NetworkID reads net_version, falling back to eth_chainId.
func (p *HTTPProvider) NetworkID(ctx context.Context) (domain.NetworkID, error) {
	raw, err := p.Call(ctx, "net_version", nil)
	if err == nil {
		var version string
		if err := json.Unmarshal(raw, &version); err != nil {
			return 0, fmt.Errorf("invalid net_version response: %w", err)
		}
		id, err := strconv.ParseUint(version, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid network id %q: %w", version, err)
		}
		return domain.NetworkID(id), nil
	}

	raw, chainErr := p.Call(ctx, "eth_chainId", nil)
	if chainErr != nil {
		return 0, fmt.Errorf("net_version failed: %w", err)
	}
	var chainHex string
	if err := json.Unmarshal(raw, &chainHex); err != nil {
		return 0, fmt.Errorf("invalid eth_chainId response: %w", err)
	}
	id, err := hexutil.DecodeUint64(chainHex)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", chainHex, err)
	}
	return domain.NetworkID(id), nil
}

// CallContract executes eth_call against the latest block.
func (p *HTTPProvider) CallContract(ctx context.Context, msg CallMsg) ([]byte, error) {
	arg := map[string]any{
		"to":   msg.To.Hex(),
		"data": hexutil.Encode(msg.Data),
	}
	raw, err := p.Call(ctx, "eth_call", []any{arg, "latest"})
	if err != nil {
		return nil, err
	}

	var result hexutil.Bytes
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("invalid eth_call response: %w", err)
	}
	return result, nil
}

// SendTransaction submits eth_sendTransaction and returns the transaction hash.
func (p *HTTPProvider) SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error) {
	arg := map[string]any{
		"from": tx.From,
		"to":   tx.To.Hex(),
		"data": hexutil.Encode(tx.Data),
	}
	if tx.Value != nil {
		arg["value"] = hexutil.EncodeBig(tx.Value)
	}

	raw, err := p.Call(ctx, "eth_sendTransaction", []any{arg})
	if err != nil {
		return common.Hash{}, err
	}

	var hash common.Hash
	if err := json.Unmarshal(raw, &hash); err != nil {
		return common.Hash{}, fmt.Errorf("invalid transaction hash: %w", err)
	}
	return hash, nil
}

// Events returns the notification channel fed by Listen.
func (p *HTTPProvider) Events() <-chan domain.WalletEvent {
	return p.events
}

// Listen connects to the wallet's websocket event feed and forwards
// notifications until ctx is cancelled or the connection drops.
func (p *HTTPProvider) Listen(ctx context.Context, notifyURL string) error {
	n := NewNotifier(notifyURL)
	return n.Run(ctx, p.events)
}

// GetName returns the provider's name.
func (p *HTTPProvider) GetName() string {
	return p.name
}

// GetHealth returns the provider's health status.
func (p *HTTPProvider) GetHealth() HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

// Close cleans up resources.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *HTTPProvider) recordSuccess(latency time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.successCount++
	p.requestCount++
	p.totalLatency += latency
	p.health.LastSuccessAt = time.Now()
	p.health.Available = true

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}
	if p.successCount > 0 {
		p.health.Latency = p.totalLatency / time.Duration(p.successCount)
	}
}

func (p *HTTPProvider) recordFailure(method string) {
	metrics.WalletErrorsTotal.WithLabelValues(p.name, method).Inc()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.failureCount++
	p.requestCount++
	p.health.LastFailureAt = time.Now()

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}

	if p.health.ErrorRate > 0.5 {
		p.health.Available = false
	}
}
