package erp

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"lemonbi/storefront/internal/config"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// Transport performs one stateless JSON-RPC round trip per call. Retrying is
// a policy decision that belongs to callers, never to this layer.
type Transport interface {
	Call(ctx context.Context, endpoint, service, method string, args []any) (json.RawMessage, error)
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *rpcErrorData `json:"data"`
}

type rpcErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type restyTransport struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client
	timeout    time.Duration
	nextID     atomic.Int64
}

func NewTransport(cfg config.ErpConfig) Transport {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: cfg.InsecureTLS,
		})

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &restyTransport{
		rl:         rl,
		httpClient: client,
		timeout:    time.Duration(cfg.Timeout) * time.Second,
	}
}

func (t *restyTransport) Call(ctx context.Context, endpoint, service, method string, args []any) (json.RawMessage, error) {
	t.rl.Take()

	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      t.nextID.Add(1),
	}

	var envelope rpcResponse
	resp, err := t.httpClient.R().
		SetContext(reqCtx).
		SetBody(req).
		SetResult(&envelope).
		Post(endpoint + "/jsonrpc")

	if err != nil {
		if ctx.Err() != nil {
			return nil, &TransportError{Cause: fmt.Errorf("request cancelled: %w", ctx.Err())}
		}
		return nil, &TransportError{Cause: err}
	}

	if resp.IsError() {
		return nil, &TransportError{Cause: fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())}
	}

	if envelope.JSONRPC == "" {
		return nil, &TransportError{Cause: fmt.Errorf("malformed RPC envelope from %s", endpoint)}
	}

	if envelope.Error != nil {
		fault := &RemoteFault{Code: envelope.Error.Code, Message: envelope.Error.Message}
		if envelope.Error.Data != nil {
			fault.Detail = envelope.Error.Data.Message
			if fault.Detail == "" {
				fault.Detail = envelope.Error.Data.Name
			}
		}
		log.Debugf("RPC %s.%s on %s faulted: %v", service, method, endpoint, fault)
		return nil, fault
	}

	return envelope.Result, nil
}
