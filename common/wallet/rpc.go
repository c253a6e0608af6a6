package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// CodeUserRejected is the EIP-1193 code for a request the user declined.
const CodeUserRejected = 4001

// IsUserRejection reports whether the user declined the request in the wallet.
func IsUserRejection(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == CodeUserRejected
}

// RPCProvider forwards EIP-1193 requests to a wallet bridge over JSON-RPC 2.0.
type RPCProvider struct {
	name   string
	client *rpc.Client
}

func (p *RPCProvider) Name() string {
	return p.name
}

// Request sends a single JSON-RPC call and returns its raw result.
func (p *RPCProvider) Request(ctx context.Context, args RequestArguments) (json.RawMessage, error) {
	var result json.RawMessage
	if err := p.client.CallContext(ctx, &result, args.Method, args.Params...); err != nil {
		if errors.Is(err, rpc.ErrNoResult) {
			return nil, ErrMalformedResponse
		}
		return nil, fmt.Errorf("%s: %w", args.Method, err)
	}
	if len(result) == 0 {
		return nil, ErrMalformedResponse
	}
	return result, nil
}

func (p *RPCProvider) Close() {
	p.client.Close()
}

// RPCConnector dials the wallet bridge on first use and reuses the client.
type RPCConnector struct {
	id       string
	name     string
	endpoint string
	client   *http.Client

	mu       sync.Mutex
	provider *RPCProvider
}

func NewRPCConnector(id, name, endpoint string, client *http.Client) *RPCConnector {
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	return &RPCConnector{id: id, name: name, endpoint: endpoint, client: client}
}

func (c *RPCConnector) ID() string   { return c.id }
func (c *RPCConnector) Name() string { return c.name }

func (c *RPCConnector) Provider(ctx context.Context) (Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider != nil {
		return c.provider, nil
	}
	client, err := rpc.DialOptions(ctx, c.endpoint, rpc.WithHTTPClient(c.client))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	c.provider = &RPCProvider{name: c.name, client: client}
	return c.provider, nil
}
