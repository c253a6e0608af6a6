// Package wallet builds wallet_sendCalls payment intents and submits them to a
// connected wallet provider.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/eventful-services/common/config"
)

var (
	ErrNoWalletConnector   = errors.New("wallet: no wallet connector found")
	ErrUnsupportedProvider = errors.New("wallet: provider does not support requests")
	ErrMalformedResponse   = errors.New("wallet: malformed provider response")
	ErrRequestFailed       = errors.New("wallet: request failed")
)

// Provider is whatever a connector hands out once connected.
type Provider interface {
	Name() string
}

// RequestArguments is an EIP-1193 request.
type RequestArguments struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params,omitempty"`
}

// SupportsRequest is implemented by providers that can issue EIP-1193 requests.
type SupportsRequest interface {
	Provider
	Request(ctx context.Context, args RequestArguments) (json.RawMessage, error)
}

// Connector is a registered wallet integration.
type Connector interface {
	ID() string
	Name() string
	Provider(ctx context.Context) (Provider, error)
}

// Registry holds the connectors known to the process.
type Registry struct {
	mu         sync.RWMutex
	connectors []Connector
}

func NewRegistry(connectors ...Connector) *Registry {
	r := &Registry{}
	for _, c := range connectors {
		r.Register(c)
	}
	return r
}

func (r *Registry) Register(c Connector) {
	if c == nil {
		return
	}
	r.mu.Lock()
	r.connectors = append(r.connectors, c)
	r.mu.Unlock()
}

func (r *Registry) Connectors() []Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Connector, len(r.connectors))
	copy(out, r.connectors)
	return out
}

// Resolve returns the connector named preferred, else the first registered one.
func (r *Registry) Resolve(preferred string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.connectors) == 0 {
		return nil, ErrNoWalletConnector
	}
	for _, c := range r.connectors {
		if c.Name() == preferred || c.ID() == preferred {
			return c, nil
		}
	}
	return r.connectors[0], nil
}

// RegistryFromConfig registers the JSON-RPC wallet bridge when one is configured.
// Without an RPC URL the registry is empty and payments fail with ErrNoWalletConnector.
func RegistryFromConfig(cfg config.WalletConfig, client *http.Client) *Registry {
	r := NewRegistry()
	if cfg.RPCURL != "" {
		id := strings.ToLower(strings.ReplaceAll(cfg.ConnectorName, " ", ""))
		r.Register(NewRPCConnector(id, cfg.ConnectorName, cfg.RPCURL, client))
	}
	return r
}
