package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/logger"
)

const MethodSendCalls = "wallet_sendCalls"

type Call struct {
	To    string `json:"to"`
	Data  string `json:"data,omitempty"`
	Value string `json:"value,omitempty"`
}

// DataRequest names a piece of profile data the wallet must collect.
type DataRequest struct {
	Type     string `json:"type"`
	Optional bool   `json:"optional"`
}

type DataCallback struct {
	Requests    []DataRequest `json:"requests"`
	CallbackURL string        `json:"callbackURL"`
}

type Capabilities struct {
	DataCallback *DataCallback `json:"dataCallback,omitempty"`
}

// SendCallsParams is the single element of the wallet_sendCalls params array.
type SendCallsParams struct {
	Version      string       `json:"version"`
	ChainID      string       `json:"chainId"`
	Calls        []Call       `json:"calls"`
	Capabilities Capabilities `json:"capabilities"`
}

// DefaultRequests asks for email and phone number, both required.
func DefaultRequests() []DataRequest {
	return []DataRequest{
		{Type: "email", Optional: false},
		{Type: "phoneNumber", Optional: false},
	}
}

type PaymentRequest struct {
	TotalPrice  int
	Requests    []DataRequest
	CallbackURL string
}

type PaymentResult struct {
	ConnectorID string          `json:"connectorId"`
	CallsID     string          `json:"callsId,omitempty"`
	Amount      string          `json:"amount"`
	SubmittedAt time.Time       `json:"submittedAt"`
	Raw         json.RawMessage `json:"-"`
}

// Payer submits payment intents through the registry's preferred connector.
type Payer struct {
	registry *Registry
	cfg      config.WalletConfig
	log      *logger.Logger
}

func NewPayer(registry *Registry, cfg config.WalletConfig) *Payer {
	return &Payer{
		registry: registry,
		cfg:      cfg,
		log:      logger.Default().With("component", "wallet"),
	}
}

// Amount is the token amount charged for an order of totalPrice dollars.
func (p *Payer) Amount(totalPrice int) (*big.Int, error) {
	if p.cfg.FixedAmount != "" {
		return ParseUnits(p.cfg.FixedAmount, p.cfg.TokenDecimals)
	}
	if totalPrice <= 0 {
		return nil, fmt.Errorf("total price must be positive, got %d", totalPrice)
	}
	return ParseUnits(strconv.Itoa(totalPrice), p.cfg.TokenDecimals)
}

// BuildSendCalls assembles a single-call token transfer with a dataCallback
// capability and returns the token amount it charges.
func (p *Payer) BuildSendCalls(req PaymentRequest) (SendCallsParams, *big.Int, error) {
	amount, err := p.Amount(req.TotalPrice)
	if err != nil {
		return SendCallsParams{}, nil, err
	}
	data, err := EncodeTransfer(p.cfg.Recipient, amount)
	if err != nil {
		return SendCallsParams{}, nil, err
	}
	if !IsAddress(p.cfg.TokenAddress) {
		return SendCallsParams{}, nil, fmt.Errorf("token: invalid address %q", p.cfg.TokenAddress)
	}

	requests := req.Requests
	if requests == nil {
		requests = DefaultRequests()
	}

	return SendCallsParams{
		Version: p.cfg.Version,
		ChainID: p.cfg.ChainIDHex(),
		Calls: []Call{
			{To: p.cfg.TokenAddress, Data: data},
		},
		Capabilities: Capabilities{
			DataCallback: &DataCallback{
				Requests:    requests,
				CallbackURL: req.CallbackURL,
			},
		},
	}, amount, nil
}

// InitiatePayment resolves a connector, checks that its provider can issue
// requests and sends wallet_sendCalls, waiting at most the configured timeout.
func (p *Payer) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	connector, err := p.registry.Resolve(p.cfg.ConnectorName)
	if err != nil {
		return nil, err
	}

	provider, err := connector.Provider(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", connector.Name(), err)
	}
	requester, ok := provider.(SupportsRequest)
	if !ok {
		return nil, ErrUnsupportedProvider
	}

	params, amount, err := p.BuildSendCalls(req)
	if err != nil {
		return nil, err
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := requester.Request(ctx, RequestArguments{
		Method: MethodSendCalls,
		Params: []interface{}{params},
	})
	if err != nil {
		p.log.WithError(err).WithFields(map[string]interface{}{
			"connector":   connector.ID(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Warn("wallet_sendCalls failed")
		if errors.Is(err, ErrMalformedResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	callsID, err := parseCallsID(raw)
	if err != nil {
		return nil, err
	}

	return &PaymentResult{
		ConnectorID: connector.ID(),
		CallsID:     callsID,
		Amount:      FormatUnits(amount, p.cfg.TokenDecimals),
		SubmittedAt: time.Now().UTC(),
		Raw:         raw,
	}, nil
}

// parseCallsID accepts both the bare string id and the {"id": ...} object form.
func parseCallsID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil && id != "" {
		return id, nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.ID != "" {
		return obj.ID, nil
	}
	return "", ErrMalformedResponse
}
