package models

import (
	eventmodels "github.com/eventful-services/services/event-lambda/models"
)

// Phase is the checkout step a session is in.
type Phase string

const (
	PhaseBrowse       Phase = "Browse"
	PhaseSelectAndPay Phase = "SelectAndPay"
	PhaseConfirmed    Phase = "Confirmed"
)

// AllowedTransitions maps a phase to the phases it may move to.
var AllowedTransitions = map[Phase][]Phase{
	PhaseBrowse:       {PhaseSelectAndPay},
	PhaseSelectAndPay: {PhaseSelectAndPay, PhaseBrowse, PhaseConfirmed},
	PhaseConfirmed:    {}, // terminal
}

// CanTransition checks if a transition from one phase to another is allowed.
func CanTransition(from, to Phase) bool {
	for _, p := range AllowedTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

func (p Phase) Valid() bool {
	_, ok := AllowedTransitions[p]
	return ok
}

// Progress is the percentage shown in the step indicator.
func (p Phase) Progress() int {
	switch p {
	case PhaseSelectAndPay:
		return 66
	case PhaseConfirmed:
		return 100
	default:
		return 33
	}
}

// Step is the 1-based step number.
func (p Phase) Step() int {
	switch p {
	case PhaseSelectAndPay:
		return 2
	case PhaseConfirmed:
		return 3
	default:
		return 1
	}
}

// SessionState is the serializable snapshot of a checkout session.
type SessionState struct {
	ID         string         `json:"id,omitempty"`
	Phase      Phase          `json:"phase"`
	EventID    int            `json:"eventId,omitempty"`
	Quantities map[string]int `json:"quantities,omitempty"`
	PaymentRef string         `json:"paymentRef,omitempty"`
	Notice     string         `json:"notice,omitempty"`
}

// ============================================================
// Requests
// ============================================================

type SelectEventRequest struct {
	EventID int `json:"eventId" validate:"required,min=1"`
}

type QuantityRequest struct {
	Type  string `json:"type" validate:"required,max=64"`
	Delta int    `json:"delta" validate:"required,min=-100,max=100"`
}

// ============================================================
// Responses
// ============================================================

type OrderLine struct {
	Type     string `json:"type"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal int    `json:"subtotal"`
	Color    string `json:"color,omitempty"`
}

// CheckoutView is what the JSON API and the pages render.
type CheckoutView struct {
	SessionID    string             `json:"sessionId,omitempty"`
	Phase        Phase              `json:"phase"`
	Step         int                `json:"step"`
	Progress     int                `json:"progress"`
	Event        *eventmodels.Event `json:"event,omitempty"`
	Quantities   map[string]int     `json:"quantities"`
	Lines        []OrderLine        `json:"lines"`
	TotalTickets int                `json:"totalTickets"`
	TotalPrice   int                `json:"totalPrice"`
	CanPay       bool               `json:"canPay"`
	PaymentRef   string             `json:"paymentRef,omitempty"`
	Notice       string             `json:"notice,omitempty"`
}
