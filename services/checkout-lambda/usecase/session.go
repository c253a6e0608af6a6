package usecase

import (
	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/services/checkout-lambda/models"
	eventmodels "github.com/eventful-services/services/event-lambda/models"
)

// CheckoutSession owns one visitor's selection and checkout phase.
// It is not safe for concurrent use; each request works on its own copy.
type CheckoutSession struct {
	id         string
	phase      models.Phase
	event      *eventmodels.Event
	quantities map[string]int
	paymentRef string
	notice     string
}

// NewCheckoutSession starts at Browse with nothing selected.
func NewCheckoutSession() *CheckoutSession {
	return &CheckoutSession{
		phase:      models.PhaseBrowse,
		quantities: make(map[string]int),
	}
}

func (s *CheckoutSession) ID() string          { return s.id }
func (s *CheckoutSession) Phase() models.Phase { return s.phase }
func (s *CheckoutSession) PaymentRef() string  { return s.paymentRef }

// Event returns a copy of the active event, nil while browsing.
func (s *CheckoutSession) Event() *eventmodels.Event {
	if s.event == nil {
		return nil
	}
	e := s.event.Clone()
	return &e
}

// Quantity defaults to 0 for types never touched.
func (s *CheckoutSession) Quantity(ticketType string) int {
	return s.quantities[ticketType]
}

func (s *CheckoutSession) Quantities() map[string]int {
	out := make(map[string]int, len(s.quantities))
	for k, v := range s.quantities {
		out[k] = v
	}
	return out
}

// SelectEvent makes event active, clears the selection and moves to SelectAndPay.
func (s *CheckoutSession) SelectEvent(event eventmodels.Event) error {
	if !models.CanTransition(s.phase, models.PhaseSelectAndPay) {
		return apperrors.InvalidTransition(string(s.phase), "select an event")
	}
	e := event.Clone()
	s.event = &e
	s.quantities = make(map[string]int)
	s.paymentRef = ""
	s.phase = models.PhaseSelectAndPay
	return nil
}

// ChangeQuantity sets clamp(current+delta, 0, available). Unknown types are ignored.
func (s *CheckoutSession) ChangeQuantity(ticketType string, delta int) error {
	if s.phase != models.PhaseSelectAndPay || s.event == nil {
		return apperrors.InvalidTransition(string(s.phase), "change ticket quantities")
	}
	tier, ok := s.event.Tier(ticketType)
	if !ok {
		return nil
	}

	next := clamp(s.quantities[ticketType]+delta, 0, tier.Available)
	if next == 0 {
		delete(s.quantities, ticketType)
	} else {
		s.quantities[ticketType] = next
	}
	return nil
}

func (s *CheckoutSession) TotalTickets() int {
	total := 0
	for _, q := range s.quantities {
		total += q
	}
	return total
}

func (s *CheckoutSession) TotalPrice() int {
	if s.event == nil {
		return 0
	}
	total := 0
	for _, t := range s.event.Tickets {
		total += t.Price * s.quantities[t.Type]
	}
	return total
}

// Back returns to Browse and discards the selection.
func (s *CheckoutSession) Back() error {
	if !models.CanTransition(s.phase, models.PhaseBrowse) {
		return apperrors.InvalidTransition(string(s.phase), "go back")
	}
	s.event = nil
	s.quantities = make(map[string]int)
	s.phase = models.PhaseBrowse
	return nil
}

// CanPay is true only in SelectAndPay with at least one ticket.
func (s *CheckoutSession) CanPay() bool {
	return s.phase == models.PhaseSelectAndPay && s.TotalTickets() > 0
}

// confirm is reachable only from a successful wallet call in CheckoutUseCase.Pay.
func (s *CheckoutSession) confirm(paymentRef string) error {
	if !s.CanPay() {
		return apperrors.InvalidTransition(string(s.phase), "confirm")
	}
	s.paymentRef = paymentRef
	s.phase = models.PhaseConfirmed
	return nil
}

// SetNotice stores a one-shot message for the next render.
func (s *CheckoutSession) SetNotice(msg string) { s.notice = msg }

// TakeNotice returns and clears the pending notice.
func (s *CheckoutSession) TakeNotice() string {
	msg := s.notice
	s.notice = ""
	return msg
}

// Lines lists selected tiers in catalog order.
func (s *CheckoutSession) Lines() []models.OrderLine {
	lines := []models.OrderLine{}
	if s.event == nil {
		return lines
	}
	for _, t := range s.event.Tickets {
		q := s.quantities[t.Type]
		if q == 0 {
			continue
		}
		lines = append(lines, models.OrderLine{
			Type:     t.Type,
			Price:    t.Price,
			Quantity: q,
			Subtotal: t.Price * q,
			Color:    t.Color,
		})
	}
	return lines
}

// State snapshots the session for transport between requests.
func (s *CheckoutSession) State() models.SessionState {
	state := models.SessionState{
		ID:         s.id,
		Phase:      s.phase,
		PaymentRef: s.paymentRef,
		Notice:     s.notice,
	}
	if s.event != nil {
		state.EventID = s.event.ID
	}
	if len(s.quantities) > 0 {
		state.Quantities = s.Quantities()
	}
	return state
}

// View renders the session for pages and the JSON API. It consumes the notice.
func (s *CheckoutSession) View() models.CheckoutView {
	return models.CheckoutView{
		SessionID:    s.id,
		Phase:        s.phase,
		Step:         s.phase.Step(),
		Progress:     s.phase.Progress(),
		Event:        s.Event(),
		Quantities:   s.Quantities(),
		Lines:        s.Lines(),
		TotalTickets: s.TotalTickets(),
		TotalPrice:   s.TotalPrice(),
		CanPay:       s.CanPay(),
		PaymentRef:   s.paymentRef,
		Notice:       s.TakeNotice(),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
