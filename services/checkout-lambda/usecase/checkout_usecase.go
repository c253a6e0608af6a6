package usecase

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/wallet"
	"github.com/eventful-services/services/checkout-lambda/models"
	eventmodels "github.com/eventful-services/services/event-lambda/models"
)

// EventCatalog is the part of the catalog checkout reads.
type EventCatalog interface {
	ListEvents(ctx context.Context) []eventmodels.Event
	GetEvent(ctx context.Context, id int) (*eventmodels.Event, error)
}

// PaymentInitiator submits a wallet payment intent.
type PaymentInitiator interface {
	InitiatePayment(ctx context.Context, req wallet.PaymentRequest) (*wallet.PaymentResult, error)
}

// CheckoutUseCase drives a CheckoutSession through the checkout steps.
type CheckoutUseCase struct {
	catalog     EventCatalog
	payer       PaymentInitiator
	callbackURL string
	log         *logger.Logger
}

func NewCheckoutUseCase(catalog EventCatalog, payer PaymentInitiator, callbackURL string) *CheckoutUseCase {
	return &CheckoutUseCase{
		catalog:     catalog,
		payer:       payer,
		callbackURL: callbackURL,
		log:         logger.Default().With("component", "checkout"),
	}
}

func (uc *CheckoutUseCase) ListEvents(ctx context.Context) []eventmodels.Event {
	return uc.catalog.ListEvents(ctx)
}

// Restore rebuilds a session from a snapshot. Snapshots that no longer match the
// catalog fall back to a fresh Browse session; quantities are clamped again.
func (uc *CheckoutUseCase) Restore(ctx context.Context, state models.SessionState) *CheckoutSession {
	s := NewCheckoutSession()
	s.id = state.ID
	s.notice = state.Notice

	switch state.Phase {
	case models.PhaseSelectAndPay, models.PhaseConfirmed:
	default:
		return s
	}

	event, err := uc.catalog.GetEvent(ctx, state.EventID)
	if err != nil {
		return s
	}
	s.event = event
	s.phase = state.Phase
	for _, t := range event.Tickets {
		if q := clamp(state.Quantities[t.Type], 0, t.Available); q > 0 {
			s.quantities[t.Type] = q
		}
	}
	if s.phase == models.PhaseConfirmed {
		if len(s.quantities) == 0 {
			return uc.Restart(ctx, s)
		}
		s.paymentRef = state.PaymentRef
	}
	return s
}

// Restart discards everything and starts over at Browse.
func (uc *CheckoutUseCase) Restart(ctx context.Context, s *CheckoutSession) *CheckoutSession {
	fresh := NewCheckoutSession()
	if s != nil {
		fresh.id = s.id
	}
	return fresh
}

func (uc *CheckoutUseCase) SelectEvent(ctx context.Context, s *CheckoutSession, eventID int) error {
	event, err := uc.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.SelectEvent(*event); err != nil {
		return err
	}
	uc.log.WithContext(ctx).LogEvent(logger.EventLog{
		Event:    "checkout.select",
		Entity:   "event",
		EntityID: strconv.Itoa(eventID),
		Action:   "select",
		Success:  true,
	})
	return nil
}

func (uc *CheckoutUseCase) ChangeQuantity(ctx context.Context, s *CheckoutSession, ticketType string, delta int) error {
	return s.ChangeQuantity(ticketType, delta)
}

func (uc *CheckoutUseCase) Back(ctx context.Context, s *CheckoutSession) error {
	return s.Back()
}

// Pay sends the wallet payment intent and confirms the session on success.
// On failure the phase and quantities are left as they were and a notice is set.
func (uc *CheckoutUseCase) Pay(ctx context.Context, s *CheckoutSession) (*wallet.PaymentResult, error) {
	if s.Phase() != models.PhaseSelectAndPay {
		return nil, apperrors.InvalidTransition(string(s.Phase()), "pay")
	}
	if !s.CanPay() {
		return nil, apperrors.PayDisabled()
	}

	result, err := uc.payer.InitiatePayment(ctx, wallet.PaymentRequest{
		TotalPrice:  s.TotalPrice(),
		Requests:    wallet.DefaultRequests(),
		CallbackURL: uc.callbackFor(s),
	})

	evt := logger.EventLog{
		Event:    "checkout.pay",
		Entity:   "event",
		EntityID: strconv.Itoa(s.event.ID),
		Action:   "wallet_sendCalls",
		Success:  err == nil,
		Metadata: map[string]interface{}{
			"total_price":   s.TotalPrice(),
			"total_tickets": s.TotalTickets(),
		},
	}
	if err != nil {
		evt.Error = err.Error()
		uc.log.WithContext(ctx).LogEvent(evt)

		appErr := paymentError(err)
		s.SetNotice(appErr.Message + ": " + userMessage(err))
		return nil, appErr
	}
	uc.log.WithContext(ctx).LogEvent(evt)

	ref := result.CallsID
	if ref == "" {
		ref = s.id
	}
	if err := s.confirm(ref); err != nil {
		return nil, err
	}
	return result, nil
}

// callbackFor points the wallet callback at the first selected tier so the
// confirmation email describes what was bought.
func (uc *CheckoutUseCase) callbackFor(s *CheckoutSession) string {
	u, err := url.Parse(uc.callbackURL)
	if err != nil || s.event == nil {
		return uc.callbackURL
	}
	q := u.Query()
	q.Set("eventId", strconv.Itoa(s.event.ID))
	if lines := s.Lines(); len(lines) > 0 {
		q.Set("type", lines[0].Type)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func paymentError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, wallet.ErrNoWalletConnector):
		return apperrors.NoWalletConnector()
	case errors.Is(err, wallet.ErrUnsupportedProvider):
		return apperrors.UnsupportedProvider()
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout()
	case wallet.IsUserRejection(err):
		return apperrors.PaymentFailed(err)
	case errors.Is(err, wallet.ErrRequestFailed), errors.Is(err, wallet.ErrMalformedResponse):
		return apperrors.WalletRequestFailed(err)
	default:
		return apperrors.PaymentFailed(err)
	}
}

func userMessage(err error) string {
	switch {
	case wallet.IsUserRejection(err):
		return "the request was rejected in the wallet"
	case errors.Is(err, wallet.ErrNoWalletConnector):
		return "connect a wallet and try again"
	case errors.Is(err, context.DeadlineExceeded):
		return "the wallet did not respond in time"
	default:
		return "please try again"
	}
}
