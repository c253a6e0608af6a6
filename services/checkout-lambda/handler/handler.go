package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/response"
	appvalidator "github.com/eventful-services/common/validator"
	"github.com/eventful-services/common/view"
	"github.com/eventful-services/services/checkout-lambda/models"
	"github.com/eventful-services/services/checkout-lambda/usecase"
	eventmodels "github.com/eventful-services/services/event-lambda/models"
)

// CheckoutHandler serves the storefront pages, the form posts behind them and
// the JSON checkout API. Every request restores the session from its cookie
// and writes the updated session back.
type CheckoutHandler struct {
	useCase  *usecase.CheckoutUseCase
	sessions *SessionStore
	pages    *view.Renderer
	validate *validator.Validate
	log      *logger.Logger
}

func NewCheckoutHandler(useCase *usecase.CheckoutUseCase, sessions *SessionStore, pages *view.Renderer) *CheckoutHandler {
	return &CheckoutHandler{
		useCase:  useCase,
		sessions: sessions,
		pages:    pages,
		validate: appvalidator.New(),
		log:      logger.Default().With("component", "checkout-handler"),
	}
}

type action func(ctx context.Context, s *usecase.CheckoutSession, request events.APIGatewayProxyRequest) (*usecase.CheckoutSession, error)

// Handle routes a proxy request by method and path.
func (h *CheckoutHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := strings.TrimSuffix(request.Path, "/")

	if request.HTTPMethod == http.MethodGet {
		switch path {
		case "", "/checkout":
			return h.HandlePage(ctx, request)
		case "/api/checkout":
			return h.HandleState(ctx, request)
		}
		return response.Message(http.StatusNotFound, "Not found")
	}

	if request.HTTPMethod != http.MethodPost {
		return response.Message(http.StatusMethodNotAllowed, "Method not allowed")
	}

	if strings.HasPrefix(path, "/api/checkout/") {
		act, ok := h.action(strings.TrimPrefix(path, "/api/checkout/"))
		if !ok {
			return response.Message(http.StatusNotFound, "Not found")
		}
		return h.handleJSON(ctx, request, act)
	}
	if strings.HasPrefix(path, "/checkout/") {
		act, ok := h.action(strings.TrimPrefix(path, "/checkout/"))
		if !ok {
			return response.Message(http.StatusNotFound, "Not found")
		}
		return h.handleForm(ctx, request, act)
	}
	return response.Message(http.StatusNotFound, "Not found")
}

func (h *CheckoutHandler) action(name string) (action, bool) {
	switch name {
	case "select":
		return h.selectEvent, true
	case "quantity":
		return h.changeQuantity, true
	case "back":
		return h.back, true
	case "pay":
		return h.pay, true
	case "restart":
		return h.restart, true
	}
	return nil, false
}

// restore loads the session from the request cookie and tags ctx with its id.
func (h *CheckoutHandler) restore(ctx context.Context, request events.APIGatewayProxyRequest) (context.Context, *usecase.CheckoutSession) {
	state := h.sessions.Load(request)
	ctx = context.WithValue(ctx, logger.SessionIDKey, state.ID)
	return ctx, h.useCase.Restore(ctx, state)
}

// HandlePage handles GET / and renders the page for the session's phase.
func (h *CheckoutHandler) HandlePage(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, s := h.restore(ctx, request)
	v := s.View()

	page := view.Page{
		Title:    stepName(v.Phase),
		Active:   "events",
		Notice:   v.Notice,
		Step:     v.Step,
		StepName: stepName(v.Phase),
		Progress: v.Progress,
	}
	name := view.PageEvents
	switch v.Phase {
	case models.PhaseSelectAndPay:
		name = view.PageCheckout
		page.Data = checkoutPage{View: v}
	case models.PhaseConfirmed:
		name = view.PageConfirmed
		page.Data = checkoutPage{View: v}
	default:
		page.Data = eventsPage{Events: h.useCase.ListEvents(ctx)}
	}

	body, err := h.pages.RenderString(name, page)
	if err != nil {
		h.log.WithContext(ctx).WithError(err).Error("Failed to render %s page", name)
		return response.HTML(http.StatusInternalServerError, "<h1>Something went wrong</h1>")
	}
	resp, _ := response.HTML(http.StatusOK, body)
	return h.save(resp, s)
}

// HandleState handles GET /api/checkout
func (h *CheckoutHandler) HandleState(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	_, s := h.restore(ctx, request)
	resp, _ := response.JSON(http.StatusOK, response.SuccessResponse(s.View()))
	return h.save(resp, s)
}

// handleForm runs act and redirects back to the storefront. Failures become a notice.
func (h *CheckoutHandler) handleForm(ctx context.Context, request events.APIGatewayProxyRequest, act action) (events.APIGatewayProxyResponse, error) {
	ctx, s := h.restore(ctx, request)

	next, err := act(ctx, s, request)
	if err != nil {
		h.logFailure(ctx, request, err)
		next = s
		// payment failures already carry the wallet detail
		if s.State().Notice == "" {
			s.SetNotice(apperrors.ToAppError(err).Message)
		}
	}

	resp, _ := response.Redirect("/")
	return h.save(resp, next)
}

// handleJSON runs act and returns the resulting checkout view.
func (h *CheckoutHandler) handleJSON(ctx context.Context, request events.APIGatewayProxyRequest, act action) (events.APIGatewayProxyResponse, error) {
	ctx, s := h.restore(ctx, request)

	next, err := act(ctx, s, request)
	if err != nil {
		h.logFailure(ctx, request, err)
		appErr := apperrors.ToAppError(err)
		body := response.ErrorBody(appErr, nil)
		if notice := s.TakeNotice(); notice != "" {
			body.Error = notice
		}
		body.Data = s.View()
		resp, _ := response.JSON(appErr.HTTPStatus, body)
		return h.save(resp, s)
	}

	resp, _ := response.JSON(http.StatusOK, response.SuccessResponse(next.View()))
	return h.save(resp, next)
}

// ============================================================
// Actions
// ============================================================

func (h *CheckoutHandler) selectEvent(ctx context.Context, s *usecase.CheckoutSession, request events.APIGatewayProxyRequest) (*usecase.CheckoutSession, error) {
	var req models.SelectEventRequest
	if err := h.bind(request, &req, func(form url.Values) error {
		if form.Get("eventId") == "" {
			return apperrors.MissingField("eventId")
		}
		id, err := strconv.Atoi(form.Get("eventId"))
		if err != nil {
			return apperrors.InvalidInput("eventId", "Invalid event id")
		}
		req.EventID = id
		return nil
	}); err != nil {
		return nil, err
	}
	return s, h.useCase.SelectEvent(ctx, s, req.EventID)
}

func (h *CheckoutHandler) changeQuantity(ctx context.Context, s *usecase.CheckoutSession, request events.APIGatewayProxyRequest) (*usecase.CheckoutSession, error) {
	var req models.QuantityRequest
	if err := h.bind(request, &req, func(form url.Values) error {
		if form.Get("delta") == "" {
			return apperrors.MissingField("delta")
		}
		delta, err := strconv.Atoi(form.Get("delta"))
		if err != nil {
			return apperrors.InvalidInput("delta", "Invalid quantity change")
		}
		req.Type = form.Get("type")
		req.Delta = delta
		return nil
	}); err != nil {
		return nil, err
	}
	return s, h.useCase.ChangeQuantity(ctx, s, req.Type, req.Delta)
}

func (h *CheckoutHandler) back(ctx context.Context, s *usecase.CheckoutSession, _ events.APIGatewayProxyRequest) (*usecase.CheckoutSession, error) {
	return s, h.useCase.Back(ctx, s)
}

func (h *CheckoutHandler) pay(ctx context.Context, s *usecase.CheckoutSession, _ events.APIGatewayProxyRequest) (*usecase.CheckoutSession, error) {
	if _, err := h.useCase.Pay(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (h *CheckoutHandler) restart(ctx context.Context, s *usecase.CheckoutSession, _ events.APIGatewayProxyRequest) (*usecase.CheckoutSession, error) {
	return h.useCase.Restart(ctx, s), nil
}

// ============================================================
// Helpers
// ============================================================

type eventsPage struct {
	Events []eventmodels.Event
}

type checkoutPage struct {
	View models.CheckoutView
}

// bind decodes a JSON or form body into dst and validates it.
func (h *CheckoutHandler) bind(request events.APIGatewayProxyRequest, dst interface{}, fromForm func(url.Values) error) error {
	body := request.Body
	if request.IsBase64Encoded {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return apperrors.ValidationError("Invalid request body")
		}
		body = string(raw)
	}

	if strings.HasPrefix(header(request.Headers, "Content-Type"), "application/json") {
		if err := json.Unmarshal([]byte(body), dst); err != nil {
			return apperrors.ValidationError("Invalid request body")
		}
	} else {
		form, err := url.ParseQuery(body)
		if err != nil {
			return apperrors.ValidationError("Invalid form data")
		}
		if err := fromForm(form); err != nil {
			return err
		}
	}

	if err := h.validate.Struct(dst); err != nil {
		appErr := apperrors.ValidationError("Invalid request")
		for field, rule := range appvalidator.FieldMessages(err) {
			appErr.WithField(field, rule)
		}
		return appErr
	}
	return nil
}

func (h *CheckoutHandler) save(resp events.APIGatewayProxyResponse, s *usecase.CheckoutSession) (events.APIGatewayProxyResponse, error) {
	cookie, err := h.sessions.Cookie(s.State())
	if err != nil {
		h.log.WithError(err).Error("Failed to sign session")
		return response.FromError(apperrors.Internal("Failed to save session"))
	}
	return response.WithCookie(resp, cookie), nil
}

func (h *CheckoutHandler) logFailure(ctx context.Context, request events.APIGatewayProxyRequest, err error) {
	appErr := apperrors.ToAppError(err)
	l := h.log.WithContext(ctx).WithFields(map[string]interface{}{
		"path": request.Path,
		"code": appErr.Code,
	})
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		l.WithError(err).With("stack", appErr.Stack).Error("Checkout action failed")
		return
	}
	l.Info("Checkout action rejected: %s", appErr.Message)
}

func stepName(p models.Phase) string {
	switch p {
	case models.PhaseSelectAndPay:
		return "Select Tickets"
	case models.PhaseConfirmed:
		return "Checkout"
	default:
		return "Browse Events"
	}
}
