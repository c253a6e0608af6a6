package main

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/email"
	"github.com/eventful-services/common/jwt"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/view"
	"github.com/eventful-services/common/wallet"
	checkoutHandler "github.com/eventful-services/services/checkout-lambda/handler"
	checkoutUsecase "github.com/eventful-services/services/checkout-lambda/usecase"
	eventHandler "github.com/eventful-services/services/event-lambda/handler"
	eventRepository "github.com/eventful-services/services/event-lambda/repository"
	eventUsecase "github.com/eventful-services/services/event-lambda/usecase"
	ticketHandler "github.com/eventful-services/services/ticket-lambda/handler"
	ticketUsecase "github.com/eventful-services/services/ticket-lambda/usecase"
	validationHandler "github.com/eventful-services/services/validation-lambda/handler"
	validationUsecase "github.com/eventful-services/services/validation-lambda/usecase"
)

// maxBodyBytes caps request bodies read by the local server.
const maxBodyBytes = 1 << 20

// lambdaHandler is the signature every service handler shares with AWS Lambda.
type lambdaHandler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

type handlers struct {
	events     *eventHandler.EventHandler
	checkout   *checkoutHandler.CheckoutHandler
	tickets    *ticketHandler.TicketHandler
	validation *validationHandler.ValidationHandler
}

// buildHandlers wires every service against one catalog.
func buildHandlers(ctx context.Context, cfg *config.AppConfig) (*handlers, error) {
	repo, err := eventRepository.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pages, err := view.New()
	if err != nil {
		return nil, err
	}

	catalog := eventUsecase.NewEventUseCase(repo)
	tickets := ticketUsecase.NewTicketUseCase(catalog)

	payer := wallet.NewPayer(wallet.RegistryFromConfig(cfg.Wallet, nil), cfg.Wallet)
	checkout := checkoutUsecase.NewCheckoutUseCase(catalog, payer, cfg.CallbackURL())
	sessions := checkoutHandler.NewSessionStore(
		jwt.NewSigner(cfg.Session.Secret, cfg.Session.TTL),
		cfg.Session.CookieName,
		cfg.Session.Secure,
	)

	validation, err := validationUsecase.NewValidationUseCase(cfg.Validation, cfg.Email.Policy, tickets, email.NewEmailService(cfg.Email))
	if err != nil {
		return nil, err
	}

	return &handlers{
		events:     eventHandler.NewEventHandler(catalog),
		checkout:   checkoutHandler.NewCheckoutHandler(checkout, sessions, pages),
		tickets:    ticketHandler.NewTicketHandler(tickets, pages),
		validation: validationHandler.NewValidationHandler(validation),
	}, nil
}

// newRouter mounts the handlers the same way API Gateway routes them.
func newRouter(h *handlers, corsOrigins []string) http.Handler {
	router := mux.NewRouter()

	// ======================= HEALTH =======================
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	// ======================= EVENT ROUTES =======================
	router.Handle("/api/events", lambdaRoute(h.events.Handle))
	router.Handle("/api/events/{id}", lambdaRoute(h.events.Handle))

	// ======================= CHECKOUT ROUTES =======================
	router.Handle("/", lambdaRoute(h.checkout.Handle))
	router.Handle("/checkout", lambdaRoute(h.checkout.Handle))
	router.Handle("/checkout/{action}", lambdaRoute(h.checkout.Handle))
	router.Handle("/api/checkout", lambdaRoute(h.checkout.Handle))
	router.Handle("/api/checkout/{action}", lambdaRoute(h.checkout.Handle))

	// ======================= TICKET ROUTES =======================
	router.Handle("/ticket-variants", lambdaRoute(h.tickets.Handle))
	router.Handle("/enhanced-tickets", lambdaRoute(h.tickets.Handle))
	router.Handle("/ticket", lambdaRoute(h.tickets.Handle))
	router.Handle("/ticket/pdf", lambdaRoute(h.tickets.Handle))

	// ======================= WALLET CALLBACK =======================
	router.Handle("/api/data-validation", lambdaRoute(h.validation.Handle))

	router.Use(requestLogger)

	return cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)
}

// lambdaRoute serves a Lambda handler over plain net/http.
func lambdaRoute(handle lambdaHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := adaptRequest(w, r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		resp, err := handle(r.Context(), req)
		if err != nil {
			logger.WithContext(r.Context()).WithError(err).Error("Handler failed for %s", r.URL.Path)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeResponse(w, resp)
	})
}

// adaptRequest converts http.Request to APIGatewayProxyRequest
func adaptRequest(w http.ResponseWriter, r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}
	defer r.Body.Close()

	headers := make(map[string]string, len(r.Header))
	multiHeaders := make(map[string][]string, len(r.Header))
	for key, values := range r.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
		multiHeaders[key] = values
	}

	queryParams := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			queryParams[key] = values[0]
		}
	}

	return events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		Headers:               headers,
		MultiValueHeaders:     multiHeaders,
		QueryStringParameters: queryParams,
		PathParameters:        mux.Vars(r),
		Body:                  string(body),
	}, nil
}

// writeResponse writes APIGatewayProxyResponse to http.ResponseWriter
func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	for key, values := range resp.MultiValueHeaders {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			http.Error(w, "Malformed response body", http.StatusInternalServerError)
			return
		}
		body = decoded
	}

	w.WriteHeader(resp.StatusCode)
	w.Write(body)
}

// ============================================================
// Request logging
// ============================================================

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int64
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += int64(n)
	return n, err
}

// requestLogger tags the request with an id and logs it once served.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		ctx := context.WithValue(r.Context(), logger.RequestIDKey, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			clientIP = r.RemoteAddr
		}
		logger.Default().LogRequest(logger.RequestLog{
			Method:       r.Method,
			Path:         r.URL.Path,
			Status:       rec.status,
			Duration:     time.Since(start),
			ClientIP:     clientIP,
			UserAgent:    r.UserAgent(),
			RequestID:    requestID,
			ResponseSize: rec.size,
		})
	})
}
