package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/email"
	"github.com/eventful-services/services/event-lambda/repository"
	eventusecase "github.com/eventful-services/services/event-lambda/usecase"
	ticketusecase "github.com/eventful-services/services/ticket-lambda/usecase"
	"github.com/eventful-services/services/validation-lambda/usecase"
)

type recordingSender struct {
	sent []email.Message
}

func (r *recordingSender) Send(_ context.Context, msg email.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

type panickingMailer struct{}

func (panickingMailer) Enabled() bool { panic("mailer exploded") }

func (panickingMailer) SendTicketEmail(context.Context, email.TicketEmailData) error { return nil }

func newTestHandler(t *testing.T, policy string, mailer usecase.TicketMailer) *ValidationHandler {
	t.Helper()
	repo, err := repository.NewEmbeddedRepository()
	if err != nil {
		t.Fatal(err)
	}
	tickets := ticketusecase.NewTicketUseCase(eventusecase.NewEventUseCase(repo))
	uc, err := usecase.NewValidationUseCase(config.DefaultConfig().Validation, policy, tickets, mailer)
	if err != nil {
		t.Fatal(err)
	}
	return NewValidationHandler(uc)
}

func post(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/data-validation",
		Body:       body,
	}
}

func TestHandle_Responses(t *testing.T) {
	h := newTestHandler(t, config.EmailNever, nil)

	tests := []struct {
		name       string
		request    events.APIGatewayProxyRequest
		wantStatus int
		wantBody   string
	}{
		{
			name:       "blocked email",
			request:    post(`{"requestedInfo":{"email":"a@example.com"},"calls":[1],"chainId":"0x1"}`),
			wantStatus: http.StatusOK,
			wantBody:   `{"errors":{"email":"Invalid email domain"}}`,
		},
		{
			name:       "short postal code",
			request:    post(`{"requestedInfo":{"physicalAddress":{"postalCode":"123","countryCode":"US"}}}`),
			wantStatus: http.StatusOK,
			wantBody:   `{"errors":{"physicalAddress":{"postalCode":"Invalid postal code"}}}`,
		},
		{
			name:       "blocked country",
			request:    post(`{"requestedInfo":{"physicalAddress":{"countryCode":"XY"}},"calls":[{"to":"0x1"}],"chainId":"0x1"}`),
			wantStatus: http.StatusOK,
			wantBody:   `{"errors":{"physicalAddress":{"countryCode":"Invalid country"}}}`,
		},
		{
			name:       "valid payload echoes calls",
			request:    post(`{"requestedInfo":{"email":"a@tickets.test"},"calls":[1],"chainId":"0x1","capabilities":{}}`),
			wantStatus: http.StatusOK,
			wantBody:   `{"calls":[1],"chainId":"0x1","capabilities":{}}`,
		},
		{
			name:       "malformed json",
			request:    post(`{"requestedInfo":`),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"errors":{"server":"Server error validating data"}}`,
		},
		{
			name:       "null body",
			request:    post("null"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"errors":{"server":"Server error validating data"}}`,
		},
		{
			name:       "array body",
			request:    post(`[1]`),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"errors":{"server":"Server error validating data"}}`,
		},
		{
			name:       "markup in calls is echoed verbatim",
			request:    post(`{"calls":[{"data":"<b>&</b>"}],"chainId":"0x1"}`),
			wantStatus: http.StatusOK,
			wantBody:   `{"calls":[{"data":"<b>&</b>"}],"chainId":"0x1"}`,
		},
		{
			name:       "empty body",
			request:    post(""),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"errors":{"server":"Server error validating data"}}`,
		},
		{
			name: "base64 body",
			request: events.APIGatewayProxyRequest{
				HTTPMethod:      http.MethodPost,
				Body:            base64.StdEncoding.EncodeToString([]byte(`{"calls":[2],"chainId":"0x2"}`)),
				IsBase64Encoded: true,
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"calls":[2],"chainId":"0x2"}`,
		},
		{
			name:       "wrong method",
			request:    events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/api/data-validation"},
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   `{"error":"Method not allowed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.Handle(context.Background(), tt.request)
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if resp.Body != tt.wantBody {
				t.Errorf("body = %s, want %s", resp.Body, tt.wantBody)
			}
		})
	}
}

func TestHandle_SendsTicketAfterValidation(t *testing.T) {
	sender := &recordingSender{}
	mailer := email.NewEmailServiceWithSender(config.DefaultConfig().Email, sender)
	h := newTestHandler(t, config.EmailOnSuccess, mailer)

	request := post(`{"requestedInfo":{"email":"buyer@tickets.test","phoneNumber":{"number":"+14155550100"}},"calls":[],"chainId":"0x14A34"}`)
	request.QueryStringParameters = map[string]string{"eventId": "1", "type": "Executive"}

	resp, _ := h.Handle(context.Background(), request)
	if resp.StatusCode != http.StatusOK || strings.Contains(resp.Body, "errors") {
		t.Fatalf("response = %d %s", resp.StatusCode, resp.Body)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Subject != "Your Crypto Summit 2024 Ticket" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTMLBody, "CS2024-EXECUTIVE-001") {
		t.Error("body should name the ticket id")
	}
	if len(msg.Attachments) != 1 || !strings.HasPrefix(string(msg.Attachments[0].Data), "%PDF") {
		t.Error("ticket PDF should be attached")
	}

	blocked := post(`{"requestedInfo":{"email":"buyer@tickets.test","physicalAddress":{"countryCode":"XY"}}}`)
	h.Handle(context.Background(), blocked)
	if len(sender.sent) != 1 {
		t.Error("no email should be sent for a rejected payload")
	}
}

func TestHandle_PanicBecomesServerError(t *testing.T) {
	h := newTestHandler(t, config.EmailAlways, panickingMailer{})

	resp, err := h.Handle(context.Background(), post(`{"requestedInfo":{"email":"buyer@tickets.test"}}`))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil || body.Errors["server"] != "Server error validating data" {
		t.Errorf("body = %s", resp.Body)
	}
	if strings.Contains(resp.Body, "exploded") {
		t.Error("panic detail leaked to the caller")
	}
}
