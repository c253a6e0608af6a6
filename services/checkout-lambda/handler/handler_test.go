package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"github.com/eventful-services/common/jwt"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/view"
	"github.com/eventful-services/common/wallet"
	"github.com/eventful-services/services/checkout-lambda/models"
	"github.com/eventful-services/services/checkout-lambda/usecase"
	"github.com/eventful-services/services/event-lambda/repository"
	eventusecase "github.com/eventful-services/services/event-lambda/usecase"
)

// walletRejection is the JSON-RPC error a wallet returns when the user declines.
type walletRejection struct{}

func (walletRejection) Error() string  { return "User rejected the request." }
func (walletRejection) ErrorCode() int { return wallet.CodeUserRejected }

type stubPayer struct {
	err   error
	calls int
}

func (p *stubPayer) InitiatePayment(context.Context, wallet.PaymentRequest) (*wallet.PaymentResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &wallet.PaymentResult{CallsID: "0xbundle"}, nil
}

// browser replays the session cookie between requests like a real client.
type browser struct {
	t      *testing.T
	h      *CheckoutHandler
	cookie string
}

func newBrowser(t *testing.T, payer *stubPayer) *browser {
	t.Helper()
	repo, err := repository.NewEmbeddedRepository()
	if err != nil {
		t.Fatal(err)
	}
	pages, err := view.New()
	if err != nil {
		t.Fatal(err)
	}
	uc := usecase.NewCheckoutUseCase(eventusecase.NewEventUseCase(repo), payer, "http://localhost/api/data-validation")
	sessions := NewSessionStore(jwt.NewSigner("test-secret", time.Hour), "eventful_session", false)
	return &browser{t: t, h: NewCheckoutHandler(uc, sessions, pages)}
}

func (b *browser) do(method, path, contentType, body string) events.APIGatewayProxyResponse {
	b.t.Helper()
	req := events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"content-type": contentType},
		Body:       body,
	}
	if b.cookie != "" {
		req.Headers["cookie"] = b.cookie
	}

	resp, err := b.h.Handle(context.Background(), req)
	if err != nil {
		b.t.Fatalf("Handle(%s %s) error = %v", method, path, err)
	}
	for _, line := range resp.MultiValueHeaders["Set-Cookie"] {
		c, err := http.ParseSetCookie(line)
		if err != nil {
			b.t.Fatalf("bad Set-Cookie %q: %v", line, err)
		}
		if !c.HttpOnly {
			b.t.Error("session cookie must be HttpOnly")
		}
		b.cookie = c.Name + "=" + c.Value
	}
	return resp
}

func (b *browser) form(path, body string) events.APIGatewayProxyResponse {
	return b.do(http.MethodPost, path, "application/x-www-form-urlencoded", body)
}

func (b *browser) api(path, body string) (events.APIGatewayProxyResponse, models.CheckoutView) {
	resp := b.do(http.MethodPost, path, "application/json", body)
	return resp, decodeView(b.t, resp)
}

func decodeView(t *testing.T, resp events.APIGatewayProxyResponse) models.CheckoutView {
	t.Helper()
	var body struct {
		Data models.CheckoutView `json:"data"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("decode %s: %v", resp.Body, err)
	}
	return body.Data
}

func TestFormFlow_PRG(t *testing.T) {
	payer := &stubPayer{}
	b := newBrowser(t, payer)

	page := b.do(http.MethodGet, "/", "", "")
	if page.StatusCode != http.StatusOK || !strings.Contains(page.Body, "Discover Amazing Events") {
		t.Fatalf("home = %d", page.StatusCode)
	}

	steps := []struct {
		path string
		body string
	}{
		{"/checkout/select", "eventId=1"},
		{"/checkout/quantity", "type=VIP&delta=1"},
		{"/checkout/quantity", "type=VIP&delta=1"},
	}
	for _, step := range steps {
		resp := b.form(step.path, step.body)
		if resp.StatusCode != http.StatusSeeOther || resp.Headers["Location"] != "/" {
			t.Fatalf("%s = %d %v", step.path, resp.StatusCode, resp.Headers)
		}
	}

	page = b.do(http.MethodGet, "/", "", "")
	for _, want := range []string{"Select Your Tickets", "One Click Pay – $798", "Step 2 of 3", "Privacy Policy"} {
		if !strings.Contains(page.Body, want) {
			t.Errorf("selection page missing %q", want)
		}
	}

	b.form("/checkout/pay", "")
	page = b.do(http.MethodGet, "/", "", "")
	if !strings.Contains(page.Body, "Order Confirmed!") || !strings.Contains(page.Body, "$798") {
		t.Errorf("confirmation page = %s", page.Body)
	}
	if payer.calls != 1 {
		t.Errorf("payer calls = %d", payer.calls)
	}

	b.form("/checkout/restart", "")
	state := decodeView(t, b.do(http.MethodGet, "/api/checkout", "", ""))
	if state.Phase != models.PhaseBrowse || state.TotalTickets != 0 {
		t.Errorf("after restart = %+v", state)
	}
}

func TestFormFlow_PaymentFailureNotice(t *testing.T) {
	b := newBrowser(t, &stubPayer{err: walletRejection{}})

	b.form("/checkout/select", "eventId=1")
	b.form("/checkout/quantity", "type=Standard&delta=2")
	b.form("/checkout/pay", "")

	page := b.do(http.MethodGet, "/", "", "")
	if !strings.Contains(page.Body, "There was an error with the smart wallet transaction") {
		t.Errorf("notice missing from page")
	}
	if !strings.Contains(page.Body, "Select Your Tickets") {
		t.Error("failed payment should stay on the selection step")
	}

	page = b.do(http.MethodGet, "/", "", "")
	if strings.Contains(page.Body, "smart wallet transaction") {
		t.Error("notice should only be shown once")
	}
}

func TestAPI(t *testing.T) {
	b := newBrowser(t, &stubPayer{})

	resp, v := b.api("/api/checkout/select", `{"eventId":1}`)
	if resp.StatusCode != http.StatusOK || v.Phase != models.PhaseSelectAndPay || v.Progress != 66 {
		t.Fatalf("select = %d %+v", resp.StatusCode, v)
	}

	for i := 0; i < 15; i++ {
		b.api("/api/checkout/quantity", `{"type":"Executive","delta":1}`)
	}
	_, v = b.api("/api/checkout/quantity", `{"type":"Standard","delta":-3}`)
	if v.Quantities["Executive"] != 10 || v.Quantities["Standard"] != 0 {
		t.Errorf("quantities = %v", v.Quantities)
	}
	if v.TotalPrice != 7990 || !v.CanPay {
		t.Errorf("total = %d canPay = %v", v.TotalPrice, v.CanPay)
	}

	resp, v = b.api("/api/checkout/pay", "")
	if resp.StatusCode != http.StatusOK || v.Phase != models.PhaseConfirmed || v.PaymentRef != "0xbundle" {
		t.Errorf("pay = %d %+v", resp.StatusCode, v)
	}

	resp, v = b.api("/api/checkout/back", "")
	if resp.StatusCode != http.StatusConflict || v.Phase != models.PhaseConfirmed {
		t.Errorf("back after confirm = %d %+v", resp.StatusCode, v)
	}
}

func TestAPI_Errors(t *testing.T) {
	type call struct{ path, body string }
	selectVIP := []call{
		{"/api/checkout/select", `{"eventId":1}`},
		{"/api/checkout/quantity", `{"type":"VIP","delta":1}`},
	}

	tests := []struct {
		name       string
		payerErr   error
		setup      []call
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unknown event", nil, nil, "/api/checkout/select", `{"eventId":99}`, http.StatusNotFound, "E3001"},
		{"missing event id", nil, nil, "/api/checkout/select", `{}`, http.StatusBadRequest, "E2001"},
		{"malformed json", nil, nil, "/api/checkout/select", `{`, http.StatusBadRequest, "E2001"},
		{"zero delta", nil, selectVIP, "/api/checkout/quantity", `{"type":"VIP","delta":0}`, http.StatusBadRequest, "E2001"},
		{"quantity while browsing", nil, nil, "/api/checkout/quantity", `{"type":"VIP","delta":1}`, http.StatusConflict, "E4002"},
		{"pay with nothing selected", nil, selectVIP[:1], "/api/checkout/pay", "", http.StatusUnprocessableEntity, "E4010"},
		{"no wallet", wallet.ErrNoWalletConnector, selectVIP, "/api/checkout/pay", "", http.StatusServiceUnavailable, "E5005"},
		{"wallet failure", errors.New("boom"), selectVIP, "/api/checkout/pay", "", http.StatusUnprocessableEntity, "E4006"},
		{"wallet rejected", walletRejection{}, selectVIP, "/api/checkout/pay", "", http.StatusUnprocessableEntity, "E4006"},
		{"wallet bridge down", fmt.Errorf("%w: 502 Bad Gateway", wallet.ErrRequestFailed), selectVIP, "/api/checkout/pay", "", http.StatusBadGateway, "E5007"},
		{"wallet bad result", wallet.ErrMalformedResponse, selectVIP, "/api/checkout/pay", "", http.StatusBadGateway, "E5007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrowser(t, &stubPayer{err: tt.payerErr})
			for _, c := range tt.setup {
				b.api(c.path, c.body)
			}

			resp := b.do(http.MethodPost, tt.path, "application/json", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.wantStatus, resp.Body)
			}
			var body struct {
				Success bool   `json:"success"`
				Code    string `json:"code"`
			}
			json.Unmarshal([]byte(resp.Body), &body)
			if body.Success || body.Code != tt.wantCode {
				t.Errorf("body = %s", resp.Body)
			}
		})
	}
}

func TestFormFlow_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		setup  []string
		path   string
		body   string
		notice string
	}{
		{"select without event", nil, "/checkout/select", "", "eventId is required"},
		{"select with bad event", nil, "/checkout/select", "eventId=abc", "Invalid event id"},
		{"quantity without delta", []string{"eventId=1"}, "/checkout/quantity", "type=VIP", "delta is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrowser(t, &stubPayer{})
			for _, body := range tt.setup {
				b.form("/checkout/select", body)
			}

			if resp := b.form(tt.path, tt.body); resp.StatusCode != http.StatusSeeOther {
				t.Fatalf("status = %d, want redirect", resp.StatusCode)
			}
			page := b.do(http.MethodGet, "/", "", "")
			if !strings.Contains(page.Body, tt.notice) {
				t.Errorf("page missing notice %q", tt.notice)
			}
		})
	}
}

func TestLogFailure_ServerErrors(t *testing.T) {
	var buf bytes.Buffer
	b := newBrowser(t, &stubPayer{err: fmt.Errorf("%w: connection refused", wallet.ErrRequestFailed)})
	b.h.log = logger.New(&logger.Config{Level: logrus.InfoLevel, Output: &buf, JSONFormat: true})

	b.api("/api/checkout/select", `{"eventId":1}`)
	b.api("/api/checkout/quantity", `{"type":"VIP","delta":1}`)
	_, v := b.api("/api/checkout/pay", "")

	type logEntry struct {
		Message   string `json:"message"`
		Code      string `json:"code"`
		SessionID string `json:"session_id"`
		Stack     string `json:"stack"`
		Error     string `json:"error"`
	}
	var entry logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil && e.Message == "Checkout action failed" {
			entry = e
			break
		}
	}
	if entry.Message == "" {
		t.Fatalf("no failure entry in log:\n%s", buf.String())
	}
	if entry.Code != "E5007" || !strings.Contains(entry.Error, "connection refused") {
		t.Errorf("entry = %+v", entry)
	}
	if v.SessionID == "" || entry.SessionID != v.SessionID {
		t.Errorf("session_id = %q, want %q", entry.SessionID, v.SessionID)
	}
	if !strings.Contains(entry.Stack, "paymentError") {
		t.Errorf("stack = %q", entry.Stack)
	}
}

func TestSession_TamperedCookieStartsFresh(t *testing.T) {
	b := newBrowser(t, &stubPayer{})
	b.api("/api/checkout/select", `{"eventId":1}`)

	b.cookie = "eventful_session=not-a-token"
	v := decodeView(t, b.do(http.MethodGet, "/api/checkout", "", ""))
	if v.Phase != models.PhaseBrowse || v.SessionID == "" {
		t.Errorf("view = %+v", v)
	}
}

func TestHandle_Routing(t *testing.T) {
	b := newBrowser(t, &stubPayer{})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPut, "/checkout/select", http.StatusMethodNotAllowed},
		{http.MethodPost, "/checkout/teleport", http.StatusNotFound},
		{http.MethodPost, "/api/checkout/teleport", http.StatusNotFound},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		if resp := b.do(tt.method, tt.path, "", ""); resp.StatusCode != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
		}
	}
}
