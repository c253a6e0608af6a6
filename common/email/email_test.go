package email

import (
	"context"
	"errors"
	"html"
	"strings"
	"testing"

	"github.com/eventful-services/common/config"
	apperrors "github.com/eventful-services/common/errors"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func testTicket() TicketEmailData {
	return TicketEmailData{
		To:         "holder@tickets.test",
		Phone:      "+14155550100",
		EventTitle: "Crypto Summit 2024",
		EventDate:  "October 10, 2024",
		EventTime:  "9:00 AM",
		Location:   "Web3 Convention Center, San Francisco",
		TicketType: "VIP",
		TicketID:   "CS2024-VIP-001",
		Price:      399,
		PDF:        []byte("%PDF-1.3"),
	}
}

func TestNewEmailService_DevMode(t *testing.T) {
	svc := NewEmailService(config.DefaultConfig().Email)
	if svc.Enabled() {
		t.Fatal("service without credentials should be in dev mode")
	}
	if err := svc.SendTicketEmail(context.Background(), testTicket()); err != nil {
		t.Errorf("SendTicketEmail() in dev mode error = %v", err)
	}
}

func TestSendTicketEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewEmailServiceWithSender(config.DefaultConfig().Email, sender)

	if err := svc.SendTicketEmail(context.Background(), testTicket()); err != nil {
		t.Fatalf("SendTicketEmail() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.Subject != "Your Crypto Summit 2024 Ticket" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.From != "Eventful <no-reply@thecyberverse.xyz>" {
		t.Errorf("From = %q", msg.From)
	}
	body := html.UnescapeString(msg.HTMLBody)
	for _, want := range []string{"CS2024-VIP-001", "$399", "October 10, 2024", "+14155550100"} {
		if !strings.Contains(body, want) {
			t.Errorf("HTMLBody missing %q", want)
		}
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0].Filename != "ticket.pdf" {
		t.Errorf("Attachments = %+v", msg.Attachments)
	}
}

func TestSend_Errors(t *testing.T) {
	failing := &recordingSender{err: errors.New("503 from provider")}
	svc := NewEmailServiceWithSender(config.DefaultConfig().Email, failing)

	if err := svc.Send(context.Background(), Message{To: []string{"not-an-email"}}); !errors.Is(err, ErrInvalidRecipient) {
		t.Errorf("Send(invalid) error = %v, want ErrInvalidRecipient", err)
	}
	if len(failing.sent) != 0 {
		t.Error("invalid recipient should not reach the transport")
	}
	err := svc.SendTicketEmail(context.Background(), testTicket())
	if !apperrors.HasCode(err, apperrors.ErrCodeEmailError) {
		t.Errorf("transport failure error = %v, want %s", err, apperrors.ErrCodeEmailError)
	}
	if err != nil && !strings.Contains(err.Error(), "503 from provider") {
		t.Errorf("error should keep the provider cause: %v", err)
	}
}

func TestRenderTicketHTML_Escapes(t *testing.T) {
	data := testTicket()
	data.EventTitle = `<script>alert(1)</script>`

	body, err := RenderTicketHTML(data)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(body, "<script>") {
		t.Error("event title should be escaped")
	}
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME(Message{
		From:        "Eventful <no-reply@thecyberverse.xyz>",
		To:          []string{"a@tickets.test", "b@tickets.test"},
		Subject:     "Hi",
		HTMLBody:    "<p>hello</p>",
		Attachments: []Attachment{{Filename: "ticket.pdf", Data: []byte("pdf"), MimeType: "application/pdf"}},
	}))

	for _, want := range []string{"To: a@tickets.test, b@tickets.test", "filename=\"ticket.pdf\"", "cGRm"} {
		if !strings.Contains(raw, want) {
			t.Errorf("MIME missing %q", want)
		}
	}
}
