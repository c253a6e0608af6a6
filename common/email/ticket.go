package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
)

type TicketEmailData struct {
	To          string
	Phone       string
	EventTitle  string
	EventDate   string
	EventTime   string
	Location    string
	EventImage  string
	TicketType  string
	TicketID    string
	Price       int
	QRCode      template.URL // data URI
	PDF         []byte
	PDFFilename string
}

var ticketTemplate = template.Must(template.New("ticket").Parse(`<!DOCTYPE html>
<html><body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f3f4f6;">
<table width="100%" border="0" cellspacing="0" cellpadding="0" bgcolor="#f3f4f6"><tr><td align="center" style="padding:32px 0;">
<table width="600" border="0" cellspacing="0" cellpadding="0" bgcolor="#ffffff" style="border-radius:16px;overflow:hidden;">
{{if .EventImage}}<tr><td><img src="{{.EventImage}}" alt="{{.EventTitle}}" width="600" style="display:block;height:200px;object-fit:cover;"/></td></tr>{{end}}
<tr><td style="padding:32px 40px;background:linear-gradient(90deg,#2563eb,#7c3aed);color:#ffffff;">
<p style="margin:0;font-size:14px;text-transform:uppercase;letter-spacing:2px;">{{.TicketType}} Ticket</p>
<h1 style="margin:8px 0 0 0;font-size:28px;">{{.EventTitle}}</h1>
</td></tr>
<tr><td style="padding:24px 40px;">
<table width="100%" border="0" cellpadding="8">
<tr><td><small style="color:#6b7280;">DATE</small><br/><strong>{{.EventDate}}</strong></td><td><small style="color:#6b7280;">TIME</small><br/><strong>{{.EventTime}}</strong></td></tr>
<tr><td colspan="2"><small style="color:#6b7280;">LOCATION</small><br/><strong>{{.Location}}</strong></td></tr>
<tr><td><small style="color:#6b7280;">TICKET ID</small><br/><strong>{{.TicketID}}</strong></td><td><small style="color:#6b7280;">PRICE</small><br/><strong>${{.Price}}</strong></td></tr>
<tr><td><small style="color:#6b7280;">EMAIL</small><br/><strong>{{.To}}</strong></td>{{if .Phone}}<td><small style="color:#6b7280;">PHONE</small><br/><strong>{{.Phone}}</strong></td>{{end}}</tr>
</table>
</td></tr>
{{if .QRCode}}<tr><td align="center" style="padding:0 40px 24px 40px;"><img src="{{.QRCode}}" alt="Ticket QR code" width="160" height="160"/><p style="color:#6b7280;font-size:12px;">Present this code at the entrance</p></td></tr>{{end}}
<tr><td align="center" bgcolor="#111827" style="padding:20px;color:#9ca3af;font-size:12px;">Eventful · Your ticket is attached as a PDF</td></tr>
</table></td></tr></table></body></html>`))

// RenderTicketHTML renders the ticket confirmation body.
func RenderTicketHTML(data TicketEmailData) (string, error) {
	var buf bytes.Buffer
	if err := ticketTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render ticket email: %w", err)
	}
	return buf.String(), nil
}

// TicketSubject fills the {{event}} placeholder of the configured subject.
func (s *EmailService) TicketSubject(eventTitle string) string {
	subject := s.config.Subject
	if subject == "" {
		subject = "Your {{event}} Ticket"
	}
	return strings.ReplaceAll(subject, "{{event}}", eventTitle)
}

func (s *EmailService) SendTicketEmail(ctx context.Context, data TicketEmailData) error {
	html, err := RenderTicketHTML(data)
	if err != nil {
		return err
	}

	msg := Message{
		To:       []string{data.To},
		Subject:  s.TicketSubject(data.EventTitle),
		HTMLBody: html,
	}
	if len(data.PDF) > 0 {
		filename := data.PDFFilename
		if filename == "" {
			filename = "ticket.pdf"
		}
		msg.Attachments = []Attachment{{Filename: filename, Data: data.PDF, MimeType: "application/pdf"}}
	}
	return s.Send(ctx, msg)
}
