package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/eventful-services/common/config"
)

type smtpSender struct {
	host     string
	port     int
	username string
	password string
}

func newSMTPSender(cfg config.EmailConfig) *smtpSender {
	return &smtpSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

// Send builds a multipart/mixed MIME message. net/smtp has no context
// support, so ctx is only checked before dialing.
func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return fmt.Errorf("smtp: invalid from address: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	return smtp.SendMail(addr, auth, from.Address, msg.To, buildMIME(msg))
}

func buildMIME(msg Message) []byte {
	var body bytes.Buffer
	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())

	fmt.Fprintf(&body, "From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%s\r\n\r\n",
		msg.From, strings.Join(msg.To, ", "), msg.Subject, boundary)
	fmt.Fprintf(&body, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.HTMLBody)
	for _, att := range msg.Attachments {
		fmt.Fprintf(&body, "--%s\r\nContent-Type: %s; name=\"%s\"\r\nContent-Transfer-Encoding: base64\r\nContent-Disposition: attachment; filename=\"%s\"\r\n\r\n%s\r\n",
			boundary, att.MimeType, att.Filename, att.Filename, base64.StdEncoding.EncodeToString(att.Data))
	}
	fmt.Fprintf(&body, "--%s--\r\n", boundary)
	return body.Bytes()
}
