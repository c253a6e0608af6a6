package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/resend/resend-go/v2"

	"github.com/eventful-services/common/config"
)

type resendSender struct {
	client *resend.Client
}

func newResendSender(cfg config.EmailConfig) *resendSender {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &resendSender{client: resend.NewCustomClient(httpClient, cfg.ResendAPIKey)}
}

func (r *resendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
	}
	for _, att := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Content:     att.Data,
			Filename:    att.Filename,
			ContentType: att.MimeType,
		})
	}

	if _, err := r.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}
