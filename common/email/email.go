package email

import (
	"context"
	"errors"

	"github.com/eventful-services/common/config"
	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/validator"
)

// ============================================================
// CONFIGURATION & SERVICE
// ============================================================

// Sender delivers a fully built message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	From        string
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

type Attachment struct {
	Filename string
	Data     []byte
	MimeType string
}

var ErrInvalidRecipient = errors.New("email: invalid recipient")

// EmailService sends through Resend when an API key is configured, SMTP when
// credentials are, and otherwise runs in dev mode where sends are skipped.
type EmailService struct {
	config  config.EmailConfig
	sender  Sender
	devMode bool
	log     *logger.Logger
}

func NewEmailService(cfg config.EmailConfig) *EmailService {
	var sender Sender
	switch {
	case cfg.ResendAPIKey != "":
		sender = newResendSender(cfg)
	case cfg.SMTPUsername != "" && cfg.SMTPPassword != "":
		sender = newSMTPSender(cfg)
	}
	return NewEmailServiceWithSender(cfg, sender)
}

// NewEmailServiceWithSender uses sender as the transport; nil means dev mode.
func NewEmailServiceWithSender(cfg config.EmailConfig, sender Sender) *EmailService {
	return &EmailService{
		config:  cfg,
		sender:  sender,
		devMode: sender == nil,
		log:     logger.Default().With("component", "email"),
	}
}

// Enabled reports whether messages actually leave the process.
func (s *EmailService) Enabled() bool {
	return !s.devMode
}

// ============================================================
// SENDING ENGINE
// ============================================================

func (s *EmailService) Send(ctx context.Context, msg Message) error {
	for _, to := range msg.To {
		if !validator.IsValidEmail(to) {
			return ErrInvalidRecipient
		}
	}
	if s.devMode {
		s.log.With("to", msg.To).Debug("Email transport not configured, skipping %q", msg.Subject)
		return nil
	}
	if msg.From == "" {
		msg.From = s.config.From
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return apperrors.EmailError(err)
	}
	return nil
}
