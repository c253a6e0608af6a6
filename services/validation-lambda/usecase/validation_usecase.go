package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/email"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/qrcode"
	appvalidator "github.com/eventful-services/common/validator"
	ticketmodels "github.com/eventful-services/services/ticket-lambda/models"
	"github.com/eventful-services/services/validation-lambda/models"
)

// Messages reported per failed rule.
const (
	MsgEmailDomain = "Invalid email domain"
	MsgPostalCode  = "Invalid postal code"
	MsgCountryCode = "Invalid country"
)

var ruleMessages = map[string]string{
	"allowed_email_domain": MsgEmailDomain,
	"postal_code_length":   MsgPostalCode,
	"allowed_country":      MsgCountryCode,
}

// TicketIssuer builds the ticket mailed to the payer.
type TicketIssuer interface {
	Issue(ctx context.Context, q ticketmodels.TicketQuery) (*ticketmodels.Ticket, error)
	PDF(t *ticketmodels.Ticket, accent [3]int) ([]byte, error)
}

// TicketMailer delivers the ticket email.
type TicketMailer interface {
	Enabled() bool
	SendTicketEmail(ctx context.Context, data email.TicketEmailData) error
}

// Result is either a set of field errors or the call parameters to echo.
type Result struct {
	Errors   models.ValidationErrors
	Response *models.CallbackResponse
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

type ValidationUseCase struct {
	validate *validator.Validate
	policy   string
	tickets  TicketIssuer
	mailer   TicketMailer
	log      *logger.Logger
}

// NewValidationUseCase wires the callback rules from cfg. tickets and mailer may
// be nil, in which case no email is ever attempted.
func NewValidationUseCase(cfg config.ValidationConfig, policy string, tickets TicketIssuer, mailer TicketMailer) (*ValidationUseCase, error) {
	v, err := NewRules(cfg)
	if err != nil {
		return nil, err
	}
	if policy == "" {
		policy = config.EmailOnSuccess
	}
	return &ValidationUseCase{
		validate: v,
		policy:   policy,
		tickets:  tickets,
		mailer:   mailer,
		log:      logger.Default().With("component", "data-validation"),
	}, nil
}

// NewRules returns a validator with the callback rules registered as tags.
func NewRules(cfg config.ValidationConfig) (*validator.Validate, error) {
	v := appvalidator.New()

	rules := map[string]validator.Func{
		"allowed_email_domain": func(fl validator.FieldLevel) bool {
			addr := fl.Field().String()
			for _, domain := range cfg.BlockedEmailDomains {
				if appvalidator.HasDomainSuffix(addr, domain) {
					return false
				}
			}
			return true
		},
		"postal_code_length": func(fl validator.FieldLevel) bool {
			return utf8.RuneCountInString(fl.Field().String()) >= cfg.MinPostalCodeLength
		},
		"allowed_country": func(fl validator.FieldLevel) bool {
			return !appvalidator.ContainsFold(cfg.BlockedCountryCodes, strings.TrimSpace(fl.Field().String()))
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Validate applies every rule to the payload. Violations are all collected;
// a clean payload yields its call parameters unchanged.
func (uc *ValidationUseCase) Validate(ctx context.Context, payload models.CallbackPayload, sel models.TicketSelection) Result {
	contact := payload.Contact()

	var result Result
	if errs := uc.check(contact); len(errs) > 0 {
		result.Errors = errs
	} else {
		result.Response = &models.CallbackResponse{
			Calls:        payload.Calls,
			ChainID:      payload.ChainID,
			Version:      payload.Version,
			Capabilities: payload.Capabilities,
		}
	}

	fields := make([]string, 0, len(result.Errors))
	for field := range result.Errors {
		fields = append(fields, field)
	}
	uc.log.WithContext(ctx).LogEvent(logger.EventLog{
		Event:    "callback.validate",
		Entity:   "payload",
		Action:   "validate",
		Success:  true,
		Metadata: map[string]interface{}{"valid": result.Valid(), "failed_fields": fields},
	})

	if uc.shouldEmail(result.Valid()) && contact.Email != "" {
		uc.sendTicket(ctx, contact, sel)
	}
	return result
}

func (uc *ValidationUseCase) check(contact models.Contact) models.ValidationErrors {
	err := uc.validate.Struct(contact)
	if err == nil {
		return nil
	}

	errs := models.ValidationErrors{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		uc.log.WithError(err).Warn("Unexpected validator failure")
		return nil
	}
	for _, fe := range fieldErrs {
		msg, ok := ruleMessages[fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		setPath(errs, appvalidator.FieldPath(fe), msg)
	}
	return errs
}

// setPath writes msg at path, creating nested maps for subfields.
func setPath(errs models.ValidationErrors, path []string, msg string) {
	if len(path) == 0 {
		return
	}
	if len(path) == 1 {
		errs[path[0]] = msg
		return
	}
	child, ok := errs[path[0]].(models.ValidationErrors)
	if !ok {
		child = models.ValidationErrors{}
		errs[path[0]] = child
	}
	setPath(child, path[1:], msg)
}

func (uc *ValidationUseCase) shouldEmail(valid bool) bool {
	if uc.tickets == nil || uc.mailer == nil {
		return false
	}
	switch uc.policy {
	case config.EmailAlways:
		return true
	case config.EmailNever:
		return false
	default:
		return valid
	}
}

// sendTicket mails the ticket for sel to the payer. Failures are logged only.
func (uc *ValidationUseCase) sendTicket(ctx context.Context, contact models.Contact, sel models.TicketSelection) {
	log := uc.log.WithContext(ctx)
	if !uc.mailer.Enabled() {
		log.Debug("Email transport not configured, ticket not sent")
		return
	}

	ticket, err := uc.tickets.Issue(ctx, ticketmodels.TicketQuery{
		EventID: sel.EventID,
		Type:    sel.Type,
		Holder:  contact.Email,
		Phone:   contact.Phone,
	})
	if err != nil {
		uc.logEmail(log, "", err)
		return
	}

	data := email.TicketEmailData{
		To:          contact.Email,
		Phone:       contact.Phone,
		EventTitle:  ticket.EventTitle,
		EventDate:   ticket.Date,
		EventTime:   ticket.Time,
		Location:    ticket.Location,
		EventImage:  ticket.Image,
		TicketType:  ticket.Type,
		TicketID:    ticket.ID,
		Price:       ticket.Price,
		PDFFilename: ticket.PDFFilename(),
	}
	if uri, err := qrcode.GenerateDataURI(qrcode.TicketPayload(ticket.ID, ticket.EventID), qrcode.SizeSmall); err == nil {
		data.QRCode = uri
	} else {
		log.WithError(err).Warn("Ticket %s mailed without QR code", ticket.ID)
	}
	if pdf, err := uc.tickets.PDF(ticket, [3]int{}); err == nil {
		data.PDF = pdf
	} else {
		log.WithError(err).Warn("Ticket %s mailed without PDF", ticket.ID)
	}

	uc.logEmail(log, ticket.ID, uc.mailer.SendTicketEmail(ctx, data))
}

func (uc *ValidationUseCase) logEmail(log *logger.Logger, ticketID string, err error) {
	evt := logger.EventLog{
		Event:    "email.send",
		Entity:   "ticket",
		EntityID: ticketID,
		Action:   "send",
		Success:  err == nil,
		Metadata: map[string]interface{}{"policy": uc.policy},
	}
	if err != nil {
		evt.Error = err.Error()
	}
	log.LogEvent(evt)
}

// Selection parses the eventId and type query parameters of the callback URL.
func Selection(params map[string]string) models.TicketSelection {
	id, _ := strconv.Atoi(params["eventId"])
	return models.TicketSelection{EventID: id, Type: params["type"]}
}
