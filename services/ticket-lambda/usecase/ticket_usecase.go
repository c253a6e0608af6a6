package usecase

import (
	"context"

	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/pdf"
	"github.com/eventful-services/common/qrcode"
	"github.com/eventful-services/common/ticketcard"
	eventmodels "github.com/eventful-services/services/event-lambda/models"
	"github.com/eventful-services/services/ticket-lambda/models"
)

// EventCatalog is the part of the catalog tickets are issued from.
type EventCatalog interface {
	ListEvents(ctx context.Context) []eventmodels.Event
	GetEvent(ctx context.Context, id int) (*eventmodels.Event, error)
}

// TicketUseCase issues tickets and renders them as cards, QR codes and PDFs.
type TicketUseCase struct {
	catalog EventCatalog
	log     *logger.Logger
}

func NewTicketUseCase(catalog EventCatalog) *TicketUseCase {
	return &TicketUseCase{
		catalog: catalog,
		log:     logger.Default().With("component", "tickets"),
	}
}

// Issue resolves q against the catalog. An unknown event falls back to the first
// catalog event; an unknown tier falls back to the second tier, then the first.
func (uc *TicketUseCase) Issue(ctx context.Context, q models.TicketQuery) (*models.Ticket, error) {
	event, err := uc.catalog.GetEvent(ctx, q.EventID)
	if err != nil {
		events := uc.catalog.ListEvents(ctx)
		if len(events) == 0 {
			return nil, apperrors.NotFound("Event")
		}
		event = &events[0]
	}

	tier, ok := pickTier(*event, q.Type)
	if !ok {
		return nil, apperrors.NotFound("Ticket type")
	}

	return &models.Ticket{
		ID:          models.TicketID(event.TicketPrefix, tier.Type),
		EventID:     event.ID,
		EventTitle:  event.Title,
		Category:    event.Category,
		Date:        event.Date,
		Time:        event.Time,
		Location:    event.Location,
		Image:       event.Image,
		Description: event.Description,
		Type:        tier.Type,
		Price:       tier.Price,
		Holder:      q.Holder,
		Phone:       q.Phone,
	}, nil
}

func pickTier(event eventmodels.Event, ticketType string) (eventmodels.TicketTier, bool) {
	if ticketType == "" {
		ticketType = models.DefaultTicketType
	}
	if tier, ok := event.Tier(ticketType); ok {
		return tier, true
	}
	switch {
	case len(event.Tickets) > 1:
		return event.Tickets[1], true
	case len(event.Tickets) == 1:
		return event.Tickets[0], true
	}
	return eventmodels.TicketTier{}, false
}

// Card lays an issued ticket out in the given design.
func (uc *TicketUseCase) Card(t *models.Ticket, variant ticketcard.Variant) ticketcard.Card {
	return ticketcard.Render(variant, ticketcard.Data{
		EventTitle: t.EventTitle,
		EventDate:  t.Date,
		EventTime:  t.Time,
		Venue:      t.Location,
		TicketType: t.Type,
		TicketID:   t.ID,
		HolderName: t.Holder,
		Price:      t.Price,
		EventImage: t.Image,
		Barcode:    qrcode.TicketPayload(t.ID, t.EventID),
	})
}

// QRCode returns the scannable code for t as a PNG.
func (uc *TicketUseCase) QRCode(t *models.Ticket) ([]byte, error) {
	return qrcode.GeneratePNG(qrcode.TicketPayload(t.ID, t.EventID), qrcode.SizeStandard)
}

// PDF renders t as a printable ticket. accent may be zero for the default colour.
func (uc *TicketUseCase) PDF(t *models.Ticket, accent [3]int) ([]byte, error) {
	png, err := uc.QRCode(t)
	if err != nil {
		uc.log.WithError(err).Warn("Ticket %s rendered without QR code", t.ID)
		png = nil
	}

	data, err := pdf.GenerateTicketPDF(pdf.TicketPDFData{
		TicketID:    t.ID,
		EventTitle:  t.EventTitle,
		EventDate:   t.Date,
		EventTime:   t.Time,
		Location:    t.Location,
		TicketType:  t.Type,
		Price:       t.Price,
		HolderEmail: t.Holder,
		Accent:      accent,
		QRCodePNG:   png,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate ticket PDF")
	}
	return data, nil
}
