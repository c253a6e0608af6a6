package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/qrcode"
	"github.com/eventful-services/common/response"
	"github.com/eventful-services/common/ticketcard"
	"github.com/eventful-services/common/view"
	"github.com/eventful-services/services/ticket-lambda/models"
	"github.com/eventful-services/services/ticket-lambda/usecase"
)

type TicketHandler struct {
	useCase *usecase.TicketUseCase
	pages   *view.Renderer
	log     *logger.Logger
}

func NewTicketHandler(useCase *usecase.TicketUseCase, pages *view.Renderer) *TicketHandler {
	return &TicketHandler{
		useCase: useCase,
		pages:   pages,
		log:     logger.Default().With("component", "ticket-handler"),
	}
}

// Handle routes the ticket pages by path.
func (h *TicketHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod != "" && request.HTTPMethod != http.MethodGet {
		return response.Message(http.StatusMethodNotAllowed, "Method not allowed")
	}

	switch strings.TrimSuffix(request.Path, "/") {
	case "/ticket-variants":
		return h.HandleVariants(ctx, request)
	case "/enhanced-tickets":
		return h.HandleEnhanced(ctx, request)
	case "/ticket":
		return h.HandleTicket(ctx, request)
	case "/ticket/pdf":
		return h.HandleTicketPDF(ctx, request)
	}
	return response.Message(http.StatusNotFound, "Not found")
}

// HandleVariants - GET /ticket-variants?type=music
func (h *TicketHandler) HandleVariants(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	variant, _ := ticketcard.ParseVariant(request.QueryStringParameters["type"])
	card := ticketcard.Render(variant, ticketcard.Sample(variant))

	page := view.NewTicketPage(card, true)
	page.PDFLink = "/ticket/pdf?variant=" + string(variant)
	return h.render(view.PageVariants, view.Page{Title: "Ticket Designs", Active: "variants", Data: page})
}

// HandleEnhanced - GET /enhanced-tickets?type=music
// Same designs with the event image and a scannable code.
func (h *TicketHandler) HandleEnhanced(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	variant, _ := ticketcard.ParseVariant(request.QueryStringParameters["type"])
	data := ticketcard.Sample(variant)
	if t, err := h.useCase.Issue(ctx, models.TicketQuery{}); err == nil {
		data.EventImage = t.Image
	}
	card := ticketcard.Render(variant, data)

	page := view.NewTicketPage(card, false)
	page.PDFLink = "/ticket/pdf?variant=" + string(variant)
	if uri, err := qrcode.GenerateDataURI(card.Code, qrcode.SizeSmall); err == nil {
		page.QRCode = uri
	} else {
		h.log.WithError(err).Warn("QR code unavailable for %s", card.TicketID)
	}
	return h.render(view.PageEnhanced, view.Page{Title: "Enhanced Tickets", Active: "enhanced", Data: page})
}

// HandleTicket - GET /ticket?eventId=1&type=VIP&holder=a@b.c
func (h *TicketHandler) HandleTicket(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ticket, err := h.useCase.Issue(ctx, ticketQuery(request))
	if err != nil {
		return response.FromError(err)
	}

	card := h.useCase.Card(ticket, ticketcard.VariantEvent)
	page := view.TicketPage{Card: card, PDFLink: pdfLink(ticket)}
	if uri, err := qrcode.GenerateDataURI(card.Code, qrcode.SizeSmall); err == nil {
		page.QRCode = uri
	}
	return h.render(view.PageTicket, view.Page{Title: ticket.EventTitle, Active: "ticket", Data: page})
}

// HandleTicketPDF - GET /ticket/pdf?eventId=1&type=VIP&holder=a@b.c or ?variant=music
func (h *TicketHandler) HandleTicketPDF(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	var (
		ticket  *models.Ticket
		variant = ticketcard.VariantEvent
	)
	if v, ok := ticketcard.ParseVariant(params["variant"]); ok {
		variant = v
	}

	if params["eventId"] == "" && params["variant"] != "" {
		ticket = sampleTicket(variant)
	} else {
		issued, err := h.useCase.Issue(ctx, ticketQuery(request))
		if err != nil {
			return response.FromError(err)
		}
		ticket = issued
	}

	accent := ticketcard.Render(variant, ticketcard.Data{}).Theme.RGB
	data, err := h.useCase.PDF(ticket, accent)
	if err != nil {
		h.log.WithError(err).Error("PDF generation failed for %s", ticket.ID)
		return response.FromError(err)
	}
	return response.Binary("application/pdf", ticket.PDFFilename(), data)
}

func (h *TicketHandler) render(name string, page view.Page) (events.APIGatewayProxyResponse, error) {
	body, err := h.pages.RenderString(name, page)
	if err != nil {
		h.log.WithError(err).Error("Failed to render %s page", name)
		return response.FromError(apperrors.Internal("Failed to render page"))
	}
	return response.HTML(http.StatusOK, body)
}

func ticketQuery(request events.APIGatewayProxyRequest) models.TicketQuery {
	params := request.QueryStringParameters
	id, _ := strconv.Atoi(params["eventId"])
	return models.TicketQuery{
		EventID: id,
		Type:    params["type"],
		Holder:  params["holder"],
	}
}

func pdfLink(t *models.Ticket) string {
	q := url.Values{}
	q.Set("eventId", strconv.Itoa(t.EventID))
	q.Set("type", t.Type)
	if t.Holder != "" {
		q.Set("holder", t.Holder)
	}
	return "/ticket/pdf?" + q.Encode()
}

func sampleTicket(v ticketcard.Variant) *models.Ticket {
	d := ticketcard.Sample(v)
	return &models.Ticket{
		ID:         d.TicketID,
		EventTitle: d.EventTitle,
		Date:       d.EventDate,
		Time:       d.EventTime,
		Location:   d.Venue,
		Type:       d.TicketType,
		Price:      d.Price,
		Holder:     d.HolderName,
	}
}
