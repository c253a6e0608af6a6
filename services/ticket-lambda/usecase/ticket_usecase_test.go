package usecase

import (
	"bytes"
	"context"
	"testing"

	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/common/ticketcard"
	eventmodels "github.com/eventful-services/services/event-lambda/models"
	"github.com/eventful-services/services/ticket-lambda/models"
)

type catalog []eventmodels.Event

func (c catalog) ListEvents(context.Context) []eventmodels.Event { return c }

func (c catalog) GetEvent(_ context.Context, id int) (*eventmodels.Event, error) {
	for _, e := range c {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, apperrors.NotFound("Event")
}

func testCatalog() catalog {
	return catalog{
		{
			ID: 1, Title: "Crypto Summit 2024", TicketPrefix: "CS2024", Date: "October 10, 2024",
			Tickets: []eventmodels.TicketTier{
				{Type: "Standard", Price: 199}, {Type: "VIP", Price: 399}, {Type: "Executive", Price: 799},
			},
		},
		{
			ID: 2, Title: "Solo Night",
			Tickets: []eventmodels.TicketTier{{Type: "General", Price: 20}},
		},
	}
}

func TestIssue(t *testing.T) {
	uc := NewTicketUseCase(testCatalog())

	tests := []struct {
		name      string
		query     models.TicketQuery
		wantID    string
		wantPrice int
		wantEvent int
	}{
		{"explicit", models.TicketQuery{EventID: 1, Type: "Executive"}, "CS2024-EXECUTIVE-001", 799, 1},
		{"defaults", models.TicketQuery{}, "CS2024-VIP-001", 399, 1},
		{"unknown event", models.TicketQuery{EventID: 42, Type: "Standard"}, "CS2024-STANDARD-001", 199, 1},
		{"unknown tier uses second", models.TicketQuery{EventID: 1, Type: "Backstage"}, "CS2024-VIP-001", 399, 1},
		{"single tier", models.TicketQuery{EventID: 2, Type: "VIP"}, "EVT-GENERAL-001", 20, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket, err := uc.Issue(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			if ticket.ID != tt.wantID || ticket.Price != tt.wantPrice || ticket.EventID != tt.wantEvent {
				t.Errorf("Issue() = %+v", ticket)
			}
		})
	}
}

func TestIssue_EmptyCatalog(t *testing.T) {
	uc := NewTicketUseCase(catalog{})
	if _, err := uc.Issue(context.Background(), models.TicketQuery{}); !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("Issue() error = %v", err)
	}
}

func TestCardAndPDF(t *testing.T) {
	uc := NewTicketUseCase(testCatalog())
	ticket, err := uc.Issue(context.Background(), models.TicketQuery{EventID: 1, Type: "VIP", Holder: "a@b.co"})
	if err != nil {
		t.Fatal(err)
	}

	card := uc.Card(ticket, ticketcard.VariantEvent)
	if card.Heading != "Crypto Summit 2024" || card.Price != "$399" || card.Holder != "a@b.co" {
		t.Errorf("card = %+v", card)
	}

	data, err := uc.PDF(ticket, [3]int{})
	if err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("PDF() did not return a PDF document")
	}
}
