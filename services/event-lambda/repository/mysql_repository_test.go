package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/services/event-lambda/models"
)

var (
	eventColumns = []string{"id", "title", "event_date", "event_time", "location", "image_url", "category",
		"rating", "attendees", "description", "ticket_prefix"}
	tierColumns = []string{"event_id", "type", "price", "available", "color", "perks"}
)

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows(eventColumns).
		AddRow(1, "Crypto Summit 2024", "October 10, 2024", "9:00 AM", "Web3 Convention Center", "/img/summit.jpg", "Conference",
			4.8, 1200, "Blockchain talks", "CS2024").
		AddRow(2, "Rooftop Jazz", "November 2, 2024", "8:00 PM", "Skyline Terrace", "/img/jazz.jpg", "Music",
			4.5, 150, "Live quartet", nil)
}

func TestNewMySQLRepository(t *testing.T) {
	dbErr := errors.New("connection reset")

	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock)
		wantCode apperrors.ErrorCode
		wantErr  bool
		check    func(t *testing.T, repo *EventRepository)
	}{
		{
			name: "events with tiers in position order",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectEvents).WillReturnRows(eventRows())
				mock.ExpectQuery(selectTiers).WillReturnRows(sqlmock.NewRows(tierColumns).
					AddRow(1, "Standard", 199, 500, "blue", "Main hall, Swag bag").
					AddRow(1, "VIP", 399, 50, "gold", " Lounge ,, Dinner ").
					AddRow(2, "General", 49, 120, "purple", nil).
					AddRow(9, "Orphan", 10, 1, "red", "Ignored"))
			},
			check: func(t *testing.T, repo *EventRepository) {
				events := repo.All()
				if len(events) != 2 {
					t.Fatalf("len(events) = %d, want 2", len(events))
				}
				summit := events[0]
				if summit.Title != "Crypto Summit 2024" || summit.Rating != 4.8 || summit.Attendees != 1200 || summit.TicketPrefix != "CS2024" {
					t.Errorf("summit = %+v", summit)
				}
				want := []models.TicketTier{
					{Type: "Standard", Price: 199, Available: 500, Color: "blue", Perks: []string{"Main hall", "Swag bag"}},
					{Type: "VIP", Price: 399, Available: 50, Color: "gold", Perks: []string{"Lounge", "Dinner"}},
				}
				if !reflect.DeepEqual(summit.Tickets, want) {
					t.Errorf("summit tiers = %+v", summit.Tickets)
				}

				jazz, ok := repo.FindByID(2)
				if !ok {
					t.Fatal("event 2 missing")
				}
				if jazz.TicketPrefix != "" {
					t.Errorf("NULL ticket_prefix = %q", jazz.TicketPrefix)
				}
				if len(jazz.Tickets) != 1 || jazz.Tickets[0].Type != "General" || jazz.Tickets[0].Perks != nil {
					t.Errorf("jazz tiers = %+v", jazz.Tickets)
				}
				if _, ok := repo.FindByID(9); ok {
					t.Error("tiers without an event must not create one")
				}
			},
		},
		{
			name: "empty tables",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectEvents).WillReturnRows(sqlmock.NewRows(eventColumns))
				mock.ExpectQuery(selectTiers).WillReturnRows(sqlmock.NewRows(tierColumns))
			},
			check: func(t *testing.T, repo *EventRepository) {
				if n := len(repo.All()); n != 0 {
					t.Errorf("len(events) = %d", n)
				}
			},
		},
		{
			name: "events query fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectEvents).WillReturnError(dbErr)
			},
			wantCode: apperrors.ErrCodeDatabase,
		},
		{
			name: "event row does not scan",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectEvents).WillReturnRows(sqlmock.NewRows(eventColumns).
					AddRow("one", "Broken", "", "", "", "", "", 0, 0, "", nil))
			},
			wantCode: apperrors.ErrCodeDatabase,
		},
		{
			name: "events cursor fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectEvents).WillReturnRows(eventRows().RowError(1, dbErr))
			},
			wantCode: apperrors.ErrCodeDatabase,
		},
		{
			name: "tiers query fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectEvents).WillReturnRows(eventRows())
				mock.ExpectQuery(selectTiers).WillReturnError(dbErr)
			},
			wantCode: apperrors.ErrCodeDatabase,
		},
		{
			name: "tiers cursor fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectEvents).WillReturnRows(eventRows())
				mock.ExpectQuery(selectTiers).WillReturnRows(sqlmock.NewRows(tierColumns).
					AddRow(1, "Standard", 199, 500, "blue", nil).
					AddRow(1, "VIP", 399, 50, "gold", nil).
					RowError(1, dbErr))
			},
			wantCode: apperrors.ErrCodeDatabase,
		},
		{
			name: "duplicate tier type",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectEvents).WillReturnRows(eventRows())
				mock.ExpectQuery(selectTiers).WillReturnRows(sqlmock.NewRows(tierColumns).
					AddRow(1, "VIP", 399, 50, "gold", nil).
					AddRow(1, "VIP", 499, 10, "gold", nil))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			if err != nil {
				t.Fatal(err)
			}
			defer conn.Close()
			tt.setup(mock)

			repo, err := NewMySQLRepository(context.Background(), conn)
			switch {
			case tt.wantCode != "":
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Errorf("NewMySQLRepository() error = %v, want %s", err, tt.wantCode)
				}
			case tt.wantErr:
				if err == nil {
					t.Error("NewMySQLRepository() should fail")
				}
			default:
				if err != nil {
					t.Fatalf("NewMySQLRepository() error = %v", err)
				}
				tt.check(t, repo)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}
