package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/db"
	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/services/event-lambda/models"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// EventRepository serves a catalog that is loaded once and never mutated.
type EventRepository struct {
	events []models.Event
	byID   map[int]int
}

// NewEventRepository validates events and freezes them.
func NewEventRepository(events []models.Event) (*EventRepository, error) {
	r := &EventRepository{byID: make(map[int]int, len(events))}
	for i, e := range events {
		if err := validateEvent(e); err != nil {
			return nil, err
		}
		if _, dup := r.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate event id %d", e.ID)
		}
		r.byID[e.ID] = i
		r.events = append(r.events, e.Clone())
	}
	return r, nil
}

// NewEmbeddedRepository loads the catalog compiled into the binary.
func NewEmbeddedRepository() (*EventRepository, error) {
	events, err := ParseCatalog(embeddedCatalog)
	if err != nil {
		return nil, err
	}
	return NewEventRepository(events)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) ([]models.Event, error) {
	var doc struct {
		Events []models.Event `yaml:"events"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return doc.Events, nil
}

// ============================================================
// MySQL source
// ============================================================

const (
	selectEvents = `SELECT id, title, event_date, event_time, location, image_url, category,
		rating, attendees, description, ticket_prefix
		FROM events ORDER BY id`
	selectTiers = `SELECT event_id, type, price, available, color, perks
		FROM ticket_tiers ORDER BY event_id, position`
)

// NewMySQLRepository reads events and ticket_tiers once. Nothing is ever written back.
func NewMySQLRepository(ctx context.Context, conn *sql.DB) (*EventRepository, error) {
	log := logger.Default().With("component", "catalog")

	events, err := queryEvents(ctx, conn, log)
	if err != nil {
		return nil, err
	}

	index := make(map[int]int, len(events))
	for i, e := range events {
		index[e.ID] = i
	}

	start := time.Now()
	rows, err := conn.QueryContext(ctx, selectTiers)
	if err != nil {
		log.LogQuery(logger.QueryLog{Query: selectTiers, Duration: time.Since(start), Error: err.Error()})
		return nil, apperrors.DatabaseError(fmt.Errorf("query ticket tiers: %w", err))
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		var (
			eventID int
			tier    models.TicketTier
			perks   sql.NullString
		)
		if err := rows.Scan(&eventID, &tier.Type, &tier.Price, &tier.Available, &tier.Color, &perks); err != nil {
			return nil, apperrors.DatabaseError(fmt.Errorf("scan ticket tier: %w", err))
		}
		tier.Perks = splitPerks(perks.String)
		if i, ok := index[eventID]; ok {
			events[i].Tickets = append(events[i].Tickets, tier)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError(fmt.Errorf("read ticket tiers: %w", err))
	}
	log.LogQuery(logger.QueryLog{Query: selectTiers, Duration: time.Since(start), Rows: count})

	return NewEventRepository(events)
}

func queryEvents(ctx context.Context, conn *sql.DB, log *logger.Logger) ([]models.Event, error) {
	start := time.Now()
	rows, err := conn.QueryContext(ctx, selectEvents)
	if err != nil {
		log.LogQuery(logger.QueryLog{Query: selectEvents, Duration: time.Since(start), Error: err.Error()})
		return nil, apperrors.DatabaseError(fmt.Errorf("query events: %w", err))
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			e      models.Event
			prefix sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Time, &e.Location, &e.Image, &e.Category,
			&e.Rating, &e.Attendees, &e.Description, &prefix); err != nil {
			return nil, apperrors.DatabaseError(fmt.Errorf("scan event: %w", err))
		}
		e.TicketPrefix = prefix.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError(fmt.Errorf("read events: %w", err))
	}
	log.LogQuery(logger.QueryLog{Query: selectEvents, Duration: time.Since(start), Rows: int64(len(events))})
	return events, nil
}

func splitPerks(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ============================================================
// Reads
// ============================================================

// All returns copies of every event in catalog order.
func (r *EventRepository) All() []models.Event {
	out := make([]models.Event, len(r.events))
	for i, e := range r.events {
		out[i] = e.Clone()
	}
	return out
}

// FindByID returns a copy of the event with the given id.
func (r *EventRepository) FindByID(id int) (models.Event, bool) {
	i, ok := r.byID[id]
	if !ok {
		return models.Event{}, false
	}
	return r.events[i].Clone(), true
}

func validateEvent(e models.Event) error {
	seen := make(map[string]bool, len(e.Tickets))
	for _, t := range e.Tickets {
		if t.Type == "" {
			return fmt.Errorf("event %d: ticket tier without type", e.ID)
		}
		if seen[t.Type] {
			return fmt.Errorf("event %d: duplicate ticket type %q", e.ID, t.Type)
		}
		if t.Price < 0 || t.Available < 0 {
			return fmt.Errorf("event %d: ticket %q has negative price or availability", e.ID, t.Type)
		}
		seen[t.Type] = true
	}
	return nil
}

// Open builds the repository for the configured catalog source.
func Open(ctx context.Context, cfg *config.AppConfig) (*EventRepository, error) {
	if cfg.Catalog.Source != config.CatalogMySQL {
		return NewEmbeddedRepository()
	}
	conn, err := db.InitDBWithConfig(ctx, db.Config{
		Server:   cfg.Database.Server,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, err
	}
	return NewMySQLRepository(ctx, conn)
}
