package models

// TicketTier is a purchasable class of ticket. Available is display-only.
type TicketTier struct {
	Type      string   `json:"type" yaml:"type"`
	Price     int      `json:"price" yaml:"price"`
	Available int      `json:"available" yaml:"available"`
	Color     string   `json:"color" yaml:"color"`
	Perks     []string `json:"perks,omitempty" yaml:"perks"`
}

// Event is immutable once the catalog is loaded.
type Event struct {
	ID           int          `json:"id" yaml:"id"`
	Title        string       `json:"title" yaml:"title"`
	Date         string       `json:"date" yaml:"date"`
	Time         string       `json:"time" yaml:"time"`
	Location     string       `json:"location" yaml:"location"`
	Image        string       `json:"image" yaml:"image"`
	Category     string       `json:"category" yaml:"category"`
	Rating       float64      `json:"rating" yaml:"rating"`
	Attendees    int          `json:"attendees" yaml:"attendees"`
	Description  string       `json:"description" yaml:"description"`
	TicketPrefix string       `json:"ticketPrefix,omitempty" yaml:"ticket_prefix"`
	Tickets      []TicketTier `json:"tickets" yaml:"tickets"`
}

// Tier looks up a tier by its type name.
func (e Event) Tier(ticketType string) (TicketTier, bool) {
	for _, t := range e.Tickets {
		if t.Type == ticketType {
			return t, true
		}
	}
	return TicketTier{}, false
}

// StartingPrice is the cheapest tier, 0 when there are none.
func (e Event) StartingPrice() int {
	if len(e.Tickets) == 0 {
		return 0
	}
	min := e.Tickets[0].Price
	for _, t := range e.Tickets[1:] {
		if t.Price < min {
			min = t.Price
		}
	}
	return min
}

// Clone returns a deep copy.
func (e Event) Clone() Event {
	out := e
	out.Tickets = make([]TicketTier, len(e.Tickets))
	for i, t := range e.Tickets {
		t.Perks = append([]string(nil), t.Perks...)
		out.Tickets[i] = t
	}
	return out
}
