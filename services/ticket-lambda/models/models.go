package models

import "strings"

// Ticket is one issued ticket for a catalog event and tier.
type Ticket struct {
	ID          string `json:"ticketId"`
	EventID     int    `json:"eventId"`
	EventTitle  string `json:"eventTitle"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Price       int    `json:"price"`
	Holder      string `json:"holder,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// TicketQuery selects what to issue. Zero values fall back to catalog defaults.
type TicketQuery struct {
	EventID int
	Type    string
	Holder  string
	Phone   string
}

// DefaultTicketType is used when a request names no tier.
const DefaultTicketType = "VIP"

// DefaultPrefix applies to events without a ticket prefix.
const DefaultPrefix = "EVT"

// TicketID builds "<prefix>-<TYPE>-001", e.g. CS2024-VIP-001.
func TicketID(prefix, ticketType string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "-" + strings.ToUpper(ticketType) + "-001"
}

// PDFFilename is the download name of a ticket.
func (t Ticket) PDFFilename() string {
	return "ticket-" + t.ID + ".pdf"
}
