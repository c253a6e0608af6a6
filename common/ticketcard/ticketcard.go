package ticketcard

import (
	"strconv"
	"strings"
)

// Variant names a ticket layout.
type Variant string

const (
	VariantEvent      Variant = "event"
	VariantMusic      Variant = "music"
	VariantConference Variant = "conference"
	VariantSports     Variant = "sports"
	VariantFood       Variant = "food"
	VariantTheater    Variant = "theater"
	VariantWedding    Variant = "wedding"
)

// Gallery is the order the design gallery lists variants in.
var Gallery = []Variant{
	VariantMusic,
	VariantConference,
	VariantSports,
	VariantFood,
	VariantTheater,
	VariantWedding,
}

// ParseVariant maps a query value onto a Variant. Unknown values fall back to music.
func ParseVariant(s string) (Variant, bool) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := renderers[v]; ok {
		return v, true
	}
	return VariantMusic, false
}

// Theme is the colour scheme of a card.
type Theme struct {
	Name       string
	Header     string // CSS background of the header strip
	Accent     string // hex
	Background string // CSS background of the body
	RGB        [3]int // accent for PDF output
}

// Field is one labelled value on a card.
type Field struct {
	Label string
	Value string
}

// Data carries everything any variant may print. Variants ignore what they don't use.
type Data struct {
	EventTitle string
	EventDate  string
	EventTime  string
	Venue      string
	TicketType string
	TicketID   string
	HolderName string
	Price      int
	EventImage string
	Barcode    string

	SeatInfo string

	Artist string
	Genre  string
	Doors  string

	Company          string
	Role             string
	NetworkingAccess bool

	Teams   string
	Section string
	Row     string
	Seat    string

	ChefName    string
	CourseCount int
	DietaryInfo string

	ShowType string
	Act      string

	CoupleNames string
	Ceremony    string
	Reception   string
	DressCode   string
}

// Card is a rendered ticket, ready for a template or the PDF writer.
type Card struct {
	Variant    Variant
	Label      string
	Theme      Theme
	Heading    string
	Subheading string
	Tagline    string
	Price      string
	TicketType string
	Fields     []Field
	Highlight  *Field
	Badges     []string
	Holder     string
	TicketID   string
	Image      string
	Code       string
}

type renderer func(Data) Card

var renderers = map[Variant]renderer{
	VariantEvent:      renderEvent,
	VariantMusic:      renderMusic,
	VariantConference: renderConference,
	VariantSports:     renderSports,
	VariantFood:       renderFood,
	VariantTheater:    renderTheater,
	VariantWedding:    renderWedding,
}

// Render lays out d in the given variant. Unknown variants render as music.
func Render(v Variant, d Data) Card {
	r, ok := renderers[v]
	if !ok {
		v, r = VariantMusic, renderMusic
	}
	card := r(d)
	card.Variant = v
	card.TicketType = d.TicketType
	card.Holder = d.HolderName
	card.TicketID = d.TicketID
	card.Image = d.EventImage
	card.Code = d.Barcode
	if card.Code == "" {
		card.Code = d.TicketID
	}
	return card
}

func price(p int) string {
	return "$" + strconv.Itoa(p)
}

func nonEmpty(fields ...Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

// ============================================================
// Variants
// ============================================================

func renderEvent(d Data) Card {
	c := Card{
		Label:   "Event Ticket",
		Theme:   Theme{Name: "yellow", Header: "#facc15", Accent: "#000000", Background: "#ffffff", RGB: [3]int{250, 204, 21}},
		Heading: d.EventTitle,
		Price:   price(d.Price),
		Fields: nonEmpty(
			Field{"Date", d.EventDate},
			Field{"Time", d.EventTime},
			Field{"Venue", d.Venue},
			Field{"Holder", d.HolderName},
		),
	}
	if d.SeatInfo != "" {
		c.Highlight = &Field{"Seat", d.SeatInfo}
	}
	return c
}

func renderMusic(d Data) Card {
	return Card{
		Label:      "Concert Ticket",
		Theme:      Theme{Name: "purple", Header: "linear-gradient(90deg,#9333ea,#db2777)", Accent: "#9333ea", Background: "linear-gradient(135deg,#faf5ff,#fdf2f8)", RGB: [3]int{147, 51, 234}},
		Heading:    d.Artist,
		Subheading: d.EventTitle,
		Tagline:    d.Genre,
		Price:      price(d.Price),
		Fields: nonEmpty(
			Field{"Date", d.EventDate},
			Field{"Doors", d.Doors},
			Field{"Show", d.EventTime},
			Field{"Venue", d.Venue},
		),
	}
}

func renderConference(d Data) Card {
	c := Card{
		Label:   "Conference Pass",
		Theme:   Theme{Name: "slate", Header: "#1e293b", Accent: "#475569", Background: "#ffffff", RGB: [3]int{30, 41, 59}},
		Heading: d.EventTitle,
		Price:   price(d.Price),
		Fields: nonEmpty(
			Field{"Company", d.Company},
			Field{"Role", d.Role},
			Field{"Date", d.EventDate},
			Field{"Time", d.EventTime},
			Field{"Venue", d.Venue},
		),
	}
	if d.NetworkingAccess {
		c.Badges = append(c.Badges, "Networking Access Included")
	}
	return c
}

func renderSports(d Data) Card {
	c := Card{
		Label:      "Game Ticket",
		Theme:      Theme{Name: "orange", Header: "linear-gradient(90deg,#ea580c,#dc2626)", Accent: "#ea580c", Background: "linear-gradient(135deg,#fff7ed,#fef2f2)", RGB: [3]int{234, 88, 12}},
		Heading:    d.EventTitle,
		Subheading: d.Teams,
		Price:      price(d.Price),
		Fields: nonEmpty(
			Field{"Date", d.EventDate},
			Field{"Time", d.EventTime},
			Field{"Venue", d.Venue},
		),
	}
	if seat := strings.Join(nonEmptyStrings(d.Section, d.Row, d.Seat), " · "); seat != "" {
		c.Highlight = &Field{"Seat", seat}
	}
	return c
}

func renderFood(d Data) Card {
	c := Card{
		Label:      "Dining Reservation",
		Theme:      Theme{Name: "amber", Header: "linear-gradient(90deg,#d97706,#ea580c)", Accent: "#d97706", Background: "linear-gradient(135deg,#fffbeb,#fff7ed)", RGB: [3]int{217, 119, 6}},
		Heading:    d.EventTitle,
		Subheading: d.ChefName,
		Price:      price(d.Price),
		Fields: nonEmpty(
			Field{"Date", d.EventDate},
			Field{"Seating", d.EventTime},
			Field{"Restaurant", d.Venue},
		),
	}
	if d.CourseCount > 0 {
		c.Tagline = strconv.Itoa(d.CourseCount) + " Course Tasting Menu"
	}
	if d.DietaryInfo != "" {
		c.Highlight = &Field{"Dietary", d.DietaryInfo}
	}
	return c
}

func renderTheater(d Data) Card {
	c := Card{
		Label:      "Theater Ticket",
		Theme:      Theme{Name: "indigo", Header: "linear-gradient(90deg,#4f46e5,#9333ea)", Accent: "#4f46e5", Background: "linear-gradient(135deg,#eef2ff,#faf5ff)", RGB: [3]int{79, 70, 229}},
		Heading:    d.EventTitle,
		Subheading: d.ShowType,
		Tagline:    d.Act,
		Price:      price(d.Price),
		Fields: nonEmpty(
			Field{"Date", d.EventDate},
			Field{"Curtain", d.EventTime},
			Field{"Theatre", d.Venue},
			Field{"Section", d.Section},
			Field{"Row", d.Row},
			Field{"Seat", d.Seat},
		),
	}
	return c
}

func renderWedding(d Data) Card {
	c := Card{
		Label:      "Wedding Invitation",
		Theme:      Theme{Name: "rose", Header: "linear-gradient(90deg,#fb7185,#f472b6)", Accent: "#e11d48", Background: "linear-gradient(135deg,#fff1f2,#fdf2f8)", RGB: [3]int{225, 29, 72}},
		Heading:    d.CoupleNames,
		Subheading: d.EventTitle,
		Fields: nonEmpty(
			Field{"Date", d.EventDate},
			Field{"Ceremony", d.Ceremony},
			Field{"Reception", d.Reception},
			Field{"Venue", d.Venue},
		),
	}
	// invitations carry no price unless one is set
	if d.Price > 0 {
		c.Price = price(d.Price)
	}
	if d.DressCode != "" {
		c.Highlight = &Field{"Dress Code", d.DressCode}
	}
	return c
}

func nonEmptyStrings(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
