package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/eventful-services/common/ticketcard"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutFile   = "templates/layout.html"
	partialsFile = "templates/partials.html"
)

// Page names.
const (
	PageEvents    = "events"
	PageCheckout  = "checkout"
	PageConfirmed = "confirmed"
	PageVariants  = "variants"
	PageEnhanced  = "enhanced"
	PageTicket    = "ticket"
)

// pageFiles are parsed one by one so each can define its own "content".
var pageFiles = []string{
	PageEvents,
	PageCheckout,
	PageConfirmed,
	PageVariants,
	PageEnhanced,
	PageTicket,
}

// PrivacyPolicy is shown next to the pay button.
const PrivacyPolicy = "We collect your email and phone number solely for the purpose of ticket delivery and " +
	"event updates. Your information will not be shared with third parties except as required to " +
	"fulfill your order or by law. By accepting, you consent to this use of your data in accordance " +
	"with our privacy practices."

// Page is the shell every template renders in. Progress 0 hides the step bar.
type Page struct {
	Title    string
	Active   string
	Notice   string
	Step     int
	StepName string
	Progress int
	Data     interface{}
}

// VariantOption is one button of the variant picker.
type VariantOption struct {
	ID       ticketcard.Variant
	Name     string
	Selected bool
}

// FeatureGroup lists the design notes of one variant.
type FeatureGroup struct {
	Name   string
	Accent string
	Items  []string
}

// TicketPage feeds the gallery, enhanced and printable ticket pages.
type TicketPage struct {
	Card     ticketcard.Card
	QRCode   template.URL
	Options  []VariantOption
	Features []FeatureGroup
	PDFLink  string
}

// NewTicketPage builds the picker and feature list around card.
func NewTicketPage(card ticketcard.Card, withFeatures bool) TicketPage {
	page := TicketPage{Card: card}
	for _, v := range ticketcard.Gallery {
		page.Options = append(page.Options, VariantOption{ID: v, Name: ticketcard.Name(v), Selected: v == card.Variant})
		if withFeatures {
			page.Features = append(page.Features, FeatureGroup{
				Name:   ticketcard.Name(v),
				Accent: ticketcard.Render(v, ticketcard.Data{}).Theme.Accent,
				Items:  ticketcard.Features(v),
			})
		}
	}
	return page
}

// Renderer holds the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
	md    goldmark.Markdown
}

// New parses every embedded page against the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{
		pages: make(map[string]*template.Template, len(pageFiles)),
		md:    goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
	}

	funcs := template.FuncMap{
		"markdown": r.Markdown,
		"money":    Money,
		"privacy":  func() string { return PrivacyPolicy },
		"css":      func(s string) template.CSS { return template.CSS(s) },
	}

	for _, name := range pageFiles {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, partialsFile, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render writes the named page to w.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", page)
}

// RenderString renders the named page into a string, as Lambda responses need.
func (r *Renderer) RenderString(name string, page Page) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, page); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Markdown converts catalog text to HTML. Raw HTML in the source is not passed through.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// Money formats whole dollars.
func Money(amount int) string {
	return "$" + strconv.Itoa(amount)
}
