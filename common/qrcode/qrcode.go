package qrcode

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// Sizes in pixels.
const (
	SizeSmall    = 150
	SizeStandard = 300
)

// GeneratePNG encodes text with Medium error correction.
func GeneratePNG(text string, size int) ([]byte, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pngBytes, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR to PNG: %w", err)
	}
	return pngBytes, nil
}

// GenerateDataURI returns "data:image/png;base64,..." typed for html/template.
func GenerateDataURI(text string, size int) (template.URL, error) {
	pngBytes, err := GeneratePNG(text, size)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)), nil
}

// TicketPayload is what gets scanned at the door: the ticket id and its event.
func TicketPayload(ticketID string, eventID int) string {
	v := url.Values{}
	v.Set("ticket", ticketID)
	v.Set("event", fmt.Sprint(eventID))
	return "eventful:" + v.Encode()
}
