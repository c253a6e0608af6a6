package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// TicketPDFData holds what is printed on a ticket.
type TicketPDFData struct {
	TicketID    string
	EventTitle  string
	EventDate   string
	EventTime   string
	Location    string
	TicketType  string
	Price       int
	HolderName  string
	HolderEmail string
	Accent      [3]int // RGB of the header band
	QRCodePNG   []byte
}

var defaultAccent = [3]int{37, 99, 235}

// GenerateTicketPDF renders an A5 landscape ticket with the QR code on the right.
func GenerateTicketPDF(data TicketPDFData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	accent := data.Accent
	if accent == [3]int{} {
		accent = defaultAccent
	}

	// header band
	pdf.SetFillColor(accent[0], accent[1], accent[2])
	pdf.Rect(0, 0, 210, 34, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(12, 8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s TICKET", data.TicketType)), "", 1, "L", false, 0, "")
	pdf.SetX(12)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(130, 10, tr(truncate(data.EventTitle, 34)), "", 1, "L", false, 0, "")

	pdf.SetTextColor(31, 41, 55)
	y := 44.0
	rows := [][2]string{
		{"Date", data.EventDate},
		{"Time", data.EventTime},
		{"Location", truncate(data.Location, 48)},
		{"Holder", holder(data)},
		{"Price", fmt.Sprintf("$%d", data.Price)},
	}
	for _, row := range rows {
		pdf.SetXY(12, y)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(107, 114, 128)
		pdf.CellFormat(30, 6, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(31, 41, 55)
		pdf.CellFormat(100, 6, tr(row[1]), "", 0, "L", false, 0, "")
		y += 10
	}

	if len(data.QRCodePNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		name := "qr_" + data.TicketID
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data.QRCodePNG))
		pdf.ImageOptions(name, 148, 44, 50, 50, false, opts, 0, "")
	}

	// perforation and ticket id
	pdf.SetDrawColor(209, 213, 219)
	pdf.SetDashPattern([]float64{2, 2}, 0)
	pdf.Line(12, 104, 198, 104)
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetXY(12, 110)
	pdf.SetFont("Courier", "B", 12)
	pdf.CellFormat(0, 8, data.TicketID, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(0, 6, "Present this ticket at the entrance. The QR code is scanned at check-in.", "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to build PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func holder(data TicketPDFData) string {
	switch {
	case data.HolderName != "" && data.HolderEmail != "":
		return fmt.Sprintf("%s (%s)", data.HolderName, data.HolderEmail)
	case data.HolderName != "":
		return data.HolderName
	default:
		return data.HolderEmail
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
