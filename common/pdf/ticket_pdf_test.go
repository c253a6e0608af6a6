package pdf

import (
	"bytes"
	"testing"

	"github.com/eventful-services/common/qrcode"
)

func TestGenerateTicketPDF(t *testing.T) {
	qr, err := qrcode.GeneratePNG("CS2024-VIP-001", qrcode.SizeSmall)
	if err != nil {
		t.Fatal(err)
	}

	out, err := GenerateTicketPDF(TicketPDFData{
		TicketID:    "CS2024-VIP-001",
		EventTitle:  "Crypto Summit 2024",
		EventDate:   "October 10, 2024",
		EventTime:   "9:00 AM",
		Location:    "Web3 Convention Center, San Francisco",
		TicketType:  "VIP",
		Price:       399,
		HolderEmail: "holder@tickets.test",
		QRCodePNG:   qr,
	})
	if err != nil {
		t.Fatalf("GenerateTicketPDF() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestGenerateTicketPDF_WithoutQR(t *testing.T) {
	out, err := GenerateTicketPDF(TicketPDFData{TicketID: "X-1", EventTitle: "Café Night", Price: 0})
	if err != nil {
		t.Fatalf("GenerateTicketPDF() error = %v", err)
	}
	if len(out) == 0 {
		t.Error("empty PDF")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"Web3 Convention Center", 10, "Web3 Co..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
