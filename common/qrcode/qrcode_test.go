package qrcode

import (
	"bytes"
	"strings"
	"testing"
)

func TestGeneratePNG(t *testing.T) {
	png, err := GeneratePNG("CS2024-VIP-001", SizeSmall)
	if err != nil {
		t.Fatalf("GeneratePNG() error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("GeneratePNG() should return PNG bytes")
	}
}

func TestGenerateDataURI(t *testing.T) {
	uri, err := GenerateDataURI("CS2024-VIP-001", SizeSmall)
	if err != nil {
		t.Fatalf("GenerateDataURI() error = %v", err)
	}
	if !strings.HasPrefix(string(uri), "data:image/png;base64,") {
		t.Errorf("GenerateDataURI() = %.40s", uri)
	}
}

func TestTicketPayload(t *testing.T) {
	got := TicketPayload("CS2024-VIP-001", 1)
	if got != "eventful:event=1&ticket=CS2024-VIP-001" {
		t.Errorf("TicketPayload() = %s", got)
	}
}
