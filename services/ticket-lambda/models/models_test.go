package models

import "testing"

func TestTicketID(t *testing.T) {
	tests := []struct {
		prefix, tier, want string
	}{
		{"CS2024", "VIP", "CS2024-VIP-001"},
		{"CS2024", "Executive", "CS2024-EXECUTIVE-001"},
		{"", "Standard", "EVT-STANDARD-001"},
	}
	for _, tt := range tests {
		if got := TicketID(tt.prefix, tt.tier); got != tt.want {
			t.Errorf("TicketID(%q, %q) = %q, want %q", tt.prefix, tt.tier, got, tt.want)
		}
	}
}
