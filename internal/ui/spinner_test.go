package ui

import (
	"testing"
	"time"
)

func TestSlowNote(t *testing.T) {
	tests := []struct {
		name    string
		message string
		elapsed time.Duration
		want    string
	}{
		{"fast operation is silent", "Loading package databases...", time.Second, ""},
		{"slow operation reports", "Loading package databases...", 6200 * time.Millisecond, "Loading package databases took 6.2s"},
		{"threshold exactly", "Syncing...", slowAfter, "Syncing took 3s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slowNote(tt.message, tt.elapsed); got != tt.want {
				t.Errorf("slowNote(%q, %v) = %q, want %q", tt.message, tt.elapsed, got, tt.want)
			}
		})
	}
}
