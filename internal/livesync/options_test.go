package livesync

import (
	"testing"
	"time"
)

func TestOptionsWithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   Options
		want time.Duration
	}{
		{"zero takes default", Options{}, DefaultInitialEventsWindow},
		{"negative takes default", Options{InitialEventsWindow: -time.Second}, DefaultInitialEventsWindow},
		{"explicit kept", Options{InitialEventsWindow: 500 * time.Millisecond}, 500 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.withDefaults()
			if got.InitialEventsWindow != tt.want {
				t.Fatalf("InitialEventsWindow = %v, want %v", got.InitialEventsWindow, tt.want)
			}
			if got.Clock == nil || got.Store == nil || got.Selection == nil {
				t.Fatal("clock, store and selection must be filled in")
			}
		})
	}
}

func TestOptionsWithDefaults_BackoffMaxNotBelowBase(t *testing.T) {
	got := Options{BackoffBase: 5 * time.Second, BackoffMax: time.Second}.withDefaults()
	if got.BackoffMax != 5*time.Second {
		t.Fatalf("BackoffMax = %v, want 5s", got.BackoffMax)
	}
}
