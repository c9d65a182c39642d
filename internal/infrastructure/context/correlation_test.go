package context

import (
	"context"
	"testing"
)

func TestCorrelationIDRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"normal id", "req-abc-123"},
		{"empty id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithCorrelationID(context.Background(), tt.id)
			if got := GetCorrelationID(ctx); got != tt.id {
				t.Errorf("GetCorrelationID = %q, want %q", got, tt.id)
			}
		})
	}
}

func TestGetCorrelationID_Missing(t *testing.T) {
	if got := GetCorrelationID(context.Background()); got != "" {
		t.Errorf("expected empty string on bare context, got %q", got)
	}
}
