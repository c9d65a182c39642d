package main

import (
	"fmt"
	"testing"

	"oficri/mesapartes/internal/infrastructure/config"
)

// The CLI must point at the server's default port out of the box.
func TestDefaultBaseURLMatchesServerPort(t *testing.T) {
	t.Setenv("JWT_SECRET", "clave-de-prueba-para-tests")
	t.Setenv("APP_PORT", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := fmt.Sprintf("http://localhost:%d", cfg.HTTP.Port)
	if defaultBaseURL != want {
		t.Errorf("defaultBaseURL = %q, server default is %q", defaultBaseURL, want)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("OFICRI_URL", "http://api.example.com")
	if got := envOr("OFICRI_URL", defaultBaseURL); got != "http://api.example.com" {
		t.Errorf("envOr = %q", got)
	}

	if got := envOr("OFICRI_URL_UNSET", defaultBaseURL); got != defaultBaseURL {
		t.Errorf("envOr fallback = %q", got)
	}
}
