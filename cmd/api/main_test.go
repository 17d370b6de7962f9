package main

import (
	"strings"
	"testing"
)

func TestRunReturnsBootstrapError(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DATABASE_URL", "")

	err := run()
	if err == nil {
		t.Fatalf("expected bootstrap error without a signing secret")
	}
	if !strings.Contains(err.Error(), "bootstrap") {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
}
