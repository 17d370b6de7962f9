package util

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName("  resumes/2026\\jane-doe.pdf ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "resumes_2026_jane-doe.pdf" {
		t.Fatalf("expected resumes_2026_jane-doe.pdf, got %q", got)
	}

	got, err = SanitizeFileName("jane\x00doe\n.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "janedoe.docx" {
		t.Fatalf("expected control characters dropped, got %q", got)
	}

	for _, bad := range []string{"", "   ", "../etc/passwd", "\x00\x01", strings.Repeat("a", 256) + ".pdf"} {
		if _, err := SanitizeFileName(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
