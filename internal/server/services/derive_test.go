package services

import (
	"strings"
	"testing"
)

func TestWidgetImageURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain jpg", "https://media.test/photo.jpg", "https://media.test/photo_300x300.jpg"},
		{"nested path", "https://media.test/2026/05/01/x.png", "https://media.test/2026/05/01/x_300x300.png"},
		{"no extension", "https://media.test/photo", "https://media.test/photo_300x300"},
		{"dot in path only", "https://media.test/v1.2/photo", "https://media.test/v1.2/photo_300x300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WidgetImageURL(tt.in); got != tt.want {
				t.Fatalf("WidgetImageURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("  hello there  "); got != "hello there" {
		t.Fatalf("Preview trims: got %q", got)
	}

	// multi-byte runes make sure the cap counts runes, not bytes
	long := strings.Repeat("mañana ", 30)
	got := Preview(long)
	if len([]rune(got)) != previewMaxRunes {
		t.Fatalf("capped preview has %d runes, want %d", len([]rune(got)), previewMaxRunes)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("capped preview missing ellipsis: %q", got)
	}

	if got := Preview(""); got != "" {
		t.Fatalf("empty transcription: got %q", got)
	}
}
