package envutil

import (
	"testing"
	"time"
)

func TestInt(t *testing.T) {
	t.Setenv("ENVUTIL_INT", " 7 ")
	if got := Int("ENVUTIL_INT", 3); got != 7 {
		t.Fatalf("Int: got=%d want=7", got)
	}
	t.Setenv("ENVUTIL_INT", "seven")
	if got := Int("ENVUTIL_INT", 3); got != 3 {
		t.Fatalf("Int fallback: got=%d want=3", got)
	}
}

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"750ms", 750 * time.Millisecond},
		{"2s", 2 * time.Second},
		{"30", 30 * time.Second},
		{"soon", 5 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_DURATION", tc.raw)
		if got := Duration("ENVUTIL_DURATION", 5*time.Second); got != tc.want {
			t.Fatalf("Duration(%q): got=%s want=%s", tc.raw, got, tc.want)
		}
	}
}

func TestBoolAndString(t *testing.T) {
	t.Setenv("ENVUTIL_BOOL", "off")
	if Bool("ENVUTIL_BOOL", true) {
		t.Fatalf("Bool: expected false for off")
	}
	t.Setenv("ENVUTIL_BOOL", "maybe")
	if !Bool("ENVUTIL_BOOL", true) {
		t.Fatalf("Bool: expected default for unparseable value")
	}
	t.Setenv("ENVUTIL_STRING", "  ")
	if got := String("ENVUTIL_STRING", "def"); got != "def" {
		t.Fatalf("String: got=%q want=def", got)
	}
}
