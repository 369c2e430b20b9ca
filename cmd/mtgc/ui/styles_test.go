package ui

import (
	"strings"
	"testing"
)

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("MTGC_DARK_MODE", "1")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme when MTGC_DARK_MODE=1")
	}

	t.Setenv("MTGC_DARK_MODE", "")
	if DetectTheme().IsDark {
		t.Fatalf("expected light theme when MTGC_DARK_MODE is unset")
	}

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme for a black background")
	}

	t.Setenv("COLORFGBG", "0;15")
	if DetectTheme().IsDark {
		t.Fatalf("expected light theme for a white background")
	}
}

func TestStylesKeepText(t *testing.T) {
	s := NewStyles(LightTheme())
	for _, out := range []string{
		s.Success.Render("done"),
		s.Warning.Render("done"),
		s.Path.Render("done"),
	} {
		if !strings.Contains(out, "done") {
			t.Fatalf("styled output lost its text: %q", out)
		}
	}
}
