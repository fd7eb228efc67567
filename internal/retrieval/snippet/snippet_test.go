package snippet

import (
	"strings"
	"testing"
)

func TestGenerateHighlightsQueryTermsOnly(t *testing.T) {
	got := Generate("Aquinas wrote on natural law in the Summa.", []string{"natural", "law"})
	if !strings.Contains(got, "<mark>natural</mark>") {
		t.Errorf("expected <mark>natural</mark> in %q", got)
	}
	if !strings.Contains(got, "<mark>law</mark>") {
		t.Errorf("expected <mark>law</mark> in %q", got)
	}
	if strings.Count(got, "<mark>") != 2 {
		t.Errorf("expected exactly 2 <mark> tags in %q, got %d", got, strings.Count(got, "<mark>"))
	}
}

func TestGenerateHighlightIsCaseInsensitive(t *testing.T) {
	got := Generate("NATURAL LAW is a recurring theme.", []string{"natural", "law"})
	if !strings.Contains(strings.ToLower(got), "<mark>natural</mark>") {
		t.Errorf("expected case-insensitive highlight, got %q", got)
	}
}

func TestGenerateNoOccurrencesReturnsPrefix(t *testing.T) {
	text := strings.Repeat("filler ", 60) + "end"
	got := Generate(text, []string{"nonexistentterm"})
	if strings.Contains(got, "<mark>") {
		t.Errorf("did not expect any <mark> tags, got %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncation ellipsis, got %q", got)
	}
}

func TestGenerateShortTextReturnedWhole(t *testing.T) {
	got := Generate("short text", []string{"nope"})
	if got != "short text" {
		t.Errorf("Generate = %q, want unchanged short text", got)
	}
}

func TestGenerateEmptyQueryTermsFallsBackToPrefix(t *testing.T) {
	got := Generate("some document body", nil)
	if got != "some document body" {
		t.Errorf("Generate with no terms = %q", got)
	}
}

// TestGeneratePrefersDenserWindow is the snippet coverage monotonicity
// property: a window containing both distinct query terms should be chosen
// over a window containing only one, when both exist in the document.
func TestGeneratePrefersDenserWindow(t *testing.T) {
	filler := strings.Repeat("x ", 200)
	text := "natural " + filler + "law and natural law together here"
	got := Generate(text, []string{"natural", "law"})
	if !strings.Contains(got, "<mark>natural</mark>") || !strings.Contains(got, "<mark>law</mark>") {
		t.Errorf("expected window covering both distinct terms, got %q", got)
	}
}

func TestGenerateEllipsisOmittedAtBoundaries(t *testing.T) {
	text := "natural law tradition is short"
	got := Generate(text, []string{"natural"})
	if strings.HasPrefix(got, "...") {
		t.Errorf("did not expect leading ellipsis when window starts at 0, got %q", got)
	}
	if strings.HasSuffix(got, "...") {
		t.Errorf("did not expect trailing ellipsis when window reaches document end, got %q", got)
	}
}
