package parser

import (
	"reflect"
	"testing"
)

func TestParseEmptyQuery(t *testing.T) {
	pq := Parse("   ")
	if !pq.IsEmpty() {
		t.Fatalf("expected empty ParsedQuery for blank input, got %+v", pq)
	}
}

func TestParseRequiredTerms(t *testing.T) {
	pq := Parse("natural law")
	if !reflect.DeepEqual(pq.RequiredTerms, []string{"natur", "law"}) {
		t.Fatalf("RequiredTerms = %v, want [natur law]", pq.RequiredTerms)
	}
	if len(pq.OptionalTerms) != 0 || len(pq.Phrases) != 0 {
		t.Fatalf("unexpected optional/phrase terms: %+v", pq)
	}
}

func TestParseANDIsSkipped(t *testing.T) {
	pq := Parse("natural AND law")
	if !reflect.DeepEqual(pq.RequiredTerms, []string{"natur", "law"}) {
		t.Fatalf("RequiredTerms = %v, want [natur law]", pq.RequiredTerms)
	}
}

func TestParseORRoutesNextTermToOptional(t *testing.T) {
	pq := Parse("natural OR divine law")
	if !reflect.DeepEqual(pq.RequiredTerms, []string{"natur", "law"}) {
		t.Fatalf("RequiredTerms = %v, want [natur law]", pq.RequiredTerms)
	}
	if !reflect.DeepEqual(pq.OptionalTerms, []string{"divin"}) {
		t.Fatalf("OptionalTerms = %v, want [divin]", pq.OptionalTerms)
	}
}

func TestParsePhraseExtraction(t *testing.T) {
	pq := Parse(`"natural law" tradition`)
	if len(pq.Phrases) != 1 {
		t.Fatalf("Phrases = %v, want exactly one phrase", pq.Phrases)
	}
	if !reflect.DeepEqual(pq.Phrases[0], []string{"natur", "law"}) {
		t.Fatalf("Phrases[0] = %v, want [natur law]", pq.Phrases[0])
	}
	if !reflect.DeepEqual(pq.RequiredTerms, []string{"tradit"}) {
		t.Fatalf("RequiredTerms = %v, want [tradit]", pq.RequiredTerms)
	}
}

func TestAllTermsUnionsAllThreeGroupsWithDuplicates(t *testing.T) {
	pq := Parse(`natural OR law "natural law"`)
	all := pq.AllTerms()
	count := 0
	for _, term := range all {
		if term == "natur" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 'natur' to appear twice (optional + phrase), got %d in %v", count, all)
	}
}
