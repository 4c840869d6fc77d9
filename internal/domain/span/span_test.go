package span

import (
	"strings"
	"testing"
)

func consolidateInches(spans []Span) []Span {
	return ConsolidateFunc(spans, func(category string) bool {
		return strings.EqualFold(category, "inches")
	})
}

func inches(offset, length int, text string) Span {
	return Span{Category: "inches", Text: text, Offset: offset, Length: length, Confidence: 1}
}

func TestConsolidateFunc_MergesAdjacent(t *testing.T) {
	got := consolidateInches([]Span{inches(0, 2, "15"), inches(2, 2, ",6")})
	if len(got) != 1 {
		t.Fatalf("expected 1 span, got %d: %+v", len(got), got)
	}
	if got[0].Text != "15.6" {
		t.Errorf("Text = %q, want 15.6", got[0].Text)
	}
	if got[0].Offset != 0 || got[0].Length != 4 {
		t.Errorf("Offset/Length = %d/%d, want 0/4", got[0].Offset, got[0].Length)
	}
}

func TestConsolidateFunc_GapNotMerged(t *testing.T) {
	got := consolidateInches([]Span{inches(0, 2, "15"), inches(5, 2, "17")})
	if len(got) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(got))
	}
	if got[0].Text != "15" || got[1].Text != "17" {
		t.Errorf("texts = %q, %q", got[0].Text, got[1].Text)
	}
}

func TestConsolidateFunc_OverlapNotMerged(t *testing.T) {
	got := consolidateInches([]Span{inches(0, 3, "15,"), inches(2, 2, ",6")})
	if len(got) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(got))
	}
}

func TestConsolidateFunc_SortsByOffset(t *testing.T) {
	got := consolidateInches([]Span{inches(2, 2, ",6"), inches(0, 2, "15")})
	if len(got) != 1 || got[0].Text != "15.6" {
		t.Fatalf("got %+v", got)
	}
}

func TestConsolidateFunc_RunOfThree(t *testing.T) {
	got := consolidateInches([]Span{inches(10, 2, "15"), inches(12, 1, ","), inches(13, 1, "6")})
	if len(got) != 1 {
		t.Fatalf("expected 1 span, got %+v", got)
	}
	if got[0].Text != "15.6" || got[0].Offset != 10 || got[0].Length != 4 {
		t.Errorf("got %+v", got[0])
	}
}

func TestConsolidateFunc_SingleSpanNormalized(t *testing.T) {
	got := consolidateInches([]Span{inches(4, 4, "13,3")})
	if len(got) != 1 || got[0].Text != "13.3" {
		t.Fatalf("got %+v", got)
	}
}

func TestConsolidateFunc_EmptyCategory(t *testing.T) {
	spans := []Span{{Category: "brand", Text: "HP", Offset: 0, Length: 2}}
	got := consolidateInches(spans)
	if len(got) != 1 || got[0].Text != "HP" {
		t.Fatalf("got %+v", got)
	}
}

func TestConsolidateFunc_EmptyInput(t *testing.T) {
	if got := consolidateInches(nil); len(got) != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestConsolidateFunc_OtherCategoriesUntouched(t *testing.T) {
	spans := []Span{
		{Category: "brand", Text: "HP", Offset: 0, Length: 2},
		inches(10, 2, "15"),
		{Category: "price", Text: "1.299,00 €", Offset: 3, Length: 10},
		inches(12, 2, ",6"),
	}
	got := consolidateInches(spans)
	if len(got) != 3 {
		t.Fatalf("expected 3 spans, got %+v", got)
	}
	if got[0].Category != "brand" || got[1].Category != "price" {
		t.Errorf("other categories reordered: %+v", got)
	}
	if got[1].Text != "1.299,00 €" {
		t.Errorf("price text mutated: %q", got[1].Text)
	}
	if got[2].Text != "15.6" {
		t.Errorf("merged text = %q", got[2].Text)
	}
}

func TestConsolidateFunc_UnlocatedNeverMerged(t *testing.T) {
	spans := []Span{inches(-1, 0, "15"), inches(-1, 0, "6")}
	got := consolidateInches(spans)
	if len(got) != 2 {
		t.Fatalf("unlocated spans merged: %+v", got)
	}
}

func TestConsolidateFunc_MergedConfidenceIsMinimum(t *testing.T) {
	a := inches(0, 2, "15")
	a.Confidence = 0.9
	b := inches(2, 2, ",6")
	b.Confidence = 0.4
	got := consolidateInches([]Span{a, b})
	if got[0].Confidence != 0.4 {
		t.Errorf("Confidence = %v, want 0.4", got[0].Confidence)
	}
}

func TestConsolidateFunc_DoesNotMutateInput(t *testing.T) {
	in := []Span{inches(0, 2, "15"), inches(2, 2, ",6")}
	consolidateInches(in)
	if in[0].Text != "15" || in[1].Text != ",6" {
		t.Errorf("input mutated: %+v", in)
	}
}

func TestFilterConfidence(t *testing.T) {
	spans := []Span{
		{Category: "a", Confidence: 0.2},
		{Category: "b", Confidence: 0.5},
		{Category: "c", Confidence: 0.9},
	}
	got := FilterConfidence(spans, 0.5)
	if len(got) != 2 || got[0].Category != "b" || got[1].Category != "c" {
		t.Errorf("got %+v", got)
	}
	if len(FilterConfidence(spans, 0)) != 3 {
		t.Error("zero threshold should keep all spans")
	}
}
