package span

import (
	"sort"
	"strings"
)

// Span is one labeled entity returned by an external recognizer.
// Offset and Length are only meaningful for conversational input; a negative
// Offset means the position is unknown. Confidence is only meaningful for
// document extraction.
type Span struct {
	Category   string
	Text       string
	Offset     int
	Length     int
	Confidence float64
}

// End returns the position right after the span.
func (s Span) End() int { return s.Offset + s.Length }

// Located reports whether the span carries a usable position.
func (s Span) Located() bool { return s.Offset >= 0 }

// ConsolidateFunc merges fragmented spans of the categories selected by match.
//
// Selected spans are ordered by offset (stable) and every run where
// prev.Offset+prev.Length == next.Offset becomes one span with concatenated
// text; gaps and overlaps start a new group. Merged text gets its decimal
// comma replaced by a period. Spans without a position are never merged.
// Unselected spans are returned first in their original order, followed by
// the consolidated group.
func ConsolidateFunc(spans []Span, match func(category string) bool) []Span {
	out := make([]Span, 0, len(spans))
	var group []Span
	for _, s := range spans {
		if match(s.Category) {
			group = append(group, s)
			continue
		}
		out = append(out, s)
	}
	if len(group) == 0 {
		return out
	}

	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Offset < group[j].Offset
	})

	cur := group[0]
	for _, next := range group[1:] {
		if cur.Located() && next.Located() && cur.End() == next.Offset {
			cur.Text += next.Text
			cur.Length += next.Length
			cur.Confidence = min(cur.Confidence, next.Confidence)
			continue
		}
		out = append(out, closeGroup(cur))
		cur = next
	}
	return append(out, closeGroup(cur))
}

func closeGroup(s Span) Span {
	s.Text = strings.ReplaceAll(s.Text, ",", ".")
	return s
}

// FilterConfidence drops spans whose confidence is below threshold.
// A threshold <= 0 keeps everything.
func FilterConfidence(spans []Span, threshold float64) []Span {
	if threshold <= 0 {
		return spans
	}
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Confidence >= threshold {
			out = append(out, s)
		}
	}
	return out
}
