// Package normalize turns raw recognizer text into canonical catalog values.
//
// Every rule is a pure total function: malformed input yields an absent value,
// never an error.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
	"github.com/kailas-cloud/specdex/internal/domain/span"
)

// Category is the closed set of entity categories the recognizers emit.
type Category int

// Entity categories.
const (
	Unknown Category = iota
	Brand
	Model
	Processor
	RAM
	Storage
	GraphicsCard
	ScreenInches
	Price
	ProcessorFrequency
)

var categoryFields = map[Category]field.Name{
	Brand:              field.Brand,
	Model:              field.Model,
	Processor:          field.Processor,
	RAM:                field.RAM,
	Storage:            field.Storage,
	GraphicsCard:       field.GraphicsCard,
	ScreenInches:       field.ScreenInches,
	Price:              field.Price,
	ProcessorFrequency: field.ProcessorFrequency,
}

// labels maps lower-cased extractor labels (Spanish models and English aliases).
var labels = map[string]Category{
	"marca":                 Brand,
	"brand":                 Brand,
	"modelo":                Model,
	"model":                 Model,
	"procesador":            Processor,
	"processor":             Processor,
	"cpu":                   Processor,
	"ram":                   RAM,
	"memoria ram":           RAM,
	"almacenamiento":        Storage,
	"storage":               Storage,
	"tarjeta gráfica":       GraphicsCard,
	"tarjeta grafica":       GraphicsCard,
	"graphics card":         GraphicsCard,
	"gpu":                   GraphicsCard,
	"pulgadas":              ScreenInches,
	"inches":                ScreenInches,
	"screen inches":         ScreenInches,
	"precio":                Price,
	"price":                 Price,
	"frecuencia procesador": ProcessorFrequency,
	"frecuencia":            ProcessorFrequency,
	"frequency":             ProcessorFrequency,
	"processor frequency":   ProcessorFrequency,
}

func init() {
	for c, n := range categoryFields {
		labels[strings.ToLower(string(n))] = c
	}
}

// ParseCategory maps an extractor label to a Category. Matching ignores case,
// surrounding whitespace, underscores and repeated inner spaces.
func ParseCategory(label string) Category {
	key := strings.ToLower(strings.ReplaceAll(label, "_", " "))
	key = strings.Join(strings.Fields(key), " ")
	if c, ok := labels[key]; ok {
		return c
	}
	return Unknown
}

// Field returns the catalog field fed by this category.
func (c Category) Field() (field.Name, bool) {
	n, ok := categoryFields[c]
	return n, ok
}

// String returns the canonical field name, or "unknown".
func (c Category) String() string {
	if n, ok := categoryFields[c]; ok {
		return string(n)
	}
	return "unknown"
}

// Rule parses the raw text of one category. Callers guarantee raw is not blank.
type Rule func(raw string) field.Value

var rules = map[Category]Rule{
	Brand:              brand,
	Model:              trimmed,
	Processor:          processor,
	RAM:                trimmed,
	Storage:            storage,
	GraphicsCard:       trimmed, // alias of the model text, see Fields
	ScreenInches:       screenInches,
	Price:              price,
	ProcessorFrequency: frequency,
}

// Normalize maps raw text of a category to its canonical value.
// Blank text is absent; an unknown category keeps the trimmed text.
func Normalize(c Category, raw string) field.Value {
	if strings.TrimSpace(raw) == "" {
		return field.Absent()
	}
	if r, ok := rules[c]; ok {
		return r(raw)
	}
	return trimmed(raw)
}

func trimmed(raw string) field.Value {
	return field.String(strings.TrimSpace(raw))
}

// brand is uppercased unconditionally.
func brand(raw string) field.Value {
	return field.String(strings.ToUpper(strings.TrimSpace(raw)))
}

// processor drops hyphenated variant suffixes: "Intel Core i7-1255U" -> "Intel Core i7".
func processor(raw string) field.Value {
	raw = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(raw)
	tokens := strings.Fields(raw)
	out := tokens[:0]
	for _, tok := range tokens {
		if i := strings.IndexByte(tok, '-'); i >= 0 {
			tok = tok[:i]
		}
		if tok != "" {
			out = append(out, tok)
		}
	}
	return field.String(strings.Join(out, " "))
}

// storage strips the literal "GB" unit.
func storage(raw string) field.Value {
	return field.String(strings.TrimSpace(strings.ReplaceAll(raw, "GB", "")))
}

// screenInches keeps digits and the decimal separator: `15,6"` -> "15.6".
func screenInches(raw string) field.Value {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',' || r == '.':
			b.WriteByte('.')
		}
	}
	return field.String(strings.Trim(b.String(), "."))
}

var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// price parses European formatted amounts: "2.205,78 €" -> 2206.
func price(raw string) field.Value {
	s := strings.Map(func(r rune) rune {
		if r == '€' || unicode.IsSpace(r) || r == '.' {
			return -1
		}
		if r == ',' {
			return '.'
		}
		return r
	}, raw)
	if !decimalRe.MatchString(s) {
		return field.Absent()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return field.Absent()
	}
	rounded := math.Round(f)
	// float64(math.MaxInt64) is 2^63, which does not fit in an int64.
	if rounded >= math.MaxInt64 || rounded < math.MinInt64 {
		return field.Absent()
	}
	return field.Int(int64(rounded))
}

var ghzRe = regexp.MustCompile(`(?i)ghz`)

// frequency strips the GHz unit in any case.
func frequency(raw string) field.Value {
	return field.String(strings.TrimSpace(ghzRe.ReplaceAllString(raw, "")))
}

// Fields normalizes a span list into the canonical field set.
//
// The first present value per field wins. Spans of unknown categories are
// returned as extra attributes keyed by their trimmed label. GraphicsCard is
// not extracted on its own yet: unless an explicit graphics card span exists
// it mirrors the raw model text.
func Fields(spans []span.Span) (field.Set, map[string]string) {
	set := field.NewSet()
	var extras map[string]string
	var modelRaw string

	for _, s := range spans {
		c := ParseCategory(s.Category)
		v := Normalize(c, s.Text)
		if !v.IsPresent() {
			continue
		}
		name, ok := c.Field()
		if !ok {
			label := strings.TrimSpace(s.Category)
			if label == "" {
				continue
			}
			if extras == nil {
				extras = make(map[string]string)
			}
			if _, seen := extras[label]; !seen {
				extras[label] = v.String()
			}
			continue
		}
		if c == Model && modelRaw == "" {
			modelRaw = s.Text
		}
		if !set.Get(name).IsPresent() {
			set.Put(name, v)
		}
	}

	if !set.Get(field.GraphicsCard).IsPresent() {
		set.Put(field.GraphicsCard, Normalize(GraphicsCard, modelRaw))
	}
	return set, extras
}

// ConsolidateCategory merges fragmented spans whose label parses to c.
func ConsolidateCategory(spans []span.Span, c Category) []span.Span {
	return span.ConsolidateFunc(spans, func(label string) bool {
		return ParseCategory(label) == c
	})
}
