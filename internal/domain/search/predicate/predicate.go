package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
)

// Operator is a comparison operator of a constraint.
type Operator string

// Eq is the only operator the catalog query path emits.
const Eq Operator = "="

// DefaultSelectable lists the fields that constrain catalog queries.
// Everything else is display-only.
var DefaultSelectable = []field.Name{field.Brand, field.ScreenInches}

// Param is one positional query parameter.
type Param struct {
	Name  string
	Value field.Value
}

// Constraint is a single (field, operator, value) clause bound to the
// parameter of the same index.
type Constraint struct {
	field field.Name
	op    Operator
	param Param
}

// Field returns the constrained field.
func (c Constraint) Field() field.Name { return c.field }

// Operator returns the comparison operator.
func (c Constraint) Operator() Operator { return c.op }

// Param returns the bound parameter.
func (c Constraint) Param() Param { return c.param }

// Value returns the bound value.
func (c Constraint) Value() field.Value { return c.param.Value }

// Predicate is a conjunction of constraints. The parameter list is derived
// from the constraints so both share one order.
type Predicate struct {
	constraints []Constraint
}

// Constraints returns a copy of the constraints in binding order.
func (p Predicate) Constraints() []Constraint {
	out := make([]Constraint, len(p.constraints))
	copy(out, p.constraints)
	return out
}

// Params returns the positional parameters; Params()[i] binds Constraints()[i].
func (p Predicate) Params() []Param {
	out := make([]Param, len(p.constraints))
	for i, c := range p.constraints {
		out[i] = c.param
	}
	return out
}

// Len returns the number of constraints.
func (p Predicate) Len() int { return len(p.constraints) }

// IsEmpty reports whether the predicate is unconstrained (fetch all).
func (p Predicate) IsEmpty() bool { return len(p.constraints) == 0 }

// String renders the predicate for logs, e.g.
// `Brand = @p0 AND ScreenInches = @p1`. Empty renders as "*".
func (p Predicate) String() string {
	if p.IsEmpty() {
		return "*"
	}
	parts := make([]string, len(p.constraints))
	for i, c := range p.constraints {
		parts[i] = fmt.Sprintf("%s %s @%s", c.field, c.op, c.param.Name)
	}
	return strings.Join(parts, " AND ")
}

// ParamName returns the placeholder name of position i.
func ParamName(i int) string { return "p" + strconv.Itoa(i) }

// Build turns the present selectable fields into equality constraints.
// Order follows field.All(), never the order of selectable or of the set.
// It never fails: no present selectable field yields the empty predicate.
func Build(fields field.Set, selectable []field.Name) Predicate {
	allowed := make(map[field.Name]struct{}, len(selectable))
	for _, n := range selectable {
		allowed[n] = struct{}{}
	}

	var cs []Constraint
	for _, n := range field.All() {
		if _, ok := allowed[n]; !ok {
			continue
		}
		v := fields.Get(n)
		if !v.IsPresent() {
			continue
		}
		cs = append(cs, Constraint{
			field: n,
			op:    Eq,
			param: Param{Name: ParamName(len(cs)), Value: v},
		})
	}
	return Predicate{constraints: cs}
}

// ParseSelection resolves configured field names into a selectable list.
// Empty input selects DefaultSelectable.
func ParseSelection(names []string) ([]field.Name, error) {
	if len(names) == 0 {
		out := make([]field.Name, len(DefaultSelectable))
		copy(out, DefaultSelectable)
		return out, nil
	}
	out := make([]field.Name, 0, len(names))
	seen := make(map[field.Name]struct{}, len(names))
	for _, s := range names {
		n, ok := field.Parse(s)
		if !ok {
			return nil, fmt.Errorf("unknown selectable field %q", s)
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}
