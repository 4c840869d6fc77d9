package predicate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
)

func hpFifteen() field.Set {
	s := field.NewSet()
	s.Put(field.ScreenInches, field.String("15.6"))
	s.Put(field.Brand, field.String("HP"))
	s.Put(field.Model, field.String("Pavilion"))
	return s
}

func TestBuild_FixedOrder(t *testing.T) {
	p := Build(hpFifteen(), DefaultSelectable)
	cs := p.Constraints()
	if len(cs) != 2 {
		t.Fatalf("expected 2 constraints, got %d", len(cs))
	}
	if cs[0].Field() != field.Brand || cs[0].Value().String() != "HP" {
		t.Errorf("constraint 0 = %s %q", cs[0].Field(), cs[0].Value().String())
	}
	if cs[1].Field() != field.ScreenInches || cs[1].Value().String() != "15.6" {
		t.Errorf("constraint 1 = %s %q", cs[1].Field(), cs[1].Value().String())
	}
	for _, c := range cs {
		if c.Operator() != Eq {
			t.Errorf("operator = %q", c.Operator())
		}
	}
}

func TestBuild_SelectableOrderIrrelevant(t *testing.T) {
	a := Build(hpFifteen(), []field.Name{field.Brand, field.ScreenInches})
	b := Build(hpFifteen(), []field.Name{field.ScreenInches, field.Brand})
	if !reflect.DeepEqual(a, b) {
		t.Errorf("predicates differ:\n%v\n%v", a, b)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	first := Build(hpFifteen(), DefaultSelectable)
	for i := 0; i < 20; i++ {
		if got := Build(hpFifteen(), DefaultSelectable); !reflect.DeepEqual(first, got) {
			t.Fatalf("run %d differs: %v vs %v", i, first, got)
		}
	}
}

func TestBuild_ParamsMatchConstraints(t *testing.T) {
	p := Build(hpFifteen(), DefaultSelectable)
	params := p.Params()
	cs := p.Constraints()
	if len(params) != len(cs) {
		t.Fatalf("params %d, constraints %d", len(params), len(cs))
	}
	for i := range cs {
		if params[i] != cs[i].Param() {
			t.Errorf("param %d = %+v, constraint binds %+v", i, params[i], cs[i].Param())
		}
		if params[i].Name != ParamName(i) {
			t.Errorf("param %d name = %q", i, params[i].Name)
		}
	}
}

func TestBuild_EmptySet(t *testing.T) {
	p := Build(field.NewSet(), DefaultSelectable)
	if !p.IsEmpty() || p.Len() != 0 {
		t.Errorf("expected empty predicate, got %v", p)
	}
	if len(p.Params()) != 0 {
		t.Error("empty predicate must have no params")
	}
	if p.String() != "*" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestBuild_NonSelectableIgnored(t *testing.T) {
	s := field.NewSet()
	s.Put(field.Model, field.String("Pavilion"))
	s.Put(field.Price, field.Int(899))
	if p := Build(s, DefaultSelectable); !p.IsEmpty() {
		t.Errorf("non-selectable fields produced constraints: %v", p)
	}
}

func TestBuild_SparseNumbering(t *testing.T) {
	s := field.NewSet()
	s.Put(field.ScreenInches, field.String("14"))
	p := Build(s, DefaultSelectable)
	if p.Len() != 1 {
		t.Fatalf("Len() = %d", p.Len())
	}
	if name := p.Params()[0].Name; name != "p0" {
		t.Errorf("param name = %q, want p0", name)
	}
}

func TestBuild_IntegerField(t *testing.T) {
	s := field.NewSet()
	s.Put(field.Price, field.Int(2206))
	p := Build(s, []field.Name{field.Price})
	n, ok := p.Constraints()[0].Value().Int()
	if !ok || n != 2206 {
		t.Errorf("value = (%d, %v)", n, ok)
	}
}

func TestPredicate_String(t *testing.T) {
	got := Build(hpFifteen(), DefaultSelectable).String()
	want := "Brand = @p0 AND ScreenInches = @p1"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestConstraints_ReturnsCopy(t *testing.T) {
	p := Build(hpFifteen(), DefaultSelectable)
	cs := p.Constraints()
	cs[0] = Constraint{}
	if p.Constraints()[0].Field() != field.Brand {
		t.Error("Constraints() exposes internal slice")
	}
}

func TestParseSelection(t *testing.T) {
	got, err := ParseSelection(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, DefaultSelectable) {
		t.Errorf("default = %v", got)
	}

	got, err = ParseSelection([]string{"brand", "Price", "BRAND"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []field.Name{field.Brand, field.Price}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	_, err = ParseSelection([]string{"colour"})
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Errorf("expected unknown field error, got %v", err)
	}
}
