package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/odegen/internal/model"
)

func vectorModel() *model.Model {
	return &model.Model{
		Name: "net",
		State: []model.StateVar{
			{Name: "v", Equation: "-v + inp", IC: "[1 2 3]"},
			{Name: "w", Equation: "v - w", IC: "0.5"},
		},
		Fixed: []model.Assignment{{Name: "inp", Expr: "0.1"}},
	}
}

func TestFunctionBuilder_Scalar(t *testing.T) {
	m := &model.Model{
		Name:  "decay",
		State: []model.StateVar{{Name: "x", Equation: "-x", IC: "1"}},
	}
	fn, err := FunctionBuilder{}.Build(m)
	if err != nil {
		t.Fatal(err)
	}
	if fn.RHS != "[-X(1)]" {
		t.Errorf("rhs = %q, want [-X(1)]", fn.RHS)
	}
	if len(fn.IC) != 1 || fn.IC[0] != 1 {
		t.Errorf("ic = %v, want [1]", fn.IC)
	}
	if len(fn.ElementNames) != 1 || fn.ElementNames[0] != "x" {
		t.Errorf("element names = %v, want [x]", fn.ElementNames)
	}
}

func TestFunctionBuilder_VectorOrdering(t *testing.T) {
	fn, err := FunctionBuilder{}.Build(vectorModel())
	if err != nil {
		t.Fatal(err)
	}

	// len(elementNames) == sum of per-variable IC lengths.
	if len(fn.ElementNames) != 4 || len(fn.IC) != 4 {
		t.Fatalf("expected 4 elements, got names=%d ic=%d", len(fn.ElementNames), len(fn.IC))
	}
	want := []string{"v_1", "v_2", "v_3", "w"}
	for i, name := range want {
		if fn.ElementNames[i] != name {
			t.Errorf("element %d = %q, want %q", i, fn.ElementNames[i], name)
		}
	}
	wantIC := []float64{1, 2, 3, 0.5}
	for i, v := range wantIC {
		if fn.IC[i] != v {
			t.Errorf("ic %d = %v, want %v", i, fn.IC[i], v)
		}
	}

	// State references rewritten to contiguous slices in declaration
	// order, fixed variables inlined for scope isolation.
	if !strings.Contains(fn.RHS, "-X(1:3) + (0.1)") {
		t.Errorf("rhs missing vector slice rewrite: %q", fn.RHS)
	}
	if !strings.Contains(fn.RHS, "X(1:3) - X(4)") {
		t.Errorf("rhs missing scalar slot rewrite: %q", fn.RHS)
	}
}

func TestFunctionBuilder_ChainedFixedInlining(t *testing.T) {
	m := &model.Model{
		State: []model.StateVar{{Name: "x", Equation: "-x + f2", IC: "0"}},
		Fixed: []model.Assignment{
			{Name: "f1", Expr: "0.25"},
			{Name: "f2", Expr: "f1*2"},
		},
	}
	fn, err := FunctionBuilder{}.Build(m)
	if err != nil {
		t.Fatal(err)
	}
	if fn.RHS != "[-X(1) + ((0.25)*2)]" {
		t.Errorf("rhs = %q", fn.RHS)
	}
}

func TestFunctionBuilder_Deterministic(t *testing.T) {
	// The slot rewrite walks state variables in declaration order, so
	// repeated builds of the same model yield the same expression text.
	first, err := FunctionBuilder{}.Build(vectorModel())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		fn, err := FunctionBuilder{}.Build(vectorModel())
		if err != nil {
			t.Fatal(err)
		}
		if fn.RHS != first.RHS {
			t.Fatalf("build %d produced %q, first produced %q", i, fn.RHS, first.RHS)
		}
	}
}

func TestFunctionBuilder_BadIC(t *testing.T) {
	m := &model.Model{
		State: []model.StateVar{{Name: "x", Equation: "-x", IC: "nope"}},
	}
	if _, err := (FunctionBuilder{}).Build(m); err == nil {
		t.Fatal("expected error for unevaluable ic")
	}
}

func TestElementMapping(t *testing.T) {
	em, err := NewElementMapping(vectorModel())
	if err != nil {
		t.Fatal(err)
	}
	if len(em) != 2 || em[0] != (Element{"v", 3}) || em[1] != (Element{"w", 1}) {
		t.Errorf("unexpected mapping %v", em)
	}
	if em.Total() != 4 {
		t.Errorf("total = %d, want 4", em.Total())
	}
}

func TestCrossValidate(t *testing.T) {
	em := ElementMapping{{"v", 2}, {"w", 1}}

	if err := em.CrossValidate([]string{"v_1", "v_2", "w"}); err != nil {
		t.Errorf("valid names rejected: %v", err)
	}

	tests := []struct {
		name  string
		names []string
	}{
		{"too short", []string{"v_1", "v_2"}},
		{"too long", []string{"v_1", "v_2", "w", "z"}},
		{"wrong name", []string{"v_1", "v_2", "z"}},
		{"swapped block", []string{"w", "v_1", "v_2"}},
	}
	for _, tt := range tests {
		err := em.CrossValidate(tt.names)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, ErrElementMapping) {
			t.Errorf("%s: error %v is not ErrElementMapping", tt.name, err)
		}
	}
}

func TestElementName(t *testing.T) {
	if got := ElementName("x", 0, 1); got != "x" {
		t.Errorf("scalar element name = %q", got)
	}
	if got := ElementName("v", 2, 3); got != "v_3" {
		t.Errorf("vector element name = %q", got)
	}
}
