package codegen

import (
	"fmt"

	"github.com/san-kum/odegen/internal/model"
)

// Element records one state variable's contiguous block in the flattened
// state vector.
type Element struct {
	Variable string
	Count    int
}

// ElementMapping lists (variable, elementCount) pairs in declaration order.
// It is computed once from initial-condition lengths and cross-validated
// against the independently supplied element-name list rather than trusted
// to agree structurally.
type ElementMapping []Element

// NewElementMapping evaluates each state variable's initial condition and
// records its element count.
func NewElementMapping(m *model.Model) (ElementMapping, error) {
	em := make(ElementMapping, 0, len(m.State))
	for _, sv := range m.State {
		ic, err := model.EvalIC(sv.IC)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelInvalid, err)
		}
		em = append(em, Element{Variable: sv.Name, Count: len(ic)})
	}
	return em, nil
}

func (em ElementMapping) Total() int {
	n := 0
	for _, e := range em {
		n += e.Count
	}
	return n
}

// ElementName returns the per-slot name for element i of a variable:
// the bare name for scalars, name_1..name_n for vectors.
func ElementName(variable string, i, count int) string {
	if count == 1 {
		return variable
	}
	return fmt.Sprintf("%s_%d", variable, i+1)
}

// CrossValidate asserts that the element-name list agrees with the mapping:
// same total length, and every slot inside a variable's block carries that
// variable's name. Disagreement is an upstream contract violation.
func (em ElementMapping) CrossValidate(names []string) error {
	if len(names) != em.Total() {
		return fmt.Errorf("%w: %d element names for %d slots", ErrElementMapping, len(names), em.Total())
	}
	off := 0
	for _, e := range em {
		for i := 0; i < e.Count; i++ {
			want := ElementName(e.Variable, i, e.Count)
			if names[off+i] != want {
				return fmt.Errorf("%w: slot %d is %q, want %q", ErrElementMapping, off+i, names[off+i], want)
			}
		}
		off += e.Count
	}
	return nil
}
