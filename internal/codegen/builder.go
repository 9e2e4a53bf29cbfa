package codegen

import (
	"fmt"
	"strings"

	"github.com/san-kum/odegen/internal/model"
)

// ODEFunction is the flattened right-hand side of a model: one expression
// over the state vector X and time t, the full initial-condition vector,
// and the per-slot element-name list. Both vectors follow declared
// state-variable order and within-variable element order exactly.
type ODEFunction struct {
	RHS          string
	IC           []float64
	ElementNames []string
}

// ODEFunctionBuilder turns a normalized model into its flattened right-hand
// side. Implementations guarantee that IC and ElementNames ordering matches
// the model's state-variable declaration order.
type ODEFunctionBuilder interface {
	Build(m *model.Model) (*ODEFunction, error)
}

// FunctionBuilder is the default builder. It assigns each state variable a
// contiguous X slice in declaration order, rewrites state-name references in
// every rate equation to the slice expression, and joins the equations into
// one bracketed column expression.
type FunctionBuilder struct{}

func (FunctionBuilder) Build(m *model.Model) (*ODEFunction, error) {
	em, err := NewElementMapping(m)
	if err != nil {
		return nil, err
	}

	slots := make(map[string]string, len(m.State))
	off := 1
	for _, e := range em {
		if e.Count == 1 {
			slots[e.Variable] = fmt.Sprintf("X(%d)", off)
		} else {
			slots[e.Variable] = fmt.Sprintf("X(%d:%d)", off, off+e.Count-1)
		}
		off += e.Count
	}

	fn := &ODEFunction{
		IC:           make([]float64, 0, em.Total()),
		ElementNames: make([]string, 0, em.Total()),
	}
	eqs := make([]string, 0, len(m.State))
	for i, sv := range m.State {
		eq := sv.Equation
		// The routine is isolated from the caller's scope, so fixed
		// variables are inlined into the rate equations. Reverse order
		// lets later definitions expand through earlier ones.
		for j := len(m.Fixed) - 1; j >= 0; j-- {
			eq = model.SubstituteIdent(eq, m.Fixed[j].Name, "("+m.Fixed[j].Expr+")")
		}
		// Declaration order keeps the rewrite deterministic. Reserved-name
		// validation guarantees no state name appears inside a slot
		// expression, so order cannot change the result.
		for _, e := range em {
			eq = model.SubstituteIdent(eq, e.Variable, slots[e.Variable])
		}
		eqs = append(eqs, eq)

		ic, err := model.EvalIC(sv.IC)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelInvalid, err)
		}
		fn.IC = append(fn.IC, ic...)
		for j := range ic {
			fn.ElementNames = append(fn.ElementNames, ElementName(sv.Name, j, em[i].Count))
		}
	}
	fn.RHS = "[" + strings.Join(eqs, "; ") + "]"
	return fn, nil
}
