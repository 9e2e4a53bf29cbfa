package codegen

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/odegen/internal/model"
)

// SampleCount is the number of samples of the generated time vector
// tspan(1):downsample*dt:tspan(2), endpoints included when reachable by
// the stride.
func SampleCount(tspan [2]float64, dt float64, downsample int) int {
	stride := float64(downsample) * dt
	// Tolerance keeps endpoints reachable despite float division error,
	// matching the colon operator's behavior.
	return int(math.Floor((tspan[1]-tspan[0])/stride+1e-9)) + 1
}

// SolverCodeEmitter renders the main program from ordered section builders.
// Section order is the output contract; Emit concatenates the sections in a
// fixed sequence and never reorders them.
type SolverCodeEmitter struct {
	// FuncName is the generated program's name.
	FuncName string
	// ParamsName is the parameter-record function referenced by the
	// parameter section; empty when parameters are inlined.
	ParamsName string
	// OdefunName is the integration callee: the inline routine or the
	// separately emitted unit.
	OdefunName string
}

// Emit assembles the main program text. The returned program's output tuple
// is [T, stateVars..., monitors..., fixedVars...] in declaration order.
func (e *SolverCodeEmitter) Emit(m *model.Model, opts *Options, fn *ODEFunction, em ElementMapping, seed string) (string, error) {
	extract, err := e.sectionExtract(m, fn, em)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(e.sectionSignature(m))
	b.WriteString(e.sectionParams(opts))
	b.WriteString(e.sectionTimeVector())
	b.WriteString(e.sectionFixed(m))
	b.WriteString(e.sectionFunctions(m, opts))
	b.WriteString(e.sectionSeed(seed))
	b.WriteString(e.sectionIntegrate(opts, fn))
	b.WriteString(extract)
	b.WriteString(e.sectionMonitors(m))
	b.WriteString("\nend\n")
	return b.String(), nil
}

// sectionSignature emits the entry signature. The return tuple order
// (time, state variables, monitors, fixed variables) is the contract every
// downstream consumer relies on.
func (e *SolverCodeEmitter) sectionSignature(m *model.Model) string {
	outs := []string{"T"}
	for _, sv := range m.State {
		outs = append(outs, sv.Name)
	}
	for _, mon := range m.Monitors {
		outs = append(outs, mon.Name)
	}
	for _, fv := range m.Fixed {
		outs = append(outs, fv.Name)
	}
	return fmt.Sprintf("function [%s] = %s()\n\n", strings.Join(outs, ", "), e.FuncName)
}

// sectionParams emits parameter acquisition: a load-and-bind statement
// against the sibling record, or literal values.
func (e *SolverCodeEmitter) sectionParams(opts *Options) string {
	var b strings.Builder
	if e.ParamsName != "" {
		fmt.Fprintf(&b, "p = %s();\n", e.ParamsName)
		b.WriteString("tspan = p.tspan;\n")
		b.WriteString("dt = p.dt;\n")
		b.WriteString("downsample_factor = p.downsample_factor;\n")
	} else {
		fmt.Fprintf(&b, "tspan = [%s %s];\n", model.FormatFloat(opts.Tspan[0]), model.FormatFloat(opts.Tspan[1]))
		fmt.Fprintf(&b, "dt = %s;\n", model.FormatFloat(opts.Dt))
		fmt.Fprintf(&b, "downsample_factor = %d;\n", opts.DownsampleFactor)
	}
	return b.String()
}

func (e *SolverCodeEmitter) sectionTimeVector() string {
	return "T = tspan(1):downsample_factor*dt:tspan(2);\nnsamp = length(T);\n\n"
}

// sectionFixed emits one assignment per fixed variable, declaration order.
func (e *SolverCodeEmitter) sectionFixed(m *model.Model) string {
	if len(m.Fixed) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("% fixed variables\n")
	for _, fv := range m.Fixed {
		fmt.Fprintf(&b, "%s = %s;\n", fv.Name, fv.Expr)
	}
	b.WriteString("\n")
	return b.String()
}

// sectionFunctions emits auxiliary-function assignments. When function
// inlining is on, the upstream transformation has already expanded every
// call site and the section is skipped entirely.
func (e *SolverCodeEmitter) sectionFunctions(m *model.Model, opts *Options) string {
	if opts.ReduceFunctionCalls || len(m.Functions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("% auxiliary functions\n")
	for _, f := range m.Functions {
		fmt.Fprintf(&b, "%s = %s;\n", f.Name, f.Expr)
	}
	b.WriteString("\n")
	return b.String()
}

func (e *SolverCodeEmitter) sectionSeed(seed string) string {
	if e.ParamsName != "" {
		return "rng(p.random_seed);\n\n"
	}
	return fmt.Sprintf("rng(%s);\n\n", seed)
}

// sectionIntegrate emits the initial-condition vector and exactly one
// integration invocation over the sampled time vector.
func (e *SolverCodeEmitter) sectionIntegrate(opts *Options, fn *ODEFunction) string {
	var b strings.Builder
	ics := make([]string, len(fn.IC))
	for i, v := range fn.IC {
		ics[i] = model.FormatFloat(v)
	}
	fmt.Fprintf(&b, "X0 = [%s];\n", strings.Join(ics, "; "))

	args := fmt.Sprintf("@%s, T, X0", e.OdefunName)
	if opts.Adaptive != nil && IsAdaptiveSolver(opts.Solver) {
		b.WriteString("odeopts = odeset(" + e.odesetArgs(opts.Adaptive) + ");\n")
		args += ", odeopts"
	}
	fmt.Fprintf(&b, "[time, data] = %s(%s);\n", opts.Solver, args)
	// Library integrators return samples by elements; extraction slices
	// element rows, so the matrix is reoriented once here.
	if IsAdaptiveSolver(opts.Solver) {
		b.WriteString("data = data';\n")
	}
	b.WriteString("\n")
	return b.String()
}

// odesetArgs sources tuning values from the parameter record when one is in
// play, so the record's field set stays exactly the set the program
// references.
func (e *SolverCodeEmitter) odesetArgs(a *AdaptiveOptions) string {
	var pairs []string
	add := func(key, recField string, v float64) {
		if v <= 0 {
			return
		}
		if e.ParamsName != "" {
			pairs = append(pairs, fmt.Sprintf("'%s', p.%s", key, recField))
			return
		}
		pairs = append(pairs, fmt.Sprintf("'%s', %s", key, model.FormatFloat(v)))
	}
	add("RelTol", "rel_tol", a.RelTol)
	add("AbsTol", "abs_tol", a.AbsTol)
	add("MaxStep", "max_step", a.MaxStep)
	return strings.Join(pairs, ", ")
}

// sectionExtract reconciles the raw solution matrix back into named state
// variables. For each variable it recomputes the element count from the
// initial condition, asserts that the element-name slice at the current
// offset carries the variable's name, and slices the contiguous block out
// of the data matrix with time reoriented to the leading axis. A mapping
// disagreement fails fast rather than mis-slicing silently.
func (e *SolverCodeEmitter) sectionExtract(m *model.Model, fn *ODEFunction, em ElementMapping) (string, error) {
	var b strings.Builder
	b.WriteString("% state variable extraction\n")
	off := 0
	for i, sv := range m.State {
		ic, err := model.EvalIC(sv.IC)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrModelInvalid, err)
		}
		count := len(ic)
		if count != em[i].Count {
			return "", fmt.Errorf("%w: %q has %d elements, mapping says %d", ErrElementMapping, sv.Name, count, em[i].Count)
		}
		if off+count > len(fn.ElementNames) {
			return "", fmt.Errorf("%w: element names exhausted at %q", ErrElementMapping, sv.Name)
		}
		want := ElementName(sv.Name, 0, count)
		if fn.ElementNames[off] != want {
			return "", fmt.Errorf("%w: slot %d is %q, want %q for %q", ErrElementMapping, off, fn.ElementNames[off], want, sv.Name)
		}
		fmt.Fprintf(&b, "%s = data(%d:%d,:)';\n", sv.Name, off+1, off+count)
		off += count
	}
	return b.String(), nil
}

// sectionMonitors emits one assignment per monitor over the extracted state
// variables and T, declaration order.
func (e *SolverCodeEmitter) sectionMonitors(m *model.Model) string {
	if len(m.Monitors) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n% monitors\n")
	for _, mon := range m.Monitors {
		fmt.Fprintf(&b, "%s = %s;\n", mon.Name, mon.Expr)
	}
	return b.String()
}
