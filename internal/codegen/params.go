package codegen

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/san-kum/odegen/internal/model"
)

// ParamField is one named MATLAB literal in the parameter record.
type ParamField struct {
	Name    string
	Literal string
}

// ParamRecord merges solver-configuration fields with model parameters.
// Insertion order is preserved; a later insert under an existing name
// replaces the earlier one. Last-wins on collision is documented behavior,
// and every collision is surfaced before the override is applied.
type ParamRecord struct {
	Fields []ParamField

	warnf func(format string, args ...any)
}

func (r *ParamRecord) Set(name, literal string) {
	for i, f := range r.Fields {
		if f.Name == name {
			if r.warnf != nil {
				r.warnf("parameter record: field %q collides, later value %s wins over %s", name, literal, f.Literal)
			}
			r.Fields[i].Literal = literal
			return
		}
	}
	r.Fields = append(r.Fields, ParamField{Name: name, Literal: literal})
}

func (r *ParamRecord) SetFloat(name string, v float64) {
	r.Set(name, model.FormatFloat(v))
}

func (r *ParamRecord) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Literal, true
		}
	}
	return "", false
}

func (r *ParamRecord) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// ParameterSerializer decides how model parameters reach the generated
// program: inlined as literals, or externalized into a record referenced
// by prefix.
type ParameterSerializer struct {
	// Prefix precedes every externalized parameter reference, "p." by
	// default.
	Prefix string

	warnf func(format string, args ...any)
}

func NewParameterSerializer(opts *Options) *ParameterSerializer {
	return &ParameterSerializer{Prefix: "p.", warnf: opts.warnf}
}

// Substitute inlines each parameter's numeric literal into every equation
// string of the working model and the built right-hand side. The result is
// self-contained but not reusable with different parameter values.
func (s *ParameterSerializer) Substitute(m *model.Model, fn *ODEFunction) {
	for _, p := range m.Parameters {
		s.rewrite(m, fn, p.Name, model.FormatFloat(p.Value))
	}
	m.Parameters = nil
}

// InlineRHS inlines parameter literals into the right-hand-side expression
// only. The separately compiled unit requires compile-time-constant values
// even when the main program sources its parameters from the record.
func (s *ParameterSerializer) InlineRHS(m *model.Model, fn *ODEFunction) {
	for _, p := range m.Parameters {
		fn.RHS = model.SubstituteIdent(fn.RHS, p.Name, model.FormatFloat(p.Value))
	}
}

// Externalize rewrites every parameter reference to prefix+name and returns
// the merged record: solver-configuration fields first, model parameters
// after, later-inserted fields winning on name collision.
func (s *ParameterSerializer) Externalize(m *model.Model, fn *ODEFunction, opts *Options, seed string) *ParamRecord {
	rec := &ParamRecord{warnf: s.warnf}
	rec.Set("tspan", fmt.Sprintf("[%s %s]", model.FormatFloat(opts.Tspan[0]), model.FormatFloat(opts.Tspan[1])))
	rec.SetFloat("dt", opts.Dt)
	rec.Set("downsample_factor", fmt.Sprintf("%d", opts.DownsampleFactor))
	rec.Set("random_seed", seed)
	if opts.Adaptive != nil {
		if opts.Adaptive.RelTol > 0 {
			rec.SetFloat("rel_tol", opts.Adaptive.RelTol)
		}
		if opts.Adaptive.AbsTol > 0 {
			rec.SetFloat("abs_tol", opts.Adaptive.AbsTol)
		}
		if opts.Adaptive.MaxStep > 0 {
			rec.SetFloat("max_step", opts.Adaptive.MaxStep)
		}
	}
	for _, p := range m.Parameters {
		s.rewrite(m, fn, p.Name, s.Prefix+p.Name)
		rec.SetFloat(p.Name, p.Value)
	}
	return rec
}

func (s *ParameterSerializer) rewrite(m *model.Model, fn *ODEFunction, name, repl string) {
	for i := range m.State {
		m.State[i].Equation = model.SubstituteIdent(m.State[i].Equation, name, repl)
	}
	for _, group := range [][]model.Assignment{m.Fixed, m.Functions, m.Monitors} {
		for i := range group {
			group[i].Expr = model.SubstituteIdent(group[i].Expr, name, repl)
		}
	}
	if fn != nil {
		fn.RHS = model.SubstituteIdent(fn.RHS, name, repl)
	}
}

// SeedLiteral renders a seed value for generated code: integer specs pass
// through, the symbolic shuffle spec becomes a quoted string.
func SeedLiteral(spec string) string {
	if spec == SeedShuffle {
		return "'" + SeedShuffle + "'"
	}
	return spec
}

// ResolveSeed resolves a seed spec to a concrete literal. Numeric specs pass
// through untouched. The symbolic shuffle spec is resolved from the supplied
// clock only when the caller requires a compile-time-constant value; the
// function is pure in its inputs and resolution happens exactly once per
// generation run.
func ResolveSeed(spec string, now func() time.Time) string {
	if spec != SeedShuffle {
		return spec
	}
	return fmt.Sprintf("%d", uint32(now().UnixNano()))
}

// FormatParamRecord renders the record as a MATLAB function returning the
// struct p: a standalone sibling file, or a local function appended to a
// streamed program.
func FormatParamRecord(funcName string, rec *ParamRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "function p = %s()\n", funcName)
	for _, field := range rec.Fields {
		fmt.Fprintf(&b, "p.%s = %s;\n", field.Name, field.Literal)
	}
	b.WriteString("end\n")
	return b.String()
}

// WriteParamRecord serializes the record to the fixed sibling path. The file
// is fully overwritten on each generation run; there is no versioning.
func WriteParamRecord(path, funcName string, rec *ParamRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatParamRecord(funcName, rec)); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return f.Sync()
}

// LoadParamRecord re-parses a serialized record. Used for round-trip checks
// and tooling; generation never reads records back.
func LoadParamRecord(path string) (*ParamRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	rec := &ParamRecord{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "p.") || !strings.HasSuffix(line, ";") {
			continue
		}
		body := strings.TrimSuffix(strings.TrimPrefix(line, "p."), ";")
		name, literal, ok := strings.Cut(body, "=")
		if !ok {
			continue
		}
		rec.Fields = append(rec.Fields, ParamField{
			Name:    strings.TrimSpace(name),
			Literal: strings.TrimSpace(literal),
		})
	}
	return rec, nil
}
