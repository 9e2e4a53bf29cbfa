package codegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/odegen/internal/compile"
	"github.com/san-kum/odegen/internal/model"
)

// StreamTarget is the sentinel returned as the main-artifact path when
// generation wrote to a stream instead of a file.
const StreamTarget = "<stream>"

// DefaultWaitTimeout bounds the post-write visibility wait.
const DefaultWaitTimeout = 2 * time.Second

// GeneratedProgram is the result of one generation run. A run is complete
// once the source artifacts exist; CompileErr reports the independent
// outcome of the optional compilation step.
type GeneratedProgram struct {
	MainPath string
	MainText string

	RecordPath string
	Record     *ParamRecord

	OdefunPath string
	OdefunText string

	SolverPath string

	CompiledPath string
	CompileErr   error

	Stage Stage
}

// Generator orchestrates the generation pipeline. The zero value is not
// usable; construct with New.
type Generator struct {
	Builder     ODEFunctionBuilder
	Dispatcher  compile.Dispatcher
	Clock       func() time.Time
	WaitTimeout time.Duration
}

func New() *Generator {
	return &Generator{
		Builder:     FunctionBuilder{},
		Clock:       time.Now,
		WaitTimeout: DefaultWaitTimeout,
	}
}

// Generate runs the full pipeline: validate, build the flattened right-hand
// side, resolve parameters, emit the main program and the right-hand-side
// routine, persist artifacts, and optionally dispatch compilation.
//
// The caller's model is never mutated; parameter rewriting happens on an
// internal copy. Generation is one atomic synchronous call with no
// cancellation; ctx reaches only the out-of-process compilation step. A
// failure mid-emission can leave a truncated artifact on disk.
func (g *Generator) Generate(ctx context.Context, m *model.Model, opts Options) (*GeneratedProgram, error) {
	res := &GeneratedProgram{Stage: StageStart}
	fail := func(err error) (*GeneratedProgram, error) {
		return res, &GenerateError{Stage: res.Stage, Wrapped: err}
	}

	if err := opts.Validate(); err != nil {
		return fail(err)
	}
	if err := m.Validate(); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrModelInvalid, err))
	}
	work := m.Clone()
	if err := applyICOverrides(work, opts.IC); err != nil {
		return fail(err)
	}
	res.Stage = StageValidated
	opts.logf("model %q validated (%d state vars)", work.Name, len(work.State))

	fn, err := g.Builder.Build(work)
	if err != nil {
		return fail(err)
	}
	em, err := NewElementMapping(work)
	if err != nil {
		return fail(err)
	}
	if err := em.CrossValidate(fn.ElementNames); err != nil {
		return fail(err)
	}
	res.Stage = StageFunctionBuilt
	opts.logf("right-hand side built (%d elements, %d samples)", len(fn.IC), SampleCount(opts.Tspan, opts.Dt, opts.DownsampleFactor))

	mainPath := opts.OutPath
	if mainPath == "" {
		mainPath = "solve_ode.m"
	}
	funcName := strings.TrimSuffix(filepath.Base(mainPath), filepath.Ext(mainPath))
	dir := filepath.Dir(mainPath)

	seed := SeedLiteral(opts.RandomSeed)
	if opts.SolverType == SolverTypeNativeSeparate {
		// The separate-compilation path needs compile-time-constant,
		// statically-typed values; a symbolic spec is resolved to one
		// concrete value before generation proceeds.
		seed = ResolveSeed(opts.RandomSeed, g.Clock)
	}

	serializer := NewParameterSerializer(&opts)
	paramsName := ""
	if opts.SaveParameters {
		paramsName = funcName + "_params"
		fnForPrefix := fn
		if opts.SolverType == SolverTypeNativeSeparate {
			// The standalone unit cannot see the record struct and
			// must carry compile-time-constant values.
			serializer.InlineRHS(work, fn)
			fnForPrefix = nil
		}
		res.Record = serializer.Externalize(work, fnForPrefix, &opts, seed)
	} else {
		serializer.Substitute(work, fn)
	}
	res.Stage = StageParametersResolved
	opts.logf("parameters resolved (persisted: %v, seed: %s)", opts.SaveParameters, seed)

	odefunName := "odefun"
	if opts.SolverType == SolverTypeNativeSeparate {
		odefunName = funcName + "_odefun"
	}
	emitter := &SolverCodeEmitter{
		FuncName:   funcName,
		ParamsName: paramsName,
		OdefunName: odefunName,
	}
	mainText, err := emitter.Emit(work, &opts, fn, em, seed)
	if err != nil {
		return fail(err)
	}
	res.Stage = StageMainEmitted

	var oe OdefunEmitter
	if opts.SolverType == SolverTypeNativeSeparate {
		res.OdefunText = oe.EmitSeparate(odefunName, fn.RHS, len(fn.IC))
	} else {
		mainText += "\n" + oe.EmitInline(odefunName, fn.RHS, paramsName)
	}
	res.MainText = mainText
	res.Stage = StageOdefunEmitted
	opts.logf("program emitted (%s mode)", opts.SolverType)

	if err := g.writeArtifacts(res, &opts, mainPath, dir, paramsName); err != nil {
		return fail(err)
	}
	res.Stage = StageFinalized
	opts.logf("generation finalized: %s", res.MainPath)

	if opts.CompileFlag && opts.SolverType == SolverTypeNativeSeparate && res.OdefunPath != "" {
		g.dispatchCompile(ctx, res, &opts)
	}
	return res, nil
}

// writeArtifacts persists the parameter record, main program, standalone
// right-hand-side unit, and fixed-step solver implementation. File targets
// get an explicit sync, a guaranteed close, and a bounded visibility wait;
// a stream target bypasses all three.
func (g *Generator) writeArtifacts(res *GeneratedProgram, opts *Options, mainPath, dir, paramsName string) error {
	if opts.Stream != nil {
		text := res.MainText
		if res.OdefunText != "" {
			text += "\n" + res.OdefunText
		}
		// The record has no sibling file on a stream target; it is
		// appended as a local function so the streamed program stays
		// self-contained.
		if res.Record != nil {
			text += "\n" + FormatParamRecord(paramsName, res.Record)
		}
		if _, err := opts.Stream.Write([]byte(text)); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		res.MainPath = StreamTarget
		return nil
	}

	if res.Record != nil {
		res.RecordPath = filepath.Join(dir, paramsName+".m")
		if err := WriteParamRecord(res.RecordPath, paramsName, res.Record); err != nil {
			return err
		}
	}
	if err := writeArtifact(mainPath, res.MainText); err != nil {
		return err
	}
	res.MainPath = mainPath
	if res.OdefunText != "" {
		res.OdefunPath = filepath.Join(dir, filepath.Base(strings.TrimSuffix(mainPath, filepath.Ext(mainPath)))+"_odefun.m")
		if err := writeArtifact(res.OdefunPath, res.OdefunText); err != nil {
			return err
		}
	}
	if isFixedStepSolver(opts.Solver) {
		text, err := EmitFixedStepSolver(opts.Solver)
		if err != nil {
			return err
		}
		res.SolverPath = filepath.Join(dir, opts.Solver+".m")
		if err := writeArtifact(res.SolverPath, text); err != nil {
			return err
		}
	}

	for _, p := range []string{res.RecordPath, res.MainPath, res.OdefunPath, res.SolverPath} {
		if p == "" {
			continue
		}
		if err := waitForVisible(p, g.WaitTimeout); err != nil {
			return err
		}
	}
	return nil
}

// dispatchCompile hands the standalone unit to the dispatcher. Failure is
// reported distinctly and never invalidates the written source artifacts.
func (g *Generator) dispatchCompile(ctx context.Context, res *GeneratedProgram, opts *Options) {
	d := g.Dispatcher
	if d == nil {
		if compile.Detect() {
			d = compile.NewCoder()
		} else {
			d = compile.Noop{}
		}
	}
	compiled, err := d.Compile(ctx, res.OdefunPath)
	if err != nil {
		res.CompileErr = fmt.Errorf("%w: %v", ErrCompilation, err)
		return
	}
	res.CompiledPath = compiled
	opts.logf("compiled: %s", compiled)
}

func applyICOverrides(m *model.Model, overrides map[string]string) error {
	for name, expr := range overrides {
		if _, err := model.EvalIC(expr); err != nil {
			return fmt.Errorf("%w: ic override for %q: %v", ErrConfiguration, name, err)
		}
		found := false
		for i := range m.State {
			if m.State[i].Name == name {
				m.State[i].IC = expr
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: ic override for unknown state variable %q", ErrConfiguration, name)
		}
	}
	return nil
}

func writeArtifact(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
