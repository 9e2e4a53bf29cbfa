package codegen

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SolverType selects how the right-hand-side routine is emitted.
type SolverType string

const (
	// SolverTypeNative co-locates the routine in the main artifact.
	SolverTypeNative SolverType = "native"
	// SolverTypeNativeSeparate emits a standalone unit suitable for
	// ahead-of-time compilation.
	SolverTypeNativeSeparate SolverType = "native_separate"
)

// SeedShuffle is the symbolic random-seed spec resolved to a concrete value
// when the separate-compilation path requires one.
const SeedShuffle = "shuffle"

// FixedStepSolvers are the custom fixed-step integrators the generated
// program may call; their implementations are emitted beside the main
// artifact on demand.
var FixedStepSolvers = []string{"euler", "rk2", "rk4"}

// AdaptiveSolvers are the library integrators accepting tuning options.
var AdaptiveSolvers = []string{"ode23", "ode45", "ode113", "ode15s", "ode23s"}

// AdaptiveOptions tunes adaptive library solvers. Zero fields are omitted
// from the generated odeset call.
type AdaptiveOptions struct {
	RelTol  float64 `yaml:"rel_tol"`
	AbsTol  float64 `yaml:"abs_tol"`
	MaxStep float64 `yaml:"max_step"`
}

// Options configures one generation run.
type Options struct {
	// IC overrides model-declared initial-condition expressions by
	// state-variable name.
	IC map[string]string `yaml:"ic"`

	Tspan            [2]float64       `yaml:"tspan"`
	Dt               float64          `yaml:"dt"`
	DownsampleFactor int              `yaml:"downsample_factor"`
	RandomSeed       string           `yaml:"random_seed"`
	Solver           string           `yaml:"solver"`
	SolverType       SolverType       `yaml:"solver_type"`
	Adaptive         *AdaptiveOptions `yaml:"adaptive_solver_options"`

	// ReduceFunctionCalls reports that auxiliary-function call sites are
	// already expanded in the model's equations, so no function section is
	// emitted.
	ReduceFunctionCalls bool `yaml:"reduce_function_calls_flag"`
	SaveParameters      bool `yaml:"save_parameters_flag"`

	// OutPath is the file target for the main artifact. Stream, when set,
	// takes precedence and bypasses both the close step and the
	// visibility wait.
	OutPath string    `yaml:"target"`
	Stream  io.Writer `yaml:"-"`

	CompileFlag bool `yaml:"compile_flag"`
	Verbose     bool `yaml:"verbose_flag"`

	// Logf receives progress narration when Verbose is set. Errors never
	// route through it.
	Logf func(format string, args ...any) `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{
		Tspan:               [2]float64{0, 100},
		Dt:                  0.01,
		DownsampleFactor:    1,
		RandomSeed:          SeedShuffle,
		Solver:              "euler",
		SolverType:          SolverTypeNative,
		ReduceFunctionCalls: true,
		SaveParameters:      true,
		Verbose:             true,
	}
}

// LoadOptions reads an options file over the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, err
	}
	return opts, nil
}

func SaveOptions(path string, opts Options) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate is the single entry-pass over the option set. Values outside
// their allowed sets fail fast; nothing is coerced.
func (o *Options) Validate() error {
	if o.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrConfiguration, o.Dt)
	}
	if o.DownsampleFactor < 1 {
		return fmt.Errorf("%w: downsample_factor must be a positive integer, got %d", ErrConfiguration, o.DownsampleFactor)
	}
	if !solverKnown(o.Solver) {
		return fmt.Errorf("%w: unknown solver %q", ErrConfiguration, o.Solver)
	}
	switch o.SolverType {
	case SolverTypeNative, SolverTypeNativeSeparate:
	default:
		return fmt.Errorf("%w: unknown solver_type %q", ErrConfiguration, o.SolverType)
	}
	if err := validateSeedSpec(o.RandomSeed); err != nil {
		return err
	}
	if o.Adaptive != nil && !IsAdaptiveSolver(o.Solver) {
		return fmt.Errorf("%w: adaptive_solver_options given for fixed-step solver %q", ErrConfiguration, o.Solver)
	}
	return nil
}

func (o *Options) logf(format string, args ...any) {
	if !o.Verbose {
		return
	}
	if o.Logf != nil {
		o.Logf(format, args...)
		return
	}
	fmt.Printf(format+"\n", args...)
}

// warnf is narration-independent: collisions and similar conditions surface
// regardless of Verbose.
func (o *Options) warnf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func solverKnown(name string) bool {
	for _, s := range FixedStepSolvers {
		if s == name {
			return true
		}
	}
	return IsAdaptiveSolver(name)
}

func IsAdaptiveSolver(name string) bool {
	for _, s := range AdaptiveSolvers {
		if s == name {
			return true
		}
	}
	return false
}

func validateSeedSpec(spec string) error {
	if spec == SeedShuffle {
		return nil
	}
	if _, err := strconv.ParseInt(spec, 10, 64); err != nil {
		return fmt.Errorf("%w: random_seed must be %q or an integer literal, got %q", ErrConfiguration, SeedShuffle, spec)
	}
	return nil
}
