package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/odegen/internal/codegen"
	"github.com/san-kum/odegen/internal/compile"
	"github.com/san-kum/odegen/internal/model"
	"github.com/spf13/cobra"
)

var (
	outPath       string
	t0            float64
	t1            float64
	dt            float64
	downsample    int
	seed          string
	solver        string
	solverType    string
	icOverrides   []string
	noSaveParams  bool
	keepFuncCalls bool
	compileFlag   bool
	quiet         bool
	toStdout      bool
	optionsFile   string
	emitSolver    string
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "odegen",
		Short: "generate standalone solver programs from declarative ODE models",
	}

	generateCmd := &cobra.Command{
		Use:   "generate [model.yaml]",
		Short: "generate a solver program",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVar(&outPath, "out", "solve_ode.m", "main artifact path")
	generateCmd.Flags().Float64Var(&t0, "t0", 0, "time span begin")
	generateCmd.Flags().Float64Var(&t1, "t1", 100, "time span end")
	generateCmd.Flags().Float64Var(&dt, "dt", 0.01, "step size")
	generateCmd.Flags().IntVar(&downsample, "downsample", 1, "downsample factor")
	generateCmd.Flags().StringVar(&seed, "seed", "shuffle", "random seed ('shuffle' or integer)")
	generateCmd.Flags().StringVar(&solver, "solver", "euler", "solver name")
	generateCmd.Flags().StringVar(&solverType, "solver-type", "native", "native or native_separate")
	generateCmd.Flags().StringArrayVar(&icOverrides, "ic", nil, "initial-condition override (name=expr)")
	generateCmd.Flags().BoolVar(&noSaveParams, "no-save-params", false, "inline parameters instead of writing a record")
	generateCmd.Flags().BoolVar(&keepFuncCalls, "keep-function-calls", false, "emit auxiliary function assignments")
	generateCmd.Flags().BoolVar(&compileFlag, "compile", compile.Detect(), "compile the separate right-hand-side unit")
	generateCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress progress narration")
	generateCmd.Flags().BoolVar(&toStdout, "stdout", false, "write the program to stdout instead of a file")
	generateCmd.Flags().StringVar(&optionsFile, "config", "", "options file path (yaml)")

	inspectCmd := &cobra.Command{
		Use:   "inspect [model.yaml]",
		Short: "summarize a model and preview its flattened state vector",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	solversCmd := &cobra.Command{
		Use:   "solvers",
		Short: "list available solvers",
		RunE:  runSolvers,
	}
	solversCmd.Flags().StringVar(&emitSolver, "emit", "", "print a fixed-step solver implementation")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in models",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range model.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(generateCmd, inspectCmd, solversCmd, presetsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func buildOptions(cmd *cobra.Command) (codegen.Options, error) {
	opts := codegen.DefaultOptions()
	if optionsFile != "" {
		loaded, err := codegen.LoadOptions(optionsFile)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	// Explicit flags win over the options file.
	setIfChanged := func(name string, apply func()) {
		if cmd.Flags().Changed(name) || optionsFile == "" {
			apply()
		}
	}
	setIfChanged("t0", func() { opts.Tspan[0] = t0 })
	setIfChanged("t1", func() { opts.Tspan[1] = t1 })
	setIfChanged("dt", func() { opts.Dt = dt })
	setIfChanged("downsample", func() { opts.DownsampleFactor = downsample })
	setIfChanged("seed", func() { opts.RandomSeed = seed })
	setIfChanged("solver", func() { opts.Solver = solver })
	setIfChanged("solver-type", func() { opts.SolverType = codegen.SolverType(solverType) })
	setIfChanged("no-save-params", func() { opts.SaveParameters = !noSaveParams })
	setIfChanged("keep-function-calls", func() { opts.ReduceFunctionCalls = !keepFuncCalls })
	setIfChanged("compile", func() { opts.CompileFlag = compileFlag })

	opts.OutPath = outPath
	opts.Verbose = !quiet
	if toStdout {
		opts.Stream = os.Stdout
		opts.Verbose = false
	}

	if len(icOverrides) > 0 {
		opts.IC = make(map[string]string, len(icOverrides))
		for _, spec := range icOverrides {
			name, expr, ok := strings.Cut(spec, "=")
			if !ok {
				return opts, fmt.Errorf("bad --ic %q, want name=expr", spec)
			}
			opts.IC[strings.TrimSpace(name)] = strings.TrimSpace(expr)
		}
	}
	return opts, nil
}

// loadModel resolves the model argument: a file path, or a built-in
// preset name when no such file exists.
func loadModel(arg string) (*model.Model, error) {
	if _, err := os.Stat(arg); err == nil {
		return model.Load(arg)
	}
	if m := model.GetPreset(arg); m != nil {
		return m, nil
	}
	return nil, fmt.Errorf("no model file or preset %q", arg)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	m, err := loadModel(args[0])
	if err != nil {
		return err
	}
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	gen := codegen.New()
	res, err := gen.Generate(context.Background(), m, opts)
	if err != nil {
		return err
	}
	if opts.Stream != nil {
		return nil
	}

	fmt.Println(titleStyle.Render("generated " + res.MainPath))
	fmt.Printf("%s %s\n", labelStyle.Render("stage:"), res.Stage)
	if res.RecordPath != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("params:"), res.RecordPath)
	}
	if res.OdefunPath != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("odefun:"), res.OdefunPath)
	}
	if res.SolverPath != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("solver:"), res.SolverPath)
	}
	switch {
	case res.CompileErr != nil:
		fmt.Printf("%s %v\n", warnStyle.Render("compile failed:"), res.CompileErr)
	case res.CompiledPath != "":
		fmt.Printf("%s %s\n", okStyle.Render("compiled:"), res.CompiledPath)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	m, err := loadModel(args[0])
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("model " + m.Name))
	fmt.Printf("%s %s\n", labelStyle.Render("state:"), strings.Join(m.StateNames(), ", "))
	for _, p := range m.Parameters {
		fmt.Printf("%s %s = %s\n", labelStyle.Render("param:"), p.Name, model.FormatFloat(p.Value))
	}
	for _, f := range m.Fixed {
		fmt.Printf("%s %s = %s\n", labelStyle.Render("fixed:"), f.Name, f.Expr)
	}
	for _, mon := range m.Monitors {
		fmt.Printf("%s %s = %s\n", labelStyle.Render("monitor:"), mon.Name, mon.Expr)
	}

	fn, err := codegen.FunctionBuilder{}.Build(m)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d elements\n", labelStyle.Render("flattened:"), len(fn.IC))
	if len(fn.IC) > 1 {
		graph := asciigraph.Plot(fn.IC,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("initial-condition vector"),
		)
		fmt.Println(graph)
	}
	return nil
}

func runSolvers(cmd *cobra.Command, args []string) error {
	if emitSolver != "" {
		text, err := codegen.EmitFixedStepSolver(emitSolver)
		if err != nil {
			if errors.Is(err, codegen.ErrConfiguration) {
				return fmt.Errorf("no fixed-step implementation for %q", emitSolver)
			}
			return err
		}
		fmt.Print(text)
		return nil
	}
	fmt.Println(titleStyle.Render("fixed-step"))
	for _, s := range codegen.FixedStepSolvers {
		fmt.Printf("  %s\n", s)
	}
	fmt.Println(titleStyle.Render("adaptive"))
	for _, s := range codegen.AdaptiveSolvers {
		fmt.Printf("  %s\n", s)
	}
	return nil
}
