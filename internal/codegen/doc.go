// Package codegen translates a declarative dynamical-system model into a
// standalone MATLAB solver program.
//
// The pipeline is a fixed sequence of stages:
//
//	Validated -> FunctionBuilt -> ParametersResolved -> MainEmitted ->
//	OdefunEmitted -> Finalized (optionally Compiled)
//
//   - [ODEFunctionBuilder]: flattens state variables into one right-hand-side
//     expression over X and t, plus the initial-condition vector and the
//     per-slot element-name list
//   - [ParameterSerializer]: inlines parameter literals, or externalizes
//     them into a sibling parameter record referenced by prefix
//   - [SolverCodeEmitter]: assembles the main program from ordered,
//     independently testable section builders
//   - [OdefunEmitter]: renders the right-hand-side routine inline or as a
//     standalone unit for ahead-of-time compilation
//   - [Generator]: orchestrates the stages and artifact I/O
//
// Generation is single-threaded and synchronous. A failure mid-emission can
// leave a truncated artifact on disk; there is no automatic cleanup.
// Concurrent runs targeting the same output path race with last-writer-wins
// semantics.
package codegen
