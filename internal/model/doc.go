// Package model defines the declarative dynamical-system description that
// the generator consumes:
//
//   - [Model]: ordered state variables, parameters, fixed variables,
//     auxiliary functions, monitors, and initial-condition expressions
//   - [Load]: YAML model file loading
//   - [EvalIC]: evaluation of initial-condition expressions into vectors
//   - [SubstituteIdent]: whole-word identifier rewriting in equation text
//
// Ordering is significant everywhere: state variables, fixed variables,
// functions, and monitors are slices, not maps, so that generated output
// is deterministic across runs.
package model
