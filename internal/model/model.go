package model

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a model that failed validation.
var ErrInvalid = errors.New("model: invalid model")

// StateVar is one integrated variable: its rate equation and its
// initial-condition expression. The IC expression determines how many
// elements the variable occupies in the flattened state vector.
type StateVar struct {
	Name     string `yaml:"name"`
	Equation string `yaml:"equation"`
	IC       string `yaml:"ic"`
}

type Parameter struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
}

// Assignment is a named expression: fixed variables, auxiliary functions,
// and monitors all share this shape.
type Assignment struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

type Model struct {
	Name       string       `yaml:"name"`
	State      []StateVar   `yaml:"state"`
	Parameters []Parameter  `yaml:"parameters"`
	Fixed      []Assignment `yaml:"fixed"`
	Functions  []Assignment `yaml:"functions"`
	Monitors   []Assignment `yaml:"monitors"`
}

func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func Save(path string, m *Model) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy. The generator mutates only copies; a caller's
// model is never rewritten in place.
func (m *Model) Clone() *Model {
	c := &Model{Name: m.Name}
	c.State = append([]StateVar(nil), m.State...)
	c.Parameters = append([]Parameter(nil), m.Parameters...)
	c.Fixed = append([]Assignment(nil), m.Fixed...)
	c.Functions = append([]Assignment(nil), m.Functions...)
	c.Monitors = append([]Assignment(nil), m.Monitors...)
	return c
}

// reservedNames are identifiers the generated program binds itself. A model
// name colliding with one would shadow the generated binding, or corrupt the
// state-vector rewrite in the case of X.
var reservedNames = map[string]bool{
	"t": true, "T": true, "X": true, "X0": true, "p": true,
	"dXdt": true, "time": true, "data": true, "dt": true,
	"tspan": true, "nsamp": true, "downsample_factor": true,
	"odeopts": true,
}

// Validate checks structural well-formedness: at least one state variable,
// unique names across all namespaces that avoid the generated program's own
// bindings, and an evaluable initial condition for every state variable.
func (m *Model) Validate() error {
	if len(m.State) == 0 {
		return fmt.Errorf("%w: no state variables", ErrInvalid)
	}
	seen := make(map[string]bool)
	check := func(name, kind string) error {
		if name == "" {
			return fmt.Errorf("%w: unnamed %s", ErrInvalid, kind)
		}
		if reservedNames[name] {
			return fmt.Errorf("%w: %s name %q is reserved in generated programs", ErrInvalid, kind, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalid, name)
		}
		seen[name] = true
		return nil
	}
	for _, sv := range m.State {
		if err := check(sv.Name, "state variable"); err != nil {
			return err
		}
		if sv.Equation == "" {
			return fmt.Errorf("%w: state variable %q has no equation", ErrInvalid, sv.Name)
		}
		if sv.IC == "" {
			return fmt.Errorf("%w: state variable %q has no initial condition", ErrInvalid, sv.Name)
		}
		if _, err := EvalIC(sv.IC); err != nil {
			return fmt.Errorf("%w: state variable %q: %v", ErrInvalid, sv.Name, err)
		}
	}
	for _, p := range m.Parameters {
		if err := check(p.Name, "parameter"); err != nil {
			return err
		}
	}
	for _, group := range []struct {
		kind  string
		items []Assignment
	}{
		{"fixed variable", m.Fixed},
		{"function", m.Functions},
		{"monitor", m.Monitors},
	} {
		for _, a := range group.items {
			if err := check(a.Name, group.kind); err != nil {
				return err
			}
			if a.Expr == "" {
				return fmt.Errorf("%w: %s %q has no expression", ErrInvalid, group.kind, a.Name)
			}
		}
	}
	return nil
}

func (m *Model) StateNames() []string {
	names := make([]string, len(m.State))
	for i, sv := range m.State {
		names[i] = sv.Name
	}
	return names
}

func (m *Model) Param(name string) (float64, bool) {
	for _, p := range m.Parameters {
		if p.Name == name {
			return p.Value, true
		}
	}
	return 0, false
}
