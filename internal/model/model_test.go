package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validModel() *Model {
	return &Model{
		Name: "decay",
		State: []StateVar{
			{Name: "x", Equation: "-x/tau", IC: "1"},
		},
		Parameters: []Parameter{{Name: "tau", Value: 10}},
		Fixed:      []Assignment{{Name: "amp", Expr: "0.5"}},
		Monitors:   []Assignment{{Name: "x2", Expr: "x.^2"}},
	}
}

func TestValidate(t *testing.T) {
	if err := validModel().Validate(); err != nil {
		t.Fatalf("valid model rejected: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Model)
	}{
		{"no state", func(m *Model) { m.State = nil }},
		{"missing equation", func(m *Model) { m.State[0].Equation = "" }},
		{"missing ic", func(m *Model) { m.State[0].IC = "" }},
		{"bad ic", func(m *Model) { m.State[0].IC = "not a number" }},
		{"duplicate name", func(m *Model) { m.Parameters[0].Name = "x" }},
		{"duplicate monitor", func(m *Model) { m.Monitors[0].Name = "amp" }},
		{"empty expr", func(m *Model) { m.Fixed[0].Expr = "" }},
		{"reserved state name", func(m *Model) { m.State[0].Name = "X" }},
		{"reserved parameter name", func(m *Model) { m.Parameters[0].Name = "dt" }},
		{"reserved fixed name", func(m *Model) { m.Fixed[0].Name = "data" }},
	}
	for _, tt := range tests {
		m := validModel()
		tt.mutate(m)
		err := m.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: error %v is not ErrInvalid", tt.name, err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")
	data := `name: osc
state:
  - name: v
    equation: w
    ic: "1"
  - name: w
    equation: -v
    ic: "0"
parameters:
  - name: k
    value: 2.5
monitors:
  - name: energy
    expr: v.^2 + w.^2
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name != "osc" {
		t.Errorf("expected name osc, got %s", m.Name)
	}
	if len(m.State) != 2 || m.State[0].Name != "v" || m.State[1].Name != "w" {
		t.Errorf("state order not preserved: %+v", m.State)
	}
	if v, ok := m.Param("k"); !ok || v != 2.5 {
		t.Errorf("expected k=2.5, got %v %v", v, ok)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("loaded model invalid: %v", err)
	}
}

func TestClone_Independent(t *testing.T) {
	m := validModel()
	c := m.Clone()
	c.State[0].Equation = "changed"
	c.Parameters[0].Value = 99
	c.Fixed[0].Expr = "changed"

	if m.State[0].Equation != "-x/tau" {
		t.Error("clone shares state slice with original")
	}
	if m.Parameters[0].Value != 10 {
		t.Error("clone shares parameter slice with original")
	}
	if m.Fixed[0].Expr != "0.5" {
		t.Error("clone shares fixed slice with original")
	}
}

func TestStateNames(t *testing.T) {
	m := &Model{State: []StateVar{
		{Name: "a", Equation: "1", IC: "0"},
		{Name: "b", Equation: "1", IC: "0"},
	}}
	names := m.StateNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected names %v", names)
	}
}
