package model

import (
	"testing"
)

func TestEvalIC(t *testing.T) {
	tests := []struct {
		expr string
		want []float64
	}{
		{"1", []float64{1}},
		{"-0.5", []float64{-0.5}},
		{" 2e-3 ", []float64{0.002}},
		{"[1 2 3]", []float64{1, 2, 3}},
		{"[1, 2, 3]", []float64{1, 2, 3}},
		{"[0.5; -0.5]", []float64{0.5, -0.5}},
		{"zeros(1,4)", []float64{0, 0, 0, 0}},
		{"ones(1,2)", []float64{1, 1}},
	}
	for _, tt := range tests {
		got, err := EvalIC(tt.expr)
		if err != nil {
			t.Errorf("EvalIC(%q): %v", tt.expr, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("EvalIC(%q): got %v, want %v", tt.expr, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("EvalIC(%q)[%d]: got %v, want %v", tt.expr, i, got[i], tt.want[i])
			}
		}
	}
}

func TestEvalIC_Errors(t *testing.T) {
	for _, expr := range []string{"", "[]", "[1 two]", "[1 2", "zeros(1,0)", "abc"} {
		if _, err := EvalIC(expr); err == nil {
			t.Errorf("EvalIC(%q): expected error", expr)
		}
	}
}

func TestSubstituteIdent(t *testing.T) {
	tests := []struct {
		text, name, repl, want string
	}{
		{"-x/tau", "tau", "p.tau", "-x/p.tau"},
		{"x + x2 + max(x)", "x", "X(1)", "X(1) + x2 + max(X(1))"},
		{"a*b", "c", "p.c", "a*b"},
		{"v_1 + v", "v", "X(2)", "v_1 + X(2)"},
		{"tau*tau", "tau", "10", "10*10"},
	}
	for _, tt := range tests {
		got := SubstituteIdent(tt.text, tt.name, tt.repl)
		if got != tt.want {
			t.Errorf("SubstituteIdent(%q, %q, %q) = %q, want %q", tt.text, tt.name, tt.repl, got, tt.want)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{1, "1"},
		{0.01, "0.01"},
		{-0.5, "-0.5"},
		{100, "100"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.v); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
