package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var fillRe = regexp.MustCompile(`^(zeros|ones)\(\s*1\s*,\s*(\d+)\s*\)$`)

// EvalIC evaluates an initial-condition expression into a numeric vector.
// Supported forms: scalar literals ("1", "-0.5"), bracketed vectors
// ("[1 2 3]", "[1, 2, 3]"), and the fill forms "zeros(1,N)" / "ones(1,N)".
// The length of the result is the variable's element count in the
// flattened state vector.
func EvalIC(expr string) ([]float64, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return nil, fmt.Errorf("empty initial-condition expression")
	}
	if m := fillRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad fill length in %q", expr)
		}
		fill := 0.0
		if m[1] == "ones" {
			fill = 1.0
		}
		v := make([]float64, n)
		for i := range v {
			v[i] = fill
		}
		return v, nil
	}
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("unterminated vector in %q", expr)
		}
		body := strings.TrimSpace(s[1 : len(s)-1])
		if body == "" {
			return nil, fmt.Errorf("empty vector in %q", expr)
		}
		fields := strings.FieldsFunc(body, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})
		v := make([]float64, 0, len(fields))
		for _, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("bad vector element %q in %q", f, expr)
			}
			v = append(v, x)
		}
		return v, nil
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate initial condition %q", expr)
	}
	return []float64{x}, nil
}

// SubstituteIdent replaces whole-word occurrences of an identifier in
// equation text. "x" does not match inside "x2" or "max".
func SubstituteIdent(text, name, repl string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	return re.ReplaceAllLiteralString(text, repl)
}

// FormatFloat renders a value the way generated code expects it:
// shortest round-trip representation.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
