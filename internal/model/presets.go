package model

// Built-in models, usable anywhere a model file is expected.
var presets = map[string]*Model{
	"decay": {
		Name: "decay",
		State: []StateVar{
			{Name: "x", Equation: "-x/tau", IC: "1"},
		},
		Parameters: []Parameter{{Name: "tau", Value: 10}},
	},
	"oscillator": {
		Name: "oscillator",
		State: []StateVar{
			{Name: "v", Equation: "w", IC: "1"},
			{Name: "w", Equation: "-k*v - c*w", IC: "0"},
		},
		Parameters: []Parameter{
			{Name: "k", Value: 4},
			{Name: "c", Value: 0.1},
		},
		Monitors: []Assignment{{Name: "energy", Expr: "0.5*w.^2 + 0.5*k*v.^2"}},
	},
	"chain": {
		Name: "chain",
		State: []StateVar{
			{Name: "u", Equation: "-u + drive", IC: "zeros(1,5)"},
		},
		Fixed: []Assignment{{Name: "drive", Expr: "0.2"}},
	},
}

// GetPreset returns a copy of a built-in model, or nil when none exists.
func GetPreset(name string) *Model {
	m, ok := presets[name]
	if !ok {
		return nil
	}
	return m.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
