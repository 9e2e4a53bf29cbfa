package codegen

import "fmt"

// EmitFixedStepSolver renders the MATLAB implementation of one of the
// custom fixed-step integrators referenced by generated programs. The
// integrators share a calling convention with the adaptive library set:
// [time, data] = solver(odefun, T, X0), with data holding one column per
// sample so extraction can slice element rows.
func EmitFixedStepSolver(name string) (string, error) {
	body, ok := fixedStepBodies[name]
	if !ok {
		return "", fmt.Errorf("%w: no fixed-step solver %q", ErrConfiguration, name)
	}
	return fmt.Sprintf(fixedStepFrame, name, body), nil
}

const fixedStepFrame = `function [time, data] = %s(odefun, T, X0)
time = T(:);
n = length(T);
X = X0(:);
data = zeros(length(X), n);
data(:,1) = X;
for i = 2:n
  dt = T(i) - T(i-1);
  t = T(i-1);
%s  data(:,i) = X;
end
end
`

var fixedStepBodies = map[string]string{
	"euler": `  X = X + dt * odefun(t, X);
`,
	"rk2": `  k1 = odefun(t, X);
  X = X + dt * odefun(t + dt/2, X + (dt/2) * k1);
`,
	"rk4": `  k1 = odefun(t, X);
  k2 = odefun(t + dt/2, X + (dt/2) * k1);
  k3 = odefun(t + dt/2, X + (dt/2) * k2);
  k4 = odefun(t + dt, X + dt * k3);
  X = X + (dt/6) * (k1 + 2*k2 + 2*k3 + k4);
`,
}

func isFixedStepSolver(name string) bool {
	_, ok := fixedStepBodies[name]
	return ok
}
