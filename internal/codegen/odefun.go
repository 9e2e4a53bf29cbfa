package codegen

import (
	"fmt"
	"strings"
)

// OdefunEmitter renders the right-hand-side routine. Both modes wrap the
// byte-identical expression text; only the enclosing declaration differs.
type OdefunEmitter struct{}

// EmitInline renders the routine as a subfunction appended to the main
// artifact. Subfunction scope shares no variables with the caller, so a
// record-referencing expression needs its own binding; paramsName, when
// non-empty, names the record function to bind as p before evaluation.
func (OdefunEmitter) EmitInline(name, rhs, paramsName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "function dXdt = %s(t, X)\n", name)
	if paramsName != "" {
		fmt.Fprintf(&b, "  p = %s();\n", paramsName)
	}
	b.WriteString(odefunBody(rhs))
	b.WriteString("end\n")
	return b.String()
}

// EmitSeparate renders the routine as a standalone unit with explicit
// input-type assertions ahead of the expression, as required for
// ahead-of-time native compilation.
func (OdefunEmitter) EmitSeparate(name, rhs string, stateLen int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "function dXdt = %s(t, X)\n", name)
	b.WriteString("assert(isa(t, 'double') && isscalar(t));\n")
	fmt.Fprintf(&b, "assert(isa(X, 'double') && iscolumn(X) && length(X) == %d);\n", stateLen)
	b.WriteString(odefunBody(rhs))
	b.WriteString("end\n")
	return b.String()
}

// odefunBody is shared by both modes so the expression text cannot drift
// between them.
func odefunBody(rhs string) string {
	return fmt.Sprintf("  dXdt = %s;\n", rhs)
}
