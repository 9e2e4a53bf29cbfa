package compile

import (
	"context"
	"errors"
	"testing"
)

func TestNoop(t *testing.T) {
	_, err := Noop{}.Compile(context.Background(), "/tmp/solve_ode_odefun.m")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error %v is not ErrUnavailable", err)
	}
}

func TestCoder_MissingBinary(t *testing.T) {
	c := &Coder{Bin: "definitely-not-matlab"}
	if _, err := c.Compile(context.Background(), "/tmp/solve_ode_odefun.m"); err == nil {
		t.Error("expected error for missing toolchain binary")
	}
}
