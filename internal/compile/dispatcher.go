// Package compile dispatches ahead-of-time native compilation of
// separately emitted right-hand-side units. Compilation runs out of
// process; its outcome is independent of generation success and is
// reported to the caller under its own error kind.
package compile

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrUnavailable indicates no compilation capability was detected.
var ErrUnavailable = errors.New("compile: no compiler available")

// Dispatcher compiles a source unit at the given path and returns the path
// of the compiled artifact.
type Dispatcher interface {
	Compile(ctx context.Context, srcPath string) (string, error)
}

// Detect reports whether the MATLAB toolchain is reachable on PATH.
func Detect() bool {
	_, err := exec.LookPath("matlab")
	return err == nil
}

// Coder shells out to MATLAB Coder for native compilation.
type Coder struct {
	// Bin is the MATLAB executable, "matlab" by default.
	Bin string
}

func NewCoder() *Coder {
	return &Coder{Bin: "matlab"}
}

func (c *Coder) Compile(ctx context.Context, srcPath string) (string, error) {
	dir := filepath.Dir(srcPath)
	name := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))

	cmd := exec.CommandContext(ctx, c.Bin, "-batch", fmt.Sprintf("codegen %s", name))
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("codegen %s: %v: %s", name, err, strings.TrimSpace(string(out)))
	}
	return filepath.Join(dir, name+"_mex"), nil
}

// Noop is the dispatcher used when no capability was detected.
type Noop struct{}

func (Noop) Compile(ctx context.Context, srcPath string) (string, error) {
	return "", fmt.Errorf("%w: cannot compile %s", ErrUnavailable, filepath.Base(srcPath))
}
