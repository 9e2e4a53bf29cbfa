package codegen

import "errors"

// Error kinds for generation. All are fatal to the run they occur in;
// compilation failure is the one exception, reported alongside an otherwise
// complete generation.
var (
	// ErrConfiguration indicates an option value outside its allowed set.
	ErrConfiguration = errors.New("codegen: invalid configuration")

	// ErrModelInvalid indicates the input model failed validation.
	ErrModelInvalid = errors.New("codegen: invalid model")

	// ErrElementMapping indicates the element-name list disagrees with the
	// declared state variables. This is an upstream contract violation.
	ErrElementMapping = errors.New("codegen: element mapping inconsistency")

	// ErrIO indicates an artifact open or write failure.
	ErrIO = errors.New("codegen: artifact i/o failure")

	// ErrCompilation indicates the separate right-hand-side unit failed to
	// compile. Already-written source artifacts remain valid.
	ErrCompilation = errors.New("codegen: compilation failed")

	// ErrVisibilityTimeout indicates a written artifact did not become
	// visible in the filesystem within the bounded wait.
	ErrVisibilityTimeout = errors.New("codegen: artifact visibility timeout")
)

// GenerateError wraps an error with the stage it occurred in.
type GenerateError struct {
	Stage   Stage
	Wrapped error
}

func (e *GenerateError) Error() string {
	return e.Stage.String() + ": " + e.Wrapped.Error()
}

func (e *GenerateError) Unwrap() error {
	return e.Wrapped
}
