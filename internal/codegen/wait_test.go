package codegen

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForVisible(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.m")
	if err := writeArtifact(path, "x"); err != nil {
		t.Fatal(err)
	}
	if err := waitForVisible(path, 100*time.Millisecond); err != nil {
		t.Errorf("visible file reported missing: %v", err)
	}
}

func TestWaitForVisible_Timeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.m")
	err := waitForVisible(path, 30*time.Millisecond)
	if !errors.Is(err, ErrVisibilityTimeout) {
		t.Errorf("error %v is not ErrVisibilityTimeout", err)
	}
}
