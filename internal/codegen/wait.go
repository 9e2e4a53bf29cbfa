package codegen

import (
	"fmt"
	"os"
	"time"
)

// waitForVisible blocks until the written artifact is visible in the
// filesystem, polling up to the timeout. Downstream consumers may launch a
// separate process expecting the file to exist; this is a cross-process
// readiness barrier, not a lock, and protects nothing against concurrent
// writers to the same path.
func waitForVisible(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s not visible after %s", ErrVisibilityTimeout, path, timeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
