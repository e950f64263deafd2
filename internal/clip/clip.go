// Package clip wraps system clipboard access. Failures are reported to the
// caller, which surfaces them in-band; the interactive renderer has no
// stderr.
package clip

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Copy places text on the system clipboard.
func Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard mechanism is available on this platform")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
