package generator

import "fmt"

// GenerationError marks a recoverable per-keyword generation failure.
// The orchestrator records it against the item and moves on; it never
// aborts the run.
type GenerationError struct {
	Keyword string
	Batch   bool
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Batch {
		return fmt.Sprintf("batch generation failed for %q: %v", e.Keyword, e.Err)
	}
	return fmt.Sprintf("generation failed for %q: %v", e.Keyword, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
