// Package diagnostics collects non-fatal warnings raised while a scan
// runs concurrently across many files: I/O errors on a single file, a
// rule that panicked, or a config key the loader didn't recognize (spec
// §7). None of these abort the scan; they surface alongside the result.
package diagnostics

import (
	"fmt"
	"sync"
)

// Sink is an append-only, mutex-guarded warning collector safe to share
// across the orchestrator's parallel worker goroutines. The teacher's
// own pipeline guards shared result slices the same way (a plain
// sync.Mutex around an append), but never extended that protection to
// its own warning prints, which go straight to a shared io.Writer from
// inside errgroup goroutines; Sink closes that gap by making "record a
// warning" a method on its own synchronized type instead of a bare
// Fprintf call.
type Sink struct {
	mu       sync.Mutex
	warnings []string
}

// NewSink creates an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Warnf records a formatted warning. Safe to call from any goroutine.
func (s *Sink) Warnf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns every warning recorded so far, in recording order.
func (s *Sink) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Len reports how many warnings have been recorded.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.warnings)
}
