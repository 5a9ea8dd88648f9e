// Package progress reports scan progress on a terminal without
// corrupting piped or redirected output (spec §5: stderr progress,
// stdout reserved for the rendered result).
package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// StageFunc receives a (stage, detail) pair each time the orchestrator
// advances to a new step of the pipeline (discover, parse, merge,
// resolve, score, render).
type StageFunc func(stage, detail string)

const tickInterval = 90 * time.Millisecond

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on w while a scan runs. It is a no-op
// whenever w isn't a real terminal, so CI logs and piped output never
// see carriage-return spam — the same TTY gate the teacher's own
// progress indicator uses, rebuilt here with a braille frame set and a
// stage-aware Update instead of a flat message string.
type Spinner struct {
	mu      sync.Mutex
	writer  *os.File
	isTTY   bool
	active  bool
	message string
	frame   int
	stop    chan struct{}
}

// New creates a Spinner writing to w.
func New(w *os.File) *Spinner {
	return &Spinner{
		writer: w,
		isTTY:  isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()),
	}
}

// Start begins animating message. No-op off a TTY.
func (s *Spinner) Start(message string) {
	if !s.isTTY {
		return
	}
	s.mu.Lock()
	s.active = true
	s.message = message
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	go s.run(stop)
}

func (s *Spinner) run(stop chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.active {
				s.mu.Unlock()
				return
			}
			frame := frames[s.frame%len(frames)]
			msg := s.message
			s.frame++
			s.mu.Unlock()
			fmt.Fprintf(s.writer, "\r%s %s", frame, msg)
		}
	}
}

// OnStage adapts Spinner to StageFunc: it updates the displayed message
// to detail on every pipeline stage transition.
func (s *Spinner) OnStage(stage, detail string) {
	s.Update(detail)
}

// Update changes the in-flight message. Picked up on the next tick.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Stop halts the animation and prints final, or clears the line if
// final is empty. No-op off a TTY.
func (s *Spinner) Stop(final string) {
	if !s.isTTY {
		return
	}
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stop)
	s.mu.Unlock()

	if final != "" {
		fmt.Fprintf(s.writer, "\r%s\n", final)
	} else {
		fmt.Fprint(s.writer, "\r\033[K")
	}
}
