package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows a single-line progress indicator while the pipeline runs.
// It stops on its own when its context is cancelled.
type Spinner struct {
	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once

	started         atomic.Bool
	stoppedByCaller atomic.Bool

	mu      sync.Mutex
	message string
}

// newSpinner creates a spinner writing to stderr.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		message: message,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.started.Store(true)
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Update replaces the message shown next to the spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pad := len(s.message) - len(message); pad > 0 {
		message += strings.Repeat(" ", pad)
	}
	s.message = message
}

// Stop stops the spinner and clears its line. It is safe to call more than
// once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.stoppedByCaller.Store(s.ctx.Err() == nil)
		s.cancel()
		if s.started.Load() {
			<-s.stopped
		}
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// Cancelled reports whether the spinner ended because its parent context
// was cancelled rather than through Stop.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil && !s.stoppedByCaller.Load()
}
