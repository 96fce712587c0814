package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner draws a progress indicator on w until stopped or until its
// context ends.
type Spinner struct {
	w       io.Writer
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

// newSpinner creates a spinner bound to ctx. Start must be called before Stop.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the animation and clears the line. Repeated calls are no-ops.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
		s.mu.Lock()
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
		s.mu.Unlock()
	})
}

// StopWithSuccess stops the spinner and leaves a success line in its place.
func (s *Spinner) StopWithSuccess(format string, args ...any) {
	s.Stop()
	fmt.Fprintln(s.w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

// StopWithError stops the spinner and leaves an error line in its place.
func (s *Spinner) StopWithError(format string, args ...any) {
	s.Stop()
	fmt.Fprintln(s.w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

// Cancelled reports whether the context the spinner was created with has
// ended, as opposed to the spinner being stopped normally.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
