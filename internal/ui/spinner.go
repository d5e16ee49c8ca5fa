package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Status glyphs for a finished spinner.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
)

// ANSI colors so the spinner follows the user's terminal theme.
const (
	ColorSuccess lipgloss.Color = "2"
	ColorError   lipgloss.Color = "1"
	ColorActive  lipgloss.Color = "6"
	ColorMuted   lipgloss.Color = "8"
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const frameInterval = 80 * time.Millisecond

// Spinner draws an animated "label..." line on w until Done is called.
type Spinner struct {
	mu        sync.Mutex
	w         io.Writer
	label     string
	frame     int
	startTime time.Time
	running   bool
	lastWidth int
	stop      chan struct{}
	done      chan struct{}
}

// NewSpinner creates a stopped spinner writing to w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{w: w, label: label}
}

// Start begins the animation. Calling Start twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.startTime = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.renderLocked()
	s.mu.Unlock()

	go s.animate()
}

// Done stops the animation and leaves a final line: a check mark when err is
// nil, a cross otherwise.
func (s *Spinner) Done(err error) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	symbol := lipgloss.NewStyle().Foreground(ColorSuccess).Render(SymbolSuccess)
	if err != nil {
		symbol = lipgloss.NewStyle().Foreground(ColorError).Render(SymbolFail)
	}
	timing := lipgloss.NewStyle().Foreground(ColorMuted).Render(FormatElapsed(time.Since(s.startTime)))
	s.clearLocked()
	fmt.Fprintf(s.w, "%s %s %s\n", symbol, s.label, timing)
}

// Running reports whether the animation is active.
func (s *Spinner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.renderLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) renderLocked() {
	glyph := lipgloss.NewStyle().Foreground(ColorActive).Render(spinnerFrames[s.frame])
	line := fmt.Sprintf("%s %s...", glyph, s.label)
	s.clearLocked()
	fmt.Fprint(s.w, line)
	s.lastWidth = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.lastWidth == 0 {
		return
	}
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.lastWidth)+"\r")
	s.lastWidth = 0
}

// Track runs fn behind a spinner on w. A nil w runs fn without any output.
func Track(w io.Writer, label string, fn func() error) error {
	if w == nil {
		return fn()
	}
	s := NewSpinner(w, label)
	s.Start()
	err := fn()
	s.Done(err)
	return err
}

// FormatElapsed formats a duration for display (e.g., "0.05s", "1.2s").
func FormatElapsed(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
