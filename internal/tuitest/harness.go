// Package tuitest drives a built terminal program through a pseudo terminal
// and records what it draws.
package tuitest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 100
	defaultHeight  = 40
	defaultTimeout = 10 * time.Second
	pollInterval   = 20 * time.Millisecond
)

// Step is one scripted interaction. The harness first sleeps for Delay, then
// blocks until the screen shows WaitFor (when set), then writes Input.
type Step struct {
	Delay   time.Duration
	WaitFor string
	Input   []byte
}

// Config describes the program to run and the script to replay against it.
type Config struct {
	Command []string
	Dir     string
	Env     []string
	Width   int
	Height  int
	Steps   []Step
	Timeout time.Duration
}

// Recording holds everything the program wrote plus the parsed frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// Run starts cfg.Command in a pty, replays the script and waits for the
// program to exit on its own. The whole run is bounded by cfg.Timeout.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	cfg = withDefaults(cfg)
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(cfg.Height), Cols: uint16(cfg.Width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	screen := newScreen(ptmx)
	go screen.pump(ptmx)

	started := time.Now()
	for i, step := range cfg.Steps {
		if err := screen.play(ctx, step); err != nil {
			return screen.recording(started), fmt.Errorf("tuitest: step %d: %w", i, err)
		}
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	select {
	case err := <-exited:
		if err != nil {
			return screen.recording(started), fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		return screen.recording(started), fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}

	// Closing the pty ends the pump once the kernel buffer is drained.
	_ = ptmx.Close()
	<-screen.done
	return screen.recording(started), nil
}

func withDefaults(cfg Config) Config {
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// screen accumulates program output and answers terminal queries.
type screen struct {
	mu        sync.Mutex
	out       []byte
	responder *terminalResponder
	done      chan struct{}
	input     interface{ Write([]byte) (int, error) }
}

func newScreen(ptmx *os.File) *screen {
	return &screen{
		responder: newTerminalResponder(ptmx),
		done:      make(chan struct{}),
		input:     ptmx,
	}
}

func (s *screen) pump(ptmx *os.File) {
	defer close(s.done)
	buf := make([]byte, 4096)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			s.responder.Process(chunk)
			s.mu.Lock()
			s.out = append(s.out, chunk...)
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *screen) snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.out...)
}

// shows reports whether needle appears anywhere in the output seen so far,
// ignoring escape sequences.
func (s *screen) shows(needle string) bool {
	return strings.Contains(stripANSI(string(s.snapshot())), needle)
}

func (s *screen) play(ctx context.Context, step Step) error {
	if step.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step.Delay):
		}
	}
	if step.WaitFor != "" {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for !s.shows(step.WaitFor) {
			select {
			case <-ctx.Done():
				return fmt.Errorf("waiting for %q: %w", step.WaitFor, ctx.Err())
			case <-ticker.C:
			}
		}
	}
	if len(step.Input) == 0 {
		return nil
	}
	if _, err := s.input.Write(step.Input); err != nil {
		return fmt.Errorf("write input: %w", err)
	}
	return nil
}

func (s *screen) recording(started time.Time) *Recording {
	raw := s.snapshot()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(started)}
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

// Type writes text as if typed, after a short pause.
func Type(text string) Step {
	return Step{Delay: keyGap, Input: []byte(text)}
}

// Press sends one key after a short pause.
func Press(key []byte) Step {
	return Step{Delay: keyGap, Input: key}
}

// WaitFor blocks the script until the screen shows text.
func WaitFor(text string) Step {
	return Step{WaitFor: text}
}

// keyGap keeps consecutive keys in separate reads on the program side.
const keyGap = 50 * time.Millisecond

var (
	KeyEnter    = []byte{'\r'}
	KeyTab      = []byte{'\t'}
	KeyShiftTab = []byte("\x1b[Z")
	KeyCtrlS    = []byte{19}
	KeyEsc      = []byte{27}
	KeyUp       = []byte("\x1b[A")
	KeyDown     = []byte("\x1b[B")
	KeyRight    = []byte("\x1b[C")
	KeyLeft     = []byte("\x1b[D")
)
