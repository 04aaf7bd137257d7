// Package controller owns calculator state: the form aggregate, the action
// state, the standalone phase and the submission generation.
//
// The controller never performs I/O. Change and Submit hand back a
// submit.Request for the caller to run (as a bubbletea command, or inline in
// the prompt flow); the settled submit.Outcome is fed back through Resolve.
package controller

import (
	"errors"
	"strings"

	"github.com/csheth/leadcalc/internal/fields"
	"github.com/csheth/leadcalc/internal/form"
	"github.com/csheth/leadcalc/internal/submit"
)

// Mode is fixed when the controller is built.
type Mode int

const (
	ModeInline Mode = iota
	ModeStandalone
)

func (m Mode) String() string {
	if m == ModeStandalone {
		return "standalone"
	}
	return "inline"
}

// ParseMode accepts "inline" (alias "inner") and "standalone".
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "inline", "inner":
		return ModeInline, nil
	case "standalone", "full":
		return ModeStandalone, nil
	default:
		return ModeInline, errors.New("mode must be inline or standalone")
	}
}

// ActionState tracks whether a submission is in flight.
type ActionState int

const (
	Idle ActionState = iota
	Doing
)

func (s ActionState) String() string {
	if s == Doing {
		return "DOING"
	}
	return "IDLE"
}

// Phase only moves in standalone mode, and only forward.
type Phase int

const (
	PhaseForm Phase = iota
	PhaseResults
)

func (p Phase) String() string {
	if p == PhaseResults {
		return "RESULTS"
	}
	return "FORM"
}

var (
	ErrInlineSubmit  = errors.New("explicit submit is only available in standalone mode")
	ErrBusy          = errors.New("a calculation is already running")
	ErrEmailRequired = errors.New("email is required")
	ErrFinished      = errors.New("results already shown; reload to start over")
)

// Options configure a Controller.
type Options struct {
	Mode  Mode
	Sinks submit.Sinks
	Form  form.Aggregate
}

// Controller is not safe for concurrent use; all calls are expected from the
// single event loop that owns it.
type Controller struct {
	mode       Mode
	sinks      submit.Sinks
	form       form.Aggregate
	state      ActionState
	phase      Phase
	generation uint64
	lastErr    error
	succeeded  bool
}

// New builds a controller in FORM/IDLE.
func New(opts Options) *Controller {
	return &Controller{
		mode:  opts.Mode,
		sinks: opts.Sinks,
		form:  opts.Form.Clone(),
	}
}

func (c *Controller) Mode() Mode { return c.mode }
func (c *Controller) State() ActionState { return c.state }
func (c *Controller) Phase() Phase { return c.phase }
func (c *Controller) Generation() uint64 { return c.generation }
func (c *Controller) LastError() error { return c.lastErr }
func (c *Controller) Succeeded() bool { return c.succeeded }
func (c *Controller) Form() form.Aggregate { return c.form.Clone() }
func (c *Controller) Standalone() bool { return c.mode == ModeStandalone }
func (c *Controller) Finished() bool { return c.phase == PhaseResults }

// Label is the submit button caption for the current action state.
func (c *Controller) Label() string {
	if c.state == Doing {
		return "Calculating"
	}
	return "Calculate"
}

// Change applies one field edit. In inline mode it also starts a submission
// of the updated form and returns it with ok set.
func (c *Controller) Change(field fields.Field, raw any) (req submit.Request, ok bool, err error) {
	if c.Finished() {
		return submit.Request{}, false, ErrFinished
	}
	next, err := fields.Apply(field, raw, c.form)
	if err != nil {
		return submit.Request{}, false, err
	}
	c.form = next
	if c.mode != ModeInline {
		return submit.Request{}, false, nil
	}
	return c.begin(), true, nil
}

// Refresh starts an inline submission of the current form without an edit,
// as happens when the calculator is first mounted.
func (c *Controller) Refresh() (submit.Request, bool) {
	if c.mode != ModeInline {
		return submit.Request{}, false
	}
	return c.begin(), true
}

// Submit starts a standalone submission.
func (c *Controller) Submit() (submit.Request, error) {
	switch {
	case c.mode != ModeStandalone:
		return submit.Request{}, ErrInlineSubmit
	case c.Finished():
		return submit.Request{}, ErrFinished
	case c.state == Doing:
		return submit.Request{}, ErrBusy
	case strings.TrimSpace(c.form.Email) == "":
		c.lastErr = ErrEmailRequired
		return submit.Request{}, ErrEmailRequired
	}
	return c.begin(), nil
}

func (c *Controller) begin() submit.Request {
	c.generation++
	c.state = Doing
	c.lastErr = nil
	return submit.Request{Generation: c.generation, Form: c.form.Clone()}
}

// Resolve applies an outcome. Outcomes from superseded generations are
// dropped and Resolve reports false.
func (c *Controller) Resolve(out submit.Outcome) bool {
	if out.Generation != c.generation || c.state != Doing {
		return false
	}
	c.state = Idle
	if !out.Succeeded() {
		c.lastErr = out.Err
		return true
	}
	c.lastErr = nil
	c.succeeded = true
	if c.mode == ModeStandalone {
		c.phase = PhaseResults
		return true
	}
	c.sinks.Deliver(out.Result)
	return true
}
