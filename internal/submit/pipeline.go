package submit

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/csheth/leadcalc/internal/form"
)

// Request is one submission, tagged with the generation that issued it.
type Request struct {
	Generation uint64
	Form       form.Aggregate
}

// Outcome is the settled result of a Request. Err is nil on success.
type Outcome struct {
	Generation uint64
	Result     Result
	Err        error
	Duration   time.Duration
}

// Succeeded reports whether the outcome carries a result.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Pipeline runs requests against a Client. A zero Timeout leaves deadlines to
// the HTTP client and the caller's context.
type Pipeline struct {
	Client  Client
	Timeout time.Duration
}

var errNoClient = errors.New("no calculation client configured")

// Run performs the request once. It never retries and always returns an Outcome.
func (p Pipeline) Run(parent context.Context, req Request) Outcome {
	started := time.Now()
	if p.Client == nil {
		return Outcome{Generation: req.Generation, Err: &Error{Kind: KindTransport, Err: errNoClient}}
	}
	ctx := parent
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, p.Timeout)
		defer cancel()
	}
	result, err := p.Client.Calculate(ctx, req.Form)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = &Error{Kind: KindTimeout, Err: err}
	}
	outcome := Outcome{
		Generation: req.Generation,
		Result:     result,
		Err:        err,
		Duration:   time.Since(started),
	}
	if err != nil {
		outcome.Result = Result{}
	}
	log.Printf("[submit] generation=%d ok=%t (duration=%s, err=%v)", req.Generation, outcome.Succeeded(), outcome.Duration, err)
	return outcome
}

// Sinks receive the figures of a successful inline calculation. Nil sinks are skipped.
type Sinks struct {
	LoanAmount   func(float64)
	Interest     func(float64)
	Amortization func(float64)
}

// Deliver pushes each figure into its sink once.
func (s Sinks) Deliver(r Result) {
	if s.LoanAmount != nil {
		s.LoanAmount(r.LoanAmount)
	}
	if s.Interest != nil {
		s.Interest(r.Interest)
	}
	if s.Amortization != nil {
		s.Amortization(r.Amortization)
	}
}
