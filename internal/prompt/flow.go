// Package prompt runs the standalone calculator as a sequence of terminal
// questions instead of a full-screen form.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/csheth/leadcalc/internal/controller"
	"github.com/csheth/leadcalc/internal/fields"
	"github.com/csheth/leadcalc/internal/form"
	"github.com/csheth/leadcalc/internal/submit"
)

// Flow asks for every standalone field, submits, and offers a retry on
// failure.
type Flow struct {
	Driver   Driver
	Pipeline submit.Pipeline
}

// Summary describes a finished flow.
type Summary struct {
	Form     form.Aggregate
	Result   submit.Result
	Attempts int
}

// Run drives a standalone controller to the results phase. It returns
// ErrAborted when the user interrupts a prompt or declines a retry.
func (f Flow) Run(ctx context.Context) (Summary, error) {
	if f.Driver == nil {
		return Summary{}, errors.New("prompt: driver is required")
	}
	ctrl := controller.New(controller.Options{Mode: controller.ModeStandalone})
	if err := f.Driver.Info(ctx, "See What You Can Get"); err != nil {
		return Summary{}, err
	}
	for _, spec := range fields.Visible(true) {
		raw, err := f.ask(ctx, spec, ctrl.Form())
		if err != nil {
			return Summary{}, err
		}
		if _, _, err := ctrl.Change(spec.Field, raw); err != nil {
			return Summary{}, fmt.Errorf("apply %s: %w", spec.Field, err)
		}
	}

	attempts := 0
	for {
		req, err := ctrl.Submit()
		if err != nil {
			return Summary{}, err
		}
		attempts++
		if err := f.Driver.Info(ctx, "Calculating…"); err != nil {
			return Summary{}, err
		}
		out := f.Pipeline.Run(ctx, req)
		ctrl.Resolve(out)
		if ctrl.Finished() {
			summary := Summary{Form: ctrl.Form(), Result: out.Result, Attempts: attempts}
			return summary, f.Driver.Info(ctx, renderSummary(summary))
		}
		log.Printf("[prompt] attempt %d failed: %v", attempts, ctrl.LastError())
		if err := f.Driver.Info(ctx, submit.Describe(ctrl.LastError())); err != nil {
			return Summary{}, err
		}
		retry, err := f.Driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
		if err != nil {
			return Summary{}, err
		}
		if !retry {
			return Summary{Form: ctrl.Form(), Attempts: attempts}, ErrAborted
		}
	}
}

func (f Flow) ask(ctx context.Context, spec fields.Spec, current form.Aggregate) (any, error) {
	switch spec.Kind {
	case fields.KindText:
		return f.Driver.Input(ctx, InputConfig{
			Message:   spec.Label,
			Help:      spec.Placeholder,
			Validator: validatorFor(spec.Field),
		})
	default:
		options := make([]string, 0, len(spec.Choices))
		for _, choice := range spec.Choices {
			options = append(options, choice.Label)
		}
		def := fields.SelectedChoice(spec, current)
		if def < 0 {
			def = 0
		}
		idx, err := f.Driver.Select(ctx, SelectConfig{Message: spec.Label, Options: options, DefaultIndex: def})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(spec.Choices) {
			return nil, fmt.Errorf("prompt: %s: choice %d out of range", spec.Field, idx)
		}
		return spec.Choices[idx].Value, nil
	}
}

func validatorFor(field fields.Field) func(string) error {
	switch field {
	case fields.Revenue:
		return func(value string) error {
			if _, ok := form.ToPositiveNumber(value); !ok {
				return errors.New("enter a whole number greater than zero")
			}
			return nil
		}
	case fields.Email:
		return func(value string) error {
			if strings.TrimSpace(value) == "" {
				return controller.ErrEmailRequired
			}
			return nil
		}
	default:
		return nil
	}
}

func renderSummary(s Summary) string {
	var b strings.Builder
	b.WriteString("Thanks! Here is what we received:\n")
	line := func(label string, amount *form.MonetaryAmount, unit string) {
		if amount == nil {
			return
		}
		if unit == "" {
			unit = string(amount.Currency)
		}
		fmt.Fprintf(&b, "  %-14s %.0f %s\n", label, amount.Amount, unit)
	}
	line("Revenue", s.Form.AnnualRevenue, "")
	line("Growth", s.Form.AnnualGrowthRate, "%")
	line("Runway", s.Form.CurrentRunway, "months")
	line("Term", s.Form.TermLength, "months")
	line("Grace period", s.Form.GracePeriod, "months")
	fmt.Fprintf(&b, "  %-14s %s", "Email", s.Form.Email)
	return b.String()
}
