package fields

import (
	"errors"
	"fmt"
	"math"

	"github.com/csheth/leadcalc/internal/form"
)

// Field identifies one logical input of the calculator.
type Field string

const (
	Revenue         Field = "annualRevenue"
	RevenueCurrency Field = "currency"
	GrowthRate      Field = "annualGrowthRate"
	Runway          Field = "currentRunway"
	TermLength      Field = "termLength"
	GracePeriod     Field = "gracePeriod"
	Email           Field = "email"
)

// ErrUnknownField is returned by Apply for fields without an adapter.
var ErrUnknownField = errors.New("unknown field")

// Adapter turns a raw edit into the next aggregate. It must not mutate prev.
type Adapter func(raw any, prev form.Aggregate) (form.Aggregate, error)

var adapters = map[Field]Adapter{
	Revenue:         amountAdapter(func(a *form.Aggregate) **form.MonetaryAmount { return &a.AnnualRevenue }),
	RevenueCurrency: currencyAdapter,
	GrowthRate:      amountAdapter(func(a *form.Aggregate) **form.MonetaryAmount { return &a.AnnualGrowthRate }),
	Runway:          amountAdapter(func(a *form.Aggregate) **form.MonetaryAmount { return &a.CurrentRunway }),
	TermLength:      discreteAdapter(func(a *form.Aggregate) **form.MonetaryAmount { return &a.TermLength }, form.TermLengthMarks),
	GracePeriod:     discreteAdapter(func(a *form.Aggregate) **form.MonetaryAmount { return &a.GracePeriod }, form.GracePeriodOptions),
	Email:           emailAdapter,
}

// Apply runs the adapter registered for field.
func Apply(field Field, raw any, prev form.Aggregate) (form.Aggregate, error) {
	adapter, ok := adapters[field]
	if !ok {
		return prev, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return adapter(raw, prev)
}

// amountAdapter handles free numeric fields with the coerce-to-1 policy.
func amountAdapter(slot func(*form.Aggregate) **form.MonetaryAmount) Adapter {
	return func(raw any, prev form.Aggregate) (form.Aggregate, error) {
		next := prev.Clone()
		target := slot(&next)
		*target = replaceAmount(*target, form.CoercePositive(raw), next.RevenueCurrency())
		return next, nil
	}
}

// discreteAdapter snaps the raw value onto the control's stops so the stored
// value is always one of marks, whatever type the control emitted.
func discreteAdapter(slot func(*form.Aggregate) **form.MonetaryAmount, marks []int) Adapter {
	return func(raw any, prev form.Aggregate) (form.Aggregate, error) {
		value, ok := form.ToNumber(raw)
		if !ok {
			value = 1
		}
		next := prev.Clone()
		target := slot(&next)
		*target = replaceAmount(*target, form.PositiveNumber(Snap(value, marks)), next.RevenueCurrency())
		return next, nil
	}
}

func currencyAdapter(raw any, prev form.Aggregate) (form.Aggregate, error) {
	text, ok := raw.(string)
	if !ok {
		if c, isCurrency := raw.(form.Currency); isCurrency {
			text = string(c)
		}
	}
	currency, err := form.ParseCurrency(text)
	if err != nil {
		return prev, err
	}
	next := prev.Clone()
	if next.AnnualRevenue == nil {
		next.AnnualRevenue = form.Amount(1, currency)
	} else {
		updated := next.AnnualRevenue.WithCurrency(currency)
		next.AnnualRevenue = &updated
	}
	return next, nil
}

func emailAdapter(raw any, prev form.Aggregate) (form.Aggregate, error) {
	next := prev.Clone()
	switch v := raw.(type) {
	case string:
		next.Email = v
	case nil:
		next.Email = ""
	default:
		next.Email = fmt.Sprint(v)
	}
	return next, nil
}

// replaceAmount keeps the previous currency; a field edited for the first
// time picks up fallback.
func replaceAmount(prev *form.MonetaryAmount, amount form.PositiveNumber, fallback form.Currency) *form.MonetaryAmount {
	if prev == nil {
		return form.Amount(amount, fallback)
	}
	updated := prev.WithAmount(amount)
	return &updated
}

// Snap returns the mark closest to value. Ties resolve to the lower mark.
func Snap(value float64, marks []int) int {
	if len(marks) == 0 {
		return int(math.Round(value))
	}
	best := marks[0]
	bestDist := math.Abs(value - float64(best))
	for _, mark := range marks[1:] {
		dist := math.Abs(value - float64(mark))
		if dist < bestDist {
			best, bestDist = mark, dist
		}
	}
	return best
}
