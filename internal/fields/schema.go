package fields

import (
	"fmt"

	"github.com/csheth/leadcalc/internal/form"
)

// Kind tells a presentation which control renders a field.
type Kind int

const (
	KindText Kind = iota
	KindSelect
	KindSlider
	KindRadio
)

// Choice is a selectable value and the raw edit it produces.
type Choice struct {
	Label string
	Value any
}

// Spec describes one rendered control.
type Spec struct {
	Field          Field
	Label          string
	Placeholder    string
	Kind           Kind
	Choices        []Choice
	StandaloneOnly bool
}

// Schema lists the controls in display order.
func Schema() []Spec {
	return []Spec{
		{Field: Revenue, Label: "Annual recurring revenue", Placeholder: "500000", Kind: KindText},
		{Field: RevenueCurrency, Label: "Currency", Kind: KindSelect, Choices: currencyChoices()},
		{Field: GrowthRate, Label: "Annual growth rate", Kind: KindSelect, Choices: optionChoices(form.GrowthRateOptions)},
		{Field: Runway, Label: "Current runway", Kind: KindSelect, Choices: optionChoices(form.RunwayOptions)},
		{Field: TermLength, Label: "Term length in months", Kind: KindSlider, Choices: monthChoices(form.TermLengthMarks, "%d")},
		{Field: GracePeriod, Label: "Grace period", Kind: KindRadio, Choices: monthChoices(form.GracePeriodOptions, "%d Months")},
		{Field: Email, Label: "Email", Placeholder: "Enter your email", Kind: KindText, StandaloneOnly: true},
	}
}

// Visible filters the schema for the given embedding.
func Visible(standalone bool) []Spec {
	all := Schema()
	out := make([]Spec, 0, len(all))
	for _, spec := range all {
		if spec.StandaloneOnly && !standalone {
			continue
		}
		out = append(out, spec)
	}
	return out
}

// SelectedChoice returns the index of the choice matching the aggregate's
// current value for spec, or -1 when the field is unset.
func SelectedChoice(spec Spec, agg form.Aggregate) int {
	current, ok := currentValue(spec.Field, agg)
	if !ok {
		return -1
	}
	for i, choice := range spec.Choices {
		if fmt.Sprint(choice.Value) == current {
			return i
		}
	}
	return -1
}

func currentValue(field Field, agg form.Aggregate) (string, bool) {
	var amount *form.MonetaryAmount
	switch field {
	case RevenueCurrency:
		if agg.AnnualRevenue == nil {
			return "", false
		}
		return string(agg.AnnualRevenue.Currency), true
	case GrowthRate:
		amount = agg.AnnualGrowthRate
	case Runway:
		amount = agg.CurrentRunway
	case TermLength:
		amount = agg.TermLength
	case GracePeriod:
		amount = agg.GracePeriod
	default:
		return "", false
	}
	if amount == nil {
		return "", false
	}
	return fmt.Sprint(int(amount.Amount)), true
}

func currencyChoices() []Choice {
	out := make([]Choice, 0, len(form.Currencies()))
	for _, c := range form.Currencies() {
		out = append(out, Choice{Label: string(c), Value: string(c)})
	}
	return out
}

func optionChoices(options []form.Option) []Choice {
	out := make([]Choice, 0, len(options))
	for _, opt := range options {
		out = append(out, Choice{Label: opt.Label, Value: int(opt.Amount)})
	}
	return out
}

func monthChoices(marks []int, format string) []Choice {
	out := make([]Choice, 0, len(marks))
	for _, mark := range marks {
		out = append(out, Choice{Label: fmt.Sprintf(format, mark), Value: mark})
	}
	return out
}
