package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/csheth/leadcalc/internal/form"
	"github.com/csheth/leadcalc/internal/submit"
)

type calculationMsg struct {
	outcome submit.Outcome
}

func calculateJob(pipeline submit.Pipeline, req submit.Request) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		outcome := pipeline.Run(parent, req)
		return calculationMsg{outcome: outcome}, outcome.Err
	}
}

var numberPrinter = message.NewPrinter(language.English)

func formatMoney(value float64, currency form.Currency) string {
	if currency == "" {
		currency = form.DefaultCurrency
	}
	return numberPrinter.Sprintf("%.0f %s", value, currency)
}

func formatPercent(value float64) string {
	return numberPrinter.Sprintf("%.2f%%", value)
}

func formatMonths(value float64) string {
	if value == 1 {
		return "1 month"
	}
	return numberPrinter.Sprintf("%.0f months", value)
}

func describeAmount(m *form.MonetaryAmount, render func(*form.MonetaryAmount) string) string {
	if m == nil {
		return "-"
	}
	return render(m)
}

const maxEmailWidth = 48

// trimmedEmail fits an address into maxEmailWidth terminal cells.
func trimmedEmail(value string) string {
	value = strings.TrimSpace(value)
	if ansi.PrintableRuneWidth(value) <= maxEmailWidth {
		return value
	}
	return truncate.StringWithTail(value, maxEmailWidth, "…")
}
