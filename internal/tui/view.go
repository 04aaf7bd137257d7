package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/leadcalc/internal/controller"
	"github.com/csheth/leadcalc/internal/fields"
	"github.com/csheth/leadcalc/internal/form"
)

type keyHint struct {
	Key         string
	Description string
}

func (m *model) View() string {
	switch m.stage {
	case stageResults:
		return m.viewResults()
	default:
		return m.viewForm()
	}
}

func (m *model) viewForm() string {
	parts := []string{m.heroView(), m.formView()}
	if !m.ctrl.Standalone() {
		parts = append(parts, m.figuresView())
	} else {
		parts = append(parts, m.buttonView())
	}
	parts = append(parts, m.messagesView(), m.keyLegendView(), m.statusLine())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		heroBoxStyle.Render(heroTitleStyle.Render(heroTitle)),
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) formView() string {
	agg := m.ctrl.Form()
	focused, _ := m.focusedField()
	rows := make([]string, 0, len(m.specs))
	for _, spec := range m.specs {
		label := labelStyle.Render(spec.Label)
		if spec.Field == focused && !m.focusedOnButton() {
			label = focusedLabelStyle.Render("› " + spec.Label)
		}
		rows = append(rows, label+"\n"+m.controlView(spec, agg))
	}
	return strings.Join(rows, "\n\n")
}

func (m *model) controlView(spec fields.Spec, agg form.Aggregate) string {
	switch spec.Kind {
	case fields.KindText:
		if input := m.inputFor(spec.Field); input != nil {
			return input.View()
		}
		return ""
	case fields.KindSlider:
		return m.sliderView(spec, agg)
	default:
		return m.choicesView(spec, agg)
	}
}

func (m *model) choicesView(spec fields.Spec, agg form.Aggregate) string {
	selected := fields.SelectedChoice(spec, agg)
	cells := make([]string, 0, len(spec.Choices))
	for idx, choice := range spec.Choices {
		label := choice.Label
		if spec.Kind == fields.KindRadio {
			if idx == selected {
				label = "◉ " + label
			} else {
				label = "○ " + label
			}
		}
		if idx == selected {
			cells = append(cells, chosenStyle.Render(label))
			continue
		}
		cells = append(cells, choiceStyle.Render(label))
	}
	return wordwrap.String(lipgloss.JoinHorizontal(lipgloss.Top, cells...), m.wrapWidth)
}

func (m *model) sliderView(spec fields.Spec, agg form.Aggregate) string {
	selected := fields.SelectedChoice(spec, agg)
	var track strings.Builder
	labels := make([]string, 0, len(spec.Choices))
	for idx, choice := range spec.Choices {
		if idx > 0 {
			track.WriteString("────")
		}
		if idx == selected {
			track.WriteString("●")
		} else {
			track.WriteString("○")
		}
		labels = append(labels, fmt.Sprintf("%-5s", choice.Label))
	}
	return track.String() + "\n" + helperStyle.Render(strings.Join(labels, ""))
}

func (m *model) buttonView() string {
	label := m.ctrl.Label()
	if m.ctrl.State() == controller.Doing {
		label = fmt.Sprintf("%s %s", m.spinner.View(), label)
	}
	if m.focusedOnButton() {
		return buttonFocusStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

func (m *model) figuresView() string {
	currency := m.ctrl.Form().RevenueCurrency()
	header := sectionHeaderStyle.Render("Your offer")
	if m.ctrl.State() == controller.Doing {
		header = fmt.Sprintf("%s %s", header, m.spinner.View())
	}
	if !m.ctrl.Succeeded() {
		return figuresBoxStyle.Render(header + "\n" + helperStyle.Render("Waiting for the first calculation."))
	}
	rows := []string{
		header,
		fmt.Sprintf("Loan amount   %s", formatMoney(m.figures.LoanAmount, currency)),
		fmt.Sprintf("Interest      %s", formatPercent(m.figures.Interest)),
		fmt.Sprintf("Amortization  %s", formatMonths(m.figures.Amortization)),
	}
	return figuresBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) messagesView() string {
	var parts []string
	if m.errMessage != "" {
		parts = append(parts, errorStyle.Render(wordwrap.String(m.errMessage, m.wrapWidth)))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(wordwrap.String(m.infoMessage, m.wrapWidth)))
	}
	return strings.Join(parts, "\n")
}

func (m *model) viewResults() string {
	agg := m.ctrl.Form()
	currency := agg.RevenueCurrency()
	money := func(a *form.MonetaryAmount) string { return formatMoney(a.Amount.Float(), a.Currency) }
	months := func(a *form.MonetaryAmount) string { return formatMonths(a.Amount.Float()) }
	rows := []string{
		sectionHeaderStyle.Render("Thanks! Here is what we received"),
		fmt.Sprintf("Revenue        %s", describeAmount(agg.AnnualRevenue, money)),
		fmt.Sprintf("Growth         %s", describeAmount(agg.AnnualGrowthRate, func(a *form.MonetaryAmount) string { return formatPercent(a.Amount.Float()) })),
		fmt.Sprintf("Runway         %s", describeAmount(agg.CurrentRunway, months)),
		fmt.Sprintf("Term           %s", describeAmount(agg.TermLength, months)),
		fmt.Sprintf("Grace period   %s", describeAmount(agg.GracePeriod, months)),
		fmt.Sprintf("Email          %s", trimmedEmail(agg.Email)),
		"",
		helperStyle.Render(fmt.Sprintf("Your offer in %s will be sent to your inbox shortly.", currency)),
	}
	return joinNonEmpty([]string{
		m.heroView(),
		resultsBoxStyle.Render(strings.Join(rows, "\n")),
		m.messagesView(),
		m.statusLine(),
	})
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"Tab/↓", "Next field"},
		{"Shift+Tab/↑", "Previous field"},
		{"←/→", "Change choice"},
	}
	if m.ctrl.Standalone() {
		hints = append(hints, keyHint{"Ctrl+S", "Calculate"})
	}
	hints = append(hints, keyHint{"Esc", "Quit"})
	cells := make([]string, 0, len(hints))
	for _, hint := range hints {
		key := keyStyle.Render(hint.Key)
		desc := keyDescStyle.Render(" " + hint.Description)
		cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
	}
	return wordwrap.String(strings.Join(cells, "  "), m.wrapWidth)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
