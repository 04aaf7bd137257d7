package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/leadcalc/internal/controller"
	"github.com/csheth/leadcalc/internal/fields"
	"github.com/csheth/leadcalc/internal/submit"
)

func resolveCurrent(t *testing.T, m *model, result submit.Result, err error) {
	t.Helper()
	m.Update(calculationMsg{outcome: submit.Outcome{
		Generation: m.ctrl.Generation(),
		Result:     result,
		Err:        err,
	}})
}

func TestInlineInitRefreshesFigures(t *testing.T) {
	m := newTestModel(t, controller.ModeInline)
	if cmd := m.Init(); cmd == nil {
		t.Fatal("init should schedule the mount calculation")
	}
	if m.ctrl.State() != controller.Doing || m.ctrl.Generation() != 1 {
		t.Fatalf("expected DOING generation 1, got %s/%d", m.ctrl.State(), m.ctrl.Generation())
	}

	resolveCurrent(t, m, submit.Result{LoanAmount: 120000, Interest: 5.5}, nil)

	if !m.ctrl.Succeeded() {
		t.Fatal("figures should be visible after a successful calculation")
	}
	if m.figures.LoanAmount != 120000 || m.figures.Interest != 5.5 || m.figures.Amortization != 0 {
		t.Fatalf("unexpected figures: %+v", m.figures)
	}
	view := m.View()
	for _, want := range []string{"120,000 EUR", "5.50%", "0 months"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestInlineTypingStartsCalculation(t *testing.T) {
	m := newTestModel(t, controller.ModeInline)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("5")})
	if cmd == nil {
		t.Fatal("typing revenue should start a calculation")
	}
	agg := m.ctrl.Form()
	if agg.AnnualRevenue == nil || agg.AnnualRevenue.Amount != 5 {
		t.Fatalf("revenue not applied: %+v", agg.AnnualRevenue)
	}
	if m.ctrl.Generation() != 1 {
		t.Fatalf("expected one submission, got generation %d", m.ctrl.Generation())
	}
}

func TestStaleOutcomeIsIgnored(t *testing.T) {
	m := newTestModel(t, controller.ModeInline)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("5")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("0")})

	m.Update(calculationMsg{outcome: submit.Outcome{Generation: 1, Result: submit.Result{LoanAmount: 1}}})
	if m.ctrl.Succeeded() {
		t.Fatal("superseded outcome should not update figures")
	}
	if m.ctrl.State() != controller.Doing {
		t.Fatalf("latest submission should still be pending, got %s", m.ctrl.State())
	}

	resolveCurrent(t, m, submit.Result{LoanAmount: 50}, nil)
	if m.figures.LoanAmount != 50 {
		t.Fatalf("latest outcome not applied: %+v", m.figures)
	}
}

func TestInlineFailureKeepsFormEditable(t *testing.T) {
	m := newTestModel(t, controller.ModeInline)
	m.Init()
	resolveCurrent(t, m, submit.Result{}, &submit.Error{Kind: submit.KindStatus, Status: 500, Err: errors.New("boom")})

	if m.ctrl.State() != controller.Idle {
		t.Fatalf("state should return to IDLE, got %s", m.ctrl.State())
	}
	if !strings.Contains(m.errMessage, "HTTP 500") {
		t.Fatalf("unexpected error message %q", m.errMessage)
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")}); cmd == nil {
		t.Fatal("editing after a failure should resubmit")
	}
	if m.errMessage != "" {
		t.Fatalf("error should clear on the next edit, got %q", m.errMessage)
	}
}

func TestChoiceKeysStepThroughOptions(t *testing.T) {
	m := newTestModel(t, controller.ModeInline)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if field, _ := m.focusedField(); field != fields.RevenueCurrency {
		t.Fatalf("expected currency focus, got %q", field)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	agg := m.ctrl.Form()
	if agg.AnnualRevenue == nil || agg.AnnualRevenue.Currency != "EUR" || agg.AnnualRevenue.Amount != 1 {
		t.Fatalf("first currency pick should create revenue 1 EUR, got %+v", agg.AnnualRevenue)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := m.ctrl.Form().AnnualRevenue.Currency; got != "USD" {
		t.Fatalf("expected USD, got %s", got)
	}

	// Already at the last choice.
	before := m.ctrl.Generation()
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight}); cmd != nil {
		t.Fatal("stepping past the last choice should be a no-op")
	}
	if m.ctrl.Generation() != before {
		t.Fatal("no submission expected at the end of the choices")
	}
}

func TestFocusWrapsAround(t *testing.T) {
	m := newTestModel(t, controller.ModeStandalone)
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if !m.focusedOnButton() {
		t.Fatalf("shift+tab from the first field should land on the button, focus=%d", m.focus)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if field, _ := m.focusedField(); field != fields.Revenue {
		t.Fatalf("tab from the button should wrap to revenue, got %q", field)
	}
	if !m.revenueInput.Focused() {
		t.Fatal("revenue input should be focused")
	}
}

func TestStandaloneRequiresEmail(t *testing.T) {
	m := newTestModel(t, controller.ModeStandalone)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Fatal("submit without email should not dispatch")
	}
	if !strings.Contains(m.errMessage, "email") {
		t.Fatalf("expected email prompt, got %q", m.errMessage)
	}
	if field, _ := m.focusedField(); field != fields.Email {
		t.Fatalf("focus should jump to email, got %q", field)
	}
	if !m.emailInput.Focused() {
		t.Fatal("email input should be focused")
	}
}

func TestStandaloneSubmitShowsResults(t *testing.T) {
	m := newTestModel(t, controller.ModeStandalone)
	if cmd := m.change(fields.Revenue, "250000"); cmd != nil {
		t.Fatal("standalone edits should not dispatch")
	}
	m.change(fields.Email, "founder@example.com")

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); cmd == nil {
		t.Fatal("submit should dispatch a calculation")
	}
	if !strings.Contains(m.View(), "Calculating") {
		t.Fatal("button should read Calculating while pending")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !strings.Contains(m.infoMessage, "Already") {
		t.Fatalf("second submit should be rejected as busy, got %q", m.infoMessage)
	}

	resolveCurrent(t, m, submit.Result{LoanAmount: 1}, nil)
	if m.stage != stageResults {
		t.Fatalf("expected results stage, got %v", m.stage)
	}
	view := m.View()
	for _, want := range []string{"Thanks!", "250,000 EUR", "founder@example.com"} {
		if !strings.Contains(view, want) {
			t.Fatalf("results view missing %q:\n%s", want, view)
		}
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Fatal("q should quit from the results page")
	}
}

func TestStandaloneFailureAllowsRetry(t *testing.T) {
	m := newTestModel(t, controller.ModeStandalone)
	m.change(fields.Email, "founder@example.com")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	resolveCurrent(t, m, submit.Result{}, &submit.Error{Kind: submit.KindTimeout, Err: errors.New("deadline")})
	if m.stage != stageForm {
		t.Fatal("failure should keep the form visible")
	}
	if !strings.Contains(m.errMessage, "in time") {
		t.Fatalf("unexpected error %q", m.errMessage)
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); cmd == nil {
		t.Fatal("retry should dispatch again")
	}
	if m.ctrl.Generation() != 2 {
		t.Fatalf("expected generation 2, got %d", m.ctrl.Generation())
	}
}

func TestWindowSizeClampsWrapWidth(t *testing.T) {
	m := newTestModel(t, controller.ModeInline)
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	if m.wrapWidth != minWrapWidth {
		t.Fatalf("expected %d, got %d", minWrapWidth, m.wrapWidth)
	}
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.wrapWidth != 120-horizontalMargin {
		t.Fatalf("expected %d, got %d", 120-horizontalMargin, m.wrapWidth)
	}
}

func TestEmailHiddenInline(t *testing.T) {
	m := newTestModel(t, controller.ModeInline)
	for _, spec := range m.specs {
		if spec.Field == fields.Email {
			t.Fatal("inline form should not show the email field")
		}
	}
	if strings.Contains(m.View(), "Ctrl+S") {
		t.Fatal("inline legend should not advertise submit")
	}
}
