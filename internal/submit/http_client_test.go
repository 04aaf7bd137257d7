package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/csheth/leadcalc/internal/form"
)

func fixtureForm() form.Aggregate {
	return form.Aggregate{
		AnnualRevenue:    form.Amount(500000, form.EUR),
		AnnualGrowthRate: form.Amount(80, form.EUR),
		CurrentRunway:    form.Amount(9, form.EUR),
		TermLength:       form.Amount(12, form.EUR),
		GracePeriod:      form.Amount(3, form.EUR),
		Email:            "a@b.com",
	}
}

func TestCalculatePostsStringifiedForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/website/calculate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		var payload struct {
			StringifiedFormData string `json:"stringifiedFormData"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		var inner map[string]any
		if err := json.Unmarshal([]byte(payload.StringifiedFormData), &inner); err != nil {
			t.Fatalf("stringified form is not JSON: %v", err)
		}
		if inner["email"] != "a@b.com" {
			t.Fatalf("email missing from form: %v", inner)
		}
		revenue, _ := inner["annualRevenue"].(map[string]any)
		if revenue["amount"] != float64(500000) || revenue["currency"] != "EUR" {
			t.Fatalf("unexpected revenue: %v", revenue)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"loanAmount":120000,"interest":5.5}`))
	}))
	defer server.Close()

	client := NewFromEnv(Config{BaseURL: server.URL + "/", HTTPClient: server.Client()})
	result, err := client.Calculate(context.Background(), fixtureForm())
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	want := Result{LoanAmount: 120000, Interest: 5.5, Amortization: 0}
	if result != want {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCalculateEmptyFormSendsEmptyObject(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			StringifiedFormData string `json:"stringifiedFormData"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		got = payload.StringifiedFormData
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewFromEnv(Config{BaseURL: server.URL, HTTPClient: server.Client()})
	result, err := client.Calculate(context.Background(), form.Aggregate{})
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if got != "{}" {
		t.Fatalf("expected empty object, got %q", got)
	}
	if result != (Result{}) {
		t.Fatalf("missing fields should default to zero, got %+v", result)
	}
}

func TestCalculateClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    Kind
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			kind: KindStatus,
		},
		{
			name: "decode",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			},
			kind: KindDecode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()
			client := NewFromEnv(Config{BaseURL: server.URL, HTTPClient: server.Client()})
			_, err := client.Calculate(context.Background(), fixtureForm())
			if !IsKind(err, tt.kind) {
				t.Fatalf("expected %s error, got %v", tt.kind, err)
			}
		})
	}
}

func TestCalculateStatusErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "email rejected", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewFromEnv(Config{BaseURL: server.URL, HTTPClient: server.Client()})
	_, err := client.Calculate(context.Background(), fixtureForm())
	if err == nil || !strings.Contains(err.Error(), "email rejected") {
		t.Fatalf("expected body in error, got %v", err)
	}
	if !strings.Contains(Describe(err), "422") {
		t.Fatalf("describe should mention status: %q", Describe(err))
	}
}

func TestCalculateTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewFromEnv(Config{BaseURL: url, HTTPClient: &http.Client{Timeout: time.Second}})
	_, err := client.Calculate(context.Background(), fixtureForm())
	if !IsKind(err, KindTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestNewFromEnvReadsEndpoint(t *testing.T) {
	t.Setenv("LEADCALC_ENDPOINT", "https://calc.example.com/")
	client, ok := NewFromEnv(Config{}).(*httpClient)
	if !ok {
		t.Fatalf("expected *httpClient")
	}
	if client.base != "https://calc.example.com" {
		t.Fatalf("unexpected base: %s", client.base)
	}
	if client.client.Timeout != defaultHTTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultHTTPTimeout, client.client.Timeout)
	}
}

func TestReadLimitedRejectsOversizedBodies(t *testing.T) {
	_, err := readLimited(strings.NewReader("0123456789"), 4)
	if err == nil {
		t.Fatal("expected limit error")
	}
	data, err := readLimited(strings.NewReader("0123"), 4)
	if err != nil || string(data) != "0123" {
		t.Fatalf("unexpected read: %q %v", data, err)
	}
}
