package submit

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/csheth/leadcalc/internal/form"
)

const (
	calculatePath         = "/website/calculate"
	defaultEndpoint       = "http://localhost:8080"
	defaultHTTPTimeout    = 15 * time.Second
	maxResponseBytes      = 1 << 20
	maxErrorSnippetLength = 512
)

// Config describes how to reach the calculation service.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client performs one calculation round trip.
type Client interface {
	Calculate(ctx context.Context, agg form.Aggregate) (Result, error)
}

// Result carries the three figures the service returns. Missing values are 0.
type Result struct {
	LoanAmount   float64
	Interest     float64
	Amortization float64
}

// NewFromEnv builds an HTTP client, falling back to LEADCALC_ENDPOINT and then
// the local default when cfg.BaseURL is empty.
func NewFromEnv(cfg Config) Client {
	base := cfg.BaseURL
	if base == "" {
		if env := os.Getenv("LEADCALC_ENDPOINT"); env != "" {
			base = env
		} else {
			base = defaultEndpoint
		}
	}
	return &httpClient{
		base:   strings.TrimRight(base, "/"),
		client: pickHTTPClient(cfg.HTTPClient),
	}
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}
