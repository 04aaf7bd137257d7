package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/csheth/leadcalc/internal/form"
)

type httpClient struct {
	base   string
	client *http.Client
}

type calculateRequest struct {
	StringifiedFormData string `json:"stringifiedFormData"`
}

// calculateResponse uses pointers so absent fields can be told apart from zero.
type calculateResponse struct {
	LoanAmount   *float64 `json:"loanAmount"`
	Interest     *float64 `json:"interest"`
	Amortization *float64 `json:"amortization"`
}

func (c *httpClient) Calculate(ctx context.Context, agg form.Aggregate) (Result, error) {
	encoded, err := agg.Encode()
	if err != nil {
		return Result{}, &Error{Kind: KindEncode, Err: err}
	}
	buf, err := json.Marshal(calculateRequest{StringifiedFormData: encoded})
	if err != nil {
		return Result{}, &Error{Kind: KindEncode, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+calculatePath, bytes.NewReader(buf))
	if err != nil {
		return Result{}, &Error{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, maxResponseBytes)
	if err != nil {
		return Result{}, &Error{Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 400 {
		return Result{}, &Error{
			Kind:   KindStatus,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("calculation API error: %s (%s)", resp.Status, snippet(body)),
		}
	}
	return decodeResult(body)
}

func decodeResult(body []byte) (Result, error) {
	var parsed calculateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, &Error{Kind: KindDecode, Err: fmt.Errorf("failed to decode calculation response: %w", err)}
	}
	return Result{
		LoanAmount:   valueOrZero(parsed.LoanAmount),
		Interest:     valueOrZero(parsed.Interest),
		Amortization: valueOrZero(parsed.Amortization),
	}, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

var errResponseTooLarge = errors.New("response body exceeded limit")

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: limit + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", errResponseTooLarge, limit)
	}
	return data, nil
}

func snippet(body []byte) string {
	if len(body) > maxErrorSnippetLength {
		body = body[:maxErrorSnippetLength]
	}
	return string(bytes.TrimSpace(body))
}
