package form

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Currency is one of the currencies the calculation service prices in.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
)

// DefaultCurrency is used when an amount is entered before any currency was picked.
const DefaultCurrency = EUR

var currencies = []Currency{EUR, USD}

// Currencies lists the supported currencies in display order.
func Currencies() []Currency {
	return append([]Currency(nil), currencies...)
}

// ParseCurrency maps a currency code onto the enumerated set.
func ParseCurrency(value string) (Currency, error) {
	code := Currency(strings.ToUpper(strings.TrimSpace(value)))
	for _, c := range currencies {
		if c == code {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported currency %q", value)
}

// PositiveNumber is a finite number strictly greater than zero.
type PositiveNumber float64

// Float returns the plain float64 value.
func (p PositiveNumber) Float() float64 { return float64(p) }

// ToNumber reads raw edit values of any integer or float kind. Strings are
// read the way a browser parseInt would: leading integer digits count,
// anything after them is ignored.
func ToNumber(raw any) (float64, bool) {
	var value float64
	if text, ok := raw.(string); ok {
		parsed, ok := parseIntPrefix(text)
		if !ok {
			return 0, false
		}
		value = parsed
	} else {
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			value = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			value = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			value = rv.Float()
		default:
			return 0, false
		}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// ToPositiveNumber validates raw input. The second return value is false when
// raw is not a finite number > 0.
func ToPositiveNumber(raw any) (PositiveNumber, bool) {
	value, ok := ToNumber(raw)
	if !ok || value <= 0 {
		return 0, false
	}
	return PositiveNumber(value), true
}

// CoercePositive never fails: invalid input becomes 1 so typing is never blocked.
func CoercePositive(raw any) PositiveNumber {
	if value, ok := ToPositiveNumber(raw); ok {
		return value
	}
	return 1
}

// parseIntPrefix keeps the sign and leading digits of s. The digits are read
// as a float so runs longer than int64 keep their magnitude.
func parseIntPrefix(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MonetaryAmount pairs an amount with its currency. Values are replaced
// wholesale; the With* helpers return modified copies.
type MonetaryAmount struct {
	Amount   PositiveNumber `json:"amount"`
	Currency Currency       `json:"currency"`
}

func (m MonetaryAmount) WithAmount(amount PositiveNumber) MonetaryAmount {
	m.Amount = amount
	return m
}

func (m MonetaryAmount) WithCurrency(currency Currency) MonetaryAmount {
	m.Currency = currency
	return m
}

// Aggregate is the full set of calculator inputs. Monetary fields stay nil
// until first edited so an untouched form serializes as {}.
type Aggregate struct {
	AnnualRevenue    *MonetaryAmount `json:"annualRevenue,omitempty"`
	AnnualGrowthRate *MonetaryAmount `json:"annualGrowthRate,omitempty"`
	CurrentRunway    *MonetaryAmount `json:"currentRunway,omitempty"`
	TermLength       *MonetaryAmount `json:"termLength,omitempty"`
	GracePeriod      *MonetaryAmount `json:"gracePeriod,omitempty"`
	Email            string          `json:"email,omitempty"`
}

// Clone returns a deep copy that shares no pointers with a.
func (a Aggregate) Clone() Aggregate {
	return Aggregate{
		AnnualRevenue:    cloneAmount(a.AnnualRevenue),
		AnnualGrowthRate: cloneAmount(a.AnnualGrowthRate),
		CurrentRunway:    cloneAmount(a.CurrentRunway),
		TermLength:       cloneAmount(a.TermLength),
		GracePeriod:      cloneAmount(a.GracePeriod),
		Email:            a.Email,
	}
}

// RevenueCurrency reports the currency chosen for revenue, or DefaultCurrency.
func (a Aggregate) RevenueCurrency() Currency {
	if a.AnnualRevenue != nil && a.AnnualRevenue.Currency != "" {
		return a.AnnualRevenue.Currency
	}
	return DefaultCurrency
}

// Encode renders the aggregate as the JSON string the calculation service expects.
func (a Aggregate) Encode() (string, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode form: %w", err)
	}
	return string(raw), nil
}

func cloneAmount(m *MonetaryAmount) *MonetaryAmount {
	if m == nil {
		return nil
	}
	copied := *m
	return &copied
}

// Amount is a convenience constructor for a populated field.
func Amount(amount PositiveNumber, currency Currency) *MonetaryAmount {
	return &MonetaryAmount{Amount: amount, Currency: currency}
}
