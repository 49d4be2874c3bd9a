// Package cash holds the register arithmetic used at payment and shift close.
// Every function is pure: same input, same output.
package cash

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMethod = errors.New("invalid count method")
)

var denominations = []decimal.Decimal{
	decimal.NewFromInt(1000),
	decimal.NewFromInt(500),
	decimal.NewFromInt(200),
	decimal.NewFromInt(100),
	decimal.NewFromInt(50),
	decimal.NewFromInt(20),
	decimal.NewFromInt(10),
	decimal.NewFromInt(5),
	decimal.NewFromInt(2),
	decimal.NewFromInt(1),
	decimal.RequireFromString("0.50"),
}

// Denominations returns the notes and coins offered on the count form, largest first.
func Denominations() []decimal.Decimal {
	out := make([]decimal.Decimal, len(denominations))
	copy(out, denominations)
	return out
}

// Line is one denomination of a detailed count.
type Line struct {
	Denomination decimal.Decimal `json:"denomination"`
	Count        int64           `json:"count"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// DetailedTotal sums count × denomination over breakdown. Keys are
// denominations and values are counts, both as typed by the user.
// Anything that is not a non-negative whole count, or a key that is not a
// positive amount, contributes 0.
func DetailedTotal(breakdown map[string]string) (decimal.Decimal, []Line) {
	total := decimal.Zero
	lines := make([]Line, 0, len(breakdown))

	for key, raw := range breakdown {
		denom, err := decimal.NewFromString(strings.TrimSpace(key))
		if err != nil || !denom.IsPositive() {
			continue
		}
		count := parseCount(raw)
		if count == 0 {
			continue
		}
		sub := denom.Mul(decimal.NewFromInt(count))
		total = total.Add(sub)
		lines = append(lines, Line{Denomination: denom, Count: count, Subtotal: sub})
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Denomination.GreaterThan(lines[j].Denomination)
	})
	return total, lines
}

func parseCount(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseAmount parses a money amount typed by the user. Blank input is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// CountInput is a shift-close count as submitted from the form.
type CountInput struct {
	Method        enum.CountMethod
	ExpectedTotal decimal.Decimal
	TotalCounted  string            // manual
	Breakdown     map[string]string // detailed
}

type CashCount struct {
	Method        enum.CountMethod `json:"method"`
	TotalCounted  decimal.Decimal  `json:"total_counted"`
	Breakdown     []Line           `json:"breakdown,omitempty"`
	ExpectedTotal decimal.Decimal  `json:"expected_total"`
	Difference    decimal.Decimal  `json:"difference"`
}

// Status describes the sign of Difference.
func (c CashCount) Status() string {
	switch c.Difference.Sign() {
	case 1:
		return "over"
	case -1:
		return "short"
	}
	return "balanced"
}

// Reconcile compares the counted cash with the expected register total.
// Difference is always TotalCounted - ExpectedTotal.
func Reconcile(in CountInput) (CashCount, error) {
	out := CashCount{Method: in.Method, ExpectedTotal: in.ExpectedTotal}

	switch in.Method {
	case enum.CountManual:
		counted, err := ParseAmount(in.TotalCounted)
		if err != nil {
			return CashCount{}, err
		}
		if counted.IsNegative() {
			return CashCount{}, ErrInvalidAmount
		}
		out.TotalCounted = counted
	case enum.CountDetailed:
		out.TotalCounted, out.Breakdown = DetailedTotal(in.Breakdown)
	default:
		return CashCount{}, ErrInvalidMethod
	}

	out.Difference = out.TotalCounted.Sub(out.ExpectedTotal)
	return out, nil
}

// TipPayment is the result of a cash payment where part of the cash is a tip.
type TipPayment struct {
	CashReceived decimal.Decimal `json:"cash_received"`
	Tip          decimal.Decimal `json:"tip"`
	AmountDue    decimal.Decimal `json:"amount_due"`
	CashApplied  decimal.Decimal `json:"cash_applied"`
	Change       decimal.Decimal `json:"change"`
	Insufficient bool            `json:"insufficient"`
}

// CashWithTip applies received cash minus tip to amountDue.
// Change is negative when the cash does not cover the bill.
func CashWithTip(received, tip, amountDue decimal.Decimal) TipPayment {
	applied := received.Sub(tip)
	return TipPayment{
		CashReceived: received,
		Tip:          tip,
		AmountDue:    amountDue,
		CashApplied:  applied,
		Change:       applied.Sub(amountDue),
		Insufficient: applied.LessThan(amountDue),
	}
}

// TipFromPercent computes a tip rounded to cents.
func TipFromPercent(amountDue, percent decimal.Decimal) decimal.Decimal {
	return amountDue.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}
