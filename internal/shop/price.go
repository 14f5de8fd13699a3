package shop

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Price is an amount in cents. The backend serializes decimals as strings
// ("19.99"); numbers are accepted too.
type Price int64

// ParsePrice parses a decimal amount such as "19.99".
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parse price %q: not a finite amount", s)
	}

	cents := math.Round(f * 100)
	if cents >= math.MaxInt64 || cents <= math.MinInt64 {
		return 0, fmt.Errorf("parse price %q: out of range", s)
	}
	return Price(cents), nil
}

// Cents returns the amount in cents.
func (p Price) Cents() int64 {
	return int64(p)
}

// Times returns p multiplied by qty.
func (p Price) Times(qty int) Price {
	return p * Price(qty)
}

// Decimal formats the amount the way the backend does: "19.99".
func (p Price) Decimal() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (p Price) String() string {
	return "$" + p.Decimal()
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Decimal())
}

func (p *Price) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = 0
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}

	v, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
