package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrOutcomeMismatch is returned when actual and predicted outcomes are of different kinds
var ErrOutcomeMismatch = errors.New("outcome kinds differ")

// OutcomeKind discriminates the Outcome union
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeNumeric
	OutcomeCategorical
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNumeric:
		return "numeric"
	case OutcomeCategorical:
		return "categorical"
	default:
		return "none"
	}
}

// Outcome is either a number (score, spread, total) or a label (winner).
// The zero value is OutcomeNone.
type Outcome struct {
	kind  OutcomeKind
	num   float64
	label string
}

// NumericOutcome builds a numeric outcome
func NumericOutcome(v float64) Outcome {
	return Outcome{kind: OutcomeNumeric, num: v}
}

// CategoricalOutcome builds a categorical outcome
func CategoricalOutcome(label string) Outcome {
	return Outcome{kind: OutcomeCategorical, label: label}
}

func (o Outcome) Kind() OutcomeKind { return o.kind }

// Numeric returns the value and true for numeric outcomes
func (o Outcome) Numeric() (float64, bool) {
	return o.num, o.kind == OutcomeNumeric
}

// Categorical returns the label and true for categorical outcomes
func (o Outcome) Categorical() (string, bool) {
	return o.label, o.kind == OutcomeCategorical
}

func (o Outcome) IsZero() bool { return o.kind == OutcomeNone }

func (o Outcome) String() string {
	switch o.kind {
	case OutcomeNumeric:
		return strconv.FormatFloat(o.num, 'f', -1, 64)
	case OutcomeCategorical:
		return o.label
	default:
		return ""
	}
}

// MarshalJSON writes numbers as JSON numbers and labels as strings
func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case OutcomeNumeric:
		return json.Marshal(o.num)
	case OutcomeCategorical:
		return json.Marshal(o.label)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, a string, or null.
// A quoted number ("112.5") is treated as numeric, matching how stat feeds quote values.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = Outcome{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("outcome: %w", err)
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*o = NumericOutcome(n)
			return nil
		}
		*o = CategoricalOutcome(s)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("outcome must be a number or string: %w", err)
	}
	*o = NumericOutcome(n)
	return nil
}
