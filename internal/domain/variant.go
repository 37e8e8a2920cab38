package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type Variant struct {
	ID           string
	ExperimentID string
	Slug         string
	Name         string
	Description  string
	Ratio        int
	Value        *string // JSON payload
	IsControl    bool
	CreatedAt    time.Time
}

func (v *Variant) Validate() error {
	if !slugPattern.MatchString(v.Slug) {
		return fmt.Errorf("invalid variant slug %q", v.Slug)
	}
	if v.Ratio < 1 {
		return fmt.Errorf("variant %s: ratio must be at least 1", v.Slug)
	}
	if v.Value != nil && !json.Valid([]byte(*v.Value)) {
		return fmt.Errorf("variant %s: value is not valid JSON", v.Slug)
	}
	return nil
}

// EvenSplitRatios assigns 100/n to each of n variants.
func EvenSplitRatios(n int) []int {
	if n <= 0 {
		return nil
	}
	ratios := make([]int, n)
	for i := range ratios {
		ratios[i] = 100 / n
	}
	return ratios
}

// ControlVariant returns the first control variant, or nil.
func ControlVariant(variants []*Variant) *Variant {
	for _, v := range variants {
		if v.IsControl {
			return v
		}
	}
	return nil
}

// ValidateControl reports experiments with zero or several control variants.
func ValidateControl(variants []*Variant) error {
	n := 0
	for _, v := range variants {
		if v.IsControl {
			n++
		}
	}
	switch {
	case n == 0:
		return ErrNoControl
	case n > 1:
		return fmt.Errorf("%w: found %d", ErrMultipleControls, n)
	}
	return nil
}
