package sequence

import (
	"fmt"
	"strings"
)

// Category is one of the four fixed sample kinds in a worklist.
type Category int

const (
	Standard Category = iota
	Sample
	QC
	Blank

	numCategories = 4
)

// Categories lists every category in default order.
var Categories = [numCategories]Category{Standard, Sample, QC, Blank}

var categoryNames = [numCategories]string{"Standard", "Sample", "QC", "Blank"}

// categoryKeys are the plural keys used by stored templates.
var categoryKeys = [numCategories]string{"standards", "samples", "qc", "blanks"}

// String returns the display form used in default sample names ("QC", "Sample").
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Key returns the template key for the category ("standards", "qc").
func (c Category) Key() string {
	if !c.Valid() {
		return ""
	}
	return categoryKeys[c]
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	return c >= 0 && c < numCategories
}

// ParseCategory accepts either the display form or the template key,
// case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if s == strings.ToLower(categoryNames[c]) || s == categoryKeys[c] {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Order is the user-adjustable ordering of categories. It decides the order
// of start blocks, the order of interval checks at a shared sample boundary
// and the order of end blocks.
type Order []Category

// DefaultOrder returns [Standard, Sample, QC, Blank].
func DefaultOrder() Order {
	return Order{Standard, Sample, QC, Blank}
}

// ParseOrder parses category names into an Order. Every category must appear
// exactly once.
func ParseOrder(names []string) (Order, error) {
	if len(names) != numCategories {
		return nil, fmt.Errorf("category order must list all %d categories, got %d", numCategories, len(names))
	}
	order := make(Order, 0, numCategories)
	var seen [numCategories]bool
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			return nil, fmt.Errorf("category %s listed twice", c)
		}
		seen[c] = true
		order = append(order, c)
	}
	return order, nil
}

// Normalize returns a full permutation: invalid and repeated categories are
// dropped, and missing ones are appended in default order.
func (o Order) Normalize() Order {
	out := make(Order, 0, numCategories)
	var seen [numCategories]bool
	for _, c := range o {
		if !c.Valid() || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, c := range Categories {
		if !seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// Keys returns the template keys of the order.
func (o Order) Keys() []string {
	keys := make([]string, len(o))
	for i, c := range o {
		keys[i] = c.Key()
	}
	return keys
}
