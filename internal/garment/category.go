// Package garment defines the closed set of clothing categories a user can
// pick when asking for a try-on.
package garment

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type Category string

const (
	Kurta           Category = "kurta"
	Shirt           Category = "shirt"
	TShirt          Category = "t-shirt"
	Dress           Category = "dress"
	Jacket          Category = "jacket"
	Sweater         Category = "sweater"
	TraditionalWear Category = "traditional wear"
)

// Default is preselected in the form.
const Default = Kurta

var all = []Category{Kurta, Shirt, TShirt, Dress, Jacket, Sweater, TraditionalWear}

// All returns the categories in display order.
func All() []Category {
	return append([]Category(nil), all...)
}

func (c Category) String() string {
	return string(c)
}

// Title is the label used next to the garment upload, e.g. "T-Shirt".
func (c Category) Title() string {
	words := strings.Fields(string(c))
	for i, w := range words {
		parts := strings.Split(w, "-")
		for j, p := range parts {
			if p != "" {
				parts[j] = strings.ToUpper(p[:1]) + p[1:]
			}
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

func (c Category) Valid() bool {
	return lo.Contains(all, c)
}

// Parse accepts a category name case-insensitively. An empty string yields Default.
func Parse(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown garment category %q", s)
	}
	return c, nil
}
