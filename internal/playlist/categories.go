package playlist

import (
	"sort"
	"strings"
)

// Categories is a set of group-title values.
type Categories map[string]struct{}

// NewCategories builds a set from names.
func NewCategories(names ...string) Categories {
	c := make(Categories, len(names))
	for _, n := range names {
		c.Add(n)
	}
	return c
}

func (c Categories) Add(name string) { c[name] = struct{}{} }

func (c Categories) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Sorted returns the members in ascending order.
func (c Categories) Sorted() []string {
	out := make([]string, 0, len(c))
	for n := range c {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Keywords holds lower-cased search terms.
type Keywords []string

// NewKeywords lower-cases terms once for repeated matching.
func NewKeywords(terms ...string) Keywords {
	k := make(Keywords, 0, len(terms))
	for _, t := range terms {
		k = append(k, strings.ToLower(t))
	}
	return k
}

// Match reports whether any keyword is a case-insensitive substring of category.
func (k Keywords) Match(category string) bool {
	lower := strings.ToLower(category)
	for _, kw := range k {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
