package outreach

import "strings"

// Classifier maps a search query to a human-readable product category used
// in message copy. Pure: identical query always yields identical category.
type Classifier struct {
	rules      []CategoryRule
	defaultCat string
}

// NewClassifier builds a classifier from the catalog's ordered keyword table.
func NewClassifier(cat *Catalog) *Classifier {
	return &Classifier{rules: cat.Categories, defaultCat: cat.DefaultCategory}
}

// Classify scans the table in order against the lowercased query; the first
// substring match wins.
func (c *Classifier) Classify(query string) string {
	q := strings.ToLower(query)
	for _, r := range c.rules {
		if strings.Contains(q, r.Keyword) {
			return r.Category
		}
	}
	return c.defaultCat
}
