// Package outreach implements the outbound lead-generation pipeline:
// query rotation, business discovery, contact resolution, suppression and
// history filtering, name normalization, classification, message composition,
// and email dispatch, orchestrated as one bounded sequential run.
package outreach

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Persona is a named outbound identity selectable per run.
type Persona struct {
	Key         string `yaml:"key"`
	DisplayName string `yaml:"display_name"`
	FromAddress string `yaml:"from_address"`
	Signature   string `yaml:"signature"`
}

// CategoryRule maps a keyword substring to a product category phrase.
// Rules are evaluated in order; the first match wins.
type CategoryRule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// Catalog holds the static pipeline configuration: the search query rotation
// list, sender personas, the normalizer stoplist, and the business-type
// keyword table. Operators may override any section from a YAML file.
type Catalog struct {
	Queries         []string       `yaml:"queries"`
	Personas        []Persona      `yaml:"personas"`
	DefaultPersona  string         `yaml:"default_persona"`
	Stoplist        []string       `yaml:"stoplist"`
	Categories      []CategoryRule `yaml:"categories"`
	DefaultCategory string         `yaml:"default_category"`
}

// DefaultCatalog returns the compiled-in catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Queries: []string{
			"custom coffee bags supplier",
			"compostable food packaging small business",
			"stand up pouches for granola brand",
			"eco friendly tea packaging wholesale",
			"protein powder pouch packaging",
			"pet treat packaging bags supplier",
			"custom printed snack bags low minimum",
			"resealable pouches for dried fruit",
			"biodegradable coffee packaging roaster",
			"spice packaging pouches manufacturer",
		},
		Personas: []Persona{
			{
				Key:         "daisy",
				DisplayName: "Daisy",
				FromAddress: "daisy@achievepack.com",
				Signature:   "Daisy\nPackaging Specialist, Achievepack\nhttps://achievepack.com",
			},
			{
				Key:         "marco",
				DisplayName: "Marco",
				FromAddress: "marco@achievepack.com",
				Signature:   "Marco\nAccount Manager, Achievepack\nhttps://achievepack.com",
			},
		},
		DefaultPersona: "daisy",
		Stoplist: []string{
			"Inc", "LLC", "Ltd", "Co", "Corp", "Company",
			"Shop", "Store", "Online", "Official", "Website", "Site",
			"The", "Best", "Top", "Premium", "Quality",
			"Buy", "Order", "Home", "Welcome",
		},
		Categories: []CategoryRule{
			{Keyword: "coffee", Category: "coffee packaging"},
			{Keyword: "tea", Category: "tea packaging"},
			{Keyword: "granola", Category: "granola and cereal packaging"},
			{Keyword: "protein", Category: "supplement packaging"},
			{Keyword: "pet", Category: "pet food packaging"},
			{Keyword: "snack", Category: "snack packaging"},
			{Keyword: "dried fruit", Category: "dried fruit packaging"},
			{Keyword: "spice", Category: "spice packaging"},
			{Keyword: "compostable", Category: "compostable packaging"},
			{Keyword: "biodegradable", Category: "compostable packaging"},
			{Keyword: "food", Category: "food packaging"},
		},
		DefaultCategory: "flexible packaging",
	}
}

// LoadCatalog reads an operator catalog from path and overlays it on the
// compiled-in defaults. Sections absent from the file keep their defaults.
// An empty path returns the defaults untouched.
func LoadCatalog(path string) (*Catalog, error) {
	cat := DefaultCatalog()
	if path == "" {
		return cat, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}

	var override Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", path)
	}

	if len(override.Queries) > 0 {
		cat.Queries = override.Queries
	}
	if len(override.Personas) > 0 {
		cat.Personas = override.Personas
	}
	if override.DefaultPersona != "" {
		cat.DefaultPersona = override.DefaultPersona
	}
	if len(override.Stoplist) > 0 {
		cat.Stoplist = override.Stoplist
	}
	if len(override.Categories) > 0 {
		cat.Categories = override.Categories
	}
	if override.DefaultCategory != "" {
		cat.DefaultCategory = override.DefaultCategory
	}

	return cat, nil
}

// PersonaByKey returns the persona for key, or the default persona when the
// key is unrecognized. Never fails.
func (c *Catalog) PersonaByKey(key string) Persona {
	for _, p := range c.Personas {
		if p.Key == key {
			return p
		}
	}
	for _, p := range c.Personas {
		if p.Key == c.DefaultPersona {
			return p
		}
	}
	// Catalog with no personas at all; return a zero-value stand-in so the
	// composer still produces output.
	return Persona{Key: c.DefaultPersona}
}
