// Package catalog holds the enumerations the zone form offers: severities
// (each with its display color) and hazard types.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type Severity struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

type Catalog struct {
	Severities  []Severity `yaml:"severities" json:"severities"`
	HazardTypes []string   `yaml:"hazardTypes" json:"hazardTypes"`

	colors map[string]string
	types  map[string]struct{}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	if len(c.Severities) == 0 {
		return errors.New("at least one severity is required")
	}

	c.colors = make(map[string]string, len(c.Severities))
	for i, s := range c.Severities {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("severities[%d]: name is required", i)
		}
		if strings.TrimSpace(s.Color) == "" {
			return fmt.Errorf("severity %q: color is required", name)
		}
		if _, dup := c.colors[name]; dup {
			return fmt.Errorf("severity %q declared twice", name)
		}
		c.Severities[i].Name = name
		c.colors[name] = s.Color
	}

	c.types = make(map[string]struct{}, len(c.HazardTypes))
	for i, t := range c.HazardTypes {
		t = strings.TrimSpace(t)
		if t == "" {
			return fmt.Errorf("hazardTypes[%d]: empty type", i)
		}
		c.HazardTypes[i] = t
		c.types[t] = struct{}{}
	}
	return nil
}

// ColorFor returns the display color for a severity.
func (c *Catalog) ColorFor(severity string) (string, bool) {
	color, ok := c.colors[severity]
	return color, ok
}

func (c *Catalog) HasSeverity(severity string) bool {
	_, ok := c.colors[severity]
	return ok
}

// HasType reports whether t is a known hazard type. A catalog without any
// hazard types accepts every type.
func (c *Catalog) HasType(t string) bool {
	if len(c.types) == 0 {
		return true
	}
	_, ok := c.types[t]
	return ok
}

// SeverityNames lists severities in declaration order.
func (c *Catalog) SeverityNames() []string {
	out := make([]string, len(c.Severities))
	for i, s := range c.Severities {
		out[i] = s.Name
	}
	return out
}
