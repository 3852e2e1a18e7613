// Package catalog is the embedded list of ETFs the warehouse ingests.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed etfs.yaml
var etfsYAML []byte

// ETF describes one ingestible fund.
type ETF struct {
	Symbol   string `yaml:"symbol" json:"symbol"`
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`
}

// Catalog indexes the universe by symbol while keeping file order.
type Catalog struct {
	etfs     []ETF
	bySymbol map[string]ETF
}

// Parse reads a catalogue document. Symbols must be unique.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		ETFs []ETF `yaml:"etfs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{bySymbol: make(map[string]ETF, len(doc.ETFs))}
	for _, e := range doc.ETFs {
		e.Symbol = strings.ToUpper(strings.TrimSpace(e.Symbol))
		if e.Symbol == "" {
			return nil, fmt.Errorf("parse catalog: entry %q has no symbol", e.Name)
		}
		if _, dup := c.bySymbol[e.Symbol]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate symbol %s", e.Symbol)
		}
		c.bySymbol[e.Symbol] = e
		c.etfs = append(c.etfs, e)
	}
	return c, nil
}

// Default is the embedded universe. It panics on a malformed embed, which
// can only happen at build time.
func Default() *Catalog {
	c, err := Parse(etfsYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the universe in file order.
func (c *Catalog) All() []ETF {
	return append([]ETF(nil), c.etfs...)
}

// Symbols returns every symbol in file order.
func (c *Catalog) Symbols() []string {
	out := make([]string, len(c.etfs))
	for i, e := range c.etfs {
		out[i] = e.Symbol
	}
	return out
}

// Lookup returns the entry for symbol. Unknown symbols come back named after
// themselves in the "Other" category.
func (c *Catalog) Lookup(symbol string) (ETF, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if e, ok := c.bySymbol[symbol]; ok {
		return e, true
	}
	return ETF{Symbol: symbol, Name: symbol, Category: "Other"}, false
}
