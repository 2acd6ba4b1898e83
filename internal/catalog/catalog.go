// Package catalog holds the static product catalog used both as prompt
// context for the analyzer and as the link table for recommendations.
package catalog

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups recommendable products.
type Category string

const (
	CategoryGym         Category = "Gym"
	CategoryGrooming    Category = "Grooming"
	CategoryStyle       Category = "Style"
	CategoryHealth      Category = "Health"
	CategoryEnhancement Category = "Enhancement"
)

// Categories lists every valid category in prompt order.
var Categories = []Category{
	CategoryGym,
	CategoryGrooming,
	CategoryStyle,
	CategoryHealth,
	CategoryEnhancement,
}

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const searchURLFmt = "https://www.amazon.com/s?k=%s"

// Product is a single catalog entry. Link is optional.
type Product struct {
	Category    Category `yaml:"category"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Link        string   `yaml:"link,omitempty"`
}

// Catalog is an immutable, ordered list of products.
type Catalog struct {
	products []Product
	byName   map[string]int
}

// New builds a catalog from products. The slice is copied.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, len(products)),
		byName:   make(map[string]int, len(products)),
	}
	copy(c.products, products)

	hasEnhancement := false
	for i, p := range c.products {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("product %d has no name", i)
		}
		if !p.Category.IsValid() {
			return nil, fmt.Errorf("product %q has unknown category %q", p.Name, p.Category)
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate product %q", p.Name)
		}
		if p.Category == CategoryEnhancement {
			hasEnhancement = true
		}
		c.byName[p.Name] = i
	}
	if !hasEnhancement {
		return nil, fmt.Errorf("catalog must contain at least one %s product", CategoryEnhancement)
	}

	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultProducts)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in catalog: %v", err))
	}
	return c
}

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// Load reads a catalog from a YAML file of the form:
//
//	products:
//	  - category: Gym
//	    name: Creatine Monohydrate
//	    description: Increases muscle fullness.
//	    link: https://example.com/creatine
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	c, err := New(f.Products)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Lookup finds a product by exact name.
func (c *Catalog) Lookup(name string) (Product, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Link resolves a recommended product name to a purchasable URL. Entries
// with their own link use it; anything else falls back to a store search.
func (c *Catalog) Link(name string) string {
	if p, ok := c.Lookup(name); ok && p.Link != "" {
		return p.Link
	}
	return fmt.Sprintf(searchURLFmt, url.QueryEscape(name))
}

// PromptText formats the catalog as one "- [Category] Name: Description"
// line per product.
func (c *Catalog) PromptText() string {
	lines := make([]string, len(c.products))
	for i, p := range c.products {
		lines[i] = fmt.Sprintf("- [%s] %s: %s", p.Category, p.Name, p.Description)
	}
	return strings.Join(lines, "\n")
}
