package menu

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/comanda-pos/api/internal/config"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnavailable     = errors.New("product is not available")
)

type Product struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Keywords  string          `json:"-"` // CSV like "tacos,pastor,grande"
	Available bool            `json:"available"`
}

// Catalog is the read-only menu shared by the order-entry screens.
type Catalog struct {
	products []Product
	byID     map[string]int
	matcher  *Matcher
}

func NewCatalog(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("product %q: id is required", p.Name)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %q: duplicate id", p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %q: negative price", p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	c.matcher = NewMatcher(c.products)
	return c, nil
}

// FromConfig builds the catalog from the config file entries, falling back to
// the default menu when the file has none.
func FromConfig(items []config.MenuItem) (*Catalog, error) {
	if len(items) == 0 {
		return NewCatalog(DefaultProducts())
	}
	products := make([]Product, 0, len(items))
	for _, it := range items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("product %q: invalid price %q", it.ID, it.Price)
		}
		available := true
		if it.Available != nil {
			available = *it.Available
		}
		products = append(products, Product{
			ID:        it.ID,
			Code:      it.Code,
			Name:      it.Name,
			Category:  it.Category,
			Price:     price,
			Keywords:  it.Keywords,
			Available: available,
		})
	}
	return NewCatalog(products)
}

func (c *Catalog) Get(id string) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

// Orderable returns the product if it exists and can be ordered.
func (c *Catalog) Orderable(id string) (Product, error) {
	p, err := c.Get(id)
	if err != nil {
		return Product{}, err
	}
	if !p.Available {
		return Product{}, ErrUnavailable
	}
	return p, nil
}

// List returns products in menu order, filtered by category when one is given.
func (c *Catalog) List(category string) []Product {
	out := []Product{}
	for _, p := range c.products {
		if category == "" || strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range c.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Search(text string) MatchResult {
	return c.matcher.Match(text)
}

// DefaultProducts is the menu served when no file is configured.
func DefaultProducts() []Product {
	p := func(id, code, name, category, price, keywords string) Product {
		return Product{
			ID:        id,
			Code:      code,
			Name:      name,
			Category:  category,
			Price:     decimal.RequireFromString(price),
			Keywords:  keywords,
			Available: true,
		}
	}
	return []Product{
		p("tacos-pastor", "T01", "Tacos al pastor", "tacos", "85.00", "tacos,pastor"),
		p("tacos-suadero", "T02", "Tacos de suadero", "tacos", "90.00", "tacos,suadero"),
		p("quesadilla", "A01", "Quesadilla", "antojitos", "65.00", "quesadilla,queso"),
		p("enchiladas-verdes", "P01", "Enchiladas verdes", "platos", "140.00", "enchiladas,verdes,pollo"),
		p("agua-jamaica-chico", "B01", "Agua de jamaica chica", "bebidas", "32.50", "agua,jamaica,chico"),
		p("agua-jamaica-grande", "B02", "Agua de jamaica grande", "bebidas", "45.00", "agua,jamaica,grande"),
		p("cafe-olla", "B03", "Café de olla", "bebidas", "38.00", "cafe,olla"),
		p("flan", "D01", "Flan napolitano", "postres", "55.00", "flan,postre"),
	}
}
