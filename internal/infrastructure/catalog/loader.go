// Package catalog loads product seed data from YAML.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

var ErrEmptyCatalog = errors.New("catalog contains no products")

type catalogFile struct {
	Products []productRecord `yaml:"products"`
}

type productRecord struct {
	ID                  string  `yaml:"id"`
	Name                string  `yaml:"name"`
	Price               price   `yaml:"price"`
	OriginalPrice       *price  `yaml:"original_price"`
	Image               string  `yaml:"image"`
	Category            string  `yaml:"category"`
	Brand               string  `yaml:"brand"`
	Rating              float64 `yaml:"rating"`
	Reviews             int     `yaml:"reviews"`
	IsNew               bool    `yaml:"is_new"`
	IsSale              bool    `yaml:"is_sale"`
	SustainabilityScore *int    `yaml:"sustainability_score"`
}

// price decodes a YAML scalar into a decimal from its literal text, so
// 0.1 or 19.999999999999999999 keep every digit written in the file.
type price decimal.Decimal

func (p *price) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: price must be a scalar", node.Line)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid price %q", node.Line, node.Value)
	}
	*p = price(d)
	return nil
}

func (r productRecord) toDomain() domain.Product {
	p := domain.Product{
		ID:                  r.ID,
		Name:                r.Name,
		Price:               decimal.Decimal(r.Price),
		Image:               r.Image,
		Category:            r.Category,
		Brand:               r.Brand,
		Rating:              r.Rating,
		Reviews:             r.Reviews,
		IsNew:               r.IsNew,
		IsSale:              r.IsSale,
		SustainabilityScore: r.SustainabilityScore,
	}
	if r.OriginalPrice != nil {
		op := decimal.Decimal(*r.OriginalPrice)
		p.OriginalPrice = &op
	}
	return p
}

// Parse decodes a YAML catalog and validates every product. File order is
// preserved. A repeated id keeps its first record; later ones are skipped
// with a warning.
func Parse(r io.Reader, logger *slog.Logger) ([]domain.Product, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	products := make([]domain.Product, 0, len(file.Products))
	seen := make(map[string]struct{}, len(file.Products))
	for i, rec := range file.Products {
		p := rec.toDomain()
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%q): %w", i, rec.ID, err)
		}
		if _, dup := seen[p.ID]; dup {
			logger.Warn("Skipping duplicate catalog entry",
				slog.String("product_id", p.ID),
				slog.Int("index", i),
			)
			continue
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}
	return products, nil
}

// Load reads the catalog at path, or the embedded default catalog when path
// is empty.
func Load(path string, logger *slog.Logger) ([]domain.Product, error) {
	if path == "" {
		logger.Info("Loading embedded default catalog")
		return Parse(bytes.NewReader(defaultCatalog), logger)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	logger.Info("Loading catalog file", slog.String("path", path))
	return Parse(f, logger)
}
