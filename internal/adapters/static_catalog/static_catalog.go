package static_catalog

import (
	"embed"
	"fmt"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/goccy/go-yaml"
)

//go:embed seed/catalog.yaml
var seedFS embed.FS

const seedPath = "seed/catalog.yaml"

// Catalog - неизменяемый набор записей, прочитанный при старте
type Catalog struct {
	records []domain.CatalogRecord
}

var _ port.StaticCatalogPort = (*Catalog)(nil)

// NewEmbedded читает каталог, встроенный в бинарник
func NewEmbedded() (*Catalog, error) {
	data, err := seedFS.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", seedPath, err)
	}
	return Parse(data)
}

// Parse разбирает YAML-список записей. Пустые и повторяющиеся id - ошибка.
func Parse(data []byte) (*Catalog, error) {
	var records []domain.CatalogRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling static catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("static catalog record #%d has no id", i)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("static catalog has duplicate id %q", rec.ID)
		}
		seen[rec.ID] = struct{}{}
	}

	return &Catalog{records: records}, nil
}

// Records возвращает копию списка, чтобы вызывающий не испортил каталог
func (c *Catalog) Records() []domain.CatalogRecord {
	out := make([]domain.CatalogRecord, len(c.records))
	copy(out, c.records)
	return out
}
