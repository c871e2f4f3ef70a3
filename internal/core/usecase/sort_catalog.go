package usecase

import (
	"slices"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortCatalog возвращает новый срез в заданном порядке; сортировка устойчивая.
// Неизвестный или пустой режим сохраняет порядок объединения.
func SortCatalog(records []domain.CatalogRecord, mode domain.SortMode) []domain.CatalogRecord {
	out := make([]domain.CatalogRecord, len(records))
	copy(out, records)

	switch mode {
	case domain.SortRecent:
		slices.SortStableFunc(out, func(a, b domain.CatalogRecord) int {
			return b.CreatedAt.Time.Compare(a.CreatedAt.Time)
		})
	case domain.SortYield:
		sortByYield(out)
	case domain.SortCity:
		// Collator не безопасен для конкурентного использования
		c := collate.New(language.Spanish, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b domain.CatalogRecord) int {
			return c.CompareString(a.City, b.City)
		})
	}

	return out
}

func sortByYield(records []domain.CatalogRecord) {
	type scored struct {
		rec   domain.CatalogRecord
		yield decimal.Decimal
	}

	items := make([]scored, len(records))
	for i, rec := range records {
		items[i] = scored{rec: rec, yield: rec.Yield()}
	}

	slices.SortStableFunc(items, func(a, b scored) int {
		return b.yield.Cmp(a.yield)
	})

	for i, it := range items {
		records[i] = it.rec
	}
}
