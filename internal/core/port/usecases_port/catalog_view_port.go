package usecases_port

import (
	"context"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

// CatalogViewPort - объединенный каталог для слоя представления
type CatalogViewPort interface {
	// Refresh пересобирает каталог из живого хранилища и статического каталога
	Refresh(ctx context.Context) ([]domain.CatalogRecord, error)
	// Current возвращает последний собранный каталог в заданном порядке
	Current(ctx context.Context, mode domain.SortMode) ([]domain.CatalogRecord, error)
}
