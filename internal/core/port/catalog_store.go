package port

import (
	"context"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

// LiveRecordStore - живое редактируемое хранилище записей каталога.
// Snapshot возвращает все записи, включая удаленные и поврежденные.
type LiveRecordStore interface {
	Snapshot(ctx context.Context) ([]domain.CatalogRecord, error)
}

// StaticCatalogPort - статический каталог, поставляемый вместе с сервисом
type StaticCatalogPort interface {
	Records() []domain.CatalogRecord
}

// CatalogNotifierPort рассылает подписчикам новый снимок каталога
type CatalogNotifierPort interface {
	Publish(ctx context.Context, records []domain.CatalogRecord)
}
