package postgres_adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCatalogRepository - живое хранилище записей каталога
type PostgresCatalogRepository struct {
	pool *pgxpool.Pool
}

var _ port.LiveRecordStore = (*PostgresCatalogRepository)(nil)

func NewPostgresCatalogRepository(pool *pgxpool.Pool) (*PostgresCatalogRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresCatalogRepository{pool: pool}, nil
}

// Snapshot читает все записи, включая удаленные и с поврежденным payload
func (r *PostgresCatalogRepository) Snapshot(ctx context.Context) ([]domain.CatalogRecord, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresCatalogRepository",
		"method":    "Snapshot",
	})

	rows, err := r.pool.Query(ctx, `SELECT id, kind, deleted, payload FROM catalog_records ORDER BY seq`)
	if err != nil {
		repoLogger.Error("Failed to query catalog records", err, nil)
		return nil, fmt.Errorf("failed to query catalog records: %w", err)
	}

	malformed := 0
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CatalogRecord, error) {
		var (
			id, kind string
			deleted  bool
			payload  []byte
		)
		if err := row.Scan(&id, &kind, &deleted, &payload); err != nil {
			return domain.CatalogRecord{}, err
		}
		rec, ok := decodeCatalogRecord(id, kind, deleted, payload)
		if !ok {
			malformed++
		}
		return rec, nil
	})
	if err != nil {
		repoLogger.Error("Failed to scan catalog records", err, nil)
		return nil, fmt.Errorf("failed to scan catalog records: %w", err)
	}

	if malformed > 0 {
		repoLogger.Warn("Catalog records with unreadable payload", port.Fields{"malformed_count": malformed})
	}
	repoLogger.Debug("Catalog snapshot loaded", port.Fields{"count": len(records)})
	return records, nil
}

// decodeCatalogRecord собирает запись из колонок и payload.
// Колонки id, kind, deleted главнее payload. Нечитаемый payload дает
// запись без содержимого: она не пройдет проверку, но ее id останется виден.
func decodeCatalogRecord(id, kind string, deleted bool, payload []byte) (domain.CatalogRecord, bool) {
	var rec domain.CatalogRecord
	ok := true
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &rec); err != nil {
			rec = domain.CatalogRecord{}
			ok = false
		}
	}

	rec.ID = id
	if kind != "" {
		rec.Kind = domain.RecordKind(kind)
	}
	rec.Deleted = rec.Deleted || deleted
	return rec, ok
}
