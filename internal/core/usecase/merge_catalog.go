package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
)

// MergeCatalog объединяет живые записи со статическим каталогом.
//
// Живые записи, помеченные удаленными или не прошедшие проверку, отбрасываются,
// но их id все равно скрывают статические записи с тем же id.
// Результат: уцелевшие живые записи, затем уцелевшие статические, каждая
// группа в исходном порядке.
func MergeCatalog(live, static []domain.CatalogRecord) []domain.CatalogRecord {
	seen := make(map[string]struct{}, len(live))
	merged := make([]domain.CatalogRecord, 0, len(live)+len(static))

	for _, rec := range live {
		if rec.ID == "" {
			continue
		}
		seen[rec.ID] = struct{}{}
		if rec.Deleted || !rec.IsValid() {
			continue
		}
		merged = append(merged, rec)
	}

	for _, rec := range static {
		if _, shadowed := seen[rec.ID]; shadowed {
			continue
		}
		merged = append(merged, rec)
	}

	return merged
}

// CatalogViewUseCase держит последний объединенный каталог.
// Пересборки сериализованы, читатели получают копию снимка.
type CatalogViewUseCase struct {
	live     port.LiveRecordStore
	static   port.StaticCatalogPort
	notifier port.CatalogNotifierPort

	refreshMu sync.Mutex

	mu      sync.RWMutex
	current []domain.CatalogRecord
	loaded  bool
}

// NewCatalogViewUseCase; notifier может быть nil
func NewCatalogViewUseCase(live port.LiveRecordStore, static port.StaticCatalogPort, notifier port.CatalogNotifierPort) *CatalogViewUseCase {
	return &CatalogViewUseCase{
		live:     live,
		static:   static,
		notifier: notifier,
	}
}

// Refresh полностью пересобирает каталог. При ошибке хранилища
// предыдущий снимок остается в силе.
func (uc *CatalogViewUseCase) Refresh(ctx context.Context) ([]domain.CatalogRecord, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "RefreshCatalog"})

	uc.refreshMu.Lock()
	defer uc.refreshMu.Unlock()

	live, err := uc.live.Snapshot(ctx)
	if err != nil {
		ucLogger.Error("Failed to read live records", err, nil)
		return nil, fmt.Errorf("failed to read live records: %w", err)
	}

	static := uc.static.Records()
	merged := MergeCatalog(live, static)

	ucLogger.Debug("Catalog merged", port.Fields{
		"live_count":    len(live),
		"static_count":  len(static),
		"merged_count":  len(merged),
		"dropped_count": countDroppedLive(live),
	})

	uc.mu.Lock()
	uc.current = merged
	uc.loaded = true
	uc.mu.Unlock()

	if uc.notifier != nil {
		uc.notifier.Publish(ctx, cloneRecords(merged))
	}

	return cloneRecords(merged), nil
}

// Current возвращает последний снимок в заданном порядке.
// Если снимка еще нет и живое хранилище недоступно, отдается только статический каталог.
func (uc *CatalogViewUseCase) Current(ctx context.Context, mode domain.SortMode) ([]domain.CatalogRecord, error) {
	uc.mu.RLock()
	loaded := uc.loaded
	snapshot := cloneRecords(uc.current)
	uc.mu.RUnlock()

	if !loaded {
		records, err := uc.Refresh(ctx)
		if err != nil {
			contextkeys.LoggerFromContext(ctx).Warn("Serving static catalog only", port.Fields{
				"use_case": "GetCatalog",
				"error":    err.Error(),
			})
			records = MergeCatalog(nil, uc.static.Records())
		}
		snapshot = records
	}

	return SortCatalog(snapshot, mode), nil
}

func countDroppedLive(live []domain.CatalogRecord) int {
	dropped := 0
	for _, rec := range live {
		if rec.ID == "" || rec.Deleted || !rec.IsValid() {
			dropped++
		}
	}
	return dropped
}

func cloneRecords(records []domain.CatalogRecord) []domain.CatalogRecord {
	if records == nil {
		return nil
	}
	out := make([]domain.CatalogRecord, len(records))
	copy(out, records)
	return out
}
