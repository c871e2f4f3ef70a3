package usecase

import (
	"context"
	"testing"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func property(id, address string) domain.CatalogRecord {
	return domain.CatalogRecord{ID: id, Kind: domain.KindProperty, Address: address, Rooms: []domain.Room{}}
}

func opportunity(id, title string, f *domain.Financials) domain.CatalogRecord {
	return domain.CatalogRecord{ID: id, Kind: domain.KindOpportunity, Title: title, Financials: f}
}

func ids(records []domain.CatalogRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestMergeCatalog_SoftDeleteHidesStaticRecord(t *testing.T) {
	deleted := property("X", "Calle Mayor 5")
	deleted.Deleted = true
	static := []domain.CatalogRecord{property("X", "Calle Mayor 5"), property("Y", "Gran Via 1")}

	merged := MergeCatalog([]domain.CatalogRecord{deleted}, static)

	assert.Equal(t, []string{"Y"}, ids(merged))
}

func TestMergeCatalog_CorruptLiveRecordIsDroppedAndShadows(t *testing.T) {
	corrupt := domain.CatalogRecord{ID: "Z", Kind: domain.KindOpportunity, Title: "Sin finanzas"}
	static := []domain.CatalogRecord{opportunity("Z", "Estatica", &domain.Financials{TotalInvestment: 1})}

	merged := MergeCatalog([]domain.CatalogRecord{corrupt}, static)

	assert.Empty(t, merged)
}

func TestMergeCatalog_OrderIsLiveThenStatic(t *testing.T) {
	live := []domain.CatalogRecord{property("L2", "b"), property("L1", "a"), property("S1", "override")}
	static := []domain.CatalogRecord{property("S2", "x"), property("S1", "y"), property("S3", "z")}

	merged := MergeCatalog(live, static)

	assert.Equal(t, []string{"L2", "L1", "S1", "S2", "S3"}, ids(merged))
	assert.Equal(t, "override", merged[2].Address)
}

func TestMergeCatalog_PropertyWithoutRoomListIsInvalid(t *testing.T) {
	noRooms := domain.CatalogRecord{ID: "P", Kind: domain.KindProperty, Address: "Calle Luna 3"}
	noID := property("", "Calle Sol 1")

	merged := MergeCatalog([]domain.CatalogRecord{noRooms, noID}, []domain.CatalogRecord{property("", "static without id")})

	require.Len(t, merged, 1)
	assert.Equal(t, "static without id", merged[0].Address)
}

func TestCatalogView_RefreshNotifiesAndCaches(t *testing.T) {
	live := &stubLiveStore{records: []domain.CatalogRecord{property("L1", "a")}}
	notifier := &recordingNotifier{}
	uc := NewCatalogViewUseCase(live, stubStatic{property("S1", "b")}, notifier)

	merged, err := uc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "S1"}, ids(merged))
	require.Len(t, notifier.snapshots, 1)

	// хранилище недоступно: остается предыдущий снимок
	live.err = errStoreDown
	_, err = uc.Refresh(context.Background())
	require.Error(t, err)

	current, err := uc.Current(context.Background(), domain.SortNone)
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "S1"}, ids(current))
	assert.Len(t, notifier.snapshots, 1)
}

func TestCatalogView_FallsBackToStaticWhenLiveStoreIsDown(t *testing.T) {
	uc := NewCatalogViewUseCase(&stubLiveStore{err: errStoreDown}, stubStatic{property("S1", "b")}, nil)

	current, err := uc.Current(context.Background(), domain.SortNone)

	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, ids(current))
}
