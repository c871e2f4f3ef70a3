package postgres_adapter

import (
	"testing"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCatalogRecord_ColumnsWin(t *testing.T) {
	payload := []byte(`{"id":"other","kind":"opportunity","title":"Piso Centro",
		"financials":{"purchase_price":120000,"total_investment":150000,"projected_rent":1100},
		"created_at":{"seconds":1767225600,"nanoseconds":0}}`)

	rec, ok := decodeCatalogRecord("op-1", "", false, payload)

	require.True(t, ok)
	assert.Equal(t, "op-1", rec.ID)
	assert.Equal(t, domain.KindOpportunity, rec.Kind)
	assert.True(t, rec.IsValid())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), rec.CreatedAt.Time)
}

func TestDecodeCatalogRecord_DeletedFlagFromColumn(t *testing.T) {
	rec, ok := decodeCatalogRecord("p-1", "property", true, []byte(`{"address":"Calle Luna 3","rooms":[]}`))

	require.True(t, ok)
	assert.True(t, rec.Deleted)
	assert.Equal(t, domain.KindProperty, rec.Kind)
}

func TestDecodeCatalogRecord_MalformedPayloadKeepsID(t *testing.T) {
	rec, ok := decodeCatalogRecord("p-2", "property", false, []byte(`{"address": 42`))

	assert.False(t, ok)
	assert.Equal(t, "p-2", rec.ID)
	assert.False(t, rec.IsValid())
}
