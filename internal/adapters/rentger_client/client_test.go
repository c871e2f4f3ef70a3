package rentger_client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, APIToken: "secret", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client
}

func TestListAssets_DataEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assets", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":[{"id":17,"address":"C/ Mayor, 5","alias":"Calle Mayor 5"},{"id":"a2","address":"Av. Libertad 10"}]}`)
	})

	assets, err := client.ListAssets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Asset{
		{ID: "17", Address: "C/ Mayor, 5", Alias: "Calle Mayor 5"},
		{ID: "a2", Address: "Av. Libertad 10"},
	}, assets)
}

func TestListAssets_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"a1","address":"Gran Via 1"}]`)
	})

	assets, err := client.ListAssets(context.Background())

	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "a1", assets[0].ID)
}

func TestListActiveContracts_FlexibleFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contracts", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		_, _ = io.WriteString(w, `{"items":[
			{"id":501,"propertyName":"Mayor 5","roomName":"H1","tenantName":"Ana",
			 "users":[{"id":9,"name":"Ana Ruiz","type":2}],
			 "price":"450,50","dateStart":"2025-09-01","dateEnd":"2026-06-30T00:00:00Z"},
			{"id":"502","price":null,"dateEnd":null}
		]}`)
	})

	contracts, err := client.ListActiveContracts(context.Background())

	require.NoError(t, err)
	require.Len(t, contracts, 2)

	first := contracts[0]
	assert.Equal(t, "501", first.ID)
	assert.Equal(t, []domain.RemoteContractUser{{ID: "9", Name: "Ana Ruiz", Type: 2}}, first.Users)
	require.NotNil(t, first.Price)
	assert.InDelta(t, 450.5, *first.Price, 0.001)
	require.NotNil(t, first.DateStart)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), *first.DateStart)
	require.NotNil(t, first.DateEnd)
	assert.Equal(t, 2026, first.DateEnd.Year())

	second := contracts[1]
	assert.Equal(t, "502", second.ID)
	assert.Nil(t, second.Price)
	assert.Nil(t, second.DateEnd)
	assert.Nil(t, second.DateStart)
}

func TestListActiveContracts_OffsetEndDateIsNotHistorical(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":"R9","tenantName":"Marta","dateEnd":"2024-01-01T00:00:00+01:00"},
			{"id":"R10","tenantName":"Jordi","dateEnd":"2023-12-31T23:30:00-01:00"}
		]`)
	})

	contracts, err := client.ListActiveContracts(context.Background())
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	actions := usecase.PlanReconciliation(contracts, nil, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))

	require.Len(t, actions, 2)
	assert.Equal(t, domain.ActionCreate, actions[0].Kind)
	require.NotNil(t, actions[0].NewLocal.EndDate)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), *actions[0].NewLocal.EndDate)
	assert.Equal(t, domain.ActionSkip, actions[1].Kind)
	assert.Equal(t, domain.SkipReasonHistorical, actions[1].SkipReason)
}

func TestListActiveContracts_ServerErrorIsRemoteUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	_, err := client.ListActiveContracts(context.Background())

	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.ErrorContains(t, err, "503")
}

func TestListAssets_GarbageBodyIsRemoteUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	})

	_, err := client.ListAssets(context.Background())

	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestCreateTenantAndContract(t *testing.T) {
	var contractBody map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		switch r.URL.Path {
		case "/tenants":
			var body createTenantRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "+34600111222", body.Phone)
			_, _ = io.WriteString(w, `{"data":{"id":77}}`)
		case "/contracts":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&contractBody))
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":"c-900"}`)
		default:
			http.NotFound(w, r)
		}
	})

	tenantID, err := client.CreateTenant(context.Background(), domain.NewTenant{Name: "Ana", Phone: "+34600111222"})
	require.NoError(t, err)
	assert.Equal(t, "77", tenantID)

	contractID, err := client.CreateContract(context.Background(), domain.NewRemoteContract{
		AssetID:   "a1",
		TenantID:  tenantID,
		DateStart: time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC),
		Price:     500,
		Deposit:   500,
	})
	require.NoError(t, err)
	assert.Equal(t, "c-900", contractID)
	assert.Equal(t, "2026-04-01", contractBody["dateStart"])
	assert.Nil(t, contractBody["dateEnd"])
	assert.Equal(t, "77", contractBody["tenantId"])
}

func TestCreateContract_NotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, RetryCount: 2, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.CreateContract(context.Background(), domain.NewRemoteContract{AssetID: "a1", TenantID: "t1"})

	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateTenant_MissingID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{}}`)
	})

	_, err := client.CreateTenant(context.Background(), domain.NewTenant{Name: "Ana"})

	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}
