package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/constants"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)                 {}
func (nopLogger) Warn(string, port.Fields)                 {}
func (nopLogger) Error(string, error, port.Fields)         {}
func (nopLogger) Debug(string, port.Fields)                {}
func (n nopLogger) WithFields(port.Fields) port.LoggerPort { return n }

type mockCatalogView struct{ mock.Mock }

func (m *mockCatalogView) Refresh(ctx context.Context) ([]domain.CatalogRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]domain.CatalogRecord)
	return records, args.Error(1)
}

func (m *mockCatalogView) Current(ctx context.Context, mode domain.SortMode) ([]domain.CatalogRecord, error) {
	args := m.Called(ctx, mode)
	records, _ := args.Get(0).([]domain.CatalogRecord)
	return records, args.Error(1)
}

type mockReconcile struct{ mock.Mock }

func (m *mockReconcile) Execute(ctx context.Context, opts domain.ReconcileOptions) (*domain.ReconcileReport, error) {
	args := m.Called(ctx, opts)
	report, _ := args.Get(0).(*domain.ReconcileReport)
	return report, args.Error(1)
}

func TestCatalogChangesHandler_RefreshesCatalog(t *testing.T) {
	view := &mockCatalogView{}
	view.On("Refresh", mock.Anything).Return([]domain.CatalogRecord{{ID: "p1"}}, nil).Once()
	adapter := &CatalogChangesConsumerAdapter{catalogView: view, logger: nopLogger{}}

	err := adapter.messageHandler(context.Background(), amqp.Delivery{
		Headers: amqp.Table{constants.HeaderTraceID: "trace-1"},
		Body:    []byte(`{"change":"upsert","record_ids":["p1"],"occurred_at":"2026-03-01T10:00:00Z"}`),
	})

	require.NoError(t, err)
	view.AssertExpectations(t)
	ctx := view.Calls[0].Arguments.Get(0).(context.Context)
	assert.Equal(t, "trace-1", contextkeys.TraceIDFromContext(ctx))
}

func TestCatalogChangesHandler_RejectsInvalidEvent(t *testing.T) {
	view := &mockCatalogView{}
	adapter := &CatalogChangesConsumerAdapter{catalogView: view, logger: nopLogger{}}

	err := adapter.messageHandler(context.Background(), amqp.Delivery{Body: []byte(`{"change":"rename"}`)})

	assert.Error(t, err)
	view.AssertNotCalled(t, "Refresh", mock.Anything)
}

func TestCatalogChangesHandler_RefreshFailureIsRetried(t *testing.T) {
	view := &mockCatalogView{}
	view.On("Refresh", mock.Anything).Return(nil, errors.New("db down"))
	adapter := &CatalogChangesConsumerAdapter{catalogView: view, logger: nopLogger{}}

	err := adapter.messageHandler(context.Background(), amqp.Delivery{
		Body: []byte(`{"change":"bulk","occurred_at":"2026-03-01T10:00:00Z"}`),
	})

	assert.EqualError(t, err, "db down")
}

func TestReconcileTasksHandler_PassesOptions(t *testing.T) {
	uc := &mockReconcile{}
	report := domain.NewReconcileReport(domain.ReconcileOptions{FailFast: true}, time.Now())
	uc.On("Execute", mock.Anything, domain.ReconcileOptions{FailFast: true}).Return(report, nil).Once()
	adapter := &ReconcileTasksConsumerAdapter{reconcileUC: uc, logger: nopLogger{}}

	err := adapter.messageHandler(context.Background(), amqp.Delivery{Body: []byte(`{"fail_fast":true}`)})

	require.NoError(t, err)
	uc.AssertExpectations(t)
}

func TestReconcileTasksHandler_InProgressIsAcked(t *testing.T) {
	uc := &mockReconcile{}
	uc.On("Execute", mock.Anything, mock.Anything).Return(nil, domain.ErrReconcileInProgress)
	adapter := &ReconcileTasksConsumerAdapter{reconcileUC: uc, logger: nopLogger{}}

	assert.NoError(t, adapter.messageHandler(context.Background(), amqp.Delivery{Body: []byte(`{}`)}))
}

func TestReconcileTasksHandler_RemoteFailureIsRetried(t *testing.T) {
	uc := &mockReconcile{}
	uc.On("Execute", mock.Anything, mock.Anything).Return(nil, domain.ErrRemoteUnavailable)
	adapter := &ReconcileTasksConsumerAdapter{reconcileUC: uc, logger: nopLogger{}}

	err := adapter.messageHandler(context.Background(), amqp.Delivery{Body: []byte(`{"dry_run":true}`)})

	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

type capturingPublisher struct {
	key string
	msg amqp.Publishing
	err error
}

func (p *capturingPublisher) Publish(_ context.Context, key string, msg amqp.Publishing) error {
	p.key, p.msg = key, msg
	return p.err
}

func TestReconcileReportPublisher_PublishesSummary(t *testing.T) {
	producer := &capturingPublisher{}
	adapter, err := NewReconcileReportPublisherAdapter(producer, constants.RoutingKeyContractsReconciled)
	require.NoError(t, err)

	report := &domain.ReconcileReport{
		RunID:   uuid.New(),
		Created: 1,
		Failed:  1,
		Results: []domain.RecordResult{
			{RemoteID: "r1", Outcome: domain.OutcomeCreated},
			{RemoteID: "r2", Outcome: domain.OutcomeFailed, Reason: "boom"},
		},
	}
	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-9")

	require.NoError(t, adapter.PublishReport(ctx, report))

	assert.Equal(t, constants.RoutingKeyContractsReconciled, producer.key)
	assert.Equal(t, "trace-9", producer.msg.Headers[constants.HeaderTraceID])
	assert.Equal(t, constants.EventContractsReconciled, producer.msg.Headers[constants.HeaderEventType])
	assert.Equal(t, report.RunID.String(), producer.msg.MessageId)

	var dto ContractsReconciledDTO
	require.NoError(t, json.Unmarshal(producer.msg.Body, &dto))
	assert.Equal(t, 1, dto.Totals["created"])
	require.Len(t, dto.Failures, 1)
	assert.Equal(t, "r2", dto.Failures[0].RemoteID)
}

func TestReconcileReportPublisher_WrapsError(t *testing.T) {
	adapter, _ := NewReconcileReportPublisherAdapter(&capturingPublisher{err: errors.New("closed")}, "k")
	err := adapter.PublishReport(context.Background(), &domain.ReconcileReport{RunID: uuid.New()})
	assert.ErrorContains(t, err, "closed")

	_, err = NewReconcileReportPublisherAdapter(nil, "k")
	assert.Error(t, err)
}

func TestPkgLoggerBridge_ToFields(t *testing.T) {
	b := &PkgLoggerBridge{internalLogger: nopLogger{}}
	fields := b.toFields("queue", "q1", 42, "ignored", "dangling")
	assert.Equal(t, port.Fields{"queue": "q1"}, fields)
}
