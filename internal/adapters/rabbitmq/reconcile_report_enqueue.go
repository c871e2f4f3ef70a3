package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/constants"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessagePublisher - часть rabbitmq_producer.Publisher, нужная адаптеру
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// ReconcileReportPublisherAdapter публикует итоги сверки для других сервисов
type ReconcileReportPublisherAdapter struct {
	producer   MessagePublisher
	routingKey string
}

var _ port.ReconcileReportPublisherPort = (*ReconcileReportPublisherAdapter)(nil)

func NewReconcileReportPublisherAdapter(producer MessagePublisher, routingKey string) (*ReconcileReportPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &ReconcileReportPublisherAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

func (a *ReconcileReportPublisherAdapter) PublishReport(ctx context.Context, report *domain.ReconcileReport) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "ReconcileReportPublisherAdapter",
		"routing_key": a.routingKey,
		"run_id":      report.RunID.String(),
	})

	body, err := json.Marshal(toContractsReconciledDTO(report))
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal report: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    report.RunID.String(),
		Headers: amqp.Table{
			constants.HeaderEventType:    constants.EventContractsReconciled,
			constants.HeaderEventVersion: constants.EventVersionV1,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish reconciliation report", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish report %s: %w", report.RunID, err)
	}

	adapterLogger.Info("Reconciliation report published", nil)
	return nil
}
