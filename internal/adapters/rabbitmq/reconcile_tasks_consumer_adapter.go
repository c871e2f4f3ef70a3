package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/constants"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contracts"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port/usecases_port"
	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/rabbitmq/rabbitmq_common"
	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/rabbitmq/rabbitmq_consumer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ReconcileTasksConsumerAdapter запускает сверку договоров по сообщению из очереди
type ReconcileTasksConsumerAdapter struct {
	consumer    rabbitmq_consumer.Consumer
	reconcileUC usecases_port.ReconcileContractsPort
	logger      port.LoggerPort
}

var _ port.EventListenerPort = (*ReconcileTasksConsumerAdapter)(nil)

func NewReconcileTasksConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	reconcileUC usecases_port.ReconcileContractsPort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ReconcileTasksConsumerAdapter, error) {
	adapter := &ReconcileTasksConsumerAdapter{
		reconcileUC: reconcileUC,
		logger:      logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_distributing_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for reconcile tasks: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

func (a *ReconcileTasksConsumerAdapter) messageHandler(ctx context.Context, d amqp.Delivery) error {
	ctx, msgLogger := messageContext(ctx, a.logger, "ReconcileTasksConsumerAdapter", d)

	eventType, eventVersion := eventMeta(d, constants.EventReconcileRequested)
	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return err
	}

	var dto ReconcileRequestedDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return fmt.Errorf("failed to unmarshal reconcile request: %w", err)
	}

	msgLogger.Info("Reconcile request received", port.Fields{
		"fail_fast":    dto.FailFast,
		"dry_run":      dto.DryRun,
		"requested_by": dto.RequestedBy,
	})

	report, err := a.reconcileUC.Execute(ctx, dto.toOptions())
	switch {
	case errors.Is(err, domain.ErrReconcileInProgress):
		// уже идущий запуск обработает то же состояние
		msgLogger.Warn("Reconciliation already in progress, request dropped", nil)
		return nil
	case err != nil:
		msgLogger.Error("Reconciliation run failed", err, nil)
		return err
	}

	msgLogger.Info("Reconcile request processed", port.Fields{
		"run_id":  report.RunID.String(),
		"created": report.Created,
		"updated": report.Updated,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	})
	return nil
}

func (a *ReconcileTasksConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *ReconcileTasksConsumerAdapter) Close() error {
	return a.consumer.Close()
}
