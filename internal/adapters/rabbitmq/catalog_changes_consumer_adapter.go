package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/constants"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contracts"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port/usecases_port"
	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/rabbitmq/rabbitmq_common"
	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/rabbitmq/rabbitmq_consumer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CatalogChangesConsumerAdapter слушает изменения живого каталога и пересобирает объединенный каталог
type CatalogChangesConsumerAdapter struct {
	consumer    rabbitmq_consumer.Consumer
	catalogView usecases_port.CatalogViewPort
	logger      port.LoggerPort
}

var _ port.EventListenerPort = (*CatalogChangesConsumerAdapter)(nil)

func NewCatalogChangesConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	catalogView usecases_port.CatalogViewPort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*CatalogChangesConsumerAdapter, error) {
	adapter := &CatalogChangesConsumerAdapter{
		catalogView: catalogView,
		logger:      logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_distributing_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for catalog changes: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

func (a *CatalogChangesConsumerAdapter) messageHandler(ctx context.Context, d amqp.Delivery) error {
	ctx, msgLogger := messageContext(ctx, a.logger, "CatalogChangesConsumerAdapter", d)

	eventType, eventVersion := eventMeta(d, constants.EventCatalogChanged)
	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return err
	}

	var dto CatalogChangedDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return fmt.Errorf("failed to unmarshal catalog change event: %w", err)
	}

	msgLogger.Info("Catalog change received, rebuilding catalog", port.Fields{
		"change":       dto.Change,
		"record_count": len(dto.RecordIDs),
	})

	// любое изменение пересобирает каталог целиком
	records, err := a.catalogView.Refresh(ctx)
	if err != nil {
		msgLogger.Error("Catalog refresh failed", err, nil)
		return err
	}

	msgLogger.Info("Catalog rebuilt", port.Fields{"merged_count": len(records)})
	return nil
}

func (a *CatalogChangesConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *CatalogChangesConsumerAdapter) Close() error {
	return a.consumer.Close()
}
