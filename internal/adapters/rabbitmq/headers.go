package rabbitmq

import (
	"context"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/constants"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// traceIDFrom берет x-trace-id из заголовков или генерирует новый
func traceIDFrom(d amqp.Delivery) string {
	if traceID, ok := d.Headers[constants.HeaderTraceID].(string); ok && traceID != "" {
		return traceID
	}
	return uuid.New().String()
}

// eventMeta возвращает тип и версию события; без заголовков - ожидаемые значения очереди
func eventMeta(d amqp.Delivery, defaultType string) (string, string) {
	eventType, _ := d.Headers[constants.HeaderEventType].(string)
	eventVersion, _ := d.Headers[constants.HeaderEventVersion].(string)
	if eventType == "" {
		eventType = defaultType
	}
	if eventVersion == "" {
		eventVersion = constants.EventVersionV1
	}
	return eventType, eventVersion
}

// messageContext готовит контекст обработки с логгером и trace_id
func messageContext(ctx context.Context, base port.LoggerPort, adapterName string, d amqp.Delivery) (context.Context, port.LoggerPort) {
	traceID := traceIDFrom(d)
	msgLogger := base.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
		"adapter_name": adapterName,
	})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)
	return ctx, msgLogger
}
