package rabbitmq_consumer

import (
	"context"
	"fmt"

	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer - общий контракт потребителей пакета
type Consumer interface {
	StartConsuming(ctx context.Context) error
	Close() error
}

// MessageHandler обрабатывает одно сообщение.
// nil - ack, ошибка - сообщение уходит в цикл ретраев или в финальную DLQ.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// ConsumerConfig описывает очередь, ее привязку и политику ретраев
type ConsumerConfig struct {
	rabbitmq_common.Config

	QueueName    string
	DeclareQueue bool
	DurableQueue bool
	QueueArgs    amqp.Table

	ExchangeNameForBind    string // пусто - без привязки
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	RoutingKeyForBind      string

	PrefetchCount int // также ограничивает число одновременно обрабатываемых сообщений
	ConsumerTag   string

	// Ретраи через wait-очередь с TTL и финальная DLQ
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // мс
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.QueueName == "" {
		return fmt.Errorf("queue name is required")
	}
	if c.DeclareExchangeForBind && c.ExchangeTypeForBind == "" {
		return fmt.Errorf("exchange type is required when declaring an exchange for binding")
	}
	if c.EnableRetryMechanism {
		if c.ExchangeNameForBind == "" {
			return fmt.Errorf("retry mechanism requires a bound exchange to return messages to")
		}
		if c.RetryExchange == "" || c.RetryQueue == "" || c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return fmt.Errorf("retry mechanism requires retry exchange, retry queue, final DLX and final DLQ")
		}
		if c.RetryTTL <= 0 {
			return fmt.Errorf("retry TTL must be positive")
		}
	}
	return nil
}
