package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/rabbitmq/rabbitmq_common"
	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DistributingConsumer обрабатывает каждое сообщение в отдельной горутине.
// Число одновременно работающих обработчиков ограничено PrefetchCount.
type DistributingConsumer struct {
	config     ConsumerConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	handler    MessageHandler
	dlx        *rabbitmq_producer.Publisher
	logger     rabbitmq_common.Logger

	wg sync.WaitGroup
}

var _ Consumer = (*DistributingConsumer)(nil)

// NewDistributingConsumer открывает канал, объявляет топологию и готовит DLX-продюсер
func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing consumer: message handler is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("distributing consumer: invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("distributing consumer: failed to get channel from manager: %w", err)
	}

	c := &DistributingConsumer{
		config:     cfg,
		connection: conn,
		channel:    ch,
		handler:    handler,
		logger:     logger,
	}

	if err := c.declareTopology(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}

	if cfg.EnableRetryMechanism {
		c.dlx, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("distributing consumer: failed to create final DLX publisher: %w", err)
		}
	}

	return c, nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения брокером
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("distributing consumer: not connected")
	}

	deliveries, err := c.channel.Consume(c.config.QueueName, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("distributing consumer %s: failed to consume from '%s': %w", c.config.ConsumerTag, c.config.QueueName, err)
	}

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	limit := c.config.PrefetchCount
	if limit <= 0 {
		limit = 1
	}
	slots := make(chan struct{}, limit)

	c.logger.Info("Waiting for messages", "queue", c.config.QueueName, "consumer_tag", c.config.ConsumerTag)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Context cancelled, consumer loop stopped", "consumer_tag", c.config.ConsumerTag)
			return nil

		case amqpErr := <-notifyClose:
			if amqpErr == nil {
				return nil
			}
			c.logger.Error(amqpErr, "Connection closed by broker", "consumer_tag", c.config.ConsumerTag)
			return amqpErr

		case d, ok := <-deliveries:
			if !ok {
				c.logger.Warn("Deliveries channel closed", "consumer_tag", c.config.ConsumerTag)
				return fmt.Errorf("distributing consumer %s: deliveries channel closed", c.config.ConsumerTag)
			}

			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				_ = d.Nack(false, true)
				return nil
			}

			c.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				defer func() { <-slots }()
				c.process(ctx, delivery)
			}(d)
		}
	}
}

func (c *DistributingConsumer) process(ctx context.Context, d amqp.Delivery) {
	tag := c.config.ConsumerTag

	err := c.handler(ctx, d)
	if err == nil {
		_ = d.Ack(false)
		c.logger.Debug("Message acked", "consumer_tag", tag, "delivery_tag", d.DeliveryTag)
		return
	}

	c.logger.Error(err, "Handler failed", "consumer_tag", tag, "delivery_tag", d.DeliveryTag)

	if !c.config.EnableRetryMechanism {
		_ = d.Nack(false, false)
		return
	}

	deaths := deathCount(d, c.config.QueueName)
	if deaths < int64(c.config.MaxRetries) {
		c.logger.Info("Message sent to retry", "consumer_tag", tag, "delivery_tag", d.DeliveryTag, "death_count", deaths)
		_ = d.Nack(false, false)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pubErr := c.dlx.Publish(pubCtx, c.config.FinalDLQRoutingKey, amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		Headers:      d.Headers,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if pubErr != nil {
		c.logger.Error(pubErr, "Failed to publish to final DLX, message goes around the retry loop again", "consumer_tag", tag)
		_ = d.Nack(false, false)
		return
	}

	c.logger.Warn("Max retries reached, message moved to final DLQ", "consumer_tag", tag, "delivery_tag", d.DeliveryTag)
	_ = d.Ack(false)
}

// Close дожидается активных обработчиков и закрывает канал
func (c *DistributingConsumer) Close() error {
	c.wg.Wait()

	var firstErr error
	if c.dlx != nil {
		if err := c.dlx.Close(); err != nil {
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.channel = nil
	}

	c.logger.Info("Consumer closed", "consumer_tag", c.config.ConsumerTag)
	return firstErr
}
