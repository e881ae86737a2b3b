package listener

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/marminbh/indexpush-svc/internal/config"
	"github.com/marminbh/indexpush-svc/internal/consumer"
	"github.com/marminbh/indexpush-svc/internal/models"
)

// Broker is the part of the RabbitMQ connection the listener uses
type Broker interface {
	SetQoS(prefetchCount int) error
	Consume(queue, consumerTag string) (<-chan amqp.Delivery, error)
	Cancel(consumerTag string) error
	IsHealthy() bool
}

// NotificationHandler processes one publish notification
type NotificationHandler interface {
	Handle(ctx context.Context, n models.PublishNotification)
}

// Listener consumes publish notifications from the queue and hands each one
// to the notification handler
type Listener struct {
	cfg         *config.ConsumerConfig
	broker      Broker
	handler     NotificationHandler
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	consumerTag string
	retryDelay  time.Duration
	started     bool
	done        chan struct{}
}

func NewListener(cfg *config.ConsumerConfig, broker Broker, handler NotificationHandler, logger *zap.Logger) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener{
		cfg:         cfg,
		broker:      broker,
		handler:     handler,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		consumerTag: fmt.Sprintf("indexpush-listener-%d", time.Now().Unix()),
		retryDelay:  2 * time.Second,
		done:        make(chan struct{}),
	}
}

// Start registers the consumer and processes messages in the background
func (l *Listener) Start() error {
	if l.cfg.Queue == "" {
		return fmt.Errorf("publish queue is required")
	}

	messages, err := l.consume()
	if err != nil {
		return err
	}

	l.logger.Info("Listener started and consuming messages",
		zap.String("queue", l.cfg.Queue),
		zap.String("consumer_tag", l.consumerTag),
		zap.Int("prefetch_count", l.cfg.PrefetchCount),
	)

	l.started = true
	go l.run(messages)
	return nil
}

func (l *Listener) consume() (<-chan amqp.Delivery, error) {
	if err := l.broker.SetQoS(l.cfg.PrefetchCount); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	messages, err := l.broker.Consume(l.cfg.Queue, l.consumerTag)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming from queue %s: %w", l.cfg.Queue, err)
	}
	return messages, nil
}

// Stop cancels the consumer and waits for the message in flight to finish.
// Messages delivered but not yet started are requeued.
func (l *Listener) Stop() error {
	l.logger.Info("Stopping listener",
		zap.String("consumer_tag", l.consumerTag),
	)
	l.cancel()

	if err := l.broker.Cancel(l.consumerTag); err != nil {
		l.logger.Warn("Failed to cancel consumer",
			zap.String("consumer_tag", l.consumerTag),
			zap.Error(err),
		)
	}

	if l.started {
		<-l.done
	}
	l.logger.Info("Listener stopped")
	return nil
}

func (l *Listener) run(messages <-chan amqp.Delivery) {
	defer close(l.done)

	for {
		select {
		case <-l.ctx.Done():
			return
		case msg, ok := <-messages:
			if ok {
				// A prefetched message may still be picked after Stop
				if l.ctx.Err() != nil {
					consumer.RequeueMessage(l.logger, l.cfg.Queue, msg)
					continue
				}
				consumer.ProcessMessage(l.logger, l.cfg.Queue, msg, l)
				continue
			}

			l.logger.Warn("Message channel closed, waiting for reconnection...",
				zap.String("queue", l.cfg.Queue),
			)
			messages = l.resubscribe()
			if messages == nil {
				return
			}
		}
	}
}

// resubscribe waits for the connection to recover and registers the consumer
// again. It returns nil once the listener is stopped.
func (l *Listener) resubscribe() <-chan amqp.Delivery {
	for {
		select {
		case <-l.ctx.Done():
			return nil
		case <-time.After(l.retryDelay):
		}

		if !l.broker.IsHealthy() {
			l.logger.Debug("Connection not healthy yet, waiting...",
				zap.String("queue", l.cfg.Queue),
			)
			continue
		}

		messages, err := l.consume()
		if err != nil {
			l.logger.Error("Failed to restart consuming after channel close, will retry",
				zap.String("queue", l.cfg.Queue),
				zap.Error(err),
			)
			continue
		}

		l.logger.Info("Successfully restarted consumer after channel close",
			zap.String("queue", l.cfg.Queue),
		)
		return messages
	}
}

// HandleEvent implements consumer.EventHandler. Malformed notifications are
// rejected; valid ones are always acknowledged since the handler never fails.
// Stopping the listener does not cancel a notification already being handled.
func (l *Listener) HandleEvent(decodedMessage []byte) error {
	notification, err := models.ParseNotification(decodedMessage)
	if err != nil {
		return err
	}

	l.handler.Handle(context.WithoutCancel(l.ctx), notification)
	return nil
}
