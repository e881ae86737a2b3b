package consumer

import (
	"encoding/base64"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventHandler handles the decoded body of a queue message
type EventHandler interface {
	HandleEvent(decodedMessage []byte) error
}

// ProcessMessage runs one queue message through handler:
// 1. decodes the base64-encoded body
// 2. calls HandleEvent
// 3. ACKs on success, NACKs without requeue on failure
func ProcessMessage(logger *zap.Logger, queue string, msg amqp.Delivery, handler EventHandler) {
	logger.Debug("Received message from queue",
		zap.String("queue", queue),
		zap.Uint64("delivery_tag", msg.DeliveryTag),
	)

	decodedMessage, err := base64.StdEncoding.DecodeString(string(msg.Body))
	if err != nil {
		logger.Error("Failed to decode base64 message from queue",
			zap.String("queue", queue),
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
		rejectMessage(logger, msg)
		return
	}

	if err := handler.HandleEvent(decodedMessage); err != nil {
		logger.Error("Failed to process message from queue",
			zap.String("queue", queue),
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.ByteString("decoded_message", decodedMessage),
			zap.Error(err),
		)
		rejectMessage(logger, msg)
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("Failed to ack message from queue",
			zap.String("queue", queue),
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
		return
	}

	logger.Debug("Message from queue processed successfully",
		zap.String("queue", queue),
		zap.Uint64("delivery_tag", msg.DeliveryTag),
	)
}

// rejectMessage NACKs a message without requeue; the broker dead-letters it
// if the queue is configured to
func rejectMessage(logger *zap.Logger, msg amqp.Delivery) {
	if err := msg.Nack(false, false); err != nil {
		logger.Error("Failed to nack a message",
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
	}
}

// RequeueMessage hands an unprocessed message back to the broker so another
// consumer picks it up
func RequeueMessage(logger *zap.Logger, queue string, msg amqp.Delivery) {
	if err := msg.Nack(false, true); err != nil {
		logger.Error("Failed to requeue message",
			zap.String("queue", queue),
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
		return
	}
	logger.Debug("Message requeued",
		zap.String("queue", queue),
		zap.Uint64("delivery_tag", msg.DeliveryTag),
	)
}
