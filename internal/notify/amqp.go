package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const lessonEventsQueue = "lesson.events"

// AMQPPublisher pushes events onto a durable RabbitMQ queue for the push
// layer and other downstream consumers. A connection is dialed per emit so
// the publisher never holds broker state across requests; emits are rare
// relative to reads.
type AMQPPublisher struct {
	url    string
	logger *zap.Logger
}

func NewAMQPPublisher(url string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

// Emit publishes the event as persistent JSON. Errors are logged and
// returned; callers on the booking path ignore them.
func (p *AMQPPublisher) Emit(ctx context.Context, event Event) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("amqp dial failed", zap.Error(err))
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("amqp channel open failed", zap.Error(err))
		return err
	}
	defer ch.Close()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(lessonEventsQueue, true, false, false, false, nil); err != nil {
		p.logger.Warn("amqp queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshal event failed", zap.Error(err))
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",                // default exchange
		lessonEventsQueue, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Warn("amqp publish failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}

	return nil
}
