package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const contentQueueName = "content.published"

// PublishContentPublished publishes a ContentPublishedEvent to the
// content.published queue. Any error is logged and returned so callers
// can treat the announcement as best-effort; a broker outage must not
// fail the create request. Messages are marked persistent.
func PublishContentPublished(ctx context.Context, url string, event ContentPublishedEvent) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(contentQueueName, true, false, false, false, nil); err != nil {
		logrus.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq: marshal event failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", contentQueueName, false, false, pub); err != nil {
		logrus.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
