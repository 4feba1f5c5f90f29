package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/streamapp/stream-platform/internal/telegram"
)

// StartContentConsumer connects to the broker, declares the durable
// content.published queue and posts each event to the Telegram channel.
// It runs a reconnect loop with exponential backoff and keeps running
// through broker outages; processing errors reject the message without
// requeueing so a poison event cannot wedge the queue.
func StartContentConsumer(url string, bot *telegram.Client) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logrus.WithError(err).Warnf("content-consumer: dial failed; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, bot); err != nil {
			logrus.WithError(err).Warn("content-consumer: consume loop ended; reconnecting")
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, bot *telegram.Client) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logrus.WithError(err).Warn("content-consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(contentQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(contentQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, bot); err != nil {
			logrus.WithError(err).Warn("content-consumer: handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, bot *telegram.Client) error {
	var ev ContentPublishedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	caption := announcementCaption(ev)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if ev.PosterURL != "" {
		return bot.SendPhoto(ctx, ev.PosterURL, caption)
	}
	return bot.SendMessage(ctx, caption)
}

func announcementCaption(ev ContentPublishedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>", ev.Title)
	if ev.Year > 0 {
		fmt.Fprintf(&b, " (%d)", ev.Year)
	}
	if len(ev.Genres) > 0 {
		fmt.Fprintf(&b, "\n%s", strings.Join(ev.Genres, ", "))
	}
	if len(ev.Countries) > 0 {
		fmt.Fprintf(&b, "\n%s", strings.Join(ev.Countries, ", "))
	}
	return b.String()
}
