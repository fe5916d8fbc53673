package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// scanQueue is the work queue a cron publisher drops scan requests on.
const scanQueue = "reminder-scan"

type scanRunner interface {
	Scan(ctx context.Context, now time.Time) (ScanReport, error)
	ActivityScan(ctx context.Context, now time.Time) (ScanReport, error)
}

func NewScanConsumer(logger *slog.Logger, channel *amqp.Channel, scanner scanRunner) *scanConsumer {
	return &scanConsumer{
		logger:  logger,
		channel: channel,
		scanner: scanner,
	}
}

type scanConsumer struct {
	logger  *slog.Logger
	channel *amqp.Channel
	scanner scanRunner
}

type scanRequest struct {
	At time.Time `json:"at"`
}

// Consume declares the queue and handles deliveries until the channel
// closes. Each message triggers a reminder scan and an activity scan;
// malformed messages are dropped without requeue.
func (c *scanConsumer) Consume(ctx context.Context) error {
	queue, err := c.channel.QueueDeclare(scanQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	deliveries, err := c.channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for delivery := range deliveries {
			c.handle(ctx, delivery)
		}
	}()

	return nil
}

func (c *scanConsumer) handle(ctx context.Context, delivery amqp.Delivery) {
	request := scanRequest{}
	if len(delivery.Body) > 0 {
		if err := json.Unmarshal(delivery.Body, &request); err != nil {
			c.logger.ErrorContext(ctx, "Failed to unmarshal scan request", "error", err)
			if err := delivery.Nack(false, false); err != nil {
				c.logger.ErrorContext(ctx, "Failed to nack scan request", "error", err)
			}
			return
		}
	}

	now := request.At
	if now.IsZero() {
		now = time.Now()
	}

	reminders, err := c.scanner.Scan(ctx, now)
	if err != nil {
		c.logger.ErrorContext(ctx, "Reminder scan failed", "error", err)
	}
	activity, err := c.scanner.ActivityScan(ctx, now)
	if err != nil {
		c.logger.ErrorContext(ctx, "Activity scan failed", "error", err)
	}

	c.logger.InfoContext(ctx, "Scan finished",
		"remindersCreated", reminders.NotificationsCreated,
		"announcementsCreated", activity.NotificationsCreated,
		"eventsProcessed", reminders.EventsProcessed+activity.EventsProcessed)

	if err := delivery.Ack(false); err != nil {
		c.logger.ErrorContext(ctx, "Failed to ack scan request", "error", err)
	}
}
