package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mettware/slack-notifier/internal/dal/queue"
	"github.com/mettware/slack-notifier/internal/dal/rabbitmq"
	"github.com/mettware/slack-notifier/internal/service/models/job"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// HandlerFunc executes one notification job.
type HandlerFunc func(ctx context.Context, j job.Job) error

// Consumer represents the RabbitMQ consumer transport. It dispatches consumed
// jobs to the handler registered for their kind.
type Consumer struct {
	client   *rabbitmq.Client
	queue    string
	handlers map[job.Kind]HandlerFunc
	stop     chan struct{}
	done     chan struct{}
}

// NewConsumer creates a new Consumer reading from the job queue's work queue.
func NewConsumer(client *rabbitmq.Client, jobQueue *queue.JobQueue, handlers map[job.Kind]HandlerFunc) *Consumer {
	return &Consumer{
		client:   client,
		queue:    jobQueue.WorkQueue(),
		handlers: handlers,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run starts consuming messages from RabbitMQ.
func (c *Consumer) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "slack-notifier"
	}

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:     c.queue,
		Consumer:  consumerTag,
		AutoAck:   viper.GetBool("rabbitmq.auto_ack"),
		Exclusive: viper.GetBool("rabbitmq.exclusive"),
		NoLocal:   viper.GetBool("rabbitmq.no_local"),
		NoWait:    viper.GetBool("rabbitmq.no_wait"),
	})
	if err != nil {
		return err
	}

	slog.Info("Consumer started", "queue", c.queue, "consumer_tag", consumerTag)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(50)

	go func() {
		for {
			select {
			case <-c.stop:
				slog.Info("Stopping consumer")
				close(c.done)

				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Info("Message channel closed")
					close(c.done)

					return
				}

				g.Go(func() error {
					return c.processMessage(gctx, msg)
				})
			}
		}
	}()

	<-c.done
	if err := g.Wait(); err != nil {
		slog.Error("Error processing messages", "error", err)
	}

	return nil
}

// processMessage processes a single message from RabbitMQ.
func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) error {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	slog.Info("Received message", "delivery_tag", msg.DeliveryTag)

	var j job.Job
	if err := json.Unmarshal(msg.Body, &j); err != nil {
		slog.Error("Failed to unmarshal job", "error", err)
		// Reject the message without requeuing
		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return err
	}

	handler, ok := c.handlers[j.Kind]
	if !ok {
		slog.Error("No handler registered for job kind", "kind", j.Kind, "job_id", j.ID)
		// Reject the message without requeuing
		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return nil
	}

	if err := handler(ctx, j); err != nil {
		slog.Error("Failed to process job", "error", err, "kind", j.Kind, "job_id", j.ID)
		// Requeue the message for retry
		if err := msg.Nack(false, true); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return err
	}

	// Acknowledge the message
	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)

		return err
	}

	slog.Info("Message processed successfully", "kind", j.Kind, "job_id", j.ID)

	return nil
}

// Shutdown gracefully shuts down the consumer.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	close(c.stop)

	// Wait for processing to finish with timeout
	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
