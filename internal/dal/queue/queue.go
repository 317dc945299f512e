package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mettware/slack-notifier/internal/dal/rabbitmq"
	"github.com/mettware/slack-notifier/internal/service/models/job"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// JobQueue publishes notification jobs to RabbitMQ. Delayed delivery is
// implemented with a second queue that has no consumer: messages published
// there carry a per-message TTL and are dead-lettered into the work queue
// once the TTL expires.
type JobQueue struct {
	client     *rabbitmq.Client
	workQueue  string
	delayQueue string
}

// MustNewJobQueue creates a new job queue and declares its topology.
func MustNewJobQueue(client *rabbitmq.Client) *JobQueue {
	workQueue := viper.GetString("rabbitmq.queue")
	if workQueue == "" {
		workQueue = "slack_notifications"
	}
	delayQueue := viper.GetString("rabbitmq.delay_queue")
	if delayQueue == "" {
		delayQueue = workQueue + "_delay"
	}

	if _, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    workQueue,
		Durable: true,
	}); err != nil {
		panic(fmt.Sprintf("Failed to declare work queue: %v", err))
	}

	if _, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    delayQueue,
		Durable: true,
		Args: amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": workQueue,
		},
	}); err != nil {
		panic(fmt.Sprintf("Failed to declare delay queue: %v", err))
	}

	return &JobQueue{
		client:     client,
		workQueue:  workQueue,
		delayQueue: delayQueue,
	}
}

// WorkQueue returns the name of the queue consumed by the worker.
func (q *JobQueue) WorkQueue() string {
	return q.workQueue
}

// Publish enqueues a job. A positive delay routes the message through the
// delay queue with a matching TTL; zero goes straight to the work queue.
func (q *JobQueue) Publish(_ context.Context, j job.Job, delay time.Duration) error {
	body, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	routingKey := q.workQueue
	if delay > 0 {
		routingKey = q.delayQueue
		publishing.Expiration = strconv.FormatInt(delay.Milliseconds(), 10)
	}

	if err := q.client.Channel().Publish("", routingKey, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	return nil
}
