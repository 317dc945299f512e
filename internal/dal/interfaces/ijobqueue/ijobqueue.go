package ijobqueue

import (
	"context"
	"time"

	"github.com/mettware/slack-notifier/internal/service/models/job"
)

// IJobQueue is an interface for the asynchronous notification work channel.
// At-least-once delivery semantics are assumed.
type IJobQueue interface {
	Publish(ctx context.Context, j job.Job, delay time.Duration) error
}
