package stopordersvc

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mettware/slack-notifier/internal/dal/slack"
	"github.com/mettware/slack-notifier/internal/service/models/job"
	"github.com/mettware/slack-notifier/internal/service/models/lineitem"
	"github.com/mettware/slack-notifier/internal/service/models/order"
)

type fakeOrderRepo struct {
	orders []order.Order
	err    error
}

func (f *fakeOrderRepo) FetchOpenOrders(_ context.Context, _ string) ([]order.Order, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.orders, nil
}

type publishedJob struct {
	job   job.Job
	delay time.Duration
}

type fakeQueue struct {
	published []publishedJob
}

func (f *fakeQueue) Publish(_ context.Context, j job.Job, delay time.Duration) error {
	f.published = append(f.published, publishedJob{job: j, delay: delay})

	return nil
}

type postedMessage struct {
	channel string
	blocks  []slack.Block
}

type fakeSlack struct {
	enabled bool
	posted  []postedMessage
}

func (f *fakeSlack) Enabled() bool {
	return f.enabled
}

func (f *fakeSlack) PostMessage(_ context.Context, channel string, blocks []slack.Block) error {
	f.posted = append(f.posted, postedMessage{channel: channel, blocks: blocks})

	return nil
}

func testOrder(firstName, lastName string, date time.Time, items ...lineitem.LineItem) order.Order {
	return order.Order{
		ID:          "o1",
		AmountTotal: 5,
		OrderDate:   date,
		OrderCustomer: &order.OrderCustomer{
			FirstName: firstName,
			LastName:  lastName,
		},
		LineItems: items,
	}
}

func newTestService(repo *fakeOrderRepo, queue *fakeQueue, slackClient *fakeSlack) *StopOrdersService {
	return MustNewStopOrdersService(
		WithOrderRepository(repo),
		WithJobQueue(queue),
		WithSlackClient(slackClient),
		WithChannel("C123"),
		WithLocation(time.UTC),
	)
}

func TestSchedule(t *testing.T) {
	queue := &fakeQueue{}
	svc := newTestService(&fakeOrderRepo{}, queue, &fakeSlack{enabled: true})

	if err := svc.Schedule(context.Background()); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	if len(queue.published) != 1 {
		t.Fatalf("published %d jobs, want 1", len(queue.published))
	}
	if queue.published[0].job.Kind != job.KindStopOrders {
		t.Errorf("job kind = %q, want %q", queue.published[0].job.Kind, job.KindStopOrders)
	}
	if queue.published[0].delay != 0 {
		t.Errorf("delay = %v, want 0", queue.published[0].delay)
	}
}

func TestHandleStopOrders(t *testing.T) {
	repo := &fakeOrderRepo{orders: []order.Order{
		testOrder("Max", "Mustermann", time.Now().UTC(),
			lineitem.LineItem{Label: "Mett Classic", Quantity: 2},
		),
	}}
	slackClient := &fakeSlack{enabled: true}
	svc := newTestService(repo, &fakeQueue{}, slackClient)

	if err := svc.HandleStopOrders(context.Background(), job.NewStopOrdersJob()); err != nil {
		t.Fatalf("HandleStopOrders() error = %v", err)
	}

	if len(slackClient.posted) != 1 {
		t.Fatalf("posted %d messages, want 1", len(slackClient.posted))
	}
	if slackClient.posted[0].channel != "C123" {
		t.Errorf("channel = %q, want C123", slackClient.posted[0].channel)
	}

	blocks := slackClient.posted[0].blocks
	if len(blocks) != 3 {
		t.Fatalf("message has %d blocks, want 3", len(blocks))
	}
	if blocks[0].Text.Text != "Orders stopped - Todays orders" {
		t.Errorf("header = %q, want stop-orders header", blocks[0].Text.Text)
	}
	if !strings.Contains(blocks[2].Text.Text, ">Max Mustermann - 2x Mett Classic\n") {
		t.Errorf("markdown misses order line: %q", blocks[2].Text.Text)
	}
}

func TestHandleStopOrdersSkipsWithoutTodaysOrders(t *testing.T) {
	repo := &fakeOrderRepo{orders: []order.Order{
		testOrder("Max", "Mustermann", time.Now().UTC().AddDate(0, 0, -2),
			lineitem.LineItem{Label: "Mett Classic", Quantity: 1},
		),
	}}
	slackClient := &fakeSlack{enabled: true}
	svc := newTestService(repo, &fakeQueue{}, slackClient)

	if err := svc.HandleStopOrders(context.Background(), job.NewStopOrdersJob()); err != nil {
		t.Fatalf("HandleStopOrders() error = %v", err)
	}
	if len(slackClient.posted) != 0 {
		t.Errorf("posted %d messages, want none", len(slackClient.posted))
	}
}

func TestHandleStopOrdersConfigMissing(t *testing.T) {
	svc := MustNewStopOrdersService(
		WithOrderRepository(&fakeOrderRepo{}),
		WithJobQueue(&fakeQueue{}),
		WithSlackClient(&fakeSlack{enabled: true}),
		WithChannel(""),
		WithLocation(time.UTC),
	)

	if err := svc.HandleStopOrders(context.Background(), job.NewStopOrdersJob()); !errors.Is(err, ErrConfigMissing) {
		t.Errorf("HandleStopOrders() error = %v, want ErrConfigMissing", err)
	}

	disabled := newTestService(&fakeOrderRepo{}, &fakeQueue{}, &fakeSlack{enabled: false})
	if err := disabled.HandleStopOrders(context.Background(), job.NewStopOrdersJob()); !errors.Is(err, ErrConfigMissing) {
		t.Errorf("HandleStopOrders() error = %v, want ErrConfigMissing", err)
	}
}
