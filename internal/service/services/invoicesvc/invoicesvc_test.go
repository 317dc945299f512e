package invoicesvc

import (
	"context"
	"errors"
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

func (f *fakeOrderRepo) FetchOpenOrders(_ context.Context, slackID string) ([]order.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	if slackID == "" {
		return f.orders, nil
	}

	var matched []order.Order
	for _, o := range f.orders {
		if o.SlackID() == slackID {
			matched = append(matched, o)
		}
	}

	return matched, nil
}

type publishedJob struct {
	job   job.Job
	delay time.Duration
}

type fakeQueue struct {
	published []publishedJob
	err       error
}

func (f *fakeQueue) Publish(_ context.Context, j job.Job, delay time.Duration) error {
	if f.err != nil {
		return f.err
	}
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
	failFor map[string]error
}

func (f *fakeSlack) Enabled() bool {
	return f.enabled
}

func (f *fakeSlack) PostMessage(_ context.Context, channel string, blocks []slack.Block) error {
	f.posted = append(f.posted, postedMessage{channel: channel, blocks: blocks})
	if err, ok := f.failFor[channel]; ok {
		return err
	}

	return nil
}

func openOrder(id, slackID, languageID string, amount float64, date time.Time, items ...lineitem.LineItem) order.Order {
	o := order.Order{
		ID:          id,
		OrderNumber: "1000" + id,
		AmountTotal: amount,
		OrderDate:   date,
		BillingAddress: order.BillingAddress{
			FirstName:              "Max",
			LastName:               "Mustermann",
			AdditionalAddressLine1: slackID,
		},
		LineItems: items,
	}
	if languageID != "" {
		o.OrderCustomer = &order.OrderCustomer{
			FirstName: "Max",
			LastName:  "Mustermann",
			Customer:  &order.Customer{ID: "c-" + id, LanguageID: languageID},
		}
	}

	return o
}

func newTestService(repo *fakeOrderRepo, queue *fakeQueue, slackClient *fakeSlack) *InvoiceService {
	return MustNewInvoiceService(
		WithOrderRepository(repo),
		WithJobQueue(queue),
		WithSlackClient(slackClient),
		WithPayMeLink("https://paypal.me/mett"),
		WithBaseDelay(time.Second),
		WithPause(time.Millisecond),
		WithLocation(time.UTC),
	)
}

func TestResolveRecipients(t *testing.T) {
	now := time.Now()
	orders := []order.Order{
		openOrder("1", "U1", "de-DE", 5, now),
		openOrder("2", "", "de-DE", 5, now),
		openOrder("3", "U2", "", 5, now),
		openOrder("4", "U1", "en-GB", 5, now),
	}

	got := ResolveRecipients(orders)

	want := []Recipient{
		{SlackID: "U1", LanguageID: "en-GB"},
		{SlackID: "U2", LanguageID: "en-GB"},
	}
	if len(got) != len(want) {
		t.Fatalf("ResolveRecipients() returned %d recipients, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ResolveRecipients()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestResolveRecipientsEmpty(t *testing.T) {
	if got := ResolveRecipients(nil); len(got) != 0 {
		t.Errorf("ResolveRecipients(nil) = %v, want empty", got)
	}
}

func TestBuildJobs(t *testing.T) {
	recipients := []Recipient{
		{SlackID: "U1", LanguageID: "de-DE"},
		{SlackID: "U2", LanguageID: "en-GB"},
	}
	contacts := []string{"U9"}

	jobs := BuildJobs(recipients, contacts)

	if len(jobs) != 2 {
		t.Fatalf("BuildJobs() returned %d jobs, want 2", len(jobs))
	}
	for i, j := range jobs {
		if j.Kind != job.KindOpenInvoice {
			t.Errorf("jobs[%d].Kind = %q, want %q", i, j.Kind, job.KindOpenInvoice)
		}
		if j.SlackID != recipients[i].SlackID {
			t.Errorf("jobs[%d].SlackID = %q, want %q", i, j.SlackID, recipients[i].SlackID)
		}
		if j.LanguageID != recipients[i].LanguageID {
			t.Errorf("jobs[%d].LanguageID = %q, want %q", i, j.LanguageID, recipients[i].LanguageID)
		}
		if len(j.AdditionalContacts) != 1 || j.AdditionalContacts[0] != "U9" {
			t.Errorf("jobs[%d].AdditionalContacts = %v, want [U9]", i, j.AdditionalContacts)
		}
	}
}

func TestDelayFor(t *testing.T) {
	tests := []struct {
		name      string
		position  int
		copyCount int
		want      time.Duration
	}{
		{name: "first job without copies", position: 1, copyCount: 0, want: time.Second},
		{name: "second job without copies", position: 2, copyCount: 0, want: 2 * time.Second},
		{name: "first job with two copies", position: 1, copyCount: 2, want: 2 * time.Second},
		{name: "second job with two copies", position: 2, copyCount: 2, want: 4 * time.Second},
		{name: "third job with two copies", position: 3, copyCount: 2, want: 6 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DelayFor(tt.position, tt.copyCount, time.Second); got != tt.want {
				t.Errorf("DelayFor(%d, %d) = %v, want %v", tt.position, tt.copyCount, got, tt.want)
			}
		})
	}
}

func TestSchedule(t *testing.T) {
	queue := &fakeQueue{}
	svc := newTestService(&fakeOrderRepo{}, queue, &fakeSlack{enabled: true})

	jobs := BuildJobs([]Recipient{
		{SlackID: "U1", LanguageID: "de-DE"},
		{SlackID: "U2", LanguageID: "de-DE"},
	}, []string{"U8", "U9"})

	if err := svc.Schedule(context.Background(), jobs); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	wantDelays := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(queue.published) != len(wantDelays) {
		t.Fatalf("Schedule() published %d jobs, want %d", len(queue.published), len(wantDelays))
	}
	for i, want := range wantDelays {
		if queue.published[i].delay != want {
			t.Errorf("published[%d].delay = %v, want %v", i, queue.published[i].delay, want)
		}
	}
}

func TestSchedulePublishError(t *testing.T) {
	queue := &fakeQueue{err: errors.New("broker down")}
	svc := newTestService(&fakeOrderRepo{}, queue, &fakeSlack{enabled: true})

	jobs := BuildJobs([]Recipient{{SlackID: "U1", LanguageID: "de-DE"}}, nil)
	if err := svc.Schedule(context.Background(), jobs); err == nil {
		t.Error("Schedule() error = nil, want publish error")
	}
}

func TestRun(t *testing.T) {
	now := time.Now()
	repo := &fakeOrderRepo{orders: []order.Order{
		openOrder("1", "U1", "de-DE", 5, now),
		openOrder("2", "U2", "de-DE", 5, now),
	}}
	queue := &fakeQueue{}
	svc := newTestService(repo, queue, &fakeSlack{enabled: true})

	scheduled, err := svc.Run(context.Background(), "", []string{"U9"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if scheduled != 2 {
		t.Errorf("Run() scheduled = %d, want 2", scheduled)
	}
}

func TestRunWithFilter(t *testing.T) {
	now := time.Now()
	repo := &fakeOrderRepo{orders: []order.Order{
		openOrder("1", "U1", "de-DE", 5, now),
		openOrder("2", "U2", "de-DE", 5, now),
	}}
	queue := &fakeQueue{}
	svc := newTestService(repo, queue, &fakeSlack{enabled: true})

	scheduled, err := svc.Run(context.Background(), "U2", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if scheduled != 1 {
		t.Fatalf("Run() scheduled = %d, want 1", scheduled)
	}
	if queue.published[0].job.SlackID != "U2" {
		t.Errorf("published job SlackID = %q, want %q", queue.published[0].job.SlackID, "U2")
	}
}
