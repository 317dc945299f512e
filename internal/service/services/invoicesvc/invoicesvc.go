package invoicesvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mettware/slack-notifier/internal/dal/interfaces/ijobqueue"
	"github.com/mettware/slack-notifier/internal/dal/interfaces/iorderrepo"
	"github.com/mettware/slack-notifier/internal/dal/interfaces/islackclient"
	"github.com/mettware/slack-notifier/internal/service/models/job"
	"github.com/mettware/slack-notifier/internal/service/models/order"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

var (
	// ErrEmptyOrderSet is returned when an invoice would be rendered for a
	// recipient without open orders.
	ErrEmptyOrderSet = errors.New("no open orders for recipient")

	// ErrConfigMissing is returned when the Slack bot token or the payment
	// link is not configured. The workflow no-ops in that case.
	ErrConfigMissing = errors.New("slack bot token or payment link not configured")
)

// Recipient is a deduplicated notification target derived from open orders.
type Recipient struct {
	SlackID    string
	LanguageID string
}

// InvoiceService runs the open-invoice notification pipeline: it resolves
// recipients from open orders, schedules staggered notification jobs and
// delivers the rendered invoice messages.
type InvoiceService struct {
	orderRepo iorderrepo.IOrderRepository
	queue     ijobqueue.IJobQueue
	slack     islackclient.ISlackClient

	payMeLink string
	baseDelay time.Duration
	pause     time.Duration
	location  *time.Location
}

// option is a function that configures the InvoiceService.
type option func(*InvoiceService)

// MustNewInvoiceService creates a new InvoiceService. Unset knobs are read
// from configuration with code-side defaults.
func MustNewInvoiceService(opts ...option) *InvoiceService {
	baseDelayMs := viper.GetInt("rabbitmq.base_delay_ms")
	if baseDelayMs == 0 {
		baseDelayMs = 1000
	}
	pauseMs := viper.GetInt("slack.pause_between_posts_ms")
	if pauseMs == 0 {
		pauseMs = 1000
	}

	s := &InvoiceService{
		payMeLink: viper.GetString("slack.pay_me_link"),
		baseDelay: time.Duration(baseDelayMs) * time.Millisecond,
		pause:     time.Duration(pauseMs) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.location == nil {
		tz := viper.GetString("slack.timezone")
		if tz == "" {
			tz = "Europe/Berlin"
		}
		location, err := time.LoadLocation(tz)
		if err != nil {
			panic("invalid display timezone: " + err.Error())
		}
		s.location = location
	}

	return s
}

// WithOrderRepository sets the order repository for the InvoiceService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(orderRepo iorderrepo.IOrderRepository) option {
	return func(s *InvoiceService) {
		s.orderRepo = orderRepo
	}
}

// WithJobQueue sets the notification job queue for the InvoiceService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithJobQueue(queue ijobqueue.IJobQueue) option {
	return func(s *InvoiceService) {
		s.queue = queue
	}
}

// WithSlackClient sets the Slack client for the InvoiceService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSlackClient(slack islackclient.ISlackClient) option {
	return func(s *InvoiceService) {
		s.slack = slack
	}
}

// WithPayMeLink sets the payment base link.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPayMeLink(link string) option {
	return func(s *InvoiceService) {
		s.payMeLink = link
	}
}

// WithBaseDelay sets the scheduling delay unit.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBaseDelay(d time.Duration) option {
	return func(s *InvoiceService) {
		s.baseDelay = d
	}
}

// WithPause sets the pause between Slack calls within one job.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPause(d time.Duration) option {
	return func(s *InvoiceService) {
		s.pause = d
	}
}

// WithLocation sets the display timezone for rendered order dates.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLocation(location *time.Location) option {
	return func(s *InvoiceService) {
		s.location = location
	}
}

// ResolveRecipients maps open orders to a deduplicated, insertion-ordered
// list of notification recipients. The recipient ID comes from the billing
// address, the language from the ordering customer with a system-language
// fallback. When the same recipient appears on several orders the language of
// the later order wins. Empty recipient IDs are dropped.
func ResolveRecipients(orders []order.Order) []Recipient {
	seen := make(map[string]int, len(orders))
	recipients := make([]Recipient, 0, len(orders))

	for i := range orders {
		slackID := orders[i].SlackID()
		if slackID == "" {
			continue
		}

		languageID := orders[i].LanguageID()
		if at, ok := seen[slackID]; ok {
			recipients[at].LanguageID = languageID

			continue
		}

		seen[slackID] = len(recipients)
		recipients = append(recipients, Recipient{
			SlackID:    slackID,
			LanguageID: languageID,
		})
	}

	return recipients
}

// BuildJobs creates one notification job per recipient, preserving resolver
// order. All jobs share the same copy-recipient list.
func BuildJobs(recipients []Recipient, additionalContacts []string) []job.Job {
	jobs := make([]job.Job, 0, len(recipients))
	for _, r := range recipients {
		jobs = append(jobs, job.NewOpenInvoiceJob(r.SlackID, r.LanguageID, additionalContacts))
	}

	return jobs
}

// DelayFor computes the queue delay for the job at the given 1-indexed batch
// position. The delay unit scales with the copy-recipient count since every
// copy multiplies the Slack calls a single job performs.
func DelayFor(position, copyCount int, base time.Duration) time.Duration {
	if copyCount < 1 {
		copyCount = 1
	}

	return time.Duration(position) * time.Duration(copyCount) * base
}

// Schedule enqueues the jobs with staggered delays. A publish failure is
// fatal to the batch run.
func (s *InvoiceService) Schedule(ctx context.Context, jobs []job.Job) error {
	for i, j := range jobs {
		delay := DelayFor(i+1, len(j.AdditionalContacts), s.baseDelay)
		if err := s.queue.Publish(ctx, j, delay); err != nil {
			return fmt.Errorf("failed to enqueue notification job: %w", err)
		}

		slog.Info("Notification job scheduled",
			"job_id", j.ID,
			"slack_id", j.SlackID,
			"delay", delay,
		)
	}

	return nil
}

// Run executes one batch run: it queries all open orders, resolves the
// recipients, optionally reduces them to a single one, builds the jobs and
// schedules them. Returns the number of scheduled jobs.
func (s *InvoiceService) Run(
	ctx context.Context,
	filterSlackID string,
	additionalContacts []string,
) (int, error) {
	ctx, span := otel.Tracer("invoicesvc").Start(ctx, "InvoiceService.Run")
	defer span.End()

	orders, err := s.orderRepo.FetchOpenOrders(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to query open orders: %w", err)
	}

	recipients := ResolveRecipients(orders)
	if filterSlackID != "" {
		filtered := recipients[:0]
		for _, r := range recipients {
			if r.SlackID == filterSlackID {
				filtered = append(filtered, r)
			}
		}
		recipients = filtered
	}

	jobs := BuildJobs(recipients, additionalContacts)
	if err := s.Schedule(ctx, jobs); err != nil {
		return 0, err
	}

	return len(jobs), nil
}

// OpenInvoices returns the open orders for one Slack ID, for the read-only
// API surface.
func (s *InvoiceService) OpenInvoices(ctx context.Context, slackID string) ([]order.Order, error) {
	orders, err := s.orderRepo.FetchOpenOrders(ctx, slackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open orders: %w", err)
	}

	return orders, nil
}
