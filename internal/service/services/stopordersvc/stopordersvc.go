package stopordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mettware/slack-notifier/internal/dal/interfaces/ijobqueue"
	"github.com/mettware/slack-notifier/internal/dal/interfaces/iorderrepo"
	"github.com/mettware/slack-notifier/internal/dal/interfaces/islackclient"
	"github.com/mettware/slack-notifier/internal/dal/slack"
	"github.com/mettware/slack-notifier/internal/service/models/job"
	"github.com/mettware/slack-notifier/internal/service/models/language"
	"github.com/mettware/slack-notifier/internal/service/models/order"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

const stopOrdersHeader = "Orders stopped - Todays orders"

// ErrConfigMissing is returned when the Slack bot token or the target channel
// is not configured. The workflow no-ops in that case.
var ErrConfigMissing = errors.New("slack bot token or stop-orders channel not configured")

// StopOrdersService posts a summary of today's open orders to a fixed channel
// when ordering is stopped for the day.
type StopOrdersService struct {
	orderRepo iorderrepo.IOrderRepository
	queue     ijobqueue.IJobQueue
	slack     islackclient.ISlackClient

	channel  string
	location *time.Location
}

// option is a function that configures the StopOrdersService.
type option func(*StopOrdersService)

// MustNewStopOrdersService creates a new StopOrdersService.
func MustNewStopOrdersService(opts ...option) *StopOrdersService {
	s := &StopOrdersService{
		channel: viper.GetString("slack.stop_orders_channel"),
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

// WithOrderRepository sets the order repository for the StopOrdersService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(orderRepo iorderrepo.IOrderRepository) option {
	return func(s *StopOrdersService) {
		s.orderRepo = orderRepo
	}
}

// WithJobQueue sets the notification job queue for the StopOrdersService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithJobQueue(queue ijobqueue.IJobQueue) option {
	return func(s *StopOrdersService) {
		s.queue = queue
	}
}

// WithSlackClient sets the Slack client for the StopOrdersService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSlackClient(slack islackclient.ISlackClient) option {
	return func(s *StopOrdersService) {
		s.slack = slack
	}
}

// WithChannel sets the target channel.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithChannel(channel string) option {
	return func(s *StopOrdersService) {
		s.channel = channel
	}
}

// WithLocation sets the timezone that defines "today".
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLocation(location *time.Location) option {
	return func(s *StopOrdersService) {
		s.location = location
	}
}

// Schedule enqueues an order-stoppage notification job for immediate
// processing.
func (s *StopOrdersService) Schedule(ctx context.Context) error {
	if err := s.queue.Publish(ctx, job.NewStopOrdersJob(), 0); err != nil {
		return fmt.Errorf("failed to enqueue stop-orders job: %w", err)
	}

	return nil
}

// HandleStopOrders executes an order-stoppage notification job: it posts a
// summary of today's open orders to the configured channel. Without a token
// or channel the handler no-ops.
func (s *StopOrdersService) HandleStopOrders(ctx context.Context, j job.Job) error {
	ctx, span := otel.Tracer("stopordersvc").Start(ctx, "StopOrdersService.HandleStopOrders")
	defer span.End()

	if !s.slack.Enabled() || s.channel == "" {
		return ErrConfigMissing
	}

	orders, err := s.orderRepo.FetchOpenOrders(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to query open orders: %w", err)
	}

	todays := s.filterToday(orders)
	if len(todays) == 0 {
		slog.Info("No orders placed today, skipping stop-orders notice", "job_id", j.ID)

		return nil
	}

	blocks := RenderStopOrders(todays, language.SystemLanguageID)
	if err := s.slack.PostMessage(ctx, s.channel, blocks); err != nil {
		return fmt.Errorf("failed to post stop-orders notice: %w", err)
	}

	slog.Info("Stop-orders notice delivered", "job_id", j.ID, "channel", s.channel, "orders", len(todays))

	return nil
}

// filterToday keeps the orders placed today in the service's timezone.
func (s *StopOrdersService) filterToday(orders []order.Order) []order.Order {
	now := time.Now().In(s.location)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	todays := make([]order.Order, 0, len(orders))
	for i := range orders {
		if !orders[i].OrderDate.Before(startOfDay) {
			todays = append(todays, orders[i])
		}
	}

	return todays
}

// RenderStopOrders renders the order-stoppage summary: one markdown line per
// line item with the ordering customer's name, quantity and resolved product
// name. No prices and no payment button.
func RenderStopOrders(orders []order.Order, languageID string) []slack.Block {
	var markdown strings.Builder
	for i := range orders {
		o := &orders[i]

		var customer string
		if o.OrderCustomer != nil {
			customer = o.OrderCustomer.FirstName + " " + o.OrderCustomer.LastName
		}

		for _, li := range o.LineItems {
			fmt.Fprintf(&markdown, ">%s - %dx %s\n", customer, li.Quantity, li.DisplayName(languageID))
		}
	}

	return []slack.Block{
		slack.NewHeaderBlock(stopOrdersHeader),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(markdown.String(), nil),
	}
}
