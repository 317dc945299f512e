package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/mettware/slack-notifier/internal/config"
	"github.com/mettware/slack-notifier/internal/dal/postgres"
	"github.com/mettware/slack-notifier/internal/dal/queue"
	"github.com/mettware/slack-notifier/internal/dal/rabbitmq"
	orderrepo "github.com/mettware/slack-notifier/internal/dal/repositories/order/postgres"
	productrepo "github.com/mettware/slack-notifier/internal/dal/repositories/product/postgres"
	"github.com/mettware/slack-notifier/internal/dal/slack"
	"github.com/mettware/slack-notifier/internal/service/services/invoicesvc"
)

// multiFlag collects repeated flag values.
type multiFlag []string

func (f *multiFlag) String() string {
	return strings.Join(*f, ",")
}

func (f *multiFlag) Set(value string) error {
	*f = append(*f, value)

	return nil
}

// The invoice command schedules one invoice notification batch run and exits.
// The running worker picks the jobs up from the queue.
func main() {
	var filterSlackID string
	var additionalContacts multiFlag
	flag.StringVar(&filterSlackID, "f", "", "restrict the run to a single Slack ID")
	flag.Var(&additionalContacts, "u", "additional Slack ID to copy on every invoice (repeatable)")
	flag.Parse()

	config.MustInit()

	postgresClient := postgres.MustNewClient()
	defer postgresClient.Close()

	rabbitMqClient := rabbitmq.MustNewClient()
	defer func() {
		if err := rabbitMqClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		}
	}()

	productRepository := productrepo.NewPostgresProductRepository(postgresClient.Pool())
	orderRepository := orderrepo.NewPostgresOrderRepository(postgresClient.Pool(), productRepository)
	jobQueue := queue.MustNewJobQueue(rabbitMqClient)
	slackClient := slack.NewClient(os.Getenv("SLACK_BOT_TOKEN"))

	invoiceSvc := invoicesvc.MustNewInvoiceService(
		invoicesvc.WithOrderRepository(orderRepository),
		invoicesvc.WithJobQueue(jobQueue),
		invoicesvc.WithSlackClient(slackClient),
	)

	scheduled, err := invoiceSvc.Run(context.Background(), filterSlackID, additionalContacts)
	if err != nil {
		slog.Error("Invoice batch run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Invoice batch run scheduled", "jobs", scheduled)
}
