package invoicesvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mettware/slack-notifier/internal/service/models/job"
	"go.opentelemetry.io/otel"
)

// DeliverInvoice executes one invoice notification job. It re-fetches the
// recipient's open orders for fresh data, renders the message and posts it to
// the primary recipient first, then to every copy recipient, pausing between
// calls. A failed post for one recipient is logged and does not abort the
// remaining deliveries; the job counts as processed once every recipient was
// attempted.
func (s *InvoiceService) DeliverInvoice(ctx context.Context, j job.Job) error {
	ctx, span := otel.Tracer("invoicesvc").Start(ctx, "InvoiceService.DeliverInvoice")
	defer span.End()

	if !s.slack.Enabled() || s.payMeLink == "" {
		return ErrConfigMissing
	}

	orders, err := s.orderRepo.FetchOpenOrders(ctx, j.SlackID)
	if err != nil {
		return fmt.Errorf("failed to query open orders for recipient: %w", err)
	}

	blocks, err := s.RenderInvoice(orders, j.LanguageID)
	if err != nil {
		if errors.Is(err, ErrEmptyOrderSet) {
			// The invoice was settled between scheduling and delivery.
			slog.Info("No open invoices left for recipient, skipping delivery",
				"job_id", j.ID,
				"slack_id", j.SlackID,
			)

			return nil
		}

		return err
	}

	receivers := make([]string, 0, len(j.AdditionalContacts)+1)
	receivers = append(receivers, j.SlackID)
	receivers = append(receivers, j.AdditionalContacts...)

	for i, receiver := range receivers {
		if i > 0 {
			if err := s.pauseBetweenPosts(ctx); err != nil {
				return err
			}
		}

		if err := s.slack.PostMessage(ctx, receiver, blocks); err != nil {
			slog.Error("Failed to deliver invoice message",
				"job_id", j.ID,
				"slack_id", receiver,
				"error", err,
			)

			continue
		}

		slog.Info("Invoice message delivered", "job_id", j.ID, "slack_id", receiver)
	}

	return nil
}

// pauseBetweenPosts throttles the fan-out within a single job.
func (s *InvoiceService) pauseBetweenPosts(ctx context.Context) error {
	timer := time.NewTimer(s.pause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
