package invoicesvc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mettware/slack-notifier/internal/dal/slack"
	"github.com/mettware/slack-notifier/internal/service/models/order"
)

const (
	invoiceHeader  = "Monthly Invoice"
	payButtonLabel = "Pay"
	dateFormat     = "02.01.2006 15:04"
)

// RenderInvoice renders the invoice message for one recipient's open orders:
// a greeting, one markdown line per line item in chronological order, and a
// Pay button pointing at the payment link with the aggregated total appended.
// Returns ErrEmptyOrderSet when the order set is empty.
func (s *InvoiceService) RenderInvoice(
	orders []order.Order,
	languageID string,
) ([]slack.Block, error) {
	if len(orders) == 0 {
		return nil, ErrEmptyOrderSet
	}

	var markdown strings.Builder
	fmt.Fprintf(&markdown, "Hi %s\n", orders[0].BillingAddress.FirstName)

	var total float64
	for i := range orders {
		o := &orders[i]
		total += o.AmountTotal

		orderDate := o.OrderDate.In(s.location).Format(dateFormat)
		for _, li := range o.LineItems {
			fmt.Fprintf(&markdown, "> %s - %dx %s %.2f%s\n",
				orderDate,
				li.Quantity,
				li.DisplayName(languageID),
				li.TotalPrice,
				o.Currency.Symbol,
			)
		}
	}

	// The total keeps its natural decimal formatting in the URL, e.g. /15.5.
	payURL := s.payMeLink + "/" + strconv.FormatFloat(total, 'f', -1, 64)

	return []slack.Block{
		slack.NewHeaderBlock(invoiceHeader),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			markdown.String(),
			slack.NewButton(payButtonLabel, "paypal_me", payURL, "button-action"),
		),
	}, nil
}
