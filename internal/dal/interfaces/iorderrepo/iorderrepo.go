package iorderrepo

import (
	"context"

	"github.com/mettware/slack-notifier/internal/service/models/order"
)

// IOrderRepository is an interface for the order store query layer.
type IOrderRepository interface {
	// FetchOpenOrders returns fully hydrated open orders sorted ascending by
	// order date. A non-empty slackID restricts the result to orders whose
	// billing address carries that Slack ID.
	FetchOpenOrders(ctx context.Context, slackID string) ([]order.Order, error)
}
