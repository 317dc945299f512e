package order

import (
	"time"

	"github.com/mettware/slack-notifier/internal/service/models/currency"
	"github.com/mettware/slack-notifier/internal/service/models/language"
	"github.com/mettware/slack-notifier/internal/service/models/lineitem"
)

// TransactionStatePaid is the technical name of the payment state that marks
// an order as settled.
const TransactionStatePaid = "paid"

// Transaction is a payment transaction attached to an order.
type Transaction struct {
	ID                 string `json:"id"`
	StateTechnicalName string `json:"stateTechnicalName"`
}

// BillingAddress is the billing address snapshot of an order. The second
// additional address line is repurposed as the Slack member ID of the
// customer.
type BillingAddress struct {
	FirstName              string `json:"firstName"`
	LastName               string `json:"lastName"`
	AdditionalAddressLine1 string `json:"additionalAddressLine1"`
}

// Customer is the store customer referenced by an order.
type Customer struct {
	ID         string `json:"id"`
	LanguageID string `json:"languageId"`
}

// OrderCustomer is the customer snapshot taken at checkout time.
type OrderCustomer struct {
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Customer  *Customer `json:"customer,omitempty"`
}

// Order is a read-only order aggregate loaded from the order store.
type Order struct {
	ID             string              `json:"id"`
	OrderNumber    string              `json:"orderNumber"`
	AmountTotal    float64             `json:"amountTotal"`
	Currency       currency.Currency   `json:"currency"`
	OrderDate      time.Time           `json:"orderDate"`
	BillingAddress BillingAddress      `json:"billingAddress"`
	OrderCustomer  *OrderCustomer      `json:"orderCustomer,omitempty"`
	LineItems      []lineitem.LineItem `json:"lineItems"`
	Transactions   []Transaction       `json:"transactions"`
}

// IsPaid reports whether any payment transaction of the order reached the
// paid state.
func (o *Order) IsPaid() bool {
	for _, t := range o.Transactions {
		if t.StateTechnicalName == TransactionStatePaid {
			return true
		}
	}

	return false
}

// IsOpen reports whether the order still awaits payment. Open means not paid
// and with a positive total.
func (o *Order) IsOpen() bool {
	return !o.IsPaid() && o.AmountTotal > 0
}

// LanguageID returns the language of the ordering customer, or the system
// language when the order carries no customer reference.
func (o *Order) LanguageID() string {
	if o.OrderCustomer != nil && o.OrderCustomer.Customer != nil && o.OrderCustomer.Customer.LanguageID != "" {
		return o.OrderCustomer.Customer.LanguageID
	}

	return language.SystemLanguageID
}

// SlackID returns the Slack member ID derived from the billing address.
func (o *Order) SlackID() string {
	return o.BillingAddress.AdditionalAddressLine1
}
