package order

import (
	"testing"

	"github.com/mettware/slack-notifier/internal/service/models/language"
)

func TestIsOpen(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		want  bool
	}{
		{
			name:  "unpaid order with positive total is open",
			order: Order{AmountTotal: 4.2},
			want:  true,
		},
		{
			name: "paid order is not open",
			order: Order{
				AmountTotal:  4.2,
				Transactions: []Transaction{{StateTechnicalName: TransactionStatePaid}},
			},
			want: false,
		},
		{
			name: "one paid transaction among many settles the order",
			order: Order{
				AmountTotal: 4.2,
				Transactions: []Transaction{
					{StateTechnicalName: "open"},
					{StateTechnicalName: TransactionStatePaid},
				},
			},
			want: false,
		},
		{
			name:  "zero total is not open",
			order: Order{AmountTotal: 0},
			want:  false,
		},
		{
			name: "unpaid transaction states keep the order open",
			order: Order{
				AmountTotal:  4.2,
				Transactions: []Transaction{{StateTechnicalName: "open"}, {StateTechnicalName: "reminded"}},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.order.IsOpen(); got != tt.want {
				t.Errorf("IsOpen() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLanguageID(t *testing.T) {
	withLanguage := Order{
		OrderCustomer: &OrderCustomer{Customer: &Customer{LanguageID: "de-DE"}},
	}
	if got := withLanguage.LanguageID(); got != "de-DE" {
		t.Errorf("LanguageID() = %q, want %q", got, "de-DE")
	}

	withoutCustomer := Order{}
	if got := withoutCustomer.LanguageID(); got != language.SystemLanguageID {
		t.Errorf("LanguageID() = %q, want system language %q", got, language.SystemLanguageID)
	}
}

func TestSlackID(t *testing.T) {
	o := Order{BillingAddress: BillingAddress{AdditionalAddressLine1: "U123"}}
	if got := o.SlackID(); got != "U123" {
		t.Errorf("SlackID() = %q, want %q", got, "U123")
	}
}
