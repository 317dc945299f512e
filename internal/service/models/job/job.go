package job

import (
	"github.com/google/uuid"
)

// Kind identifies the type of a notification job. The consumer maps each kind
// to its handler through a dispatch table.
type Kind string

const (
	KindOpenInvoice Kind = "open_invoice"
	KindStopOrders  Kind = "stop_orders"
)

// Job is the unit of asynchronous work placed on the notification queue. It is
// JSON-encoded on the wire.
type Job struct {
	ID                 uuid.UUID `json:"id"`
	Kind               Kind      `json:"kind"`
	SlackID            string    `json:"slackId"`
	LanguageID         string    `json:"languageId"`
	AdditionalContacts []string  `json:"additionalContacts,omitempty"`
}

// NewOpenInvoiceJob creates an invoice notification job for one recipient.
// The additional contacts receive a copy of the message and are shared across
// all jobs of a batch run, so the slice must not be mutated afterwards.
func NewOpenInvoiceJob(slackID, languageID string, additionalContacts []string) Job {
	return Job{
		ID:                 uuid.New(),
		Kind:               KindOpenInvoice,
		SlackID:            slackID,
		LanguageID:         languageID,
		AdditionalContacts: additionalContacts,
	}
}

// NewStopOrdersJob creates an order-stoppage notification job. The target
// channel comes from configuration, not from the job.
func NewStopOrdersJob() Job {
	return Job{
		ID:   uuid.New(),
		Kind: KindStopOrders,
	}
}
