package lineitem

import (
	"strings"

	"github.com/mettware/slack-notifier/internal/service/models/product"
)

// LineItem represents a single position within an order.
type LineItem struct {
	ID         string           `json:"id"`
	OrderID    string           `json:"orderId"`
	Label      string           `json:"label"`
	Quantity   int              `json:"quantity"`
	UnitPrice  float64          `json:"unitPrice"`
	TotalPrice float64          `json:"totalPrice"`
	Position   int              `json:"position"`
	ProductID  string           `json:"productId,omitempty"`
	Product    *product.Product `json:"product,omitempty"`
}

// DisplayName resolves the human-readable name of the line item for the given
// language. Items without a linked product fall back to their own label. For
// products without a translated name the parent product's name is consulted,
// one level deep. Variant option names are appended comma-separated after the
// base name. When nothing resolves the result is an empty string.
func (li LineItem) DisplayName(languageID string) string {
	p := li.Product
	if p == nil {
		return li.Label
	}

	name := p.Name(languageID)
	if name == "" && p.Parent != nil {
		name = p.Parent.Name(languageID)
	}

	if len(p.Options) == 0 {
		return name
	}

	optionNames := make([]string, 0, len(p.Options))
	for _, option := range p.Options {
		optionNames = append(optionNames, option.Name(languageID))
	}

	return name + " - " + strings.Join(optionNames, ", ")
}
