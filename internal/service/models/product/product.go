package product

import (
	"github.com/mettware/slack-notifier/internal/service/models/language"
)

// Option is a variant option of a product (e.g. color, size).
type Option struct {
	ID           string            `json:"id"`
	Position     int               `json:"position"`
	Translations map[string]string `json:"translations"`
}

// Name returns the option name for the given language, falling back to the
// system language.
func (o Option) Name(languageID string) string {
	if name, ok := o.Translations[languageID]; ok && name != "" {
		return name
	}

	return o.Translations[language.SystemLanguageID]
}

// Product represents a product referenced by an order line item. Variant
// products carry a parent reference that is resolved one level deep for
// translation fallback.
type Product struct {
	ID           string            `json:"id"`
	ParentID     string            `json:"parentId,omitempty"`
	Parent       *Product          `json:"parent,omitempty"`
	Translations map[string]string `json:"translations"`
	Options      []Option          `json:"options,omitempty"`
}

// Name returns the translated product name for the given language, falling
// back to the system language. Returns an empty string when no translation
// exists at all.
func (p *Product) Name(languageID string) string {
	if name, ok := p.Translations[languageID]; ok && name != "" {
		return name
	}

	return p.Translations[language.SystemLanguageID]
}
