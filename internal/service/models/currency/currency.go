package currency

// Currency represents the currency of an order as stored in the order store.
type Currency struct {
	ISOCode string `json:"isoCode"`
	Symbol  string `json:"symbol"`
}
