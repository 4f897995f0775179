package domain

// Purchase is appended under purchases/<key> by the external storefront.
// Date is a unix-milliseconds timestamp set by the writer.
type Purchase struct {
	Date        int64      `json:"date"`
	Buyer       string     `json:"buyer,omitempty"`
	Items       []CartItem `json:"items"`
	Screenshots []string   `json:"screenshots,omitempty"`
}

// CartItem references a product by its storage key, not the business code.
type CartItem struct {
	ProductKey string `json:"productKey"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"quantity"`
}
