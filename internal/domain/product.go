package domain

import "github.com/spf13/cast"

// Product is one record under products/<key> in the realtime database.
// The business code is typed by staff and looked up by scan, so it is not
// guaranteed unique. Price and amount fields are kept as strings because
// they arrive as free chat text; nil means the field was skipped during
// registration. "suq" is the market location.
type Product struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Cost        *string `json:"cost"`
	Selling     *string `json:"selling"`
	AmountStore *string `json:"amount_store"`
	AmountSuq   *string `json:"amount_suq"`
	Image       string  `json:"image,omitempty"`
	CreatedBy   int64   `json:"createdBy,omitempty"`
	CreatedAt   int64   `json:"createdAt,omitempty"`
	UpdatedAt   int64   `json:"updatedAt,omitempty"`
}

// StoreAmount returns the numeric quantity held in the store location.
// Absent or non-numeric values count as zero.
func (p *Product) StoreAmount() int {
	return numeric(p.AmountStore)
}

// SuqAmount returns the numeric quantity held in the market location.
func (p *Product) SuqAmount() int {
	return numeric(p.AmountSuq)
}

func numeric(v *string) int {
	if v == nil {
		return 0
	}
	return cast.ToInt(*v)
}
