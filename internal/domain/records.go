package domain

// ScreenshotRecord lives under Screenshot_id/<id>, where <id> is the
// 4-digit code chosen by the uploading user.
type ScreenshotRecord struct {
	Image string `json:"image"`
	Date  string `json:"date"`
}

// VerificationCode is the login code set under verification_codes/<botCode>.
// A new /send-code call overwrites the whole record.
type VerificationCode struct {
	Codes  []string `json:"codes"`
	SentAt int64    `json:"sentAt"`
}

// StockLogEntry is the append-only audit record written to added_product
// whenever stock increases. It is never read back by the system.
type StockLogEntry struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	AmountAdded int    `json:"amountAdded"`
	DateAdded   int64  `json:"dateAdded"`
	NewAmount   int    `json:"newAmount"`
	Location    string `json:"location"`
}

// User mirrors users/<chatId>, written when a chat issues /start.
type User struct {
	FirstName string `json:"firstName"`
	ChatID    int64  `json:"chatId"`
	JoinedAt  int64  `json:"joinedAt"`
}
