package telegram

import (
	"testing"

	"github.com/EmanJemal/byfu/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptionAbsentFieldsShowNA(t *testing.T) {
	p := &domain.Product{Name: "Chair", Code: "C1"}

	got := Caption(ActionCreated, p, "@abel")
	assert.Contains(t, got, "አዲስ እቃ ተመዝግቦዋል")
	assert.Contains(t, got, "📝 ስም: Chair")
	assert.Contains(t, got, "🔢 Code: C1")
	assert.Contains(t, got, "የተገዛበት ዋጋ: N/A")
	assert.Contains(t, got, "From: @abel")
}

func TestCaptionUpdated(t *testing.T) {
	p := &domain.Product{Name: "Chair", Code: "C1", Cost: str("100")}

	got := Caption(ActionUpdated, p, "")
	assert.Contains(t, got, "Product Updated")
	assert.Contains(t, got, "የተገዛበት ዋጋ: 100")
	assert.NotContains(t, got, "From:")
}

func TestActionKeyboardPayloads(t *testing.T) {
	kb := ActionKeyboard("C1")

	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "admin_edit_C1", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "admin_add_product_C1", *kb.InlineKeyboard[0][1].CallbackData)
}

func TestNotifierDeliversToEveryAdminChat(t *testing.T) {
	api := &fakeAPI{}
	n := NewNotifier(api, []int64{900, 901})

	n.ProductCreated(&domain.Product{Name: "Chair", Code: "C1"}, "@abel")
	assert.Len(t, api.texts(900), 1)
	assert.Len(t, api.texts(901), 1)
}

func TestProductSoldHasNoActions(t *testing.T) {
	api := &fakeAPI{}
	n := NewNotifier(api, []int64{900})

	n.ProductSold(&domain.Product{Name: "Chair", Code: "C1"}, 2, 0)

	texts := api.texts(900)
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Sold: 2")
	assert.Contains(t, texts[0], "የቀረ ፍሬ: 0")
}

func TestForwardScreenshotSendsPhoto(t *testing.T) {
	api := &fakeAPI{}
	n := NewNotifier(api, []int64{900})

	n.ForwardScreenshot("1234", &domain.ScreenshotRecord{Image: "shot-1", Date: "2026-01-01T00:00:00Z"})

	cards := api.cards(900)
	require.Len(t, cards, 1)
	assert.Contains(t, cards[0].Caption, "1234")
	assert.Equal(t, tgbotapi.FileID("shot-1"), cards[0].File)
}
