package telegram

import (
	"fmt"
	"strings"

	"github.com/EmanJemal/byfu/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Action is the inventory change a notification describes.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSold    Action = "sold"
)

// Notifier formats and delivers admin-channel messages. It is the sole
// place captions are assembled.
type Notifier struct {
	api   API
	chats []int64
}

func NewNotifier(api API, chats []int64) *Notifier {
	return &Notifier{api: api, chats: chats}
}

func (n *Notifier) ProductCreated(p *domain.Product, from string) {
	n.sendCard(Caption(ActionCreated, p, from), p.Image, p.Code, true)
}

func (n *Notifier) ProductUpdated(p *domain.Product, from string) {
	n.sendCard(Caption(ActionUpdated, p, from), p.Image, p.Code, true)
}

// ProductSold reports one sold cart item. The remaining quantity passed in
// is already clamped at zero by the caller.
func (n *Notifier) ProductSold(p *domain.Product, qty, remaining int) {
	text := fmt.Sprintf("🛒 ተሸጧል: %s\n🔢 Code: %s\n📤 Sold: %d\n🏪 Suq የቀረ ፍሬ: %d",
		p.Name, p.Code, qty, remaining)
	n.sendCard(text, p.Image, "", false)
}

// ForwardScreenshot relays a stored payment screenshot to every admin.
func (n *Notifier) ForwardScreenshot(id string, rec *domain.ScreenshotRecord) {
	caption := fmt.Sprintf("🧾 Payment screenshot %s (%s)", id, rec.Date)
	for _, chat := range n.chats {
		photo := tgbotapi.NewPhoto(chat, tgbotapi.FileID(rec.Image))
		photo.Caption = caption
		if _, err := n.api.Send(photo); err != nil {
			zap.L().Warn("telegram: forward screenshot failed", zap.Int64("chat_id", chat), zap.Error(err))
		}
	}
}

// Broadcast sends a plain text message to every admin chat.
func (n *Notifier) Broadcast(text string) {
	for _, chat := range n.chats {
		if _, err := n.api.Send(tgbotapi.NewMessage(chat, text)); err != nil {
			zap.L().Warn("telegram: broadcast failed", zap.Int64("chat_id", chat), zap.Error(err))
		}
	}
}

func (n *Notifier) sendCard(caption, image, code string, withActions bool) {
	for _, chat := range n.chats {
		var c tgbotapi.Chattable
		if image != "" {
			photo := tgbotapi.NewPhoto(chat, tgbotapi.FileID(image))
			photo.Caption = caption
			if withActions {
				photo.ReplyMarkup = ActionKeyboard(code)
			}
			c = photo
		} else {
			msg := tgbotapi.NewMessage(chat, caption)
			if withActions {
				msg.ReplyMarkup = ActionKeyboard(code)
			}
			c = msg
		}
		if _, err := n.api.Send(c); err != nil {
			zap.L().Warn("telegram: notify failed", zap.Int64("chat_id", chat), zap.Error(err))
		}
	}
}

// ActionKeyboard is the two-button row on product cards; the payloads
// carry the action kind plus the business code.
func ActionKeyboard(code string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit Product", "admin_edit_"+code),
			tgbotapi.NewInlineKeyboardButtonData("📥 Add Stock", "admin_add_product_"+code),
		),
	)
}

// Caption builds the admin card text for a created or updated product.
func Caption(action Action, p *domain.Product, from string) string {
	var b strings.Builder
	switch action {
	case ActionCreated:
		b.WriteString("🆕 አዲስ እቃ ተመዝግቦዋል:\n\n")
	case ActionUpdated:
		b.WriteString("✏️ Product Updated:\n\n")
	}
	fmt.Fprintf(&b, "📝 ስም: %s\n", p.Name)
	fmt.Fprintf(&b, "🔢 Code: %s\n", p.Code)
	fmt.Fprintf(&b, "💰 የተገዛበት ዋጋ: %s\n", orNA(p.Cost))
	fmt.Fprintf(&b, "💵 የሚሸጥበት ዋጋ: %s\n", orNA(p.Selling))
	fmt.Fprintf(&b, "📦 Store ያለ ፍሬ: %s\n", orNA(p.AmountStore))
	fmt.Fprintf(&b, "🏪 Suq ያለ ፍሬ: %s", orNA(p.AmountSuq))
	if from != "" {
		fmt.Fprintf(&b, "\n👤 From: %s", from)
	}
	return b.String()
}

func orNA(v *string) string {
	if v == nil || *v == "" {
		return "N/A"
	}
	return *v
}
