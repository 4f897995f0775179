package telegram

import (
	"context"
	"fmt"
	"html"
	"sort"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleList sends one card per product. byCode resorts the catalog by
// product code instead of creation order.
func (s *Service) handleList(ctx context.Context, chatID int64, byCode bool) {
	if !s.isAdmin(chatID) {
		s.reply(chatID, "❌ Only the admin can use this command.")
		return
	}

	entries, err := s.products.All(ctx)
	if err != nil {
		zap.L().Error("telegram: product list failed", zap.Error(err))
		s.reply(chatID, "❌ Failed to load product list.")
		return
	}
	if len(entries) == 0 {
		s.reply(chatID, "📦 No products found.")
		return
	}

	if byCode {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Product.Code < entries[j].Product.Code
		})
	}

	for _, e := range entries {
		p := e.Product
		caption := fmt.Sprintf(
			"🛋️ <b>%s</b>\n📦 Code: <code>%s</code>\n💰 የተገዛበት ዋጋ: %s\n💵 የሚሸጥበት ዋጋ: %s\n🏢 Store ያለ ፈሬ: %d\n🛍️ Suq ያለ ፈሬ: %d",
			html.EscapeString(p.Name),
			html.EscapeString(p.Code),
			html.EscapeString(orNA(p.Cost)),
			html.EscapeString(orNA(p.Selling)),
			p.StoreAmount(),
			p.SuqAmount(),
		)
		keyboard := ActionKeyboard(p.Code)

		var c tgbotapi.Chattable
		if p.Image != "" {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(p.Image))
			photo.Caption = caption
			photo.ParseMode = tgbotapi.ModeHTML
			photo.ReplyMarkup = keyboard
			c = photo
		} else {
			msg := tgbotapi.NewMessage(chatID, caption)
			msg.ParseMode = tgbotapi.ModeHTML
			msg.ReplyMarkup = keyboard
			c = msg
		}
		if _, err := s.api.Send(c); err != nil {
			zap.L().Warn("telegram: send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}
