package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (s *Service) startRegister(chatID int64) {
	s.sessions.Start(chatID, FlowRegister, stepAwaitingImage)
	s.reply(chatID, "📸 Photo ላክ")
}

// continueRegister walks the /store flow one step per message. Events whose
// payload kind does not match the step are left alone.
func (s *Service) continueRegister(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	chatID := msg.Chat.ID

	switch sess.Step {
	case stepAwaitingImage:
		fileID := largestPhoto(msg)
		if fileID == "" {
			return
		}
		sess.Data.Image = fileID
		sess.Step = stepAwaitingName
		s.reply(chatID, "📝 አሁን የእቃውን ስም.")

	case stepAwaitingName:
		if msg.Text == "" {
			return
		}
		sess.Data.Name = msg.Text
		sess.Step = stepAwaitingCode
		s.reply(chatID, "🔢 አሁን የእቃውን code.")

	case stepAwaitingCode:
		if msg.Text == "" {
			return
		}
		sess.Data.Code = msg.Text
		sess.Step = stepAwaitingCost
		s.reply(chatID, "💰 አሁን የተገዛበት ዋጋ ወይም Skip ብሎ ይፃፉ")

	case stepAwaitingCost:
		if msg.Text == "" {
			return
		}
		sess.Data.Cost = skipOrValue(msg.Text)
		sess.Step = stepAwaitingSelling
		s.reply(chatID, "💵 አሁን የሚሸጥበት ዋጋ ወይም Skip ብሎ ይፃፉ")

	case stepAwaitingSelling:
		if msg.Text == "" {
			return
		}
		sess.Data.Selling = skipOrValue(msg.Text)
		sess.Step = stepAwaitingStore
		s.reply(chatID, "📦 Store ያለ ፈሬ ወይም Skip ብሎ ይፃፉ.")

	case stepAwaitingStore:
		if msg.Text == "" {
			return
		}
		sess.Data.AmountStore = skipOrValue(msg.Text)
		sess.Step = stepAwaitingSuq
		s.reply(chatID, "🏪 Suq ያለ ፈሬ ወይም Skip ብሎ ይፃፉ.")

	case stepAwaitingSuq:
		if msg.Text == "" {
			return
		}
		sess.Data.AmountSuq = skipOrValue(msg.Text)
		s.finishRegister(ctx, msg, sess)
	}
}

func (s *Service) finishRegister(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	chatID := msg.Chat.ID
	p := sess.Data
	p.CreatedBy = chatID
	p.CreatedAt = time.Now().UnixMilli()

	if _, err := s.products.Create(ctx, &p); err != nil {
		zap.L().Error("telegram: create product failed", zap.Int64("chat_id", chatID), zap.Error(err))
		s.sessions.Delete(chatID)
		s.reply(chatID, replyStoreFailure)
		return
	}

	s.notifier.ProductCreated(&p, displayName(msg.From))
	s.reply(chatID, "✅ Item registered and sent to admin.")
	s.sessions.Delete(chatID)
}

// skipOrValue maps a case-insensitive "skip" to an absent field.
func skipOrValue(text string) *string {
	if strings.EqualFold(text, "skip") {
		return nil
	}
	return &text
}
