package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/EmanJemal/byfu/internal/domain"
	"github.com/EmanJemal/byfu/internal/repository"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// callbackAddStock enters the add-stock flow from a product card; there is
// no slash command for it.
func (s *Service) callbackAddStock(ctx context.Context, cb *tgbotapi.CallbackQuery, code string) {
	chatID := cb.Message.Chat.ID
	if !s.isAdmin(chatID) {
		s.answerCallbackAlert(cb.ID, "❌ Only admin can use this.")
		return
	}

	entry, err := s.products.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		s.answerCallbackAlert(cb.ID, "❌ Product not found.")
		return
	}
	if err != nil {
		zap.L().Error("telegram: add-stock lookup failed", zap.String("code", code), zap.Error(err))
		s.answerCallbackAlert(cb.ID, "❌ Something went wrong.")
		return
	}

	sess := s.sessions.Start(chatID, FlowAddStock, stepChooseLocation)
	sess.Key = entry.Key
	sess.Data = entry.Product
	s.answerCallback(cb.ID)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("📥 %s: where should the stock go?", entry.Product.Name))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Store", "add_to_store"),
			tgbotapi.NewInlineKeyboardButtonData("🏪 Suq", "add_to_suq"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Transfer", "transfer_stock"),
		),
	)
	if _, err := s.api.Send(msg); err != nil {
		zap.L().Warn("telegram: send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (s *Service) callbackLocation(cb *tgbotapi.CallbackQuery, location string) {
	chatID := cb.Message.Chat.ID
	sess := s.sessions.Get(chatID)
	if sess == nil || sess.Flow != FlowAddStock || sess.Step != stepChooseLocation {
		s.answerCallback(cb.ID)
		return
	}
	sess.Location = location
	sess.Step = stepAwaitingAmount
	s.answerCallback(cb.ID)
	s.reply(chatID, "✍️ Enter the amount to add:")
}

func (s *Service) callbackTransfer(cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	sess := s.sessions.Get(chatID)
	if sess == nil || sess.Flow != FlowAddStock || sess.Step != stepChooseLocation {
		s.answerCallback(cb.ID)
		return
	}
	sess.Step = stepAwaitingDirection
	s.answerCallback(cb.ID)

	msg := tgbotapi.NewMessage(chatID, "🔄 Which direction?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏪 Suq → 📦 Store", "transfer_suq_to_store"),
			tgbotapi.NewInlineKeyboardButtonData("📦 Store → 🏪 Suq", "transfer_store_to_suq"),
		),
	)
	if _, err := s.api.Send(msg); err != nil {
		zap.L().Warn("telegram: send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (s *Service) callbackDirection(cb *tgbotapi.CallbackQuery, direction string) {
	chatID := cb.Message.Chat.ID
	sess := s.sessions.Get(chatID)
	if sess == nil || sess.Flow != FlowAddStock || sess.Step != stepAwaitingDirection {
		s.answerCallback(cb.ID)
		return
	}
	sess.Direction = direction
	sess.Step = stepAwaitingTransfer
	s.answerCallback(cb.ID)
	s.reply(chatID, "✍️ Enter the amount to transfer:")
}

func (s *Service) continueAddStock(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	switch sess.Step {
	case stepAwaitingAmount:
		if msg.Text == "" {
			return
		}
		s.applyAddition(ctx, msg.Chat.ID, msg.Text, sess)
	case stepAwaitingTransfer:
		if msg.Text == "" {
			return
		}
		s.applyTransfer(ctx, msg.Chat.ID, msg.Text, sess)
	}
}

func (s *Service) applyAddition(ctx context.Context, chatID int64, text string, sess *Session) {
	n, ok := positiveInt(text)
	if !ok {
		s.reply(chatID, "❌ Please enter a positive whole number.")
		return
	}

	p, err := s.products.Get(ctx, sess.Key)
	if err != nil {
		zap.L().Error("telegram: add stock read failed", zap.String("key", sess.Key), zap.Error(err))
		s.sessions.Delete(chatID)
		s.reply(chatID, replyStoreFailure)
		return
	}

	field, label := locationField(sess.Location)
	current := p.StoreAmount()
	if sess.Location == "suq" {
		current = p.SuqAmount()
	}
	newAmount := current + n

	err = s.products.UpdateFields(ctx, sess.Key, map[string]interface{}{
		field: strconv.Itoa(newAmount),
	})
	if err != nil {
		zap.L().Error("telegram: add stock write failed", zap.String("key", sess.Key), zap.Error(err))
		s.sessions.Delete(chatID)
		s.reply(chatID, replyStoreFailure)
		return
	}

	logErr := s.stocklog.Append(ctx, &domain.StockLogEntry{
		Name:        p.Name,
		Code:        p.Code,
		AmountAdded: n,
		DateAdded:   time.Now().UnixMilli(),
		NewAmount:   newAmount,
		Location:    sess.Location,
	})
	if logErr != nil {
		// audit only, the addition itself already landed
		zap.L().Warn("telegram: stock log append failed", zap.String("code", p.Code), zap.Error(logErr))
	}

	s.reply(chatID, fmt.Sprintf("✅ Added %d to %s. New amount: %d.", n, label, newAmount))
	s.sessions.Delete(chatID)
}

func (s *Service) applyTransfer(ctx context.Context, chatID int64, text string, sess *Session) {
	n, ok := positiveInt(text)
	if !ok {
		s.reply(chatID, "❌ Please enter a positive whole number.")
		return
	}

	p, err := s.products.Get(ctx, sess.Key)
	if err != nil {
		zap.L().Error("telegram: transfer read failed", zap.String("key", sess.Key), zap.Error(err))
		s.sessions.Delete(chatID)
		s.reply(chatID, replyStoreFailure)
		return
	}

	storeAmt, suqAmt := p.StoreAmount(), p.SuqAmount()
	var newStore, newSuq int
	var srcLabel, dstLabel string
	switch sess.Direction {
	case "suq_to_store":
		if suqAmt < n {
			s.reply(chatID, fmt.Sprintf("❌ Not enough stock: only %d in Suq.", suqAmt))
			return
		}
		newStore, newSuq = storeAmt+n, suqAmt-n
		srcLabel, dstLabel = "Suq", "Store"
	case "store_to_suq":
		if storeAmt < n {
			s.reply(chatID, fmt.Sprintf("❌ Not enough stock: only %d in Store.", storeAmt))
			return
		}
		newStore, newSuq = storeAmt-n, suqAmt+n
		srcLabel, dstLabel = "Store", "Suq"
	default:
		return
	}

	// both locations move in one write
	err = s.products.UpdateFields(ctx, sess.Key, map[string]interface{}{
		"amount_store": strconv.Itoa(newStore),
		"amount_suq":   strconv.Itoa(newSuq),
	})
	if err != nil {
		zap.L().Error("telegram: transfer write failed", zap.String("key", sess.Key), zap.Error(err))
		s.sessions.Delete(chatID)
		s.reply(chatID, replyStoreFailure)
		return
	}

	s.reply(chatID, fmt.Sprintf("✅ Transferred %d from %s to %s.", n, srcLabel, dstLabel))
	s.sessions.Delete(chatID)
}

func positiveInt(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func locationField(location string) (field, label string) {
	if location == "suq" {
		return "amount_suq", "Suq"
	}
	return "amount_store", "Store"
}
