package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EmanJemal/byfu/internal/repository"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (s *Service) startEdit(chatID int64) {
	s.sessions.Start(chatID, FlowEdit, stepAwaitingCode)
	s.reply(chatID, "🔎 product code አስገቡ.")
}

// callbackEdit enters the edit flow from a product card, skipping the code
// lookup step.
func (s *Service) callbackEdit(ctx context.Context, cb *tgbotapi.CallbackQuery, code string) {
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
		zap.L().Error("telegram: edit lookup failed", zap.String("code", code), zap.Error(err))
		s.answerCallbackAlert(cb.ID, "❌ Something went wrong.")
		return
	}

	sess := s.sessions.Start(chatID, FlowEdit, stepMenu)
	sess.Key = entry.Key
	sess.Data = entry.Product
	s.answerCallback(cb.ID)
	s.sendEditMenu(chatID, sess)
}

func (s *Service) continueEdit(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	chatID := msg.Chat.ID

	switch sess.Step {
	case stepAwaitingCode:
		if msg.Text == "" {
			return
		}
		s.editLookup(ctx, chatID, strings.TrimSpace(msg.Text), sess)

	case stepMenu:
		if msg.Text == "" {
			return
		}
		s.editMenuChoice(ctx, msg, sess)

	case stepEditName:
		if msg.Text == "" {
			return
		}
		sess.Data.Name = msg.Text
		s.backToMenu(chatID, sess)
	case stepEditCode:
		if msg.Text == "" {
			return
		}
		sess.Data.Code = msg.Text
		s.backToMenu(chatID, sess)
	case stepEditCost:
		if msg.Text == "" {
			return
		}
		sess.Data.Cost = &msg.Text
		s.backToMenu(chatID, sess)
	case stepEditSelling:
		if msg.Text == "" {
			return
		}
		sess.Data.Selling = &msg.Text
		s.backToMenu(chatID, sess)
	case stepEditStore:
		if msg.Text == "" {
			return
		}
		sess.Data.AmountStore = &msg.Text
		s.backToMenu(chatID, sess)
	case stepEditSuq:
		if msg.Text == "" {
			return
		}
		sess.Data.AmountSuq = &msg.Text
		s.backToMenu(chatID, sess)
	case stepEditImage:
		fileID := largestPhoto(msg)
		if fileID == "" {
			return
		}
		sess.Data.Image = fileID
		s.backToMenu(chatID, sess)
	}
}

func (s *Service) editLookup(ctx context.Context, chatID int64, code string, sess *Session) {
	entry, err := s.products.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		s.sessions.Delete(chatID)
		s.reply(chatID, "❌ Product code check አርጉ.")
		return
	}
	if err != nil {
		// non-terminal failure: keep the session so the user can retry
		zap.L().Error("telegram: edit lookup failed", zap.String("code", code), zap.Error(err))
		s.reply(chatID, replyStoreFailure)
		return
	}
	sess.Key = entry.Key
	sess.Data = entry.Product
	sess.Step = stepMenu
	s.sendEditMenu(chatID, sess)
}

func (s *Service) editMenuChoice(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	chatID := msg.Chat.ID
	d := &sess.Data

	switch strings.TrimSpace(msg.Text) {
	case "1":
		sess.Step = stepEditName
		s.reply(chatID, fmt.Sprintf("✏️ ስም: %s\nEnter new name:", d.Name))
	case "2":
		sess.Step = stepEditCode
		s.reply(chatID, fmt.Sprintf("✏️ Code: %s\nEnter new code:", d.Code))
	case "3":
		sess.Step = stepEditCost
		s.reply(chatID, fmt.Sprintf("✏️ የተገዛበት ዋጋ: %s\nEnter new cost price:", orNA(d.Cost)))
	case "4":
		sess.Step = stepEditSelling
		s.reply(chatID, fmt.Sprintf("✏️ የሚሸጥበት ዋጋ: %s\nEnter new selling price:", orNA(d.Selling)))
	case "5":
		sess.Step = stepEditStore
		s.reply(chatID, fmt.Sprintf("✏️ Store ያለ ፈሬ: %s\nEnter new amount:", orNA(d.AmountStore)))
	case "6":
		sess.Step = stepEditSuq
		s.reply(chatID, fmt.Sprintf("✏️ Suq ያለ ፈሬ: %s\nEnter new amount:", orNA(d.AmountSuq)))
	case "7":
		sess.Step = stepEditImage
		s.reply(chatID, "📸 አዲስ Photo ይላኩ:")
	case "8":
		s.finishEdit(ctx, msg, sess)
	default:
		s.reply(chatID, "❌ Invalid choice. Type a number from 1 to 8.")
	}
}

// finishEdit commits every accumulated change in one field update.
func (s *Service) finishEdit(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	chatID := msg.Chat.ID
	d := sess.Data
	fields := map[string]interface{}{
		"name":         d.Name,
		"code":         d.Code,
		"cost":         deref(d.Cost),
		"selling":      deref(d.Selling),
		"amount_store": deref(d.AmountStore),
		"amount_suq":   deref(d.AmountSuq),
		"image":        d.Image,
		"updatedAt":    time.Now().UnixMilli(),
	}
	if err := s.products.UpdateFields(ctx, sess.Key, fields); err != nil {
		zap.L().Error("telegram: update product failed", zap.String("key", sess.Key), zap.Error(err))
		s.sessions.Delete(chatID)
		s.reply(chatID, replyStoreFailure)
		return
	}

	s.notifier.ProductUpdated(&d, displayName(msg.From))
	s.reply(chatID, "✅ Product updated and sent to admin.")
	s.sessions.Delete(chatID)
}

func (s *Service) backToMenu(chatID int64, sess *Session) {
	sess.Step = stepMenu
	s.sendEditMenu(chatID, sess)
}

// sendEditMenu redisplays the current snapshot plus the photo, when one is
// on record.
func (s *Service) sendEditMenu(chatID int64, sess *Session) {
	d := &sess.Data
	menu := fmt.Sprintf(`✏️ መቀየር የምትፈልጉትን ቁጥር ምረጡ:

1) ስም: %s
2) Code: %s
3) የተገዛበት ዋጋ: %s
4) የሚሸጥበት ዋጋ: %s
5) Store ያለ ፈሬ: %s
6) Suq ያለ ፈሬ: %s
7) 🖼️ Image
8) ✅ Finish Editing`,
		d.Name, d.Code, orNA(d.Cost), orNA(d.Selling), orNA(d.AmountStore), orNA(d.AmountSuq))
	s.reply(chatID, menu)

	if d.Image != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(d.Image))
		photo.Caption = "7) 🖼️ Current Image"
		if _, err := s.api.Send(photo); err != nil {
			zap.L().Warn("telegram: send photo failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

func deref(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
