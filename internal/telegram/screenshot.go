package telegram

import (
	"context"
	"regexp"
	"time"

	"github.com/EmanJemal/byfu/internal/domain"
	"github.com/EmanJemal/byfu/internal/repository"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var screenshotIDPattern = regexp.MustCompile(`^\d{4}$`)

func (s *Service) startScreenshot(chatID int64) {
	s.sessions.Start(chatID, FlowScreenshot, stepAwaitingID)
	s.reply(chatID, "🧾 የ4 አሃዝ ID ያስገቡ:")
}

func (s *Service) continueScreenshot(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	chatID := msg.Chat.ID

	switch sess.Step {
	case stepAwaitingID:
		if msg.Text == "" {
			return
		}
		if !screenshotIDPattern.MatchString(msg.Text) {
			s.reply(chatID, "❌ ID 4 አሃዝ መሆን አለበት. እንደገና ያስገቡ:")
			return
		}
		used, err := s.shots.Exists(ctx, msg.Text)
		if err != nil {
			zap.L().Error("telegram: screenshot id check failed", zap.String("id", msg.Text), zap.Error(err))
			s.reply(chatID, replyStoreFailure)
			return
		}
		if used {
			s.reply(chatID, "❌ This ID is already used. Enter a different one:")
			return
		}
		sess.ShotID = msg.Text
		sess.Step = stepAwaitingPhoto
		s.reply(chatID, "📸 Screenshot ይላኩ:")

	case stepAwaitingPhoto:
		fileID := largestPhoto(msg)
		if fileID == "" {
			s.reply(chatID, "📸 Photo ይላኩ.")
			return
		}
		rec := &domain.ScreenshotRecord{
			Image: fileID,
			Date:  time.Now().Format(time.RFC3339),
		}
		err := s.shots.Create(ctx, sess.ShotID, rec)
		if errors.Is(err, repository.ErrDuplicateID) {
			sess.ShotID = ""
			sess.Step = stepAwaitingID
			s.reply(chatID, "❌ This ID is already used. Enter a different one:")
			return
		}
		if err != nil {
			zap.L().Error("telegram: screenshot save failed", zap.String("id", sess.ShotID), zap.Error(err))
			s.sessions.Delete(chatID)
			s.reply(chatID, replyStoreFailure)
			return
		}
		s.reply(chatID, "✅ Screenshot saved.")
		s.sessions.Delete(chatID)
	}
}
