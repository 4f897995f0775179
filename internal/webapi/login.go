package webapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/EmanJemal/byfu/config"
	"github.com/EmanJemal/byfu/internal/domain"
	"github.com/EmanJemal/byfu/internal/repository"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/random"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type sendCodeRequest struct {
	BotCode   string `json:"botCode"`
	AdminName string `json:"adminName"`
}

type verifyCodeRequest struct {
	BotCode string `json:"botCode"`
	Code    string `json:"verificationCode"`
}

// sendCode issues fresh 6-digit login codes, one per recipient, messages
// them over Telegram and overwrites any earlier set for this bot code.
func (s *Server) sendCode(c echo.Context) error {
	var req sendCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false, "error": "Invalid request body.",
		})
	}
	if req.BotCode == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false, "error": "Bot code missing.",
		})
	}

	recipients := s.recipients(req.AdminName)
	if len(recipients) == 0 {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false, "error": "No admin recipients configured.",
		})
	}

	codes := make([]string, 0, len(recipients))
	for _, admin := range recipients {
		code := random.String(6, random.Numeric)
		text := fmt.Sprintf("🔐 Login Attempt\nBot Code: %s\nYour Verification Code: %s", req.BotCode, code)
		if _, err := s.api.Send(tgbotapi.NewMessage(admin.ChatID, text)); err != nil {
			zap.L().Error("webapi: code delivery failed",
				zap.Int64("chat_id", admin.ChatID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"success": false, "error": "Failed to send messages.",
			})
		}
		codes = append(codes, code)
	}

	err := s.codes.Put(c.Request().Context(), req.BotCode, &domain.VerificationCode{
		Codes:  codes,
		SentAt: time.Now().UnixMilli(),
	})
	if err != nil {
		zap.L().Error("webapi: code store failed", zap.String("bot_code", req.BotCode), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false, "error": "Failed to send messages.",
		})
	}

	zap.S().Infof("webapi: sent %d login codes for bot %s", len(codes), req.BotCode)
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// verifyCode checks set membership against the last issued codes. Codes do
// not expire and are not consumed; a resend invalidates them wholesale.
func (s *Server) verifyCode(c echo.Context) error {
	var req verifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false, "message": "Invalid request body.",
		})
	}
	if req.BotCode == "" || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false, "message": "Bot code and code are required.",
		})
	}

	vc, err := s.codes.Get(c.Request().Context(), req.BotCode)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": false, "message": "No codes found for this bot code",
		})
	}
	if err != nil {
		zap.L().Error("webapi: code lookup failed", zap.String("bot_code", req.BotCode), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"success": false})
	}

	for _, code := range vc.Codes {
		if code == req.Code {
			return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": false, "message": "Invalid verification code",
	})
}

// recipients returns the admins to notify; naming one limits delivery to
// that admin alone.
func (s *Server) recipients(adminName string) []config.AdminConfig {
	if adminName == "" {
		return s.cfg.Telegram.Admins
	}
	var out []config.AdminConfig
	for _, a := range s.cfg.Telegram.Admins {
		if a.Name == adminName {
			out = append(out, a)
		}
	}
	return out
}
