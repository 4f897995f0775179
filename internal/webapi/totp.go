package webapi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/EmanJemal/byfu/internal/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
)

const totpSecretPath = "totp/secret"

type totpVerifyRequest struct {
	Code string `json:"code"`
}

// totpSendSetup ensures a shared TOTP secret exists and messages the
// enrollment URL to every admin chat. Calling it again reuses the stored
// secret so existing authenticator entries stay valid.
func (s *Server) totpSendSetup(c echo.Context) error {
	ctx := c.Request().Context()

	var secret string
	err := s.db.Get(ctx, totpSecretPath, &secret)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		zap.L().Error("webapi: totp secret read failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false, "message": "Failed to read TOTP secret.",
		})
	}

	if secret == "" {
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      s.cfg.Totp.Issuer,
			AccountName: "admin",
		})
		if err != nil {
			zap.L().Error("webapi: totp generate failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"success": false, "message": "Failed to generate TOTP secret.",
			})
		}
		secret = key.Secret()
		if err := s.db.Set(ctx, totpSecretPath, secret); err != nil {
			zap.L().Error("webapi: totp secret store failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"success": false, "message": "Failed to store TOTP secret.",
			})
		}
	}

	setupURL := fmt.Sprintf("otpauth://totp/%s:admin?secret=%s&issuer=%s",
		url.PathEscape(s.cfg.Totp.Issuer), secret, url.QueryEscape(s.cfg.Totp.Issuer))
	text := "🔐 TOTP Setup\nAdd this to your authenticator app:\n" + setupURL
	for _, admin := range s.cfg.Telegram.Admins {
		if _, err := s.api.Send(tgbotapi.NewMessage(admin.ChatID, text)); err != nil {
			zap.L().Error("webapi: totp setup delivery failed",
				zap.Int64("chat_id", admin.ChatID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"success": false, "message": "Failed to deliver TOTP setup.",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) totpVerify(c echo.Context) error {
	var req totpVerifyRequest
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false, "message": "Code is required.",
		})
	}

	var secret string
	err := s.db.Get(c.Request().Context(), totpSecretPath, &secret)
	if errors.Is(err, store.ErrNotFound) || (err == nil && secret == "") {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": false, "message": "TOTP is not set up",
		})
	}
	if err != nil {
		zap.L().Error("webapi: totp secret read failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false, "message": "Failed to read TOTP secret.",
		})
	}

	if totp.Validate(req.Code, secret) {
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": false, "message": "Invalid TOTP code",
	})
}
