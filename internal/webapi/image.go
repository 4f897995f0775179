package webapi

import (
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// telegramImage resolves a Telegram file id into a short-lived download URL
// and redirects the browser to it. The storefront uses this to render
// product photos and screenshots stored only as file ids.
func (s *Server) telegramImage(c echo.Context) error {
	fileID := c.Param("fileId")
	file, err := s.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil || file.FilePath == "" {
		zap.L().Warn("webapi: file resolve failed", zap.String("file_id", fileID), zap.Error(err))
		return c.String(http.StatusNotFound, "Image not found")
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", s.cfg.Telegram.Token, file.FilePath)
	return c.Redirect(http.StatusFound, url)
}
