// Package webapi exposes the small HTTP boundary used by the storefront:
// admin login codes, screenshot image resolution and TOTP enrollment.
package webapi

import (
	"context"
	"net/http"
	"time"

	"github.com/EmanJemal/byfu/config"
	"github.com/EmanJemal/byfu/internal/repository"
	"github.com/EmanJemal/byfu/internal/store"
	"github.com/EmanJemal/byfu/internal/telegram"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	cfg   *config.AppConfig
	api   telegram.API
	db    store.Database
	codes *repository.Codes
	root  *echo.Echo
}

func NewServer(cfg *config.AppConfig, api telegram.API, db store.Database) *Server {
	s := &Server{
		cfg:   cfg,
		api:   api,
		db:    db,
		codes: repository.NewCodes(db),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.POST("/send-code", s.sendCode)
	e.POST("/verify-code", s.verifyCode)
	e.GET("/telegram-image/:fileId", s.telegramImage)
	e.GET("/totp/send-setup", s.totpSendSetup)
	e.POST("/totp/verify", s.totpVerify)
	e.GET("/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "time": time.Now()})
	})

	s.root = e
	return s
}

// Start serves until ctx is canceled, then shuts the listener down.
func (s *Server) Start(ctx context.Context) error {
	listen := s.cfg.WebListen()
	zap.S().Infof("webapi: listening on %s", listen)

	errch := make(chan error, 1)
	go func() {
		errch <- s.root.Start(listen)
	}()

	select {
	case err := <-errch:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.root.Shutdown(shutdownCtx)
	}
}
