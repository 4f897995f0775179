package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/EmanJemal/byfu/config"
	"github.com/EmanJemal/byfu/internal/app"
	"github.com/EmanJemal/byfu/internal/sales"
	"github.com/EmanJemal/byfu/internal/telegram"
	"github.com/EmanJemal/byfu/internal/webapi"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	h     = flag.Bool("h", false, "help usage")
	cfile = flag.String("c", "byfu.yml", "config file")
)

func printHelp() {
	if *h {
		fmt.Fprintln(os.Stderr, "byfu version: v1.0, usage: byfu -h\nOptions:")
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()
	printHelp()

	cfg := config.LoadConfig(*cfile)
	application := app.NewApplication(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		zap.S().Fatalf("telegram auth failed: %v", err)
	}
	bot.Debug = cfg.System.Debug
	zap.S().Infof("authorized on telegram account %s", bot.Self.UserName)

	service := telegram.New(bot, application)
	server := webapi.NewServer(cfg, bot, application.Store())
	listener := sales.NewListener(application.Store(), service.Notifier())

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return service.Run(ctx, updates)
	})
	g.Go(func() error {
		return listener.Run(ctx)
	})
	g.Go(func() error {
		return server.Start(ctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		zap.S().Errorf("shutdown: %v", err)
	}
}
