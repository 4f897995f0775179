package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/EmanJemal/byfu/config"
	"github.com/EmanJemal/byfu/internal/app"
	"github.com/EmanJemal/byfu/internal/domain"
	"github.com/EmanJemal/byfu/internal/repository"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	sessionMaxIdle = 30 * time.Minute

	replyStoreFailure = "❌ Something went wrong, please try again later."
)

// Service drives every conversation flow. One dispatcher inspects the
// chat's session once and routes to exactly one flow handler, so flows are
// mutually exclusive by construction.
type Service struct {
	api      API
	cfg      *config.AppConfig
	sessions *Sessions
	products repository.ProductRepository
	shots    *repository.Screenshots
	stocklog *repository.StockLog
	users    *repository.Users
	notifier *Notifier

	allowed map[int64]bool
	admins  map[int64]bool
}

func New(api API, actx app.AppContext) *Service {
	cfg := actx.Config()
	db := actx.Store()
	s := &Service{
		api:      api,
		cfg:      cfg,
		sessions: NewSessions(),
		products: repository.NewProducts(db),
		shots:    repository.NewScreenshots(db),
		stocklog: repository.NewStockLog(db),
		users:    repository.NewUsers(db),
		notifier: NewNotifier(api, cfg.AdminChatIDs()),
		allowed:  make(map[int64]bool),
		admins:   make(map[int64]bool),
	}
	for _, id := range cfg.Telegram.Allowed {
		s.allowed[id] = true
	}
	for _, a := range cfg.Telegram.Admins {
		s.allowed[a.ChatID] = true
		s.admins[a.ChatID] = true
	}
	if sched := actx.Scheduler(); sched != nil {
		s.registerJobs(sched)
	}
	return s
}

// Notifier exposes the dispatcher so the sale listener can reuse it.
func (s *Service) Notifier() *Notifier {
	return s.notifier
}

// Run consumes bot updates until ctx ends. Updates are handled one at a
// time; there is no cross-event locking beyond that.
func (s *Service) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	zap.L().Info("telegram: update loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			s.HandleUpdate(ctx, update)
		}
	}
}

func (s *Service) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		s.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		s.handleMessage(ctx, update.Message)
	}
}

func (s *Service) authorized(chatID int64) bool {
	return s.allowed[chatID]
}

func (s *Service) isAdmin(chatID int64) bool {
	return s.admins[chatID]
}

func (s *Service) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !s.authorized(chatID) {
		// fail silently so the bot stays invisible to probing
		zap.L().Debug("telegram: dropped message from unknown chat", zap.Int64("chat_id", chatID))
		return
	}

	if msg.IsCommand() {
		s.handleCommand(ctx, msg)
		return
	}

	sess := s.sessions.Get(chatID)
	if sess == nil {
		return
	}
	switch sess.Flow {
	case FlowRegister:
		s.continueRegister(ctx, msg, sess)
	case FlowEdit:
		s.continueEdit(ctx, msg, sess)
	case FlowAddStock:
		s.continueAddStock(ctx, msg, sess)
	case FlowScreenshot:
		s.continueScreenshot(ctx, msg, sess)
	}
}

func (s *Service) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		s.handleStart(ctx, msg)
	case "store":
		s.startRegister(chatID)
	case "edit":
		s.startEdit(chatID)
	case "screenshot":
		s.startScreenshot(chatID)
	case "list":
		s.handleList(ctx, chatID, false)
	case "byorder":
		s.handleList(ctx, chatID, true)
	case "cancel":
		s.handleCancel(chatID)
	}
}

func (s *Service) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	firstName := "there"
	if msg.From != nil && msg.From.FirstName != "" {
		firstName = msg.From.FirstName
	}
	err := s.users.Save(ctx, &domain.User{
		FirstName: firstName,
		ChatID:    chatID,
		JoinedAt:  time.Now().UnixMilli(),
	})
	if err != nil {
		zap.L().Warn("telegram: save user failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	s.reply(chatID, "👋 Hello "+firstName+"!\nYou're now connected to the bot.")
}

func (s *Service) handleCancel(chatID int64) {
	if s.sessions.Delete(chatID) {
		s.reply(chatID, "🚫 Operation cancelled. You can now enter a new command.")
		return
	}
	s.reply(chatID, "ℹ️ Nothing to cancel.")
}

func (s *Service) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	if !s.authorized(chatID) {
		zap.L().Debug("telegram: dropped callback from unknown chat", zap.Int64("chat_id", chatID))
		return
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, "admin_edit_"):
		s.callbackEdit(ctx, cb, strings.TrimPrefix(data, "admin_edit_"))
	case strings.HasPrefix(data, "admin_add_product_"):
		s.callbackAddStock(ctx, cb, strings.TrimPrefix(data, "admin_add_product_"))
	case data == "add_to_store" || data == "add_to_suq":
		s.callbackLocation(cb, strings.TrimPrefix(data, "add_to_"))
	case data == "transfer_stock":
		s.callbackTransfer(cb)
	case data == "transfer_suq_to_store" || data == "transfer_store_to_suq":
		s.callbackDirection(cb, strings.TrimPrefix(data, "transfer_"))
	}
}

func (s *Service) registerJobs(sched *cron.Cron) {
	_, err := sched.AddFunc("@every 5m", func() {
		if n := s.sessions.Prune(sessionMaxIdle); n > 0 {
			zap.S().Infof("telegram: pruned %d stale sessions", n)
		}
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
	_, err = sched.AddFunc("@daily", func() {
		s.sendStockSummary(context.Background())
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
}

// sendStockSummary tells the admins which products are out of stock in
// both locations.
func (s *Service) sendStockSummary(ctx context.Context) {
	entries, err := s.products.All(ctx)
	if err != nil {
		zap.L().Warn("telegram: stock summary query failed", zap.Error(err))
		return
	}
	var lines []string
	for _, e := range entries {
		p := e.Product
		if p.StoreAmount() == 0 && p.SuqAmount() == 0 {
			lines = append(lines, "• "+p.Name+" ("+p.Code+")")
		}
	}
	if len(lines) == 0 {
		return
	}
	s.notifier.Broadcast("📉 Out of stock:\n\n" + strings.Join(lines, "\n"))
}

func (s *Service) reply(chatID int64, text string) {
	if _, err := s.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		zap.L().Warn("telegram: send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (s *Service) answerCallback(id string) {
	if _, err := s.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		zap.L().Warn("telegram: answer callback failed", zap.Error(err))
	}
}

func (s *Service) answerCallbackAlert(id, text string) {
	if _, err := s.api.Request(tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		zap.L().Warn("telegram: answer callback failed", zap.Error(err))
	}
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return u.FirstName
}

func largestPhoto(msg *tgbotapi.Message) string {
	if len(msg.Photo) == 0 {
		return ""
	}
	return msg.Photo[len(msg.Photo)-1].FileID
}
