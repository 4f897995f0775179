package telegram

import (
	"context"
	"testing"

	"github.com/EmanJemal/byfu/config"
	"github.com/EmanJemal/byfu/internal/app"
	"github.com/EmanJemal/byfu/internal/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	staffChat = int64(100)
	adminChat = int64(900)
	otherChat = int64(555)
)

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFile(tgbotapi.FileConfig) (tgbotapi.File, error) {
	return tgbotapi.File{}, nil
}

// texts returns the plain messages sent to the given chat.
func (f *fakeAPI) texts(chatID int64) []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

// cards returns photo messages sent to the given chat.
func (f *fakeAPI) cards(chatID int64) []tgbotapi.PhotoConfig {
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok && p.ChatID == chatID {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeAPI) lastText(chatID int64) string {
	ts := f.texts(chatID)
	if len(ts) == 0 {
		return ""
	}
	return ts[len(ts)-1]
}

func (f *fakeAPI) reset() {
	f.sent = nil
	f.requests = nil
}

func newTestService(t *testing.T) (*Service, *fakeAPI, store.Database) {
	t.Helper()
	cfg := &config.AppConfig{}
	*cfg = *config.DefaultAppConfig
	cfg.Telegram = config.TelegramConfig{
		Token:   "test-token",
		Allowed: []int64{staffChat},
		Admins:  []config.AdminConfig{{Name: "Eman", ChatID: adminChat}},
	}
	application := app.NewApplication(cfg)
	db := store.NewMemory()
	application.OverrideStore(db)
	api := &fakeAPI{}
	return New(api, application), api, db
}

func command(chatID int64, cmd string) tgbotapi.Update {
	text := "/" + cmd
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID, FirstName: "Abel"},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
	}}
}

func text(chatID int64, body string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID, FirstName: "Abel"},
		Text: body,
	}}
}

func photo(chatID int64, fileID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: chatID},
		From:  &tgbotapi.User{ID: chatID, FirstName: "Abel"},
		Photo: []tgbotapi.PhotoSize{{FileID: fileID}},
	}}
}

func callback(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    data,
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func drive(s *Service, updates ...tgbotapi.Update) {
	for _, u := range updates {
		s.HandleUpdate(context.Background(), u)
	}
}

func TestUnknownChatIsIgnored(t *testing.T) {
	s, api, _ := newTestService(t)

	drive(s, command(otherChat, "store"), text(otherChat, "hello"), callback(otherChat, "admin_edit_C1"))

	assert.Empty(t, api.sent)
	assert.Empty(t, api.requests)
	assert.Equal(t, 0, s.sessions.Len())
}

func TestStartSavesUser(t *testing.T) {
	s, api, db := newTestService(t)

	drive(s, command(staffChat, "start"))

	require.NotEmpty(t, api.texts(staffChat))
	assert.Contains(t, api.lastText(staffChat), "Hello Abel")

	var saved map[string]interface{}
	require.NoError(t, db.Get(context.Background(), "users/100", &saved))
	assert.Equal(t, "Abel", saved["firstName"])
}

func TestCancelClearsActiveFlow(t *testing.T) {
	s, api, _ := newTestService(t)

	drive(s, command(staffChat, "store"))
	require.Equal(t, 1, s.sessions.Len())

	drive(s, command(staffChat, "cancel"))
	assert.Equal(t, 0, s.sessions.Len())
	assert.Contains(t, api.lastText(staffChat), "cancelled")

	drive(s, command(staffChat, "cancel"))
	assert.Contains(t, api.lastText(staffChat), "Nothing to cancel")
}

func TestCommandReplacesActiveFlow(t *testing.T) {
	s, _, _ := newTestService(t)

	drive(s, command(staffChat, "store"), command(staffChat, "screenshot"))

	sess := s.sessions.Get(staffChat)
	require.NotNil(t, sess)
	assert.Equal(t, FlowScreenshot, sess.Flow)
}

func TestListRequiresAdmin(t *testing.T) {
	s, api, _ := newTestService(t)

	drive(s, command(staffChat, "list"))
	assert.Contains(t, api.lastText(staffChat), "Only the admin")

	api.reset()
	drive(s, command(adminChat, "list"))
	assert.Contains(t, api.lastText(adminChat), "No products found")
}

func TestStockSummaryListsDoublyEmptyProducts(t *testing.T) {
	s, api, db := newTestService(t)
	ctx := context.Background()

	zero := "0"
	five := "5"
	_, err := db.Push(ctx, "products", map[string]interface{}{
		"name": "Chair", "code": "C1", "amount_store": zero, "amount_suq": zero,
	})
	require.NoError(t, err)
	_, err = db.Push(ctx, "products", map[string]interface{}{
		"name": "Table", "code": "T1", "amount_store": five, "amount_suq": zero,
	})
	require.NoError(t, err)

	s.sendStockSummary(ctx)

	require.Len(t, api.texts(adminChat), 1)
	summary := api.lastText(adminChat)
	assert.Contains(t, summary, "Out of stock")
	assert.Contains(t, summary, "Chair")
	assert.NotContains(t, summary, "Table")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "@abel", displayName(&tgbotapi.User{UserName: "abel", FirstName: "Abel"}))
	assert.Equal(t, "Abel", displayName(&tgbotapi.User{FirstName: "Abel"}))
	assert.Equal(t, "", displayName(nil))
}

// keyboard helper shared by the flow tests below.
func buttonData(markup interface{}) []string {
	kb, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return nil
	}
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				out = append(out, *btn.CallbackData)
			}
		}
	}
	return out
}

