package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")

	assert.Equal(t, "byfu", cfg.System.Appid)
	assert.Equal(t, "0.0.0.0:3000", cfg.WebListen())
	assert.Equal(t, "byfu", cfg.Totp.Issuer)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "byfu.yml")
	body := `
web:
  host: 127.0.0.1
  port: 8088
telegram:
  token: file-token
  allowed: [100, 200]
  admins:
    - name: Eman
      chat_id: 900
`
	require.NoError(t, os.WriteFile(cfile, []byte(body), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, "127.0.0.1:8088", cfg.WebListen())
	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.Equal(t, []int64{100, 200}, cfg.Telegram.Allowed)
	assert.Equal(t, []int64{900}, cfg.AdminChatIDs())
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("BYFU_TELEGRAM_TOKEN", "env-token")
	t.Setenv("BYFU_FIREBASE_URL", "https://byfu.firebaseio.com")

	cfg := LoadConfig("")
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "https://byfu.firebaseio.com", cfg.Firebase.DatabaseURL)
}
