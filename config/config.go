package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// SysConfig holds basic process settings.
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// WebConfig holds the HTTP boundary listen settings.
type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// AdminConfig is one admin recipient: login codes, product cards and sale
// notifications all go to these chats.
type AdminConfig struct {
	Name   string `yaml:"name" json:"name"`
	ChatID int64  `yaml:"chat_id" json:"chat_id"`
}

// TelegramConfig holds the bot identity and the chat allow-list. Allowed
// lists the staff chats permitted to talk to the bot; admins are implicitly
// allowed as well.
type TelegramConfig struct {
	Token   string        `yaml:"token" json:"-"`
	Allowed []int64       `yaml:"allowed" json:"allowed"`
	Admins  []AdminConfig `yaml:"admins" json:"admins"`
}

// FirebaseConfig points at the realtime database holding the inventory.
type FirebaseConfig struct {
	DatabaseURL     string `yaml:"database_url" json:"database_url"`
	CredentialsFile string `yaml:"credentials_file" json:"-"`
}

type TotpConfig struct {
	Issuer string `yaml:"issuer" json:"issuer"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system" json:"system"`
	Web      WebConfig      `yaml:"web" json:"web"`
	Logger   LogConfig      `yaml:"logger" json:"logger"`
	Telegram TelegramConfig `yaml:"telegram" json:"telegram"`
	Firebase FirebaseConfig `yaml:"firebase" json:"firebase"`
	Totp     TotpConfig     `yaml:"totp" json:"totp"`
}

// AdminChatIDs returns the chat ids of every configured admin recipient.
func (c *AppConfig) AdminChatIDs() []int64 {
	ids := make([]int64, 0, len(c.Telegram.Admins))
	for _, a := range c.Telegram.Admins {
		ids = append(ids, a.ChatID)
	}
	return ids
}

// WebListen returns the host:port address for the HTTP boundary.
func (c *AppConfig) WebListen() string {
	port := c.Web.Port
	if port <= 0 {
		port = 3000
	}
	return fmt.Sprintf("%s:%d", c.Web.Host, port)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "byfu",
		Location: "Africa/Addis_Ababa",
		Workdir:  "/var/byfu",
		Debug:    true,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 3000,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/byfu/byfu.log",
	},
	Totp: TotpConfig{
		Issuer: "byfu",
	},
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

// LoadConfig reads the yaml configuration file and applies environment
// overrides for secrets. A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" && FileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			panic(err)
		}
	}

	setEnvValue("BYFU_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("BYFU_SYSTEM_DEBUG", func(v string) { cfg.System.Debug = v == "true" })
	setEnvValue("BYFU_TELEGRAM_TOKEN", func(v string) { cfg.Telegram.Token = v })
	setEnvValue("BYFU_FIREBASE_URL", func(v string) { cfg.Firebase.DatabaseURL = v })
	setEnvValue("BYFU_FIREBASE_CREDENTIALS", func(v string) { cfg.Firebase.CredentialsFile = v })
	setEnvValue("BYFU_WEB_HOST", func(v string) { cfg.Web.Host = v })

	if cfg.Logger.Filename == "" {
		cfg.Logger.Filename = filepath.Join(cfg.System.Workdir, "byfu.log")
	}
	return cfg
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
