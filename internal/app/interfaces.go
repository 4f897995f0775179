package app

import (
	"github.com/EmanJemal/byfu/config"
	"github.com/EmanJemal/byfu/internal/store"
	"github.com/robfig/cron/v3"
)

// StoreProvider provides document store access
type StoreProvider interface {
	Store() store.Database
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context.
// Services should depend on specific providers or this combined interface.
type AppContext interface {
	StoreProvider
	ConfigProvider
	SchedulerProvider
}
