// Package sales turns purchase records written by the storefront into
// stock decrements and admin notifications.
package sales

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/EmanJemal/byfu/internal/domain"
	"github.com/EmanJemal/byfu/internal/repository"
	"github.com/EmanJemal/byfu/internal/store"
	"github.com/EmanJemal/byfu/internal/telegram"
	"go.uber.org/zap"
)

const purchasesPath = "purchases"

// Listener subscribes to child additions under purchases/ and applies each
// sale to the catalog. Records written before the process started are
// replayed by the stream and must be skipped, otherwise every restart
// would double-count historical sales.
type Listener struct {
	db        store.Database
	products  repository.ProductRepository
	shots     *repository.Screenshots
	notifier  *telegram.Notifier
	startedAt int64
}

func NewListener(db store.Database, notifier *telegram.Notifier) *Listener {
	return &Listener{
		db:        db,
		products:  repository.NewProducts(db),
		shots:     repository.NewScreenshots(db),
		notifier:  notifier,
		startedAt: time.Now().UnixMilli(),
	}
}

// Run blocks until ctx is done, reconnecting the stream with backoff when
// it breaks.
func (l *Listener) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		events, err := l.db.Watch(ctx, purchasesPath)
		if err != nil {
			zap.L().Error("sales: watch failed", zap.Error(err))
		} else {
			backoff = time.Second
			for ev := range events {
				l.handlePurchase(ctx, ev.Key, ev.Data)
			}
			zap.L().Warn("sales: purchase stream closed, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (l *Listener) handlePurchase(ctx context.Context, key string, data json.RawMessage) {
	var purchase domain.Purchase
	if err := json.Unmarshal(data, &purchase); err != nil {
		zap.L().Error("sales: malformed purchase", zap.String("key", key), zap.Error(err))
		return
	}
	if purchase.Date < l.startedAt {
		zap.L().Debug("sales: skipped replayed purchase", zap.String("key", key))
		return
	}

	zap.S().Infof("sales: purchase %s by %s with %d items", key, purchase.Buyer, len(purchase.Items))

	for _, item := range purchase.Items {
		l.applySale(ctx, item)
	}
	for _, id := range purchase.Screenshots {
		l.forwardScreenshot(ctx, id)
	}
}

func (l *Listener) applySale(ctx context.Context, item domain.CartItem) {
	p, err := l.products.Get(ctx, item.ProductKey)
	if err != nil {
		zap.L().Error("sales: sold product not found",
			zap.String("product_key", item.ProductKey), zap.Error(err))
		return
	}

	remaining := p.SuqAmount() - item.Quantity
	if remaining < 0 {
		remaining = 0
	}
	err = l.products.UpdateFields(ctx, item.ProductKey, map[string]interface{}{
		"amount_suq": strconv.Itoa(remaining),
	})
	if err != nil {
		zap.L().Error("sales: stock decrement failed",
			zap.String("product_key", item.ProductKey), zap.Error(err))
		return
	}

	l.notifier.ProductSold(p, item.Quantity, remaining)
}

func (l *Listener) forwardScreenshot(ctx context.Context, id string) {
	rec, err := l.shots.Get(ctx, id)
	if err != nil {
		zap.L().Warn("sales: screenshot lookup failed", zap.String("id", id), zap.Error(err))
		return
	}
	l.notifier.ForwardScreenshot(id, rec)
}
