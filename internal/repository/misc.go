package repository

import (
	"context"
	"strconv"

	"github.com/EmanJemal/byfu/internal/domain"
	"github.com/EmanJemal/byfu/internal/store"
	"github.com/pkg/errors"
)

// StockLog appends audit records to added_product.
type StockLog struct {
	db store.Database
}

func NewStockLog(db store.Database) *StockLog {
	return &StockLog{db: db}
}

func (r *StockLog) Append(ctx context.Context, e *domain.StockLogEntry) error {
	_, err := r.db.Push(ctx, "added_product", e)
	return err
}

// Codes stores login verification code sets keyed by the web session's bot
// code. Put overwrites, so older codes stop verifying on resend.
type Codes struct {
	db store.Database
}

func NewCodes(db store.Database) *Codes {
	return &Codes{db: db}
}

func (r *Codes) Put(ctx context.Context, botCode string, vc *domain.VerificationCode) error {
	return r.db.Set(ctx, "verification_codes/"+botCode, vc)
}

func (r *Codes) Get(ctx context.Context, botCode string) (*domain.VerificationCode, error) {
	var vc domain.VerificationCode
	err := r.db.Get(ctx, "verification_codes/"+botCode, &vc)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vc, nil
}

// Users records chats that greeted the bot with /start.
type Users struct {
	db store.Database
}

func NewUsers(db store.Database) *Users {
	return &Users{db: db}
}

func (r *Users) Save(ctx context.Context, u *domain.User) error {
	return r.db.Set(ctx, "users/"+strconv.FormatInt(u.ChatID, 10), u)
}
