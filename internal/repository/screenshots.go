package repository

import (
	"context"

	"github.com/EmanJemal/byfu/internal/domain"
	"github.com/EmanJemal/byfu/internal/store"
	"github.com/pkg/errors"
)

const screenshotsPath = "Screenshot_id"

// Screenshots stores payment screenshot records keyed by the 4-digit id
// chosen at upload time.
type Screenshots struct {
	db store.Database
}

func NewScreenshots(db store.Database) *Screenshots {
	return &Screenshots{db: db}
}

func (r *Screenshots) Get(ctx context.Context, id string) (*domain.ScreenshotRecord, error) {
	var rec domain.ScreenshotRecord
	err := r.db.Get(ctx, screenshotsPath+"/"+id, &rec)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Screenshots) Exists(ctx context.Context, id string) (bool, error) {
	var rec domain.ScreenshotRecord
	err := r.db.Get(ctx, screenshotsPath+"/"+id, &rec)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create rejects an id that is already taken. The check is read-then-write,
// not atomic; the race window is accepted at this scale.
func (r *Screenshots) Create(ctx context.Context, id string, rec *domain.ScreenshotRecord) error {
	taken, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateID
	}
	return r.db.Set(ctx, screenshotsPath+"/"+id, rec)
}
