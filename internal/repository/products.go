package repository

import (
	"context"
	"sort"

	"github.com/EmanJemal/byfu/internal/domain"
	"github.com/EmanJemal/byfu/internal/store"
	"github.com/pkg/errors"
)

const productsPath = "products"

// ProductEntry pairs a product with its storage key.
type ProductEntry struct {
	Key     string
	Product domain.Product
}

// ProductRepository is the inventory accessor used by the conversation
// engine and the sale listener.
type ProductRepository interface {
	All(ctx context.Context) ([]ProductEntry, error)
	Get(ctx context.Context, key string) (*domain.Product, error)
	FindByCode(ctx context.Context, code string) (*ProductEntry, error)
	Create(ctx context.Context, p *domain.Product) (string, error)
	UpdateFields(ctx context.Context, key string, fields map[string]interface{}) error
}

type Products struct {
	db store.Database
}

func NewProducts(db store.Database) *Products {
	return &Products{db: db}
}

// All returns every product in key order. Push keys are chronological, so
// this is creation order; it also fixes the tie-break for duplicate codes.
func (r *Products) All(ctx context.Context) ([]ProductEntry, error) {
	var raw map[string]domain.Product
	err := r.db.Get(ctx, productsPath, &raw)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]ProductEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, ProductEntry{Key: k, Product: raw[k]})
	}
	return entries, nil
}

func (r *Products) Get(ctx context.Context, key string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(ctx, productsPath+"/"+key, &p)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByCode scans for the first product with the given business code.
func (r *Products) FindByCode(ctx context.Context, code string) (*ProductEntry, error) {
	entries, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Product.Code == code {
			return &entries[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create stores a new product under a generated key.
func (r *Products) Create(ctx context.Context, p *domain.Product) (string, error) {
	return r.db.Push(ctx, productsPath, p)
}

// UpdateFields merges the given fields into products/<key>; fields not
// named keep their stored value.
func (r *Products) UpdateFields(ctx context.Context, key string, fields map[string]interface{}) error {
	return r.db.Update(ctx, productsPath+"/"+key, fields)
}
