package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// TxRepository exposes the catalog operations that must share a transaction.
type TxRepository interface {
	GetForUpdate(ctx context.Context, materialID int64) (Material, error)
	ExistsVisible(ctx context.Context, accountID int64, name string) (bool, error)
	Insert(ctx context.Context, material Material) (int64, error)
	UpdatePrice(ctx context.Context, materialID int64, price decimal.Decimal) error
	DeleteMaterial(ctx context.Context, materialID int64) error
	DeleteEntriesFor(ctx context.Context, accountID, materialID int64) (int64, error)
}

// RepositoryPort abstracts persistence for the catalog service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListVisible(ctx context.Context, accountID int64) ([]Material, error)
}
