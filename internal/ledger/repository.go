package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MaterialRef is the slice of catalog data the gateway needs while appending.
type MaterialRef struct {
	ID         int64
	Name       string
	PricePerKg decimal.Decimal
}

// TxRepository groups the operations that must share the append transaction.
// FindMaterialByName locks the material row until commit, so concurrent
// appends for the same material serialize and neither the stock-sufficiency
// read nor the insert can race a parallel disposal or catalog remove.
type TxRepository interface {
	// FindMaterialByName resolves and row-locks the material, preferring an
	// account-owned entry over a global one with the same name.
	FindMaterialByName(ctx context.Context, accountID int64, name string) (MaterialRef, error)
	SumQuantity(ctx context.Context, accountID, materialID int64) (decimal.Decimal, error)
	InsertEntry(ctx context.Context, entry Entry) (int64, error)
}

// RepositoryPort abstracts ledger persistence for the service layer.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	// ListRecent returns the newest entries first, material name joined in.
	ListRecent(ctx context.Context, accountID int64, limit int) ([]Entry, error)
	// ListForAccount returns every entry of the account, in no guaranteed
	// order; aggregation over the result must be order-independent.
	ListForAccount(ctx context.Context, accountID int64) ([]Entry, error)
	// ListForRange returns the account's entries with occurred_at in
	// [from, to), unordered.
	ListForRange(ctx context.Context, accountID int64, from, to time.Time) ([]Entry, error)
}
