package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a catalog entry: a named commodity with a reference price per kg.
// AccountID is nil for global materials shared by every account.
type Material struct {
	ID         int64
	AccountID  *int64
	Name       string
	PricePerKg decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsGlobal reports whether the material belongs to the shared scope.
func (m Material) IsGlobal() bool {
	return m.AccountID == nil
}

// OwnedBy reports whether the material is the private property of accountID.
func (m Material) OwnedBy(accountID int64) bool {
	return m.AccountID != nil && *m.AccountID == accountID
}
