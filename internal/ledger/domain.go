package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/recicla-soft/recicla/internal/shared"
)

// Kind declares the intent of a transaction request. The gateway derives the
// entry signs from it; caller-supplied signs are never trusted.
type Kind string

const (
	// KindAcquisition increases stock and spends money.
	KindAcquisition Kind = "acquisition"
	// KindDisposal decreases stock and earns money.
	KindDisposal Kind = "disposal"
)

// Valid reports whether k is a known transaction kind.
func (k Kind) Valid() bool {
	return k == KindAcquisition || k == KindDisposal
}

// Entry is one immutable signed ledger record.
//
// Sign convention: acquisitions carry quantity > 0 and amount <= 0, disposals
// carry quantity < 0 and amount >= 0. Quantity is in kg, amount in currency.
type Entry struct {
	ID           int64
	MaterialID   int64
	AccountID    int64
	MaterialName string
	Quantity     decimal.Decimal
	Amount       decimal.Decimal
	OccurredAt   time.Time
}

// Kind derives the transaction kind from the entry's quantity sign.
func (e Entry) Kind() Kind {
	if e.Quantity.IsPositive() {
		return KindAcquisition
	}
	return KindDisposal
}

// Validate enforces the sign convention. It must pass before any append.
func (e Entry) Validate() error {
	if e.Quantity.IsZero() {
		return shared.NewError(shared.KindInvalidTransaction, "quantity must not be zero")
	}
	if e.Quantity.IsPositive() && e.Amount.IsPositive() {
		return shared.NewError(shared.KindInvalidTransaction, "acquisition amount must not be positive")
	}
	if e.Quantity.IsNegative() && e.Amount.IsNegative() {
		return shared.NewError(shared.KindInvalidTransaction, "disposal amount must not be negative")
	}
	return nil
}
