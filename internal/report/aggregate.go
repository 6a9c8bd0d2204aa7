package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/recicla-soft/recicla/internal/ledger"
)

// StockRow is the net position of one material. TotalValue is the net ledger
// balance: negative means money spent and not yet recovered. It is not a
// market valuation.
type StockRow struct {
	MaterialID    int64
	Material      string
	TotalQuantity decimal.Decimal
	TotalValue    decimal.Decimal
}

// Summary condenses one month of ledger activity.
type Summary struct {
	// MostMoved is the material with the largest total disposed quantity,
	// nil when the month has no disposals.
	MostMoved *MaterialTotal
	// LargestSale is the single revenue entry with the highest amount, nil
	// when the month has no revenue entries.
	LargestSale *SaleHighlight
	// SalesCount counts entries with a positive amount.
	SalesCount int
	// TotalExpenses is the money spent, reported as a positive figure.
	TotalExpenses decimal.Decimal
	// Revenue is the money earned.
	Revenue decimal.Decimal
}

// MaterialTotal names a material together with an aggregated quantity.
type MaterialTotal struct {
	MaterialID int64
	Material   string
	Quantity   decimal.Decimal
}

// SaleHighlight describes one revenue entry.
type SaleHighlight struct {
	EntryID    int64
	Material   string
	Quantity   decimal.Decimal
	Amount     decimal.Decimal
	OccurredAt time.Time
}

// ComputeStock folds entries into per-material net positions. Materials with
// no entries do not appear. The fold is order-independent, so callers may
// pass entries in any order. Rows are sorted by quantity descending, then by
// name for a stable order.
func ComputeStock(entries []ledger.Entry) []StockRow {
	byMaterial := map[int64]*StockRow{}
	for _, e := range entries {
		row, ok := byMaterial[e.MaterialID]
		if !ok {
			row = &StockRow{MaterialID: e.MaterialID, Material: e.MaterialName}
			byMaterial[e.MaterialID] = row
		}
		row.TotalQuantity = row.TotalQuantity.Add(e.Quantity)
		row.TotalValue = row.TotalValue.Add(e.Amount)
	}

	rows := make([]StockRow, 0, len(byMaterial))
	for _, row := range byMaterial {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].TotalQuantity.Equal(rows[j].TotalQuantity) {
			return rows[i].TotalQuantity.GreaterThan(rows[j].TotalQuantity)
		}
		return rows[i].Material < rows[j].Material
	})
	return rows
}

type disposed struct {
	materialID int64
	material   string
	quantity   decimal.Decimal
	firstAt    time.Time
	firstID    int64
}

// ComputeMonthlySummary folds one month of entries into a Summary. Callers
// pass entries already restricted to the month; the fold itself is
// order-independent. Ties for most-moved and largest sale go to the earliest
// occurred_at, then the lowest entry id. An empty month yields a zero summary.
func ComputeMonthlySummary(entries []ledger.Entry) Summary {
	disposedByMaterial := map[int64]*disposed{}

	summary := Summary{}
	var largest *ledger.Entry
	for i := range entries {
		e := entries[i]

		if e.Quantity.IsNegative() {
			d, ok := disposedByMaterial[e.MaterialID]
			if !ok {
				d = &disposed{materialID: e.MaterialID, material: e.MaterialName, firstAt: e.OccurredAt, firstID: e.ID}
				disposedByMaterial[e.MaterialID] = d
			} else if e.OccurredAt.Before(d.firstAt) || (e.OccurredAt.Equal(d.firstAt) && e.ID < d.firstID) {
				d.firstAt, d.firstID = e.OccurredAt, e.ID
			}
			d.quantity = d.quantity.Add(e.Quantity.Abs())
		}

		switch {
		case e.Amount.IsNegative():
			summary.TotalExpenses = summary.TotalExpenses.Add(e.Amount.Neg())
		case e.Amount.IsPositive():
			summary.SalesCount++
			summary.Revenue = summary.Revenue.Add(e.Amount)
			if largest == nil || beatsSale(e, *largest) {
				largest = &entries[i]
			}
		}
	}

	var top *disposed
	for _, d := range disposedByMaterial {
		if top == nil || beatsMoved(d, top) {
			top = d
		}
	}
	if top != nil {
		summary.MostMoved = &MaterialTotal{MaterialID: top.materialID, Material: top.material, Quantity: top.quantity}
	}
	if largest != nil {
		summary.LargestSale = &SaleHighlight{
			EntryID:    largest.ID,
			Material:   largest.MaterialName,
			Quantity:   largest.Quantity.Abs(),
			Amount:     largest.Amount,
			OccurredAt: largest.OccurredAt,
		}
	}
	return summary
}

func beatsSale(candidate, current ledger.Entry) bool {
	if !candidate.Amount.Equal(current.Amount) {
		return candidate.Amount.GreaterThan(current.Amount)
	}
	if !candidate.OccurredAt.Equal(current.OccurredAt) {
		return candidate.OccurredAt.Before(current.OccurredAt)
	}
	return candidate.ID < current.ID
}

func beatsMoved(candidate, current *disposed) bool {
	if !candidate.quantity.Equal(current.quantity) {
		return candidate.quantity.GreaterThan(current.quantity)
	}
	if !candidate.firstAt.Equal(current.firstAt) {
		return candidate.firstAt.Before(current.firstAt)
	}
	return candidate.firstID < current.firstID
}
