package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/recicla-soft/recicla/internal/ledger"
	"github.com/recicla-soft/recicla/internal/shared"
)

// Service computes stock and monthly summaries from the ledger. Concurrent
// requests for the same account collapse onto one recomputation through
// singleflight; results are never cached past the request.
type Service struct {
	entries ledger.RepositoryPort
	group   singleflight.Group
}

// NewService builds Service on top of the ledger repository.
func NewService(entries ledger.RepositoryPort) *Service {
	return &Service{entries: entries}
}

// Stock folds every entry of the account into net per-material positions.
func (s *Service) Stock(ctx context.Context, accountID int64) ([]StockRow, error) {
	key := fmt.Sprintf("stock:%d", accountID)
	v, err, _ := s.group.Do(key, func() (any, error) {
		entries, err := s.entries.ListForAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return ComputeStock(entries), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]StockRow), nil
}

// MonthlySummary folds the account's entries of one calendar month, given as
// "YYYY-MM", into a Summary. A month with no entries yields a zero summary.
func (s *Service) MonthlySummary(ctx context.Context, accountID int64, month string) (Summary, error) {
	from, to, err := parseMonth(month)
	if err != nil {
		return Summary{}, err
	}
	key := fmt.Sprintf("summary:%d:%s", accountID, month)
	v, err, _ := s.group.Do(key, func() (any, error) {
		entries, err := s.entries.ListForRange(ctx, accountID, from, to)
		if err != nil {
			return Summary{}, err
		}
		return ComputeMonthlySummary(entries), nil
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

// parseMonth turns "YYYY-MM" into the half-open UTC interval [from, to).
func parseMonth(month string) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, shared.NewError(shared.KindInvalidInput, "month must be formatted as YYYY-MM")
	}
	return from, from.AddDate(0, 1, 0), nil
}
