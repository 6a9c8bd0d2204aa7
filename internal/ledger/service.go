package ledger

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/recicla-soft/recicla/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ServiceConfig groups optional gateway settings.
type ServiceConfig struct {
	// AllowNegativeStock preserves the permissive behaviour of the original
	// system, which recorded disposals without a sufficiency check. Off by
	// default: disposals beyond available stock are rejected.
	AllowNegativeStock bool
}

// Service is the ledger gateway: it turns transaction requests into validated
// signed entries and appends them atomically.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	audit    AuditPort
	allowNeg bool
	now      func() time.Time
}

// NewService builds Service.
func NewService(logger *slog.Logger, repo RepositoryPort, audit AuditPort, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{logger: logger, repo: repo, audit: audit, allowNeg: cfg.AllowNegativeStock, now: time.Now}
}

// RegisterInput describes a transaction request. Quantity and UnitPrice are
// unsigned magnitudes; the kind decides the signs.
type RegisterInput struct {
	AccountID    int64
	MaterialName string
	Kind         Kind
	Quantity     decimal.Decimal
	// UnitPrice overrides the catalog reference price when set.
	UnitPrice *decimal.Decimal
}

// Register validates the request, derives the signed entry and appends it.
// Material resolution, the stock check and the insert run in one transaction;
// the material row lock taken during resolution serializes concurrent appends
// for the same material, so two disposals cannot both pass the stock check.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Entry, error) {
	if !input.Kind.Valid() {
		return Entry{}, shared.NewError(shared.KindInvalidTransaction, "kind must be acquisition or disposal")
	}
	name := strings.TrimSpace(input.MaterialName)
	if name == "" {
		return Entry{}, shared.NewError(shared.KindUnknownMaterial, "material name required")
	}
	if !input.Quantity.IsPositive() {
		return Entry{}, shared.NewError(shared.KindInvalidTransaction, "quantity must be a positive magnitude")
	}
	if input.UnitPrice != nil && input.UnitPrice.IsNegative() {
		return Entry{}, shared.NewError(shared.KindInvalidInput, "unit price must be a non-negative number")
	}

	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		material, err := tx.FindMaterialByName(ctx, input.AccountID, name)
		if err != nil {
			return err
		}

		price := material.PricePerKg
		if input.UnitPrice != nil {
			price = *input.UnitPrice
		}
		total := input.Quantity.Mul(price).Round(2)

		entry = Entry{
			MaterialID:   material.ID,
			AccountID:    input.AccountID,
			MaterialName: material.Name,
			OccurredAt:   s.now().UTC(),
		}
		switch input.Kind {
		case KindAcquisition:
			entry.Quantity = input.Quantity
			entry.Amount = total.Neg()
		case KindDisposal:
			entry.Quantity = input.Quantity.Neg()
			entry.Amount = total
		}
		if err := entry.Validate(); err != nil {
			return err
		}

		if input.Kind == KindDisposal && !s.allowNeg {
			stock, err := tx.SumQuantity(ctx, input.AccountID, material.ID)
			if err != nil {
				return err
			}
			if stock.Add(entry.Quantity).IsNegative() {
				return shared.NewError(shared.KindInvalidTransaction, "insufficient stock for disposal")
			}
		}

		id, err := tx.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		entry.ID = id
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	if s.audit != nil {
		// fire-and-forget: a failed audit write never rolls back the entry
		if err := s.audit.Record(ctx, shared.AuditLog{
			AccountID: input.AccountID,
			Action:    "ledger:" + string(input.Kind),
			Entity:    "transaction",
			EntityID:  strconv.FormatInt(entry.ID, 10),
			Meta: map[string]any{
				"material_id": entry.MaterialID,
				"quantity_kg": entry.Quantity.String(),
				"amount":      entry.Amount.String(),
			},
		}); err != nil {
			s.logger.Warn("audit record", slog.Any("error", err), slog.String("action", "ledger:"+string(input.Kind)))
		}
	}
	return entry, nil
}

// Recent lists the account's newest entries for activity views.
func (s *Service) Recent(ctx context.Context, accountID int64, limit int) ([]Entry, error) {
	return s.repo.ListRecent(ctx, accountID, limit)
}
