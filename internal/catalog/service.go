package catalog

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/recicla-soft/recicla/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog operations.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	audit  AuditPort
}

// NewService builds Service.
func NewService(logger *slog.Logger, repo RepositoryPort, audit AuditPort) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{logger: logger, repo: repo, audit: audit}
}

// MaxNameLength bounds material names; the original schema used VARCHAR(100).
const MaxNameLength = 100

// List returns global materials plus the account's own, ordered by name.
func (s *Service) List(ctx context.Context, accountID int64) ([]Material, error) {
	return s.repo.ListVisible(ctx, accountID)
}

// Add registers a private material for the account. The duplicate check and
// insert share a transaction so a concurrent add cannot slip between them.
func (s *Service) Add(ctx context.Context, accountID int64, name string, price decimal.Decimal) (Material, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxNameLength {
		return Material{}, shared.NewError(shared.KindInvalidInput, "material name must be 1-100 characters")
	}
	if price.IsNegative() {
		return Material{}, shared.NewError(shared.KindInvalidInput, "price must be a non-negative number")
	}

	material := Material{AccountID: &accountID, Name: name, PricePerKg: price}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.ExistsVisible(ctx, accountID, name)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewError(shared.KindDuplicateName, "material name already in use")
		}
		id, err := tx.Insert(ctx, material)
		if err != nil {
			return err
		}
		material.ID = id
		return nil
	})
	if err != nil {
		return Material{}, err
	}
	s.record(ctx, accountID, "catalog:add", material.ID, map[string]any{"name": name, "price_per_kg": price.String()})
	return material, nil
}

// UpdatePrice changes the reference price. The change affects only future
// transaction proposals, never stored amounts.
func (s *Service) UpdatePrice(ctx context.Context, accountID, materialID int64, price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewError(shared.KindInvalidInput, "price must be a non-negative number")
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		material, err := tx.GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		if !material.IsGlobal() && !material.OwnedBy(accountID) {
			return shared.NewError(shared.KindNotFound, "material not found")
		}
		return tx.UpdatePrice(ctx, materialID, price)
	})
	if err != nil {
		return err
	}
	s.record(ctx, accountID, "catalog:update_price", materialID, map[string]any{"price_per_kg": price.String()})
	return nil
}

// Remove deletes a private material and cascades deletion of the account's
// ledger entries referencing it, all inside one transaction.
func (s *Service) Remove(ctx context.Context, accountID, materialID int64) error {
	var purged int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		material, err := tx.GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		if material.IsGlobal() {
			return shared.NewError(shared.KindForbidden, "global materials cannot be removed")
		}
		if !material.OwnedBy(accountID) {
			return shared.NewError(shared.KindNotFound, "material not found")
		}
		purged, err = tx.DeleteEntriesFor(ctx, accountID, materialID)
		if err != nil {
			return err
		}
		return tx.DeleteMaterial(ctx, materialID)
	})
	if err != nil {
		return err
	}
	s.record(ctx, accountID, "catalog:remove", materialID, map[string]any{"entries_purged": purged})
	return nil
}

// record writes an audit row, fire-and-forget: a failed write is logged but
// never fails the catalog operation it documents.
func (s *Service) record(ctx context.Context, accountID int64, action string, materialID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		AccountID: accountID,
		Action:    action,
		Entity:    "material",
		EntityID:  strconv.FormatInt(materialID, 10),
		Meta:      meta,
	})
	if err != nil {
		s.logger.Warn("audit record", slog.Any("error", err), slog.String("action", action))
	}
}
