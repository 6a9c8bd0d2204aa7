package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/recicla-soft/recicla/internal/platform/db"
	"github.com/recicla-soft/recicla/internal/shared"
)

// Repository persists the material catalog in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx runs fn inside one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("catalog repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const materialColumns = `id, account_id, name, price_per_kg, created_at, updated_at`

func scanMaterial(row pgx.Row) (Material, error) {
	var (
		m         Material
		accountID pgtype.Int8
		price     pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&m.ID, &accountID, &m.Name, &price, &createdAt, &updatedAt); err != nil {
		return Material{}, err
	}
	if accountID.Valid {
		v := accountID.Int64
		m.AccountID = &v
	}
	m.PricePerKg = db.DecimalFromNumeric(price)
	m.CreatedAt = createdAt.Time
	m.UpdatedAt = updatedAt.Time
	return m, nil
}

// ListVisible returns global materials plus the account's own, ordered by name.
func (r *Repository) ListVisible(ctx context.Context, accountID int64) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+materialColumns+`
FROM materials
WHERE account_id IS NULL OR account_id = $1
ORDER BY name ASC`, accountID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	materials := []Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return materials, nil
}

// GetForUpdate fetches a material by id and locks its row, so price updates
// and removes serialize with each other and with ledger appends.
func (r *txRepository) GetForUpdate(ctx context.Context, materialID int64) (Material, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, materialID)
	m, err := scanMaterial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Material{}, shared.NewError(shared.KindNotFound, "material not found")
		}
		return Material{}, storageErr(err)
	}
	return m, nil
}

func (r *txRepository) ExistsVisible(ctx context.Context, accountID int64, name string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM materials WHERE lower(name) = lower($2) AND (account_id IS NULL OR account_id = $1))`, accountID, name).Scan(&exists)
	if err != nil {
		return false, storageErr(err)
	}
	return exists, nil
}

func (r *txRepository) Insert(ctx context.Context, material Material) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO materials (account_id, name, price_per_kg, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`,
		material.AccountID, material.Name, db.NumericFromDecimal(material.PricePerKg)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, shared.NewError(shared.KindDuplicateName, "material name already in use")
		}
		return 0, storageErr(err)
	}
	return id, nil
}

func (r *txRepository) UpdatePrice(ctx context.Context, materialID int64, price decimal.Decimal) error {
	tag, err := r.tx.Exec(ctx, `UPDATE materials SET price_per_kg = $2, updated_at = NOW() WHERE id = $1`,
		materialID, db.NumericFromDecimal(price))
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewError(shared.KindNotFound, "material not found")
	}
	return nil
}

func (r *txRepository) DeleteMaterial(ctx context.Context, materialID int64) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM materials WHERE id = $1`, materialID)
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewError(shared.KindNotFound, "material not found")
	}
	return nil
}

// DeleteEntriesFor purges the account's ledger entries for the material so a
// private deletion never leaves dangling references.
func (r *txRepository) DeleteEntriesFor(ctx context.Context, accountID, materialID int64) (int64, error) {
	tag, err := r.tx.Exec(ctx, `DELETE FROM transactions WHERE account_id = $1 AND material_id = $2`, accountID, materialID)
	if err != nil {
		return 0, storageErr(err)
	}
	return tag.RowsAffected(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func storageErr(err error) error {
	return shared.WrapError(shared.KindStorage, "catalog store unavailable", err)
}
