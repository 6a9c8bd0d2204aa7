package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/recicla-soft/recicla/internal/platform/db"
	"github.com/recicla-soft/recicla/internal/shared"
)

// Repository persists ledger entries in PostgreSQL.
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

// WithTx executes the callback inside one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// FindMaterialByName resolves the material and locks its row for the rest of
// the transaction. Appends for the same material therefore serialize, and the
// stock read that follows sees every disposal committed while we waited. A
// concurrent catalog remove takes the same lock, so the insert can never
// reference a material deleted underneath it.
func (r *txRepository) FindMaterialByName(ctx context.Context, accountID int64, name string) (MaterialRef, error) {
	var (
		ref   MaterialRef
		price pgtype.Numeric
	)
	err := r.tx.QueryRow(ctx, `SELECT id, name, price_per_kg
FROM materials
WHERE lower(name) = lower($2) AND (account_id IS NULL OR account_id = $1)
ORDER BY account_id NULLS LAST
LIMIT 1
FOR UPDATE`, accountID, name).Scan(&ref.ID, &ref.Name, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MaterialRef{}, shared.NewError(shared.KindUnknownMaterial, "material not registered")
		}
		return MaterialRef{}, storageErr(err)
	}
	ref.PricePerKg = db.DecimalFromNumeric(price)
	return ref, nil
}

func (r *txRepository) SumQuantity(ctx context.Context, accountID, materialID int64) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(SUM(quantity_kg), 0)
FROM transactions
WHERE account_id = $1 AND material_id = $2`, accountID, materialID).Scan(&sum)
	if err != nil {
		return decimal.Zero, storageErr(err)
	}
	return db.DecimalFromNumeric(sum), nil
}

func (r *txRepository) InsertEntry(ctx context.Context, entry Entry) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO transactions (material_id, account_id, quantity_kg, amount, occurred_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		entry.MaterialID, entry.AccountID,
		db.NumericFromDecimal(entry.Quantity), db.NumericFromDecimal(entry.Amount),
		entry.OccurredAt).Scan(&id)
	if err != nil {
		return 0, storageErr(err)
	}
	return id, nil
}

const entryColumns = `t.id, t.material_id, t.account_id, m.name, t.quantity_kg, t.amount, t.occurred_at`

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	defer rows.Close()
	entries := []Entry{}
	for rows.Next() {
		var (
			e          Entry
			quantity   pgtype.Numeric
			amount     pgtype.Numeric
			occurredAt pgtype.Timestamptz
		)
		if err := rows.Scan(&e.ID, &e.MaterialID, &e.AccountID, &e.MaterialName, &quantity, &amount, &occurredAt); err != nil {
			return nil, storageErr(err)
		}
		e.Quantity = db.DecimalFromNumeric(quantity)
		e.Amount = db.DecimalFromNumeric(amount)
		e.OccurredAt = occurredAt.Time
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return entries, nil
}

// ListRecent returns the newest entries first for recent-activity views.
func (r *Repository) ListRecent(ctx context.Context, accountID int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+`
FROM transactions t
JOIN materials m ON m.id = t.material_id
WHERE t.account_id = $1
ORDER BY t.occurred_at DESC, t.id DESC
LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	return scanEntries(rows)
}

// ListForAccount returns every entry of the account for aggregation.
func (r *Repository) ListForAccount(ctx context.Context, accountID int64) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+`
FROM transactions t
JOIN materials m ON m.id = t.material_id
WHERE t.account_id = $1`, accountID)
	if err != nil {
		return nil, storageErr(err)
	}
	return scanEntries(rows)
}

// ListForRange returns the account's entries with occurred_at in [from, to).
func (r *Repository) ListForRange(ctx context.Context, accountID int64, from, to time.Time) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+`
FROM transactions t
JOIN materials m ON m.id = t.material_id
WHERE t.account_id = $1 AND t.occurred_at >= $2 AND t.occurred_at < $3`, accountID, from, to)
	if err != nil {
		return nil, storageErr(err)
	}
	return scanEntries(rows)
}

func storageErr(err error) error {
	return shared.WrapError(shared.KindStorage, "ledger store unavailable", err)
}
