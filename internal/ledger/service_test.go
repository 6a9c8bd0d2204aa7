package ledger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/recicla-soft/recicla/internal/shared"
)

type memoryRepo struct {
	// mu models the material row lock FindMaterialByName takes: held from
	// resolution until the transaction ends, like the real repository.
	mu        sync.Mutex
	materials []MaterialRef
	entries   []Entry
	nextID    int64
}

type memoryTx struct {
	repo    *memoryRepo
	pending []Entry
	locked  bool
}

func newMemoryRepo(materials ...MaterialRef) *memoryRepo {
	return &memoryRepo{materials: materials}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: r}
	defer func() {
		if tx.locked {
			r.mu.Unlock()
		}
	}()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.entries = append(r.entries, tx.pending...)
	return nil
}

func (tx *memoryTx) FindMaterialByName(ctx context.Context, accountID int64, name string) (MaterialRef, error) {
	if !tx.locked {
		tx.repo.mu.Lock()
		tx.locked = true
	}
	for _, m := range tx.repo.materials {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return MaterialRef{}, shared.NewError(shared.KindUnknownMaterial, "material not registered")
}

func (tx *memoryTx) SumQuantity(ctx context.Context, accountID, materialID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range tx.repo.entries {
		if e.AccountID == accountID && e.MaterialID == materialID {
			sum = sum.Add(e.Quantity)
		}
	}
	return sum, nil
}

func (tx *memoryTx) InsertEntry(ctx context.Context, entry Entry) (int64, error) {
	tx.repo.nextID++
	entry.ID = tx.repo.nextID
	tx.pending = append(tx.pending, entry)
	return entry.ID, nil
}

func (r *memoryRepo) ListRecent(ctx context.Context, accountID int64, limit int) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepo) ListForAccount(ctx context.Context, accountID int64) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListForRange(ctx context.Context, accountID int64, from, to time.Time) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if e.AccountID == accountID && !e.OccurredAt.Before(from) && e.OccurredAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func pet() MaterialRef {
	return MaterialRef{ID: 1, Name: "PET", PricePerKg: dec("2.50")}
}

func TestRegisterAcquisitionSigns(t *testing.T) {
	repo := newMemoryRepo(pet())
	svc := NewService(nil, repo, nil, ServiceConfig{})
	ctx := context.Background()

	entry, err := svc.Register(ctx, RegisterInput{
		AccountID:    7,
		MaterialName: "PET",
		Kind:         KindAcquisition,
		Quantity:     dec("10.0"),
	})
	require.NoError(t, err)
	require.True(t, entry.Quantity.Equal(dec("10.0")))
	require.True(t, entry.Amount.Equal(dec("-25.00")))
	require.Equal(t, int64(1), entry.ID)
	require.Len(t, repo.entries, 1)
}

func TestRegisterDisposalSigns(t *testing.T) {
	repo := newMemoryRepo(pet())
	svc := NewService(nil, repo, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		AccountID: 7, MaterialName: "PET", Kind: KindAcquisition, Quantity: dec("10.0"),
	})
	require.NoError(t, err)

	price := dec("3.00")
	entry, err := svc.Register(ctx, RegisterInput{
		AccountID: 7, MaterialName: "PET", Kind: KindDisposal, Quantity: dec("4.0"), UnitPrice: &price,
	})
	require.NoError(t, err)
	require.True(t, entry.Quantity.Equal(dec("-4.0")))
	require.True(t, entry.Amount.Equal(dec("12.00")))
}

func TestRegisterRejectsUnknownMaterial(t *testing.T) {
	repo := newMemoryRepo(pet())
	svc := NewService(nil, repo, nil, ServiceConfig{})

	_, err := svc.Register(context.Background(), RegisterInput{
		AccountID: 7, MaterialName: "Vibranium", Kind: KindAcquisition, Quantity: dec("1"),
	})
	require.Error(t, err)
	require.Equal(t, shared.KindUnknownMaterial, shared.KindOf(err))
	require.Empty(t, repo.entries)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	repo := newMemoryRepo(pet())
	svc := NewService(nil, repo, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{AccountID: 7, MaterialName: "PET", Kind: Kind("swap"), Quantity: dec("1")})
	require.Equal(t, shared.KindInvalidTransaction, shared.KindOf(err))

	_, err = svc.Register(ctx, RegisterInput{AccountID: 7, MaterialName: "PET", Kind: KindAcquisition, Quantity: dec("0")})
	require.Equal(t, shared.KindInvalidTransaction, shared.KindOf(err))

	_, err = svc.Register(ctx, RegisterInput{AccountID: 7, MaterialName: "PET", Kind: KindAcquisition, Quantity: dec("-1")})
	require.Equal(t, shared.KindInvalidTransaction, shared.KindOf(err))

	negative := dec("-2.00")
	_, err = svc.Register(ctx, RegisterInput{AccountID: 7, MaterialName: "PET", Kind: KindAcquisition, Quantity: dec("1"), UnitPrice: &negative})
	require.Equal(t, shared.KindInvalidInput, shared.KindOf(err))

	require.Empty(t, repo.entries)
}

func TestRegisterRejectsDisposalBeyondStock(t *testing.T) {
	repo := newMemoryRepo(pet())
	svc := NewService(nil, repo, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{AccountID: 7, MaterialName: "PET", Kind: KindAcquisition, Quantity: dec("5")})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{AccountID: 7, MaterialName: "PET", Kind: KindDisposal, Quantity: dec("6")})
	require.Error(t, err)
	require.Equal(t, shared.KindInvalidTransaction, shared.KindOf(err))
	require.Len(t, repo.entries, 1)

	_, err = svc.Register(ctx, RegisterInput{AccountID: 7, MaterialName: "PET", Kind: KindDisposal, Quantity: dec("5")})
	require.NoError(t, err)
}

func TestRegisterSerializesConcurrentDisposals(t *testing.T) {
	repo := newMemoryRepo(pet())
	svc := NewService(nil, repo, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{AccountID: 7, MaterialName: "PET", Kind: KindAcquisition, Quantity: dec("5")})
	require.NoError(t, err)

	// Two disposals race for the last 5kg. The material row lock forces the
	// second to run after the first commits, so its stock read must see the
	// drained balance and reject.
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, RegisterInput{AccountID: 7, MaterialName: "PET", Kind: KindDisposal, Quantity: dec("5")})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var accepted, rejected int
	for err := range results {
		if err == nil {
			accepted++
			continue
		}
		require.Equal(t, shared.KindInvalidTransaction, shared.KindOf(err))
		rejected++
	}
	require.Equal(t, 1, accepted)
	require.Equal(t, 1, rejected)

	stock := decimal.Zero
	for _, e := range repo.entries {
		stock = stock.Add(e.Quantity)
	}
	require.True(t, stock.IsZero(), "stock went negative: %s", stock)
}

func TestRegisterAllowsNegativeStockWhenConfigured(t *testing.T) {
	repo := newMemoryRepo(pet())
	svc := NewService(nil, repo, nil, ServiceConfig{AllowNegativeStock: true})

	_, err := svc.Register(context.Background(), RegisterInput{
		AccountID: 7, MaterialName: "PET", Kind: KindDisposal, Quantity: dec("6"),
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)
}

type failingAudit struct{}

func (failingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	return errors.New("audit store down")
}

func TestRegisterSurvivesAuditFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	repo := newMemoryRepo(pet())
	svc := NewService(logger, repo, failingAudit{}, ServiceConfig{})

	entry, err := svc.Register(context.Background(), RegisterInput{
		AccountID: 7, MaterialName: "PET", Kind: KindAcquisition, Quantity: dec("1"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), entry.ID)
	require.Len(t, repo.entries, 1)
	require.Contains(t, buf.String(), "audit record")
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	repo := newMemoryRepo(pet())
	svc := NewService(nil, repo, nil, ServiceConfig{})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Register(ctx, RegisterInput{AccountID: 7, MaterialName: "PET", Kind: KindAcquisition, Quantity: dec("1")})
		require.NoError(t, err)
	}

	entries, err := svc.Recent(ctx, 7, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, int64(5), entries[0].ID)
	require.Equal(t, int64(4), entries[1].ID)
	require.Equal(t, int64(3), entries[2].ID)
}
