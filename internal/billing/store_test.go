package billing

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billcraft/billcraft/internal/platform/kv"
)

func newTestStore(t *testing.T) (*Store, *kv.Memory) {
	t.Helper()
	backend := kv.NewMemory()
	store := NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)), backend)
	return store, backend
}

func TestStoreQuotationRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	q := &Quotation{ID: "q-1", QuoteNumber: "QT-202508-0001", Client: ClientDetails{Name: "Acme"}}
	require.NoError(t, store.SaveQuotation(ctx, q))

	assert.False(t, q.CreatedAt.IsZero())
	assert.False(t, q.UpdatedAt.Before(q.CreatedAt))

	got, ok := store.FindQuotation(ctx, "q-1")
	require.True(t, ok)
	assert.Equal(t, "QT-202508-0001", got.QuoteNumber)
	assert.Equal(t, "Acme", got.Client.Name)
}

func TestStoreUpsertReplacesById(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	q := &Quotation{ID: "q-1", QuoteNumber: "QT-202508-0001"}
	require.NoError(t, store.SaveQuotation(ctx, q))
	created := q.CreatedAt

	update := &Quotation{ID: "q-1", QuoteNumber: "QT-202508-9999"}
	require.NoError(t, store.SaveQuotation(ctx, update))

	list := store.ListQuotations(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "QT-202508-9999", list[0].QuoteNumber)
	assert.True(t, list[0].CreatedAt.Equal(created))
	assert.True(t, list[0].UpdatedAt.After(created))
}

func TestStoreReadsFailSoft(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, quotationsKey, []byte("{not json")))
	require.NoError(t, backend.Set(ctx, companyKey, []byte("[]")))

	assert.Empty(t, store.ListQuotations(ctx))
	_, ok := store.GetCompany(ctx)
	assert.False(t, ok)

	// A corrupt collection is recoverable: the next write replaces it.
	require.NoError(t, store.SaveQuotation(ctx, &Quotation{ID: "q-1"}))
	assert.Len(t, store.ListQuotations(ctx), 1)
}

func TestStoreDeleteAbsentIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveInvoice(ctx, &Invoice{ID: "inv-1"}))
	require.NoError(t, store.DeleteInvoice(ctx, "missing"))
	assert.Len(t, store.ListInvoices(ctx), 1)

	require.NoError(t, store.DeleteInvoice(ctx, "inv-1"))
	assert.Empty(t, store.ListInvoices(ctx))
}

func TestStoreMarkConverted(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveQuotation(ctx, &Quotation{ID: "q-1"}))

	require.NoError(t, store.MarkConverted(ctx, "q-1"))
	q, ok := store.FindQuotation(ctx, "q-1")
	require.True(t, ok)
	assert.True(t, q.ConvertedToInvoice)

	// Second call keeps the flag set.
	require.NoError(t, store.MarkConverted(ctx, "q-1"))
	q, _ = store.FindQuotation(ctx, "q-1")
	assert.True(t, q.ConvertedToInvoice)

	// Unknown id neither errors nor creates anything.
	require.NoError(t, store.MarkConverted(ctx, "missing"))
	assert.Len(t, store.ListQuotations(ctx), 1)
}

func TestStoreInvoiceStatus(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveInvoice(ctx, &Invoice{ID: "inv-1", Status: InvoiceStatusDraft}))
	require.NoError(t, store.UpdateInvoiceStatus(ctx, "inv-1", InvoiceStatusPaid))

	inv, ok := store.FindInvoice(ctx, "inv-1")
	require.True(t, ok)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)

	require.NoError(t, store.UpdateInvoiceStatus(ctx, "missing", InvoiceStatusSent))
}

func TestStoreDraftSlot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, ok := store.GetDraft(ctx)
	assert.False(t, ok)

	form := QuotationForm{QuoteNumber: "QT-202508-0007", Date: "2025-08-01"}
	require.NoError(t, store.SetDraft(ctx, form))

	got, ok := store.GetDraft(ctx)
	require.True(t, ok)
	assert.Equal(t, "QT-202508-0007", got.QuoteNumber)

	require.NoError(t, store.ClearDraft(ctx))
	_, ok = store.GetDraft(ctx)
	assert.False(t, ok)

	// Clearing an empty slot is fine.
	require.NoError(t, store.ClearDraft(ctx))
}

func TestStoreCompanySingleton(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetCompany(ctx, CompanyDetails{Name: "Acme"}))
	require.NoError(t, store.SetCompany(ctx, CompanyDetails{Name: "Globex"}))

	company, ok := store.GetCompany(ctx)
	require.True(t, ok)
	assert.Equal(t, "Globex", company.Name)
}
