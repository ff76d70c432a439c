package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/billcraft/billcraft/internal/platform/kv"
)

// Collection keys in the backing store.
const (
	companyKey    = "quotation_company"
	quotationsKey = "quotation_list"
	invoicesKey   = "invoice_list"
	draftKey      = "quotation_draft"
)

// Store persists the three document collections plus the draft slot through a
// kv backend. Every mutation is read full collection, mutate, write back;
// a single mutex serializes writers so rapid calls cannot interleave. Reads
// fail soft: a missing key, an unreadable backend, or a corrupt value all
// surface as an empty collection, never as an error.
type Store struct {
	logger *slog.Logger
	kv     kv.Store

	mu  sync.Mutex
	now func() time.Time
}

// NewStore wraps a kv backend.
func NewStore(logger *slog.Logger, backend kv.Store) *Store {
	return &Store{logger: logger, kv: backend, now: time.Now}
}

func (s *Store) readList(ctx context.Context, key string, target any) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn("read collection", slog.String("key", key), slog.Any("error", err))
		}
		return
	}
	if err := json.Unmarshal(raw, target); err != nil {
		// Corrupt stored value reads as empty.
		s.logger.Warn("parse collection", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *Store) writeList(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// ListQuotations returns every stored quotation in store order.
func (s *Store) ListQuotations(ctx context.Context) []Quotation {
	var list []Quotation
	s.readList(ctx, quotationsKey, &list)
	return list
}

// FindQuotation returns the quotation with the given id.
func (s *Store) FindQuotation(ctx context.Context, id string) (*Quotation, bool) {
	for _, q := range s.ListQuotations(ctx) {
		if q.ID == id {
			return &q, true
		}
	}
	return nil, false
}

// SaveQuotation upserts by id. An existing record is replaced with UpdatedAt
// refreshed; a new one is appended with CreatedAt defaulted when unset. The
// passed record is updated in place with the applied timestamps.
func (s *Store) SaveQuotation(ctx context.Context, q *Quotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.ListQuotations(ctx)
	now := s.now()
	q.UpdatedAt = now

	replaced := false
	for i := range list {
		if list[i].ID == q.ID {
			if q.CreatedAt.IsZero() {
				q.CreatedAt = list[i].CreatedAt
			}
			list[i] = *q
			replaced = true
			break
		}
	}
	if !replaced {
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		list = append(list, *q)
	}
	return s.writeList(ctx, quotationsKey, list)
}

// DeleteQuotation removes by id; absent ids are a no-op.
func (s *Store) DeleteQuotation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.ListQuotations(ctx)
	kept := list[:0]
	for _, q := range list {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	return s.writeList(ctx, quotationsKey, kept)
}

// MarkConverted flips the one-way conversion flag and refreshes UpdatedAt.
// It never creates an invoice and is a no-op for unknown ids; calling it
// twice leaves the flag true.
func (s *Store) MarkConverted(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.ListQuotations(ctx)
	for i := range list {
		if list[i].ID == id {
			list[i].ConvertedToInvoice = true
			list[i].UpdatedAt = s.now()
			return s.writeList(ctx, quotationsKey, list)
		}
	}
	return nil
}

// ListInvoices returns every stored invoice in store order.
func (s *Store) ListInvoices(ctx context.Context) []Invoice {
	var list []Invoice
	s.readList(ctx, invoicesKey, &list)
	return list
}

// FindInvoice returns the invoice with the given id.
func (s *Store) FindInvoice(ctx context.Context, id string) (*Invoice, bool) {
	for _, inv := range s.ListInvoices(ctx) {
		if inv.ID == id {
			return &inv, true
		}
	}
	return nil, false
}

// SaveInvoice upserts by id with the same timestamp rules as SaveQuotation.
func (s *Store) SaveInvoice(ctx context.Context, inv *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.ListInvoices(ctx)
	now := s.now()
	inv.UpdatedAt = now

	replaced := false
	for i := range list {
		if list[i].ID == inv.ID {
			if inv.CreatedAt.IsZero() {
				inv.CreatedAt = list[i].CreatedAt
			}
			list[i] = *inv
			replaced = true
			break
		}
	}
	if !replaced {
		if inv.CreatedAt.IsZero() {
			inv.CreatedAt = now
		}
		list = append(list, *inv)
	}
	return s.writeList(ctx, invoicesKey, list)
}

// DeleteInvoice removes by id; absent ids are a no-op.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.ListInvoices(ctx)
	kept := list[:0]
	for _, inv := range list {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	return s.writeList(ctx, invoicesKey, kept)
}

// UpdateInvoiceStatus sets the status and refreshes UpdatedAt; no-op for
// unknown ids.
func (s *Store) UpdateInvoiceStatus(ctx context.Context, id string, status InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.ListInvoices(ctx)
	for i := range list {
		if list[i].ID == id {
			list[i].Status = status
			list[i].UpdatedAt = s.now()
			return s.writeList(ctx, invoicesKey, list)
		}
	}
	return nil
}

// GetCompany returns the singleton company profile.
func (s *Store) GetCompany(ctx context.Context) (*CompanyDetails, bool) {
	raw, err := s.kv.Get(ctx, companyKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn("read company", slog.Any("error", err))
		}
		return nil, false
	}
	var company CompanyDetails
	if err := json.Unmarshal(raw, &company); err != nil {
		s.logger.Warn("parse company", slog.Any("error", err))
		return nil, false
	}
	return &company, true
}

// SetCompany overwrites the singleton profile unconditionally.
func (s *Store) SetCompany(ctx context.Context, company CompanyDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeList(ctx, companyKey, company)
}

// GetDraft returns the autosaved in-progress quotation form.
func (s *Store) GetDraft(ctx context.Context) (*QuotationForm, bool) {
	raw, err := s.kv.Get(ctx, draftKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn("read draft", slog.Any("error", err))
		}
		return nil, false
	}
	var form QuotationForm
	if err := json.Unmarshal(raw, &form); err != nil {
		s.logger.Warn("parse draft", slog.Any("error", err))
		return nil, false
	}
	return &form, true
}

// SetDraft overwrites the draft slot.
func (s *Store) SetDraft(ctx context.Context, form QuotationForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeList(ctx, draftKey, form)
}

// ClearDraft removes the draft slot.
func (s *Store) ClearDraft(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, draftKey); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
