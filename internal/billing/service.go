package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billcraft/billcraft/internal/currency"
	"github.com/billcraft/billcraft/internal/platform/httpx"
	"github.com/billcraft/billcraft/internal/totals"
)

// Repository is the document store contract the service depends on.
type Repository interface {
	ListQuotations(ctx context.Context) []Quotation
	FindQuotation(ctx context.Context, id string) (*Quotation, bool)
	SaveQuotation(ctx context.Context, q *Quotation) error
	DeleteQuotation(ctx context.Context, id string) error
	MarkConverted(ctx context.Context, id string) error

	ListInvoices(ctx context.Context) []Invoice
	FindInvoice(ctx context.Context, id string) (*Invoice, bool)
	SaveInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
	UpdateInvoiceStatus(ctx context.Context, id string, status InvoiceStatus) error

	GetCompany(ctx context.Context) (*CompanyDetails, bool)
	SetCompany(ctx context.Context, company CompanyDetails) error
	GetDraft(ctx context.Context) (*QuotationForm, bool)
	SetDraft(ctx context.Context, form QuotationForm) error
	ClearDraft(ctx context.Context) error
}

// Service orchestrates document assembly: it applies the totals pipeline,
// stamps identity and timestamps, and drives the quotation→invoice
// conversion transition.
type Service struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

// NewService constructs the lifecycle service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo, now: time.Now}
}

// normalizeItems assigns identifiers to new lines and refreshes every cached
// line total from quantity and unit price.
func (s *Service) normalizeItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.LineTotal = totals.Line(item.Quantity, item.UnitPrice)
		out[i] = item
	}
	return out
}

// CreateQuotation assembles and persists a new quotation from form data.
func (s *Service) CreateQuotation(ctx context.Context, form QuotationForm) (*Quotation, error) {
	now := s.now()
	items := s.normalizeItems(form.Items)
	result := totals.Compute(totalsItems(items), totals.Discount{Kind: form.DiscountType, Value: form.DiscountValue}, form.TaxPercent)

	number := form.QuoteNumber
	if number == "" {
		number = NewQuoteNumber(now)
	}

	q := &Quotation{
		ID:            uuid.NewString(),
		QuoteNumber:   number,
		Date:          form.Date,
		ValidUntil:    form.ValidUntil,
		Currency:      form.Currency,
		Company:       form.Company,
		Client:        form.Client,
		Items:         items,
		DiscountType:  form.DiscountType,
		DiscountValue: form.DiscountValue,
		TaxPercent:    form.TaxPercent,
		GrandTotal:    result.GrandTotal,
		Terms:         form.Terms,
		PaymentTerms:  form.PaymentTerms,
		Signature:     form.Signature,
		CreatedAt:     now,
	}
	if err := s.repo.SaveQuotation(ctx, q); err != nil {
		return nil, fmt.Errorf("%w: save quotation: %v", httpx.ErrStorage, err)
	}
	return q, nil
}

// UpdateQuotation re-assembles an existing quotation in place, preserving its
// identity, creation time, and conversion flag.
func (s *Service) UpdateQuotation(ctx context.Context, id string, form QuotationForm) (*Quotation, error) {
	existing, ok := s.repo.FindQuotation(ctx, id)
	if !ok {
		return nil, fmt.Errorf("quotation %s: %w", id, httpx.ErrNotFound)
	}

	items := s.normalizeItems(form.Items)
	result := totals.Compute(totalsItems(items), totals.Discount{Kind: form.DiscountType, Value: form.DiscountValue}, form.TaxPercent)

	number := form.QuoteNumber
	if number == "" {
		number = existing.QuoteNumber
	}

	q := &Quotation{
		ID:                 existing.ID,
		QuoteNumber:        number,
		Date:               form.Date,
		ValidUntil:         form.ValidUntil,
		Currency:           form.Currency,
		Company:            form.Company,
		Client:             form.Client,
		Items:              items,
		DiscountType:       form.DiscountType,
		DiscountValue:      form.DiscountValue,
		TaxPercent:         form.TaxPercent,
		GrandTotal:         result.GrandTotal,
		Terms:              form.Terms,
		PaymentTerms:       form.PaymentTerms,
		Signature:          form.Signature,
		ConvertedToInvoice: existing.ConvertedToInvoice,
		CreatedAt:          existing.CreatedAt,
	}
	if err := s.repo.SaveQuotation(ctx, q); err != nil {
		return nil, fmt.Errorf("%w: save quotation: %v", httpx.ErrStorage, err)
	}
	return q, nil
}

// GetQuotation returns a stored quotation by id.
func (s *Service) GetQuotation(ctx context.Context, id string) (*Quotation, error) {
	q, ok := s.repo.FindQuotation(ctx, id)
	if !ok {
		return nil, fmt.Errorf("quotation %s: %w", id, httpx.ErrNotFound)
	}
	return q, nil
}

// ListQuotations returns quotations newest first, optionally filtered by a
// case-insensitive search over number and client name.
func (s *Service) ListQuotations(ctx context.Context, search string) []Quotation {
	list := s.repo.ListQuotations(ctx)
	if search != "" {
		needle := strings.ToLower(search)
		filtered := list[:0]
		for _, q := range list {
			if strings.Contains(strings.ToLower(q.QuoteNumber), needle) ||
				strings.Contains(strings.ToLower(q.Client.Name), needle) {
				filtered = append(filtered, q)
			}
		}
		list = filtered
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// DeleteQuotation removes a quotation; unknown ids are a no-op.
func (s *Service) DeleteQuotation(ctx context.Context, id string) error {
	if err := s.repo.DeleteQuotation(ctx, id); err != nil {
		return fmt.Errorf("%w: delete quotation: %v", httpx.ErrStorage, err)
	}
	return nil
}

// CreateInvoice assembles and persists a new invoice. When the form names a
// source quotation, empty sections default from it and, only after the
// invoice is saved, the quotation is marked converted. A failed save leaves
// the quotation untouched. Creating twice from the same source yields two
// invoices referencing it; the flag transition happens once.
func (s *Service) CreateInvoice(ctx context.Context, form InvoiceForm) (*Invoice, error) {
	var source *Quotation
	if form.SourceQuoteID != "" {
		src, ok := s.repo.FindQuotation(ctx, form.SourceQuoteID)
		if !ok {
			return nil, fmt.Errorf("source quotation %s: %w", form.SourceQuoteID, httpx.ErrNotFound)
		}
		source = src
		applyQuoteDefaults(&form, src)
	}

	now := s.now()
	items := s.normalizeItems(form.Items)
	result := totals.Compute(totalsItems(items), totals.Discount{Kind: form.DiscountType, Value: form.DiscountValue}, form.TaxPercent)

	number := form.InvoiceNumber
	if number == "" {
		number = NewInvoiceNumber(now)
	}
	status := form.Status
	if status == "" {
		status = InvoiceStatusDraft
	}

	inv := &Invoice{
		ID:            uuid.NewString(),
		InvoiceNumber: number,
		Date:          form.Date,
		DueDate:       form.DueDate,
		Status:        status,
		SourceQuoteID: form.SourceQuoteID,
		Currency:      form.Currency,
		Company:       form.Company,
		Client:        form.Client,
		Items:         items,
		DiscountType:  form.DiscountType,
		DiscountValue: form.DiscountValue,
		TaxPercent:    form.TaxPercent,
		GrandTotal:    result.GrandTotal,
		Terms:         form.Terms,
		PaymentTerms:  form.PaymentTerms,
		Signature:     form.Signature,
		CreatedAt:     now,
	}
	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("%w: save invoice: %v", httpx.ErrStorage, err)
	}

	if source != nil {
		if err := s.repo.MarkConverted(ctx, source.ID); err != nil {
			// The invoice exists; only the flag refresh failed.
			s.logger.Warn("mark quotation converted", slog.String("quotation_id", source.ID), slog.Any("error", err))
		}
	}
	return inv, nil
}

// ConvertQuotation creates an invoice pre-filled from the quotation: today's
// date, a 30 day due date, a fresh invoice number, and every billing section
// copied from the source. A source without terms gets the boilerplate blocks.
func (s *Service) ConvertQuotation(ctx context.Context, quoteID string) (*Invoice, error) {
	q, ok := s.repo.FindQuotation(ctx, quoteID)
	if !ok {
		return nil, fmt.Errorf("quotation %s: %w", quoteID, httpx.ErrNotFound)
	}

	terms := q.Terms
	if terms == "" {
		terms = currency.DefaultTerms
	}
	paymentTerms := q.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = currency.DefaultPaymentTerms
	}

	now := s.now()
	form := InvoiceForm{
		Company:       q.Company,
		Client:        q.Client,
		InvoiceNumber: NewInvoiceNumber(now),
		Date:          now.Format("2006-01-02"),
		DueDate:       now.AddDate(0, 0, 30).Format("2006-01-02"),
		Status:        InvoiceStatusDraft,
		SourceQuoteID: q.ID,
		Currency:      q.Currency,
		Items:         q.Items,
		DiscountType:  q.DiscountType,
		DiscountValue: q.DiscountValue,
		TaxPercent:    q.TaxPercent,
		Terms:         terms,
		PaymentTerms:  paymentTerms,
		Signature:     q.Signature,
	}
	return s.CreateInvoice(ctx, form)
}

// applyQuoteDefaults copies billing sections from the source quotation into
// empty parts of the form.
func applyQuoteDefaults(form *InvoiceForm, src *Quotation) {
	if form.Company.Name == "" {
		form.Company = src.Company
	}
	if form.Client.Name == "" {
		form.Client = src.Client
	}
	if len(form.Items) == 0 {
		form.Items = src.Items
		form.DiscountType = src.DiscountType
		form.DiscountValue = src.DiscountValue
		form.TaxPercent = src.TaxPercent
	}
	if form.Currency == "" {
		form.Currency = src.Currency
	}
	if form.Terms == "" {
		form.Terms = src.Terms
	}
	if form.PaymentTerms == "" {
		form.PaymentTerms = src.PaymentTerms
	}
	if form.Signature == nil {
		form.Signature = src.Signature
	}
}

// UpdateInvoice re-assembles an existing invoice in place.
func (s *Service) UpdateInvoice(ctx context.Context, id string, form InvoiceForm) (*Invoice, error) {
	existing, ok := s.repo.FindInvoice(ctx, id)
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, httpx.ErrNotFound)
	}

	items := s.normalizeItems(form.Items)
	result := totals.Compute(totalsItems(items), totals.Discount{Kind: form.DiscountType, Value: form.DiscountValue}, form.TaxPercent)

	number := form.InvoiceNumber
	if number == "" {
		number = existing.InvoiceNumber
	}
	status := form.Status
	if status == "" {
		status = existing.Status
	}

	inv := &Invoice{
		ID:            existing.ID,
		InvoiceNumber: number,
		Date:          form.Date,
		DueDate:       form.DueDate,
		Status:        status,
		SourceQuoteID: existing.SourceQuoteID,
		Currency:      form.Currency,
		Company:       form.Company,
		Client:        form.Client,
		Items:         items,
		DiscountType:  form.DiscountType,
		DiscountValue: form.DiscountValue,
		TaxPercent:    form.TaxPercent,
		GrandTotal:    result.GrandTotal,
		Terms:         form.Terms,
		PaymentTerms:  form.PaymentTerms,
		Signature:     form.Signature,
		CreatedAt:     existing.CreatedAt,
	}
	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("%w: save invoice: %v", httpx.ErrStorage, err)
	}
	return inv, nil
}

// GetInvoice returns a stored invoice by id.
func (s *Service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	inv, ok := s.repo.FindInvoice(ctx, id)
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, httpx.ErrNotFound)
	}
	return inv, nil
}

// ListInvoices returns invoices newest first with optional search and status
// filtering.
func (s *Service) ListInvoices(ctx context.Context, search string, status InvoiceStatus) []Invoice {
	list := s.repo.ListInvoices(ctx)
	filtered := list[:0]
	for _, inv := range list {
		if status != "" && inv.Status != status {
			continue
		}
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(inv.InvoiceNumber), needle) &&
				!strings.Contains(strings.ToLower(inv.Client.Name), needle) {
				continue
			}
		}
		filtered = append(filtered, inv)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered
}

// DeleteInvoice removes an invoice; unknown ids are a no-op.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("%w: delete invoice: %v", httpx.ErrStorage, err)
	}
	return nil
}

// UpdateInvoiceStatus sets the lifecycle status of an invoice.
func (s *Service) UpdateInvoiceStatus(ctx context.Context, id string, status InvoiceStatus) (*Invoice, error) {
	if _, ok := s.repo.FindInvoice(ctx, id); !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, httpx.ErrNotFound)
	}
	if err := s.repo.UpdateInvoiceStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("%w: update status: %v", httpx.ErrStorage, err)
	}
	inv, _ := s.repo.FindInvoice(ctx, id)
	return inv, nil
}

// GetCompany returns the singleton company profile, nil when unset.
func (s *Service) GetCompany(ctx context.Context) *CompanyDetails {
	company, ok := s.repo.GetCompany(ctx)
	if !ok {
		return nil
	}
	return company
}

// SetCompany overwrites the singleton company profile.
func (s *Service) SetCompany(ctx context.Context, company CompanyDetails) error {
	if err := s.repo.SetCompany(ctx, company); err != nil {
		return fmt.Errorf("%w: save company: %v", httpx.ErrStorage, err)
	}
	return nil
}

// GetDraft returns the autosaved quotation form, nil when unset.
func (s *Service) GetDraft(ctx context.Context) *QuotationForm {
	draft, ok := s.repo.GetDraft(ctx)
	if !ok {
		return nil
	}
	return draft
}

// SetDraft stores the in-progress quotation form without validating it.
func (s *Service) SetDraft(ctx context.Context, form QuotationForm) error {
	if err := s.repo.SetDraft(ctx, form); err != nil {
		return fmt.Errorf("%w: save draft: %v", httpx.ErrStorage, err)
	}
	return nil
}

// ClearDraft discards the autosaved form.
func (s *Service) ClearDraft(ctx context.Context) error {
	if err := s.repo.ClearDraft(ctx); err != nil {
		return fmt.Errorf("%w: clear draft: %v", httpx.ErrStorage, err)
	}
	return nil
}

// Stats aggregates the dashboard counters.
func (s *Service) Stats(ctx context.Context) DashboardStats {
	quotations := s.repo.ListQuotations(ctx)
	invoices := s.repo.ListInvoices(ctx)

	stats := DashboardStats{
		TotalQuotations: len(quotations),
		TotalInvoices:   len(invoices),
	}
	for _, q := range quotations {
		if !q.ConvertedToInvoice {
			stats.PendingQuotations++
		}
	}
	var revenue float64
	for _, inv := range invoices {
		revenue += inv.GrandTotal
	}
	stats.TotalRevenue = totals.Round2(revenue)
	return stats
}

// RecentActivity merges quotations and invoices into one feed, newest first.
// Entries are ordered by creation instant, not by the formatted date string,
// so mixed UTC offsets cannot reorder the feed.
func (s *Service) RecentActivity(ctx context.Context, limit int) []ActivityItem {
	type datedItem struct {
		at   time.Time
		item ActivityItem
	}
	var items []datedItem
	for _, q := range s.repo.ListQuotations(ctx) {
		items = append(items, datedItem{at: q.CreatedAt, item: ActivityItem{
			ID:         q.ID,
			Kind:       "quotation",
			Title:      q.QuoteNumber,
			ClientName: q.Client.Name,
			Amount:     currency.Format(q.GrandTotal, q.Currency),
			Date:       q.CreatedAt.Format(time.RFC3339),
			GrandTotal: q.GrandTotal,
		}})
	}
	for _, inv := range s.repo.ListInvoices(ctx) {
		items = append(items, datedItem{at: inv.CreatedAt, item: ActivityItem{
			ID:         inv.ID,
			Kind:       "invoice",
			Title:      inv.InvoiceNumber,
			ClientName: inv.Client.Name,
			Amount:     currency.Format(inv.GrandTotal, inv.Currency),
			Date:       inv.CreatedAt.Format(time.RFC3339),
			GrandTotal: inv.GrandTotal,
		}})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].at.After(items[j].at)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]ActivityItem, len(items))
	for i, d := range items {
		out[i] = d.item
	}
	return out
}
