package export

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/billcraft/billcraft/internal/billing"
	"github.com/billcraft/billcraft/internal/currency"
)

type renderResult struct {
	filename string
	pdf      []byte
}

// Service renders quotations and invoices to PDF. When a Gotenberg client is
// present it converts the HTML templates, otherwise it draws the document
// directly. Concurrent renders of the same document revision share one pass.
type Service struct {
	logger    *slog.Logger
	templates *template.Template
	gotenberg *GotenbergClient
	group     singleflight.Group
}

// NewService builds the renderer. gotenberg may be nil for offline rendering.
func NewService(logger *slog.Logger, gotenberg *GotenbergClient) (*Service, error) {
	tpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Service{
		logger:    logger,
		templates: tpl,
		gotenberg: gotenberg,
	}, nil
}

// Quotation renders a quotation PDF and returns the download filename.
func (s *Service) Quotation(ctx context.Context, q *billing.Quotation) (string, []byte, error) {
	payload := QuotationPayload(q, s.amountFormatter())
	return s.render(ctx, fmt.Sprintf("quotation:%s:%d", q.ID, q.UpdatedAt.UnixNano()), payload)
}

// Invoice renders an invoice PDF and returns the download filename.
func (s *Service) Invoice(ctx context.Context, inv *billing.Invoice) (string, []byte, error) {
	payload := InvoicePayload(inv, s.amountFormatter())
	return s.render(ctx, fmt.Sprintf("invoice:%s:%d", inv.ID, inv.UpdatedAt.UnixNano()), payload)
}

func (s *Service) amountFormatter() AmountFormatter {
	if s.gotenberg != nil {
		return currency.Format
	}
	// Core PDF fonts cannot draw every currency glyph.
	return currency.FormatCode
}

func (s *Service) render(ctx context.Context, key string, payload DocumentPayload) (string, []byte, error) {
	v, err, shared := s.group.Do(key, func() (any, error) {
		pdf, err := s.renderPDF(ctx, payload)
		if err != nil {
			return nil, err
		}
		return renderResult{filename: payload.Filename, pdf: pdf}, nil
	})
	if err != nil {
		return "", nil, err
	}
	if shared {
		s.logger.Debug("pdf render shared", "key", key)
	}
	res := v.(renderResult)
	return res.filename, res.pdf, nil
}

func (s *Service) renderPDF(ctx context.Context, payload DocumentPayload) ([]byte, error) {
	if s.gotenberg == nil {
		return renderFPDF(payload)
	}
	html, err := renderHTML(s.templates, payload)
	if err != nil {
		return nil, err
	}
	pdf, err := s.gotenberg.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("gotenberg render: %w", err)
	}
	return pdf, nil
}
