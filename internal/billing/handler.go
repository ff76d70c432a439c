package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/billcraft/billcraft/internal/currency"
	"github.com/billcraft/billcraft/internal/platform/httpx"
)

var (
	phonePattern = regexp.MustCompile(`^[+]?[\d\s-]{10,15}$`)
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
)

// PDFRenderer produces a printable document from an assembled record. The
// handler only forwards data; layout lives in the export layer.
type PDFRenderer interface {
	Quotation(ctx context.Context, q *Quotation) (filename string, pdf []byte, err error)
	Invoice(ctx context.Context, inv *Invoice) (filename string, pdf []byte, err error)
}

// Handler exposes the billing REST surface.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer PDFRenderer
	validate *validator.Validate
}

// NewHandler wires the handler and registers the form validation rules.
func NewHandler(logger *slog.Logger, service *Service, renderer PDFRenderer) *Handler {
	v := validator.New()
	_ = v.RegisterValidation("phoneish", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
		return gstinPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currency.Supported(currency.Code(fl.Field().String()))
	})
	return &Handler{
		logger:   logger,
		service:  service,
		renderer: renderer,
		validate: v,
	}
}

// MountRoutes attaches the billing endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/quotations", func(r chi.Router) {
		r.Get("/", h.ListQuotations)
		r.Post("/", h.CreateQuotation)
		r.Get("/draft", h.GetDraft)
		r.Put("/draft", h.SetDraft)
		r.Delete("/draft", h.ClearDraft)
		r.Get("/{id}", h.GetQuotation)
		r.Put("/{id}", h.UpdateQuotation)
		r.Delete("/{id}", h.DeleteQuotation)
		r.Post("/{id}/convert", h.ConvertQuotation)
		r.Get("/{id}/pdf", h.QuotationPDF)
	})
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.ListInvoices)
		r.Post("/", h.CreateInvoice)
		r.Get("/{id}", h.GetInvoice)
		r.Put("/{id}", h.UpdateInvoice)
		r.Delete("/{id}", h.DeleteInvoice)
		r.Post("/{id}/status", h.UpdateInvoiceStatus)
		r.Get("/{id}/pdf", h.InvoicePDF)
	})
	r.Get("/company", h.GetCompany)
	r.Put("/company", h.SetCompany)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/meta", h.Meta)
}

func (h *Handler) decodeValid(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return fmt.Errorf("%w: malformed request body", httpx.ErrValidation)
	}
	if err := h.validate.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("%w: field %s fails %s", httpx.ErrValidation, first.Namespace(), first.Tag())
		}
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return nil
}

func (h *Handler) ListQuotations(w http.ResponseWriter, r *http.Request) {
	list := h.service.ListQuotations(r.Context(), r.URL.Query().Get("q"))
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	var form QuotationForm
	if err := h.decodeValid(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	q, err := h.service.CreateQuotation(r.Context(), form)
	if err != nil {
		h.logger.Error("create quotation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *Handler) GetQuotation(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.GetQuotation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) UpdateQuotation(w http.ResponseWriter, r *http.Request) {
	var form QuotationForm
	if err := h.decodeValid(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	q, err := h.service.UpdateQuotation(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("update quotation", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) DeleteQuotation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuotation(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete quotation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ConvertQuotation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.ConvertQuotation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("convert quotation", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) QuotationPDF(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.GetQuotation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filename, pdf, err := h.renderer.Quotation(r.Context(), q)
	if err != nil {
		h.logger.Error("render quotation pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "could not render document")
		return
	}
	servePDF(w, filename, pdf)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	list := h.service.ListInvoices(r.Context(),
		r.URL.Query().Get("q"),
		InvoiceStatus(r.URL.Query().Get("status")),
	)
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var form InvoiceForm
	if err := h.decodeValid(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.CreateInvoice(r.Context(), form)
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("create invoice", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var form InvoiceForm
	if err := h.decodeValid(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.UpdateInvoice(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("update invoice", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteInvoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusUpdateRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.UpdateInvoiceStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("update invoice status", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filename, pdf, err := h.renderer.Invoice(r.Context(), inv)
	if err != nil {
		h.logger.Error("render invoice pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "could not render document")
		return
	}
	servePDF(w, filename, pdf)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.GetCompany(r.Context()))
}

func (h *Handler) SetCompany(w http.ResponseWriter, r *http.Request) {
	var company CompanyDetails
	if err := h.decodeValid(r, &company); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.SetCompany(r.Context(), company); err != nil {
		h.logger.Error("save company", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.GetDraft(r.Context()))
}

// SetDraft stores whatever the form currently holds; drafts are not
// validated until submission.
func (h *Handler) SetDraft(w http.ResponseWriter, r *http.Request) {
	var form QuotationForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.service.SetDraft(r.Context(), form); err != nil {
		h.logger.Error("save draft", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearDraft(r.Context()); err != nil {
		h.logger.Error("clear draft", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"stats":          h.service.Stats(r.Context()),
		"recentActivity": h.service.RecentActivity(r.Context(), 5),
	})
}

// Meta serves the form presets: supported currencies with their symbols, GST
// rate options, and the boilerplate terms blocks for new documents.
func (h *Handler) Meta(w http.ResponseWriter, r *http.Request) {
	type currencyInfo struct {
		Code   currency.Code `json:"code"`
		Symbol string        `json:"symbol"`
	}
	currencies := make([]currencyInfo, 0, len(currency.Codes))
	for _, code := range currency.Codes {
		currencies = append(currencies, currencyInfo{Code: code, Symbol: currency.Symbol(code)})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"currencies":          currencies,
		"gstRates":            currency.GSTRates,
		"defaultTerms":        currency.DefaultTerms,
		"defaultPaymentTerms": currency.DefaultPaymentTerms,
	})
}

func servePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
