package reporthttp

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/budgetdesk/budgetdesk/internal/platform/httpx"
	"github.com/budgetdesk/budgetdesk/internal/report"
)

// Handler wires HTTP endpoints for project reports and summaries.
type Handler struct {
	logger    *slog.Logger
	service   *report.Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *report.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/projects/{id}", func(r chi.Router) {
		r.Get("/report", h.report)
		r.Post("/report/share", h.share)
		r.Get("/invoices/summary", h.invoiceSummary)
		r.Get("/financial-summary", h.financialSummary)
	})
	r.Get("/departments/{id}/budget", h.departmentBudget)
	r.Get("/invoices/{id}", h.invoice)
	r.Get("/documents/{id}", h.document)
	r.Get("/shared/{token}", h.openShare)
}

type reportQuery struct {
	ID     string `validate:"required,max=64,printascii"`
	Format string `validate:"omitempty,oneof=html pdf json HTML PDF JSON"`
}

type idParam struct {
	ID string `validate:"required,max=64,printascii"`
}

type tokenParam struct {
	Token string `validate:"required,uuid"`
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	query := reportQuery{
		ID:     strings.TrimSpace(chi.URLParam(r, "id")),
		Format: strings.TrimSpace(r.URL.Query().Get("format")),
	}
	if err := h.validate(query); err != nil {
		httpx.RespondError(w, err)
		return
	}
	format, err := report.ParseFormat(query.Format)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data, err := h.service.Generate(r.Context(), query.ID)
	if err != nil {
		h.fail(w, "generate project report", query.ID, err)
		return
	}
	if format == report.FormatJSON {
		httpx.JSON(w, http.StatusOK, data)
		return
	}
	artifact, err := h.service.Export(r.Context(), data, format)
	if err != nil {
		h.fail(w, "export project report", query.ID, err)
		return
	}
	h.writeArtifact(w, artifact)
}

func (h *Handler) share(w http.ResponseWriter, r *http.Request) {
	param := idParam{ID: strings.TrimSpace(chi.URLParam(r, "id"))}
	if err := h.validate(param); err != nil {
		httpx.RespondError(w, err)
		return
	}
	link, err := h.service.Share(r.Context(), param.ID)
	if err != nil {
		h.fail(w, "share project report", param.ID, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"token":      link.Token,
		"url":        "/shared/" + link.Token,
		"expires_at": link.ExpiresAt,
	})
}

func (h *Handler) openShare(w http.ResponseWriter, r *http.Request) {
	param := tokenParam{Token: strings.TrimSpace(chi.URLParam(r, "token"))}
	if err := h.validator.Struct(param); err != nil {
		httpx.RespondError(w, report.ErrShareNotFound)
		return
	}
	artifact, err := h.service.OpenShare(r.Context(), param.Token)
	if err != nil {
		h.fail(w, "open shared report", param.Token, err)
		return
	}
	h.writeArtifact(w, artifact)
}

func (h *Handler) invoiceSummary(w http.ResponseWriter, r *http.Request) {
	param := idParam{ID: strings.TrimSpace(chi.URLParam(r, "id"))}
	if err := h.validate(param); err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.InvoiceSummary(r.Context(), param.ID)
	if err != nil {
		h.fail(w, "invoice summary", param.ID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) financialSummary(w http.ResponseWriter, r *http.Request) {
	param := idParam{ID: strings.TrimSpace(chi.URLParam(r, "id"))}
	if err := h.validate(param); err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.FinancialSummary(r.Context(), param.ID)
	if err != nil {
		h.fail(w, "financial summary", param.ID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) departmentBudget(w http.ResponseWriter, r *http.Request) {
	param := idParam{ID: strings.TrimSpace(chi.URLParam(r, "id"))}
	if err := h.validate(param); err != nil {
		httpx.RespondError(w, err)
		return
	}
	budget, err := h.service.DepartmentBudget(r.Context(), param.ID)
	if err != nil {
		h.fail(w, "department budget", param.ID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, budget)
}

func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
	param := idParam{ID: strings.TrimSpace(chi.URLParam(r, "id"))}
	if err := h.validate(param); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.Invoice(r.Context(), param.ID)
	if err != nil {
		h.fail(w, "get invoice", param.ID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	param := idParam{ID: strings.TrimSpace(chi.URLParam(r, "id"))}
	if err := h.validate(param); err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Document(r.Context(), param.ID)
	if err != nil {
		h.fail(w, "get closing document", param.ID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) validate(v any) error {
	if err := h.validator.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &validationError{field: strings.ToLower(fieldErrs[0].Field()), tag: fieldErrs[0].Tag()}
		}
		return httpx.ErrValidation
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, op, ref string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.String("ref", ref), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func (h *Handler) writeArtifact(w http.ResponseWriter, artifact report.Artifact) {
	if artifact.Format == report.FormatHTML {
		w.Header().Set("Content-Type", artifact.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(artifact.Body)
		return
	}
	httpx.Attachment(w, artifact.ContentType, artifact.Filename, artifact.Body)
}

type validationError struct {
	field string
	tag   string
}

func (e *validationError) Error() string {
	return "invalid " + e.field + " (" + e.tag + ")"
}

func (e *validationError) Unwrap() error { return httpx.ErrValidation }
