package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetdesk/budgetdesk/internal/finance"
	"github.com/budgetdesk/budgetdesk/internal/platform/httpx"
	"github.com/budgetdesk/budgetdesk/internal/projects"
)

// Format enumerates export artifact kinds.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
)

// ParseFormat normalises a requested format, defaulting to HTML.
func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case "":
		return FormatHTML, nil
	case FormatHTML, FormatPDF, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("report: unsupported format %q: %w", v, httpx.ErrValidation)
	}
}

// ProjectHeader is the identity block of the report.
type ProjectHeader struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Code           string              `json:"code,omitempty"`
	Client         string              `json:"client,omitempty"`
	Status         string              `json:"status"`
	DueDate        *time.Time          `json:"due_date,omitempty"`
	PlannedBudget  decimal.NullDecimal `json:"planned_budget"`
	ActualBudget   decimal.NullDecimal `json:"actual_budget"`
	PlannedRevenue decimal.NullDecimal `json:"planned_revenue"`
	ActualRevenue  decimal.NullDecimal `json:"actual_revenue"`
	USNTax         decimal.NullDecimal `json:"usn_tax"`
	NDSTax         decimal.NullDecimal `json:"nds_tax"`
}

// InvoiceLine is one invoice row with every displayed value inlined.
type InvoiceLine struct {
	ID             string                     `json:"id"`
	Number         string                     `json:"number,omitempty"`
	SupplierName   string                     `json:"supplier_name"`
	Amount         decimal.NullDecimal        `json:"amount"`
	Status         projects.InvoiceStatus     `json:"status"`
	DueDate        *time.Time                 `json:"due_date,omitempty"`
	Overdue        bool                       `json:"overdue"`
	File           projects.FileRef           `json:"file"`
	HasClosingDocs bool                       `json:"has_closing_docs"`
	Documents      []projects.ClosingDocument `json:"documents"`
}

// ProjectReportData is the immutable result of one report build. Apart from
// GeneratedAt it is a pure function of the snapshot it was built from.
type ProjectReportData struct {
	Project          ProjectHeader              `json:"project"`
	Invoices         []InvoiceLine              `json:"invoices"`
	GeneralDocuments []projects.ClosingDocument `json:"general_documents"`
	InvoiceSummary   finance.InvoiceSummary     `json:"invoice_summary"`
	Financial        finance.FinancialSummary   `json:"financial"`
	SupplierSpend    []finance.SupplierSpend    `json:"supplier_spend"`
	Warnings         []string                   `json:"warnings,omitempty"`
	GeneratedAt      time.Time                  `json:"generated_at"`
}

// Artifact is a rendered, self-contained export.
type Artifact struct {
	Format      Format
	ContentType string
	Filename    string
	Body        []byte
}

var (
	// ErrAggregationFailed hides unexpected failures while composing a report.
	ErrAggregationFailed = errors.New("report: aggregation failed")
	// ErrShareNotFound is returned for unknown or expired share tokens.
	ErrShareNotFound = fmt.Errorf("report: shared report %w", httpx.ErrNotFound)
	// ErrPDFUnavailable is returned when no PDF backend is configured.
	ErrPDFUnavailable = fmt.Errorf("report: pdf export %w", httpx.ErrUpstream)
)
