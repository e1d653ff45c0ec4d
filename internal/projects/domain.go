package projects

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetdesk/budgetdesk/internal/platform/httpx"
)

// MaxBatchLookup is the largest id set the store accepts in one lookup.
const MaxBatchLookup = 30

// InvoiceStatus is the stored lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoicePendingPayment InvoiceStatus = "pending_payment"
	InvoicePaid           InvoiceStatus = "paid"
	InvoiceOverdue        InvoiceStatus = "overdue"
	InvoiceCancelled      InvoiceStatus = "cancelled"
	// InvoiceUnknown is the synthetic bucket for invoices without a stored status.
	InvoiceUnknown InvoiceStatus = "unknown"
)

// InvoiceStatuses lists the known statuses in display order.
var InvoiceStatuses = []InvoiceStatus{InvoicePendingPayment, InvoicePaid, InvoiceOverdue, InvoiceCancelled, InvoiceUnknown}

// NormaliseInvoiceStatus lowercases and trims a raw status. Empty or
// unrecognised values map to InvoiceUnknown.
func NormaliseInvoiceStatus(v string) InvoiceStatus {
	switch s := InvoiceStatus(strings.ToLower(strings.TrimSpace(v))); s {
	case InvoicePendingPayment, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return s
	default:
		return InvoiceUnknown
	}
}

// FileRef points at an uploaded attachment in blob storage. URLs may be
// signed and expire.
type FileRef struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Project is a billable engagement. Every money field is optional: an
// invalid NullDecimal means "no data", which is not the same as zero.
type Project struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Code           string              `json:"code,omitempty"`
	Client         string              `json:"client,omitempty"`
	DepartmentID   string              `json:"department_id,omitempty"`
	PlannedBudget  decimal.NullDecimal `json:"planned_budget"`
	ActualBudget   decimal.NullDecimal `json:"actual_budget"`
	PlannedRevenue decimal.NullDecimal `json:"planned_revenue"`
	ActualRevenue  decimal.NullDecimal `json:"actual_revenue"`
	USNTax         decimal.NullDecimal `json:"usn_tax"`
	NDSTax         decimal.NullDecimal `json:"nds_tax"`
	Status         string              `json:"status"`
	DueDate        *time.Time          `json:"due_date,omitempty"`
}

// Invoice is a supplier bill that belongs to exactly one project.
type Invoice struct {
	ID         string              `json:"id"`
	ProjectID  string              `json:"project_id"`
	SupplierID string              `json:"supplier_id,omitempty"`
	Number     string              `json:"number,omitempty"`
	Amount     decimal.NullDecimal `json:"amount"`
	Status     InvoiceStatus       `json:"status,omitempty"`
	DueDate    *time.Time          `json:"due_date,omitempty"`
	File       FileRef             `json:"file"`
	CreatedAt  time.Time           `json:"created_at"`
}

// StoredStatus returns the persisted status, or InvoiceUnknown when absent.
func (i Invoice) StoredStatus() InvoiceStatus {
	if i.Status == "" {
		return InvoiceUnknown
	}
	return i.Status
}

// Supplier is referenced by invoices through SupplierID.
type Supplier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClosingDocument evidences completion of a billed obligation. An empty
// InvoiceID marks a general, project-level document.
type ClosingDocument struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"project_id"`
	InvoiceID  string     `json:"invoice_id,omitempty"`
	Type       string     `json:"type"`
	Date       *time.Time `json:"date,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at"`
	File       FileRef    `json:"file"`
}

// IsGeneral reports whether the document is not tied to an invoice.
func (d ClosingDocument) IsGeneral() bool {
	return strings.TrimSpace(d.InvoiceID) == ""
}

// Department owns a budget that its projects draw from.
type Department struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Budget decimal.NullDecimal `json:"budget"`
}

// Snapshot is one consistent, immutable view of a project and its records.
type Snapshot struct {
	Project   Project
	Invoices  []Invoice
	Suppliers map[string]Supplier
	Documents []ClosingDocument
	// Warnings collects degraded fetches that did not abort the load.
	Warnings []string
}

var (
	ErrProjectNotFound    = fmt.Errorf("projects: project %w", httpx.ErrNotFound)
	ErrInvoiceNotFound    = fmt.Errorf("projects: invoice %w", httpx.ErrNotFound)
	ErrDocumentNotFound   = fmt.Errorf("projects: closing document %w", httpx.ErrNotFound)
	ErrDepartmentNotFound = fmt.Errorf("projects: department %w", httpx.ErrNotFound)
	ErrBatchTooLarge      = fmt.Errorf("projects: batch lookup exceeds %d ids", MaxBatchLookup)
)
