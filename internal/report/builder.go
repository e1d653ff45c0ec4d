package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/budgetdesk/budgetdesk/internal/finance"
	"github.com/budgetdesk/budgetdesk/internal/projects"
)

// Builder composes ProjectReportData from a snapshot. It performs no I/O.
type Builder struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewBuilder constructs a Builder instance.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{now: time.Now, logger: logger}
}

// WithNow overrides the clock for deterministic tests.
func (b *Builder) WithNow(now func() time.Time) {
	if now != nil {
		b.now = now
	}
}

// Build assembles the report from a loaded snapshot.
func (b *Builder) Build(snap projects.Snapshot) (ProjectReportData, error) {
	return b.BuildReport(snap.Project, snap.Invoices, snap.Suppliers, snap.Documents, snap.Warnings...)
}

// BuildReport merges every aggregation into one value. Either the whole
// report is produced or ErrAggregationFailed is returned.
func (b *Builder) BuildReport(project projects.Project, invoices []projects.Invoice, suppliers map[string]projects.Supplier, documents []projects.ClosingDocument, warnings ...string) (data ProjectReportData, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("report aggregation panic", slog.String("project_id", project.ID), slog.Any("panic", r))
			data = ProjectReportData{}
			err = fmt.Errorf("%w: project %s", ErrAggregationFailed, project.ID)
		}
	}()

	generatedAt := b.now()
	nonCancelled := finance.NonCancelled(invoices)
	completeness := finance.CheckDocumentCompleteness(invoices, documents)

	lines := make([]InvoiceLine, 0, len(invoices))
	for _, inv := range invoices {
		name, _ := finance.SupplierName(inv, suppliers)
		docs := completeness.For(inv.ID)
		lines = append(lines, InvoiceLine{
			ID:             inv.ID,
			Number:         inv.Number,
			SupplierName:   name,
			Amount:         inv.Amount,
			Status:         inv.StoredStatus(),
			DueDate:        inv.DueDate,
			Overdue:        finance.IsOverdue(inv, generatedAt),
			File:           inv.File,
			HasClosingDocs: docs.HasClosingDocs,
			Documents:      docs.Documents,
		})
	}

	allWarnings := append([]string(nil), warnings...)
	for _, id := range finance.UnresolvedSupplierIDs(invoices, suppliers) {
		b.logger.Warn("unresolved supplier reference", slog.String("project_id", project.ID), slog.String("supplier_id", id))
		allWarnings = append(allWarnings, fmt.Sprintf("supplier %s could not be resolved", id))
	}

	return ProjectReportData{
		Project: ProjectHeader{
			ID:             project.ID,
			Name:           project.Name,
			Code:           project.Code,
			Client:         project.Client,
			Status:         project.Status,
			DueDate:        project.DueDate,
			PlannedBudget:  project.PlannedBudget,
			ActualBudget:   project.ActualBudget,
			PlannedRevenue: project.PlannedRevenue,
			ActualRevenue:  project.ActualRevenue,
			USNTax:         project.USNTax,
			NDSTax:         project.NDSTax,
		},
		Invoices:         lines,
		GeneralDocuments: completeness.General,
		InvoiceSummary:   finance.ComputeInvoiceSummary(invoices, generatedAt),
		Financial:        finance.ComputeFinancialSummary(project, nonCancelled),
		SupplierSpend:    finance.AggregateSupplierSpend(invoices, suppliers),
		Warnings:         allWarnings,
		GeneratedAt:      generatedAt,
	}, nil
}
