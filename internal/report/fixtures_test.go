package report

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetdesk/budgetdesk/internal/projects"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func money(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func daysFromNow(offset int) *time.Time {
	t := fixedNow.AddDate(0, 0, offset)
	return &t
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBuilder() *Builder {
	b := NewBuilder(quietLogger())
	b.WithNow(func() time.Time { return fixedNow })
	return b
}

func scenarioSnapshot() projects.Snapshot {
	return projects.Snapshot{
		Project: projects.Project{
			ID:             "p-a",
			Name:           "Office Fit-out",
			Code:           "OF-1",
			Client:         "Northwind",
			Status:         "active",
			PlannedBudget:  money(100000),
			ActualBudget:   money(120000),
			PlannedRevenue: money(200000),
			ActualRevenue:  money(210000),
			USNTax:         money(3000),
			NDSTax:         money(0),
		},
		Invoices: []projects.Invoice{
			{ID: "i1", ProjectID: "p-a", SupplierID: "s1", Number: "INV-1", Amount: money(50000), Status: projects.InvoicePaid, DueDate: daysFromNow(-10)},
			{ID: "i2", ProjectID: "p-a", SupplierID: "s2", Number: "INV-2", Amount: money(70000), Status: projects.InvoicePendingPayment, DueDate: daysFromNow(-1)},
			{ID: "i3", ProjectID: "p-a", SupplierID: "s1", Number: "INV-3", Amount: money(10000), Status: projects.InvoiceCancelled},
		},
		Suppliers: map[string]projects.Supplier{
			"s1": {ID: "s1", Name: "Acme"},
			"s2": {ID: "s2", Name: "Build Co"},
		},
		Documents: []projects.ClosingDocument{
			{ID: "d1", ProjectID: "p-a", InvoiceID: "i1", Type: "act", UploadedAt: fixedNow.AddDate(0, 0, -3), File: projects.FileRef{Name: "act.pdf", URL: "https://files.example.com/act.pdf"}},
			{ID: "d2", ProjectID: "p-a", Type: "contract", UploadedAt: fixedNow.AddDate(0, 0, -30)},
		},
	}
}

type stubLoader struct {
	snap  projects.Snapshot
	err   error
	calls int
}

func (s *stubLoader) Load(ctx context.Context, projectID string) (projects.Snapshot, error) {
	s.calls++
	if s.err != nil {
		return projects.Snapshot{}, s.err
	}
	return s.snap, nil
}

type stubPDF struct {
	html []byte
	err  error
}

func (s *stubPDF) RenderHTML(ctx context.Context, html []byte) ([]byte, error) {
	s.html = html
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.7 stub"), nil
}

type stubDepartments struct {
	dept     projects.Department
	projects []projects.Project
	err      error
}

func (s *stubDepartments) GetDepartment(ctx context.Context, id string) (projects.Department, error) {
	if s.err != nil {
		return projects.Department{}, s.err
	}
	return s.dept, nil
}

func (s *stubDepartments) ListProjectsByDepartment(ctx context.Context, departmentID string) ([]projects.Project, error) {
	return s.projects, nil
}
