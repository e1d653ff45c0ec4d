// Package seed loads a demo project into an empty database.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/budgetdesk/budgetdesk/internal/platform/db"
	"github.com/budgetdesk/budgetdesk/internal/projects"
)

var namespace = uuid.MustParse("6f1c2b8e-4d0a-4e7b-9a55-3c2f1e0d9b71")

// ID derives a stable identifier so reseeding does not duplicate rows.
func ID(kind, key string) string {
	return uuid.NewSHA1(namespace, []byte(kind+":"+key)).String()
}

// Dataset is everything the demo inserts.
type Dataset struct {
	Department projects.Department
	Project    projects.Project
	Suppliers  []projects.Supplier
	Invoices   []projects.Invoice
	Documents  []projects.ClosingDocument
}

func amount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// Demo builds the office fit-out project: planned budget 100 000, actual
// 120 000, three invoices one of which is cancelled.
func Demo(now time.Time) Dataset {
	day := func(offset int) *time.Time {
		t := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		return &t
	}
	dept := projects.Department{ID: ID("department", "fitout"), Name: "Fit-out", Budget: amount(500000)}
	acme := projects.Supplier{ID: ID("supplier", "acme"), Name: "Acme Interiors"}
	build := projects.Supplier{ID: ID("supplier", "buildco"), Name: "Build Co"}
	project := projects.Project{
		ID:             ID("project", "office-fitout"),
		Name:           "Office Fit-out",
		Code:           "OF-1",
		Client:         "Northwind",
		DepartmentID:   dept.ID,
		PlannedBudget:  amount(100000),
		ActualBudget:   amount(120000),
		PlannedRevenue: amount(200000),
		ActualRevenue:  amount(210000),
		USNTax:         amount(3000),
		NDSTax:         amount(0),
		Status:         "active",
		DueDate:        day(45),
	}
	paid := projects.Invoice{
		ID: ID("invoice", "inv-1"), ProjectID: project.ID, SupplierID: acme.ID, Number: "INV-1",
		Amount: amount(50000), Status: projects.InvoicePaid, DueDate: day(-20),
		File: projects.FileRef{Name: "inv-1.pdf"}, CreatedAt: now.AddDate(0, 0, -30),
	}
	pending := projects.Invoice{
		ID: ID("invoice", "inv-2"), ProjectID: project.ID, SupplierID: build.ID, Number: "INV-2",
		Amount: amount(70000), Status: projects.InvoicePendingPayment, DueDate: day(-2),
		File: projects.FileRef{Name: "inv-2.pdf"}, CreatedAt: now.AddDate(0, 0, -15),
	}
	cancelled := projects.Invoice{
		ID: ID("invoice", "inv-3"), ProjectID: project.ID, SupplierID: acme.ID, Number: "INV-3",
		Amount: amount(10000), Status: projects.InvoiceCancelled,
		CreatedAt: now.AddDate(0, 0, -10),
	}
	return Dataset{
		Department: dept,
		Project:    project,
		Suppliers:  []projects.Supplier{acme, build},
		Invoices:   []projects.Invoice{paid, pending, cancelled},
		Documents: []projects.ClosingDocument{
			{ID: ID("document", "act-1"), ProjectID: project.ID, InvoiceID: paid.ID, Type: "act", Date: day(-18), UploadedAt: now.AddDate(0, 0, -18), File: projects.FileRef{Name: "act-1.pdf"}},
			{ID: ID("document", "contract"), ProjectID: project.ID, Type: "contract", Date: day(-60), UploadedAt: now.AddDate(0, 0, -60), File: projects.FileRef{Name: "contract.pdf"}},
		},
	}
}

// Apply inserts the dataset in one transaction. Existing rows are left alone.
func Apply(ctx context.Context, pool *pgxpool.Pool, ds Dataset) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		return insert(ctx, tx, ds)
	})
}

func insert(ctx context.Context, tx pgx.Tx, ds Dataset) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO departments (id, name, budget) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		ds.Department.ID, ds.Department.Name, ds.Department.Budget); err != nil {
		return fmt.Errorf("seed department: %w", err)
	}
	p := ds.Project
	if _, err := tx.Exec(ctx, `INSERT INTO projects
		(id, name, code, client, department_id, planned_budget, actual_budget, planned_revenue, actual_revenue, usn_tax, nds_tax, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Name, p.Code, p.Client, p.DepartmentID, p.PlannedBudget, p.ActualBudget, p.PlannedRevenue, p.ActualRevenue, p.USNTax, p.NDSTax, p.Status, p.DueDate); err != nil {
		return fmt.Errorf("seed project: %w", err)
	}
	for _, s := range ds.Suppliers {
		if _, err := tx.Exec(ctx, `INSERT INTO suppliers (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, s.ID, s.Name); err != nil {
			return fmt.Errorf("seed supplier %s: %w", s.Name, err)
		}
	}
	for _, inv := range ds.Invoices {
		if _, err := tx.Exec(ctx, `INSERT INTO invoices
			(id, project_id, supplier_id, number, amount, status, due_date, file_url, file_name, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) ON CONFLICT (id) DO NOTHING`,
			inv.ID, inv.ProjectID, inv.SupplierID, inv.Number, inv.Amount, string(inv.Status), inv.DueDate, inv.File.URL, inv.File.Name, inv.CreatedAt); err != nil {
			return fmt.Errorf("seed invoice %s: %w", inv.Number, err)
		}
	}
	for _, doc := range ds.Documents {
		var invoiceID *string
		if !doc.IsGeneral() {
			invoiceID = &doc.InvoiceID
		}
		if _, err := tx.Exec(ctx, `INSERT INTO closing_documents
			(id, project_id, invoice_id, type, doc_date, uploaded_at, file_url, file_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`,
			doc.ID, doc.ProjectID, invoiceID, doc.Type, doc.Date, doc.UploadedAt, doc.File.URL, doc.File.Name); err != nil {
			return fmt.Errorf("seed document %s: %w", doc.Type, err)
		}
	}
	return nil
}
