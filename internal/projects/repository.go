package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads project records from Postgres. It is the concrete data
// access gateway behind the report pipeline.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository wrapper.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, name, code, client, COALESCE(department_id,''), planned_budget, actual_budget,
planned_revenue, actual_revenue, usn_tax, nds_tax, status, due_date`

// GetProject loads a project by id.
func (r *Repository) GetProject(ctx context.Context, id string) (Project, error) {
	if r == nil || r.pool == nil {
		return Project{}, fmt.Errorf("projects: repository not initialised")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrProjectNotFound
		}
		return Project{}, err
	}
	return p, nil
}

// ListProjectsByDepartment returns every project attached to the department.
func (r *Repository) ListProjectsByDepartment(ctx context.Context, departmentID string) ([]Project, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("projects: repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects WHERE department_id = $1 ORDER BY name, id`, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListActiveProjectIDs returns ids of projects that are still being worked on.
func (r *Repository) ListActiveProjectIDs(ctx context.Context) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("projects: repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM projects WHERE status NOT IN ('completed','archived') ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const invoiceColumns = `id, project_id, supplier_id, number, amount, status, due_date, file_name, file_url, created_at`

// ListInvoicesByProject returns the project's invoices in creation order.
func (r *Repository) ListInvoicesByProject(ctx context.Context, projectID string) ([]Invoice, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("projects: repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE project_id = $1 ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// GetInvoice loads a single invoice.
func (r *Repository) GetInvoice(ctx context.Context, id string) (Invoice, error) {
	if r == nil || r.pool == nil {
		return Invoice{}, fmt.Errorf("projects: repository not initialised")
	}
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}

const documentColumns = `id, project_id, invoice_id, type, doc_date, uploaded_at, file_name, file_url`

// ListClosingDocumentsByProject returns the project's documents, newest upload first.
func (r *Repository) ListClosingDocumentsByProject(ctx context.Context, projectID string) ([]ClosingDocument, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("projects: repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM closing_documents WHERE project_id = $1 ORDER BY uploaded_at DESC, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ClosingDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// GetClosingDocument loads a single closing document.
func (r *Repository) GetClosingDocument(ctx context.Context, id string) (ClosingDocument, error) {
	if r == nil || r.pool == nil {
		return ClosingDocument{}, fmt.Errorf("projects: repository not initialised")
	}
	doc, err := scanDocument(r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM closing_documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ClosingDocument{}, ErrDocumentNotFound
		}
		return ClosingDocument{}, err
	}
	return doc, nil
}

// LookupSuppliers resolves up to MaxBatchLookup supplier ids. Unknown ids are
// simply absent from the result.
func (r *Repository) LookupSuppliers(ctx context.Context, ids []string) (map[string]Supplier, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("projects: repository not initialised")
	}
	if len(ids) > MaxBatchLookup {
		return nil, ErrBatchTooLarge
	}
	out := make(map[string]Supplier, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM suppliers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}

// GetDepartment loads a department by id.
func (r *Repository) GetDepartment(ctx context.Context, id string) (Department, error) {
	if r == nil || r.pool == nil {
		return Department{}, fmt.Errorf("projects: repository not initialised")
	}
	var d Department
	err := r.pool.QueryRow(ctx, `SELECT id, name, budget FROM departments WHERE id = $1`, id).Scan(&d.ID, &d.Name, &d.Budget)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Department{}, ErrDepartmentNotFound
		}
		return Department{}, err
	}
	return d, nil
}

func scanProject(row pgx.Row) (Project, error) {
	var (
		p   Project
		due *time.Time
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Client, &p.DepartmentID, &p.PlannedBudget, &p.ActualBudget,
		&p.PlannedRevenue, &p.ActualRevenue, &p.USNTax, &p.NDSTax, &p.Status, &due); err != nil {
		return Project{}, err
	}
	p.DueDate = due
	return p, nil
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var (
		inv        Invoice
		supplierID *string
		status     *string
	)
	if err := row.Scan(&inv.ID, &inv.ProjectID, &supplierID, &inv.Number, &inv.Amount, &status, &inv.DueDate,
		&inv.File.Name, &inv.File.URL, &inv.CreatedAt); err != nil {
		return Invoice{}, err
	}
	if supplierID != nil {
		inv.SupplierID = *supplierID
	}
	if status != nil && *status != "" {
		inv.Status = NormaliseInvoiceStatus(*status)
	}
	return inv, nil
}

func scanDocument(row pgx.Row) (ClosingDocument, error) {
	var (
		doc       ClosingDocument
		invoiceID *string
	)
	if err := row.Scan(&doc.ID, &doc.ProjectID, &invoiceID, &doc.Type, &doc.Date, &doc.UploadedAt,
		&doc.File.Name, &doc.File.URL); err != nil {
		return ClosingDocument{}, err
	}
	if invoiceID != nil {
		doc.InvoiceID = *invoiceID
	}
	return doc, nil
}
