package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/budgetdesk/budgetdesk/internal/finance"
	"github.com/budgetdesk/budgetdesk/internal/projects"
)

// SnapshotLoader fetches everything a report needs for one project.
type SnapshotLoader interface {
	Load(ctx context.Context, projectID string) (projects.Snapshot, error)
}

// DepartmentSource exposes the department lookups for budget rollups.
type DepartmentSource interface {
	GetDepartment(ctx context.Context, id string) (projects.Department, error)
	ListProjectsByDepartment(ctx context.Context, departmentID string) ([]projects.Project, error)
}

// RecordSource loads individually requested records.
type RecordSource interface {
	GetInvoice(ctx context.Context, id string) (projects.Invoice, error)
	GetClosingDocument(ctx context.Context, id string) (projects.ClosingDocument, error)
}

// PDFClient converts rendered HTML into PDF bytes.
type PDFClient interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

// Sharer persists frozen artifacts behind tokens.
type Sharer interface {
	Save(ctx context.Context, projectID string, artifact Artifact) (ShareLink, error)
	Load(ctx context.Context, token string) (Artifact, error)
}

// Service orchestrates loading, composing and rendering project reports.
type Service struct {
	loader      SnapshotLoader
	departments DepartmentSource
	records     RecordSource
	builder     *Builder
	renderer    *Renderer
	pdf         PDFClient
	shares      Sharer
	metrics     *Metrics
	logger      *slog.Logger
}

// Options carries the optional collaborators of a Service.
type Options struct {
	Departments DepartmentSource
	Records     RecordSource
	PDF         PDFClient
	Shares      Sharer
	Metrics     *Metrics
	Logger      *slog.Logger
}

// NewService constructs a Service instance.
func NewService(loader SnapshotLoader, builder *Builder, renderer *Renderer, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		loader:      loader,
		departments: opts.Departments,
		records:     opts.Records,
		builder:     builder,
		renderer:    renderer,
		pdf:         opts.PDF,
		shares:      opts.Shares,
		metrics:     opts.Metrics,
		logger:      logger,
	}
}

// Generate loads the project and composes its report. Every call rebuilds
// from a fresh snapshot.
func (s *Service) Generate(ctx context.Context, projectID string) (ProjectReportData, error) {
	start := time.Now()
	snap, err := s.loader.Load(ctx, projectID)
	if err != nil {
		s.metrics.observeBuild(start, 0, err)
		return ProjectReportData{}, err
	}
	data, err := s.builder.Build(snap)
	s.metrics.observeBuild(start, len(data.Warnings), err)
	if err != nil {
		return ProjectReportData{}, err
	}
	if len(data.Warnings) > 0 {
		s.logger.Warn("project report degraded", slog.String("project_id", projectID), slog.Int("warnings", len(data.Warnings)))
	}
	return data, nil
}

// Export renders an already composed report in the requested format.
func (s *Service) Export(ctx context.Context, data ProjectReportData, format Format) (artifact Artifact, err error) {
	defer func() { s.metrics.observeExport(format, err) }()
	switch format {
	case FormatJSON:
		return s.renderer.JSON(data)
	case FormatHTML:
		return s.renderer.Render(data)
	case FormatPDF:
		if s.pdf == nil {
			return Artifact{}, ErrPDFUnavailable
		}
		html, err := s.renderer.HTML(data)
		if err != nil {
			return Artifact{}, err
		}
		body, err := s.pdf.RenderHTML(ctx, html)
		if err != nil {
			return Artifact{}, fmt.Errorf("report: render pdf: %w", err)
		}
		return Artifact{
			Format:      FormatPDF,
			ContentType: "application/pdf",
			Filename:    Filename(data, FormatPDF),
			Body:        body,
		}, nil
	default:
		_, err := ParseFormat(string(format))
		return Artifact{}, err
	}
}

// GenerateArtifact composes and renders a project report in one step.
func (s *Service) GenerateArtifact(ctx context.Context, projectID string, format Format) (Artifact, error) {
	data, err := s.Generate(ctx, projectID)
	if err != nil {
		return Artifact{}, err
	}
	return s.Export(ctx, data, format)
}

// Share freezes the current HTML report and returns a link token.
func (s *Service) Share(ctx context.Context, projectID string) (ShareLink, error) {
	if s.shares == nil {
		return ShareLink{}, fmt.Errorf("report: sharing not configured")
	}
	artifact, err := s.GenerateArtifact(ctx, projectID, FormatHTML)
	if err != nil {
		return ShareLink{}, err
	}
	link, err := s.shares.Save(ctx, projectID, artifact)
	if err != nil {
		return ShareLink{}, err
	}
	s.logger.Info("project report shared", slog.String("project_id", projectID), slog.Time("expires_at", link.ExpiresAt))
	return link, nil
}

// OpenShare returns a frozen artifact by token.
func (s *Service) OpenShare(ctx context.Context, token string) (Artifact, error) {
	if s.shares == nil {
		return Artifact{}, ErrShareNotFound
	}
	return s.shares.Load(ctx, token)
}

// InvoiceSummary returns the invoice status tally of a project.
func (s *Service) InvoiceSummary(ctx context.Context, projectID string) (finance.InvoiceSummary, error) {
	data, err := s.Generate(ctx, projectID)
	if err != nil {
		return finance.InvoiceSummary{}, err
	}
	return data.InvoiceSummary, nil
}

// FinancialSummary returns the plan/fact metrics of a project.
func (s *Service) FinancialSummary(ctx context.Context, projectID string) (finance.FinancialSummary, error) {
	data, err := s.Generate(ctx, projectID)
	if err != nil {
		return finance.FinancialSummary{}, err
	}
	return data.Financial, nil
}

// DepartmentBudget rolls the department's projects up against its budget.
func (s *Service) DepartmentBudget(ctx context.Context, departmentID string) (finance.DepartmentBudget, error) {
	if s.departments == nil {
		return finance.DepartmentBudget{}, fmt.Errorf("report: department source not configured")
	}
	dept, err := s.departments.GetDepartment(ctx, departmentID)
	if err != nil {
		return finance.DepartmentBudget{}, err
	}
	list, err := s.departments.ListProjectsByDepartment(ctx, departmentID)
	if err != nil {
		return finance.DepartmentBudget{}, err
	}
	return finance.ComputeDepartmentBudget(dept, list), nil
}

// InvoiceDetail is a single invoice with its overdue flag resolved.
type InvoiceDetail struct {
	projects.Invoice
	Overdue bool `json:"overdue"`
}

// Invoice returns one invoice; a missing id is projects.ErrInvoiceNotFound.
func (s *Service) Invoice(ctx context.Context, id string) (InvoiceDetail, error) {
	if s.records == nil {
		return InvoiceDetail{}, fmt.Errorf("report: record source not configured")
	}
	inv, err := s.records.GetInvoice(ctx, id)
	if err != nil {
		return InvoiceDetail{}, err
	}
	return InvoiceDetail{Invoice: inv, Overdue: finance.IsOverdue(inv, s.builder.now())}, nil
}

// Document returns one closing document; a missing id is projects.ErrDocumentNotFound.
func (s *Service) Document(ctx context.Context, id string) (projects.ClosingDocument, error) {
	if s.records == nil {
		return projects.ClosingDocument{}, fmt.Errorf("report: record source not configured")
	}
	return s.records.GetClosingDocument(ctx, id)
}
