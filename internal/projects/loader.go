package projects

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/budgetdesk/budgetdesk/internal/platform/batch"
)

// Store is the read side of the data access gateway used by the loader.
type Store interface {
	GetProject(ctx context.Context, id string) (Project, error)
	ListInvoicesByProject(ctx context.Context, projectID string) ([]Invoice, error)
	ListClosingDocumentsByProject(ctx context.Context, projectID string) ([]ClosingDocument, error)
	LookupSuppliers(ctx context.Context, ids []string) (map[string]Supplier, error)
}

// Loader assembles a Snapshot from independent gateway fetches.
type Loader struct {
	store     Store
	logger    *slog.Logger
	batchSize int
}

// NewLoader constructs a Loader. batchSize is capped at MaxBatchLookup.
func NewLoader(store Store, logger *slog.Logger, batchSize int) *Loader {
	if batchSize <= 0 || batchSize > MaxBatchLookup {
		batchSize = MaxBatchLookup
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, logger: logger, batchSize: batchSize}
}

// Load fetches the project, its invoices, their suppliers and its closing
// documents. A missing project or a failed invoice/document query aborts;
// supplier lookup failures only degrade the snapshot.
func (l *Loader) Load(ctx context.Context, projectID string) (Snapshot, error) {
	if l == nil || l.store == nil {
		return Snapshot{}, fmt.Errorf("projects: loader not configured")
	}
	var (
		snap     Snapshot
		warnings []string
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		project, err := l.store.GetProject(gctx, projectID)
		if err != nil {
			return err
		}
		snap.Project = project
		return nil
	})

	g.Go(func() error {
		invoices, err := l.store.ListInvoicesByProject(gctx, projectID)
		if err != nil {
			return fmt.Errorf("projects: list invoices: %w", err)
		}
		snap.Invoices = invoices
		suppliers, warn := l.resolveSuppliers(gctx, projectID, invoices)
		snap.Suppliers = suppliers
		warnings = append(warnings, warn...)
		return nil
	})

	g.Go(func() error {
		docs, err := l.store.ListClosingDocumentsByProject(gctx, projectID)
		if err != nil {
			return fmt.Errorf("projects: list closing documents: %w", err)
		}
		snap.Documents = docs
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.Warnings = warnings
	return snap, nil
}

func (l *Loader) resolveSuppliers(ctx context.Context, projectID string, invoices []Invoice) (map[string]Supplier, []string) {
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.SupplierID)
	}
	suppliers, err := batch.Fetch(ctx, ids, batch.Options{ChunkSize: l.batchSize}, l.store.LookupSuppliers)
	if err == nil {
		return suppliers, nil
	}
	// A cancelled load is aborted by its caller; nothing is degraded.
	if ctx.Err() != nil {
		return suppliers, nil
	}
	l.logger.Warn("supplier lookup degraded",
		slog.String("project_id", projectID),
		slog.Int("resolved", len(suppliers)),
		slog.Any("error", err))
	return suppliers, []string{fmt.Sprintf("supplier lookup incomplete: %d resolved", len(suppliers))}
}
