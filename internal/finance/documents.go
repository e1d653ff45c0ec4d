package finance

import (
	"sort"

	"github.com/budgetdesk/budgetdesk/internal/projects"
)

// InvoiceDocuments is the completeness state of one invoice.
type InvoiceDocuments struct {
	HasClosingDocs bool                       `json:"has_closing_docs"`
	Documents      []projects.ClosingDocument `json:"documents"`
}

// DocumentCompleteness groups closing documents by invoice.
type DocumentCompleteness struct {
	ByInvoice map[string]InvoiceDocuments `json:"by_invoice"`
	// General holds project-level documents not tied to any invoice.
	General []projects.ClosingDocument `json:"general"`
}

// For returns the entry for an invoice; unknown invoices have no documents.
func (c DocumentCompleteness) For(invoiceID string) InvoiceDocuments {
	if entry, ok := c.ByInvoice[invoiceID]; ok {
		return entry
	}
	return InvoiceDocuments{Documents: []projects.ClosingDocument{}}
}

// MissingDocuments lists invoices that have no closing documents.
func (c DocumentCompleteness) MissingDocuments(invoices []projects.Invoice) []string {
	var ids []string
	for _, inv := range invoices {
		if !c.For(inv.ID).HasClosingDocs {
			ids = append(ids, inv.ID)
		}
	}
	return ids
}

// CheckDocumentCompleteness attaches documents to invoices, newest upload first.
func CheckDocumentCompleteness(invoices []projects.Invoice, documents []projects.ClosingDocument) DocumentCompleteness {
	grouped := make(map[string][]projects.ClosingDocument)
	general := make([]projects.ClosingDocument, 0)
	for _, doc := range documents {
		if doc.IsGeneral() {
			general = append(general, doc)
			continue
		}
		grouped[doc.InvoiceID] = append(grouped[doc.InvoiceID], doc)
	}

	result := DocumentCompleteness{
		ByInvoice: make(map[string]InvoiceDocuments, len(invoices)),
		General:   sortNewestFirst(general),
	}
	for _, inv := range invoices {
		docs := sortNewestFirst(grouped[inv.ID])
		result.ByInvoice[inv.ID] = InvoiceDocuments{HasClosingDocs: len(docs) > 0, Documents: docs}
	}
	return result
}

func sortNewestFirst(docs []projects.ClosingDocument) []projects.ClosingDocument {
	out := make([]projects.ClosingDocument, len(docs))
	copy(out, docs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
