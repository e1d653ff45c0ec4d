package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/budgetdesk/budgetdesk/internal/projects"
)

func TestCheckDocumentCompleteness(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	invoices := []projects.Invoice{{ID: "i1"}, {ID: "i2"}}
	docs := []projects.ClosingDocument{
		{ID: "d1", InvoiceID: "i1", UploadedAt: base},
		{ID: "d2", InvoiceID: "i1", UploadedAt: base.Add(48 * time.Hour)},
		{ID: "g1", UploadedAt: base.Add(time.Hour)},
		{ID: "orphan", InvoiceID: "deleted", UploadedAt: base},
	}
	c := CheckDocumentCompleteness(invoices, docs)

	i1 := c.For("i1")
	require.True(t, i1.HasClosingDocs)
	require.Equal(t, "d2", i1.Documents[0].ID)
	require.Equal(t, "d1", i1.Documents[1].ID)

	require.False(t, c.For("i2").HasClosingDocs)
	require.Empty(t, c.For("i2").Documents)
	require.False(t, c.For("unknown").HasClosingDocs)

	require.Len(t, c.General, 1)
	require.Equal(t, "g1", c.General[0].ID)
	require.Equal(t, []string{"i2"}, c.MissingDocuments(invoices))
}

func TestGeneralDocumentDoesNotMarkInvoices(t *testing.T) {
	invoices := []projects.Invoice{{ID: "i1"}}
	c := CheckDocumentCompleteness(invoices, []projects.ClosingDocument{{ID: "g", UploadedAt: time.Now()}})
	require.False(t, c.For("i1").HasClosingDocs)
	require.Len(t, c.General, 1)
}
