package finance

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/budgetdesk/budgetdesk/internal/projects"
)

func TestIsOverdue(t *testing.T) {
	cases := []struct {
		name string
		inv  projects.Invoice
		want bool
	}{
		{"pending past due", projects.Invoice{Status: projects.InvoicePendingPayment, DueDate: day(-1)}, true},
		{"pending future", projects.Invoice{Status: projects.InvoicePendingPayment, DueDate: day(1)}, false},
		{"paid past due", projects.Invoice{Status: projects.InvoicePaid, DueDate: day(-10)}, false},
		{"cancelled past due", projects.Invoice{Status: projects.InvoiceCancelled, DueDate: day(-10)}, false},
		{"stored overdue without date", projects.Invoice{Status: projects.InvoiceOverdue}, true},
		{"unknown status past due", projects.Invoice{DueDate: day(-3)}, true},
		{"no due date", projects.Invoice{Status: projects.InvoicePendingPayment}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsOverdue(tc.inv, testNow))
		})
	}
}

func TestComputeInvoiceSummaryPendingPastDue(t *testing.T) {
	invoices := []projects.Invoice{
		{ID: "b", Status: projects.InvoicePendingPayment, DueDate: day(-1), Amount: num(700)},
	}
	s := ComputeInvoiceSummary(invoices, testNow)
	require.Equal(t, 1, s.OverdueCount)
	require.Equal(t, 1, s.CountByStatus[projects.InvoicePendingPayment])
	require.Zero(t, s.CountByStatus[projects.InvoiceOverdue])
	requireDecimal(t, "700", s.PendingAmount)
}

func TestComputeInvoiceSummaryCountsOverdueOnce(t *testing.T) {
	invoices := []projects.Invoice{
		{ID: "x", Status: projects.InvoiceOverdue, DueDate: day(-5)},
	}
	s := ComputeInvoiceSummary(invoices, testNow)
	require.Equal(t, 1, s.OverdueCount)
	require.Equal(t, 1, s.CountByStatus[projects.InvoiceOverdue])
}

func TestComputeInvoiceSummaryPendingAmount(t *testing.T) {
	invoices := []projects.Invoice{
		{Status: projects.InvoicePendingPayment, Amount: num(100)},
		{Status: projects.InvoicePendingPayment},
		{Status: projects.InvoicePaid, Amount: num(900)},
		{Amount: num(5)},
	}
	s := ComputeInvoiceSummary(invoices, testNow)
	requireDecimal(t, "100", s.PendingAmount)
	require.Equal(t, 1, s.CountByStatus[projects.InvoiceUnknown])
	require.Equal(t, 4, s.Total)
}

func TestComputeInvoiceSummaryCountsAddUp(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := append([]projects.InvoiceStatus{""}, projects.InvoiceStatuses...)
	for round := 0; round < 50; round++ {
		n := rng.Intn(40)
		invoices := make([]projects.Invoice, n)
		for i := range invoices {
			invoices[i] = projects.Invoice{
				Status: statuses[rng.Intn(len(statuses))],
				Amount: num(int64(rng.Intn(1000))),
			}
			if rng.Intn(2) == 0 {
				invoices[i].DueDate = day(rng.Intn(20) - 10)
			}
		}
		s := ComputeInvoiceSummary(invoices, testNow)
		sum := 0
		for _, c := range s.CountByStatus {
			sum += c
		}
		require.Equal(t, n, sum)
		require.LessOrEqual(t, s.OverdueCount, n)
	}
}

func TestNonCancelled(t *testing.T) {
	out := NonCancelled(scenarioInvoices())
	require.Len(t, out, 2)
	for _, inv := range out {
		require.NotEqual(t, projects.InvoiceCancelled, inv.Status)
	}
}
