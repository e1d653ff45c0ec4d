package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetdesk/budgetdesk/internal/projects"
)

// InvoiceSummary tallies invoices by stored status.
type InvoiceSummary struct {
	CountByStatus map[projects.InvoiceStatus]int `json:"count_by_status"`
	OverdueCount  int                            `json:"overdue_count"`
	PendingAmount decimal.Decimal                `json:"pending_amount"`
	Total         int                            `json:"total"`
}

// IsOverdue reports whether the invoice is past due and still open, or is
// explicitly stored as overdue.
func IsOverdue(inv projects.Invoice, now time.Time) bool {
	status := inv.StoredStatus()
	if status == projects.InvoiceOverdue {
		return true
	}
	if inv.DueDate == nil || status == projects.InvoicePaid || status == projects.InvoiceCancelled {
		return false
	}
	return inv.DueDate.Before(now)
}

// ComputeInvoiceSummary classifies invoices. CountByStatus follows the stored
// status only; the overdue flag is counted separately and at most once per
// invoice.
func ComputeInvoiceSummary(invoices []projects.Invoice, now time.Time) InvoiceSummary {
	summary := InvoiceSummary{
		CountByStatus: make(map[projects.InvoiceStatus]int, len(projects.InvoiceStatuses)),
		PendingAmount: decimal.Zero,
		Total:         len(invoices),
	}
	for _, inv := range invoices {
		status := inv.StoredStatus()
		summary.CountByStatus[status]++
		if IsOverdue(inv, now) {
			summary.OverdueCount++
		}
		if status == projects.InvoicePendingPayment {
			summary.PendingAmount = summary.PendingAmount.Add(OrZero(inv.Amount))
		}
	}
	return summary
}

// NonCancelled returns the invoices whose stored status is not cancelled.
func NonCancelled(invoices []projects.Invoice) []projects.Invoice {
	out := make([]projects.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.StoredStatus() == projects.InvoiceCancelled {
			continue
		}
		out = append(out, inv)
	}
	return out
}
