package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/budgetdesk/budgetdesk/internal/projects"
)

// UnknownSupplierLabel replaces supplier names that cannot be resolved.
const UnknownSupplierLabel = "Unknown supplier"

// SupplierSpend is one row of the supplier spend table.
type SupplierSpend struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// SupplierName resolves the display name for an invoice's supplier.
func SupplierName(inv projects.Invoice, suppliers map[string]projects.Supplier) (string, bool) {
	if inv.SupplierID == "" {
		return UnknownSupplierLabel, false
	}
	sup, ok := suppliers[inv.SupplierID]
	if !ok || sup.Name == "" {
		return UnknownSupplierLabel, false
	}
	return sup.Name, true
}

// UnresolvedSupplierIDs lists distinct supplier ids referenced by invoices but
// missing from the lookup, in first-seen order.
func UnresolvedSupplierIDs(invoices []projects.Invoice, suppliers map[string]projects.Supplier) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, inv := range invoices {
		if inv.SupplierID == "" {
			continue
		}
		if _, ok := suppliers[inv.SupplierID]; ok {
			continue
		}
		if _, dup := seen[inv.SupplierID]; dup {
			continue
		}
		seen[inv.SupplierID] = struct{}{}
		out = append(out, inv.SupplierID)
	}
	return out
}

// AggregateSupplierSpend sums non-cancelled invoice amounts per supplier name,
// largest first and ties by name. Invoices without an amount are skipped;
// unresolved suppliers are grouped under UnknownSupplierLabel.
func AggregateSupplierSpend(invoices []projects.Invoice, suppliers map[string]projects.Supplier) []SupplierSpend {
	totals := make(map[string]decimal.Decimal)
	for _, inv := range invoices {
		if inv.StoredStatus() == projects.InvoiceCancelled || !inv.Amount.Valid {
			continue
		}
		name, _ := SupplierName(inv, suppliers)
		totals[name] = totals[name].Add(inv.Amount.Decimal)
	}
	rows := make([]SupplierSpend, 0, len(totals))
	for name, amount := range totals {
		rows = append(rows, SupplierSpend{Name: name, Amount: amount})
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Amount.Cmp(rows[j].Amount); c != 0 {
			return c > 0
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
