package finance

import (
	"github.com/shopspring/decimal"

	"github.com/budgetdesk/budgetdesk/internal/projects"
)

// FinancialSummary holds the plan/fact metrics of one project. Optional
// fields are invalid when an input they depend on is missing.
type FinancialSummary struct {
	InvoicesTotal decimal.Decimal `json:"invoices_total"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	TotalSpent    decimal.Decimal `json:"total_spent"`

	RemainingCost decimal.NullDecimal `json:"remaining_cost"`
	// CostUsagePercent is TotalSpent relative to the actual budget, unbounded.
	CostUsagePercent decimal.NullDecimal `json:"cost_usage_percent"`

	BudgetVariance         decimal.NullDecimal `json:"budget_variance"`
	BudgetVariancePercent  decimal.NullDecimal `json:"budget_variance_percent"`
	RevenueVariance        decimal.NullDecimal `json:"revenue_variance"`
	RevenueVariancePercent decimal.NullDecimal `json:"revenue_variance_percent"`

	PlannedMargin         decimal.NullDecimal `json:"planned_margin"`
	ActualMargin          decimal.NullDecimal `json:"actual_margin"`
	MarginVariancePercent decimal.NullDecimal `json:"margin_variance_percent"`

	GrossProfit        decimal.NullDecimal `json:"gross_profit"`
	EstimatedNetProfit decimal.NullDecimal `json:"estimated_net_profit"`
}

// ComputeFinancialSummary derives the project's metrics. invoices must already
// exclude cancelled ones (see NonCancelled); a cancelled invoice that slips
// through is ignored anyway. Margins are gross, before tax; taxes only reduce
// TotalSpent and EstimatedNetProfit.
func ComputeFinancialSummary(project projects.Project, invoices []projects.Invoice) FinancialSummary {
	invoicesTotal := decimal.Zero
	for _, inv := range invoices {
		if inv.StoredStatus() == projects.InvoiceCancelled {
			continue
		}
		invoicesTotal = invoicesTotal.Add(OrZero(inv.Amount))
	}
	taxTotal := OrZero(project.USNTax).Add(OrZero(project.NDSTax))
	totalSpent := invoicesTotal.Add(taxTotal)

	budgetVariance := Sub(project.ActualBudget, project.PlannedBudget)
	revenueVariance := Sub(project.ActualRevenue, project.PlannedRevenue)
	plannedMargin := Ratio(Sub(project.PlannedRevenue, project.PlannedBudget), project.PlannedRevenue)
	actualMargin := Ratio(Sub(project.ActualRevenue, project.ActualBudget), project.ActualRevenue)
	grossProfit := Sub(project.ActualRevenue, project.ActualBudget)

	netProfit := None()
	if grossProfit.Valid {
		netProfit = Some(grossProfit.Decimal.Sub(taxTotal))
	}

	return FinancialSummary{
		InvoicesTotal:          invoicesTotal,
		TaxTotal:               taxTotal,
		TotalSpent:             totalSpent,
		RemainingCost:          Sub(project.ActualBudget, Some(totalSpent)),
		CostUsagePercent:       Ratio(Some(totalSpent), project.ActualBudget),
		BudgetVariance:         budgetVariance,
		BudgetVariancePercent:  Ratio(budgetVariance, project.PlannedBudget),
		RevenueVariance:        revenueVariance,
		RevenueVariancePercent: Ratio(revenueVariance, project.PlannedRevenue),
		PlannedMargin:          plannedMargin,
		ActualMargin:           actualMargin,
		MarginVariancePercent:  Sub(actualMargin, plannedMargin),
		GrossProfit:            grossProfit,
		EstimatedNetProfit:     netProfit,
	}
}
