package finance

import (
	"github.com/shopspring/decimal"

	"github.com/budgetdesk/budgetdesk/internal/projects"
)

// DepartmentBudget rolls project figures up to their department.
type DepartmentBudget struct {
	DepartmentID       string              `json:"department_id"`
	DepartmentName     string              `json:"department_name"`
	Budget             decimal.NullDecimal `json:"budget"`
	Allocated          decimal.Decimal     `json:"allocated"`
	Spent              decimal.Decimal     `json:"spent"`
	Remaining          decimal.NullDecimal `json:"remaining"`
	UtilizationPercent decimal.NullDecimal `json:"utilization_percent"`
	ProjectCount       int                 `json:"project_count"`
	MissingPlanned     int                 `json:"missing_planned"`
	MissingActual      int                 `json:"missing_actual"`
}

// ComputeDepartmentBudget sums planned budgets as allocated and actual
// budgets as spent. Projects lacking a figure are counted, not zero-filled
// into the percentages.
func ComputeDepartmentBudget(dept projects.Department, list []projects.Project) DepartmentBudget {
	out := DepartmentBudget{
		DepartmentID:   dept.ID,
		DepartmentName: dept.Name,
		Budget:         dept.Budget,
		Allocated:      decimal.Zero,
		Spent:          decimal.Zero,
		ProjectCount:   len(list),
	}
	for _, p := range list {
		if p.PlannedBudget.Valid {
			out.Allocated = out.Allocated.Add(p.PlannedBudget.Decimal)
		} else {
			out.MissingPlanned++
		}
		if p.ActualBudget.Valid {
			out.Spent = out.Spent.Add(p.ActualBudget.Decimal)
		} else {
			out.MissingActual++
		}
	}
	out.Remaining = Sub(dept.Budget, Some(out.Spent))
	out.UtilizationPercent = Ratio(Some(out.Spent), dept.Budget)
	return out
}
