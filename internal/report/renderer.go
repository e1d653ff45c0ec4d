package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetdesk/budgetdesk/internal/finance"
	"github.com/budgetdesk/budgetdesk/internal/projects"
	"github.com/budgetdesk/budgetdesk/web"
)

const reportTemplate = "templates/reports/project_report.html"

var statusLabels = map[projects.InvoiceStatus]string{
	projects.InvoicePendingPayment: "Pending payment",
	projects.InvoicePaid:           "Paid",
	projects.InvoiceOverdue:        "Overdue",
	projects.InvoiceCancelled:      "Cancelled",
	projects.InvoiceUnknown:        "Unknown",
}

// Renderer turns ProjectReportData into self-contained HTML. It is pure: the
// same data always yields the same bytes.
type Renderer struct {
	tpl    *template.Template
	format *Formatter
}

// NewRenderer parses the embedded report template.
func NewRenderer(format *Formatter) (*Renderer, error) {
	if format == nil {
		format = NewFormatter("ru")
	}
	funcMap := template.FuncMap{
		"statusLabel": func(s projects.InvoiceStatus) string {
			if label, ok := statusLabels[s]; ok {
				return label
			}
			return statusLabels[projects.InvoiceUnknown]
		},
	}
	tpl, err := template.New("project_report.html").Funcs(funcMap).ParseFS(web.Templates, reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("report renderer: %w", err)
	}
	return &Renderer{tpl: tpl, format: format}, nil
}

// HTML renders the report document.
func (r *Renderer) HTML(data ProjectReportData) ([]byte, error) {
	if r == nil || r.tpl == nil {
		return nil, fmt.Errorf("report renderer not initialised")
	}
	buf := &bytes.Buffer{}
	if err := r.tpl.Execute(buf, r.view(data)); err != nil {
		return nil, fmt.Errorf("report renderer: %w", err)
	}
	return buf.Bytes(), nil
}

// Render produces the HTML artifact for a report.
func (r *Renderer) Render(data ProjectReportData) (Artifact, error) {
	body, err := r.HTML(data)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Format:      FormatHTML,
		ContentType: "text/html; charset=utf-8",
		Filename:    Filename(data, FormatHTML),
		Body:        body,
	}, nil
}

// JSON renders the raw report data.
func (r *Renderer) JSON(data ProjectReportData) (Artifact, error) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("report renderer: %w", err)
	}
	return Artifact{
		Format:      FormatJSON,
		ContentType: "application/json",
		Filename:    Filename(data, FormatJSON),
		Body:        body,
	}, nil
}

// Filename derives the download name from the project and generation date.
func Filename(data ProjectReportData, format Format) string {
	ref := data.Project.Code
	if ref == "" {
		ref = data.Project.ID
	}
	return fmt.Sprintf("project-%s-%s.%s", sanitizeName(ref), data.GeneratedAt.Format("20060102"), format)
}

func sanitizeName(v string) string {
	out := make([]rune, 0, len(v))
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "report"
	}
	return string(out)
}

type reportView struct {
	Title       string
	Header      headerView
	Insights    []insightView
	Metrics     []metricView
	Usage       usageView
	Taxes       []kvView
	Invoices    []invoiceView
	General     []documentView
	Suppliers   []supplierView
	Summary     summaryView
	GeneratedAt string
}

type headerView struct {
	Name    string
	Code    string
	Client  string
	Status  string
	DueDate string
}

type insightView struct {
	Label string
	Value string
	Tone  Tone
}

type metricView struct {
	Label       string
	Plan        string
	Fact        string
	Variance    string
	VariancePct string
	Tone        Tone
}

type usageView struct {
	Spent     string
	Budget    string
	Remaining string
	Percent   string
	Bar       int64
	Tone      Tone
}

type kvView struct {
	Label string
	Value string
	Tone  Tone
}

type documentView struct {
	Type     string
	Date     string
	FileName string
	FileURL  string
}

type invoiceView struct {
	Number    string
	Supplier  string
	Amount    string
	Status    projects.InvoiceStatus
	DueDate   string
	Overdue   bool
	FileName  string
	FileURL   string
	HasDocs   bool
	Documents []documentView
}

type supplierView struct {
	Name   string
	Amount string
}

type summaryView struct {
	Total   int
	Pending int
	Paid    int
	Overdue int
	Amount  string
}

func (r *Renderer) view(data ProjectReportData) reportView {
	f := r.format
	fin := data.Financial
	p := data.Project

	v := reportView{
		Title: p.Name,
		Header: headerView{
			Name:    p.Name,
			Code:    p.Code,
			Client:  p.Client,
			Status:  p.Status,
			DueDate: f.Date(p.DueDate),
		},
		Insights: []insightView{
			{Label: "Budget variance", Value: f.SignedPercent(fin.BudgetVariancePercent), Tone: ToneOf(fin.BudgetVariance, false)},
			{Label: "Revenue variance", Value: f.SignedPercent(fin.RevenueVariancePercent), Tone: ToneOf(fin.RevenueVariance, true)},
			{Label: "Actual margin", Value: f.Percent(fin.ActualMargin), Tone: ToneOf(fin.MarginVariancePercent, true)},
			{Label: "Overdue invoices", Value: fmt.Sprintf("%d", data.InvoiceSummary.OverdueCount), Tone: overdueTone(data.InvoiceSummary.OverdueCount)},
		},
		Metrics: []metricView{
			{
				Label:       "Budget",
				Plan:        f.Money(p.PlannedBudget),
				Fact:        f.Money(p.ActualBudget),
				Variance:    f.SignedMoney(fin.BudgetVariance),
				VariancePct: f.SignedPercent(fin.BudgetVariancePercent),
				Tone:        ToneOf(fin.BudgetVariance, false),
			},
			{
				Label:       "Revenue",
				Plan:        f.Money(p.PlannedRevenue),
				Fact:        f.Money(p.ActualRevenue),
				Variance:    f.SignedMoney(fin.RevenueVariance),
				VariancePct: f.SignedPercent(fin.RevenueVariancePercent),
				Tone:        ToneOf(fin.RevenueVariance, true),
			},
			{
				Label:       "Margin",
				Plan:        f.Percent(fin.PlannedMargin),
				Fact:        f.Percent(fin.ActualMargin),
				Variance:    f.Points(fin.MarginVariancePercent),
				VariancePct: NoData,
				Tone:        ToneOf(fin.MarginVariancePercent, true),
			},
		},
		Usage: usageView{
			Spent:     f.Money(finance.Some(fin.TotalSpent)),
			Budget:    f.Money(p.ActualBudget),
			Remaining: f.Money(fin.RemainingCost),
			Percent:   f.Percent(fin.CostUsagePercent),
			Bar:       progressWidth(fin.CostUsagePercent),
			Tone:      ToneOf(fin.RemainingCost, true),
		},
		Taxes: []kvView{
			{Label: "USN tax", Value: f.Money(p.USNTax), Tone: ToneNeutral},
			{Label: "NDS tax", Value: f.Money(p.NDSTax), Tone: ToneNeutral},
			{Label: "Taxes total", Value: f.Money(finance.Some(fin.TaxTotal)), Tone: ToneNeutral},
			{Label: "Gross profit", Value: f.Money(fin.GrossProfit), Tone: ToneOf(fin.GrossProfit, true)},
			{Label: "Estimated net profit", Value: f.Money(fin.EstimatedNetProfit), Tone: ToneOf(fin.EstimatedNetProfit, true)},
		},
		Summary: summaryView{
			Total:   data.InvoiceSummary.Total,
			Pending: data.InvoiceSummary.CountByStatus[projects.InvoicePendingPayment],
			Paid:    data.InvoiceSummary.CountByStatus[projects.InvoicePaid],
			Overdue: data.InvoiceSummary.OverdueCount,
			Amount:  f.Money(finance.Some(data.InvoiceSummary.PendingAmount)),
		},
		GeneratedAt: f.Timestamp(data.GeneratedAt),
	}
	if v.Usage.Tone == ToneGood {
		// Only overspend is highlighted.
		v.Usage.Tone = ToneNeutral
	}

	for _, line := range data.Invoices {
		v.Invoices = append(v.Invoices, invoiceView{
			Number:    line.Number,
			Supplier:  line.SupplierName,
			Amount:    f.MoneyCompact(line.Amount),
			Status:    line.Status,
			DueDate:   f.Date(line.DueDate),
			Overdue:   line.Overdue,
			FileName:  line.File.Name,
			FileURL:   line.File.URL,
			HasDocs:   line.HasClosingDocs,
			Documents: documentViews(line.Documents),
		})
	}
	v.General = documentViews(data.GeneralDocuments)
	for _, s := range data.SupplierSpend {
		v.Suppliers = append(v.Suppliers, supplierView{Name: s.Name, Amount: f.MoneyCompact(finance.Some(s.Amount))})
	}
	return v
}

func documentViews(docs []projects.ClosingDocument) []documentView {
	out := make([]documentView, 0, len(docs))
	for _, d := range docs {
		date := d.UploadedAt
		if d.Date != nil {
			date = *d.Date
		}
		label := d.Type
		if label == "" {
			label = "Document"
		}
		out = append(out, documentView{
			Type:     label,
			Date:     formatDay(date),
			FileName: d.File.Name,
			FileURL:  d.File.URL,
		})
	}
	return out
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return NoData
	}
	return t.Format("02.01.2006")
}

// progressWidth clamps a usage percentage into a bar width.
func progressWidth(v decimal.NullDecimal) int64 {
	if !v.Valid {
		return 0
	}
	return finance.Clamp(v, decimal.Zero, decimal.NewFromInt(100)).Decimal.Round(0).IntPart()
}

func overdueTone(n int) Tone {
	if n > 0 {
		return ToneBad
	}
	return ToneNeutral
}
