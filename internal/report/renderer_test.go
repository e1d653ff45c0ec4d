package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func renderScenario(t *testing.T) (ProjectReportData, *Renderer) {
	t.Helper()
	data, err := newTestBuilder().Build(scenarioSnapshot())
	require.NoError(t, err)
	r, err := NewRenderer(NewFormatter("en"))
	require.NoError(t, err)
	return data, r
}

func TestRendererEmitsSectionsInOrder(t *testing.T) {
	data, r := renderScenario(t)
	artifact, err := r.Render(data)
	require.NoError(t, err)
	require.Equal(t, FormatHTML, artifact.Format)
	require.Equal(t, "project-OF-1-20240615.html", artifact.Filename)

	html := string(artifact.Body)
	sections := []string{"Office Fit-out", "Key insights", "Plan and fact", "Cost usage", "Taxes and profit", "Invoices", "Spend by supplier", "Generated 15.06.2024"}
	last := -1
	for _, s := range sections {
		idx := strings.Index(html, s)
		require.Greaterf(t, idx, last, "section %q out of order", s)
		last = idx
	}
}

func TestRendererFormatsFigures(t *testing.T) {
	data, r := renderScenario(t)
	body, err := r.HTML(data)
	require.NoError(t, err)
	html := string(body)

	require.Contains(t, html, "&#43;20.0%")
	require.Contains(t, html, "-3,000.00")
	require.Contains(t, html, "width: 100%")
	require.Contains(t, html, "70,000")
	require.Contains(t, html, "Build Co")
	require.Contains(t, html, "past due")
	require.Contains(t, html, "Missing")
	require.Contains(t, html, "act.pdf")
}

func TestRendererViewCarriesSignedFigures(t *testing.T) {
	data, r := renderScenario(t)
	v := r.view(data)

	require.Equal(t, "Budget variance", v.Insights[0].Label)
	require.Equal(t, "+20.0%", v.Insights[0].Value)
	require.Equal(t, ToneBad, v.Insights[0].Tone)
	require.Equal(t, "+20,000.00", v.Metrics[0].Variance)
	require.Equal(t, "+20.0%", v.Metrics[0].VariancePct)

	margin := v.Metrics[2]
	require.Equal(t, "Margin", margin.Label)
	require.Equal(t, NoData, margin.VariancePct)
	require.True(t, strings.HasSuffix(margin.Variance, " pp"))
}

func TestRendererShowsNoDataForMissingFigures(t *testing.T) {
	snap := scenarioSnapshot()
	snap.Project.PlannedRevenue = money(0)
	snap.Project.ActualRevenue = money(0)
	data, err := newTestBuilder().Build(snap)
	require.NoError(t, err)
	r, err := NewRenderer(NewFormatter("en"))
	require.NoError(t, err)

	body, err := r.HTML(data)
	require.NoError(t, err)
	require.Contains(t, string(body), NoData)
	require.NotContains(t, string(body), "NaN")
}

func TestRendererIsPure(t *testing.T) {
	data, r := renderScenario(t)
	first, err := r.HTML(data)
	require.NoError(t, err)
	second, err := r.HTML(data)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRendererJSON(t *testing.T) {
	data, r := renderScenario(t)
	artifact, err := r.JSON(data)
	require.NoError(t, err)
	require.Equal(t, "application/json", artifact.ContentType)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(artifact.Body, &decoded))
	require.Contains(t, decoded, "financial")
	require.Contains(t, decoded, "supplier_spend")
}

func TestFilenameSanitisesReference(t *testing.T) {
	data := ProjectReportData{Project: ProjectHeader{ID: "p/1 x"}, GeneratedAt: fixedNow}
	require.Equal(t, "project-p_1_x-20240615.pdf", Filename(data, FormatPDF))
}
