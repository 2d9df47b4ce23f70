// Package pdf genera el reporte imprimible del dashboard de vencimientos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + fecha de generación                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  KPIs: productos / valor reportado / valor calculado        │
//	│  LOTES: totales, pérdidas                                   │
//	│  VENTANAS: vencidos | 0-30 | 31-60 | 61-90 | +90            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: próximos a vencer (15 días)                          │
//	│  TABLA: conciliación reportado vs calculado                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/perecibles-api/internal/application/analytics"
	"github.com/jhoicas/perecibles-api/internal/application/dto"
)

var _ analytics.ReportGenerator = (*DashboardReport)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// DashboardReport implementa analytics.ReportGenerator usando Maroto v2.
type DashboardReport struct {
	title string
}

// NewDashboardReport construye el generador; title suele ser el nombre de la app.
func NewDashboardReport(title string) *DashboardReport {
	return &DashboardReport{title: title}
}

// GenerateDashboardPDF genera el PDF y devuelve sus bytes.
func (g *DashboardReport) GenerateDashboardPDF(ctx context.Context, snap *dto.DashboardSnapshotDTO) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Dashboard de vencimientos", true).
		WithAuthor(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.title, snap))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(kpiRow(snap))
	m.AddRows(batchRow(snap))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("Valor en riesgo por ventana de vencimiento"))
	m.AddRows(windowRows(snap)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle("Próximos a vencer (15 días)"))
	m.AddRows(nearExpiryRows(snap.NearExpiry)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle("Conciliación stock reportado vs calculado"))
	m.AddRows(reconciliationRows(snap.Reconciliation)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, snap *dto.DashboardSnapshotDTO) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Dashboard de vencimientos", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+snap.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func kpiRow(snap *dto.DashboardSnapshotDTO) core.Row {
	g := snap.General
	return row.New(14).Add(
		kpiCol("Productos", strconv.Itoa(g.TotalProducts)),
		kpiCol("Con stock reportado", strconv.Itoa(g.ProductsWithReportedStock)),
		kpiCol("Valor reportado", money(g.TotalReportedValue)),
		kpiCol("Valor calculado", money(g.TotalStockValue)),
	)
}

func batchRow(snap *dto.DashboardSnapshotDTO) core.Row {
	b := snap.Batches
	return row.New(14).Add(
		kpiCol("Lotes", strconv.Itoa(b.TotalBatches)),
		kpiCol("Activos", strconv.Itoa(b.ActiveBatches)),
		kpiCol("Perdidos", strconv.Itoa(b.LostBatches)),
		kpiCol("Valor perdido", money(b.LostValue)),
	)
}

func kpiCol(label, value string) core.Col {
	return col.New(3).Add(
		text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1}),
		text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 6}),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(8).Add(col.New(12).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 2,
	})))
}

func windowRows(snap *dto.DashboardSnapshotDTO) []core.Row {
	v, c := snap.ValueAtRisk, snap.ByWindow
	labels := []string{"Vencidos", "0-30 días", "31-60 días", "61-90 días", "+90 días"}
	values := []decimal.Decimal{v.Expired, v.Days0To30, v.Days31To60, v.Days61To90, v.Over90}
	counts := []int64{c.Expired, c.Days0To30, c.Days31To60, c.Days61To90, c.Over90}

	header := row.New(6)
	amounts := row.New(7)
	lots := row.New(6)
	for i := range labels {
		header.Add(col.New(2).Add(text.New(labels[i], props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center})))
		amounts.Add(col.New(2).Add(text.New(money(values[i]), props.Text{Size: 9, Align: align.Center, Top: 1})))
		lots.Add(col.New(2).Add(text.New(strconv.FormatInt(counts[i], 10)+" lotes", props.Text{
			Size: 7, Align: align.Center, Color: colorGray,
		})))
	}
	return []core.Row{header, amounts, lots}
}

type headerCol struct {
	label string
	size  int
	a     align.Type
}

func tableHeader(cols ...headerCol) core.Row {
	r := row.New(7)
	for _, c := range cols {
		r.Add(col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.a, Top: 1, Color: colorPrimary,
		})))
	}
	return r
}

func nearExpiryRows(items []dto.NearExpiryItemDTO) []core.Row {
	if len(items) == 0 {
		return []core.Row{emptyRow("Sin lotes próximos a vencer")}
	}
	rows := []core.Row{tableHeader(
		headerCol{"Producto", 4, align.Left},
		headerCol{"Lote", 2, align.Left},
		headerCol{"Vence", 2, align.Center},
		headerCol{"Días", 1, align.Center},
		headerCol{"Cant.", 1, align.Right},
		headerCol{"Valor", 2, align.Right},
	)}
	for _, it := range items {
		rows = append(rows, row.New(6).Add(
			col.New(4).Add(text.New(it.ProductName, props.Text{Size: 8})),
			col.New(2).Add(text.New(it.BatchCode, props.Text{Size: 8})),
			col.New(2).Add(text.New(it.ExpiryDate.Format("02/01/2006"), props.Text{Size: 8, Align: align.Center})),
			col.New(1).Add(text.New(strconv.Itoa(it.DaysToExpiry), props.Text{Size: 8, Align: align.Center, Color: colorDanger})),
			col.New(1).Add(text.New(strconv.FormatInt(it.Quantity, 10), props.Text{Size: 8, Align: align.Right})),
			col.New(2).Add(text.New(money(it.UnitValue), props.Text{Size: 8, Align: align.Right})),
		))
	}
	return rows
}

func reconciliationRows(items []dto.ReconciliationItemDTO) []core.Row {
	if len(items) == 0 {
		return []core.Row{emptyRow("Sin diferencias de conciliación")}
	}
	rows := []core.Row{tableHeader(
		headerCol{"Producto", 4, align.Left},
		headerCol{"Reportado", 2, align.Right},
		headerCol{"Calculado", 2, align.Right},
		headerCol{"Falta", 2, align.Right},
		headerCol{"% concl.", 1, align.Right},
		headerCol{"Riesgo", 1, align.Center},
	)}
	for _, it := range items {
		risk := ""
		if it.AtRisk {
			risk = "sí"
		}
		rows = append(rows, row.New(6).Add(
			col.New(4).Add(text.New(it.ProductName, props.Text{Size: 8})),
			col.New(2).Add(text.New(strconv.FormatInt(it.ReportedStock, 10), props.Text{Size: 8, Align: align.Right})),
			col.New(2).Add(text.New(strconv.FormatInt(it.CalculatedStock, 10), props.Text{Size: 8, Align: align.Right})),
			col.New(2).Add(text.New(strconv.FormatInt(it.Shortfall, 10), props.Text{Size: 8, Align: align.Right})),
			col.New(1).Add(text.New(strconv.FormatFloat(it.CompletionPct, 'f', 1, 64), props.Text{Size: 8, Align: align.Right})),
			col.New(1).Add(text.New(risk, props.Text{Size: 8, Align: align.Center, Color: colorDanger})),
		))
	}
	return rows
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(text.New(msg, props.Text{Size: 8, Color: colorGray})))
}

func money(d decimal.Decimal) string {
	return "$ " + d.StringFixed(2)
}
