package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alejandrodnm/gexscan/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier imprimiendo el blotter en stdout.
type Console struct {
	out  io.Writer
	tips bool // pie con notas de interpretación
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(tips bool) *Console {
	return &Console{out: os.Stdout, tips: tips}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, tips bool) *Console {
	return &Console{out: w, tips: tips}
}

// Notify imprime el resultado del run. Los runs sin datos y los runs sin
// contratos evaluables se reportan con un mensaje explícito, nunca como
// una tabla vacía.
func (c *Console) Notify(_ context.Context, report domain.RunReport) error {
	now := report.ScannedAt.Format("15:04:05")

	if report.NoData {
		fmt.Fprintf(c.out, "[%s] nothing to evaluate: %s\n", now, report.Note)
		return nil
	}

	if len(report.Records) == 0 {
		fmt.Fprintf(c.out, "[%s] no markets evaluated (%d skipped) — check that target times are in the future\n",
			now, report.Skipped)
		return nil
	}

	c.printHeader(report)
	c.printTable(report.Records)

	if c.tips {
		c.printTips()
	}
	return nil
}

// printHeader imprime los escalares del run.
func (c *Console) printHeader(report domain.RunReport) {
	fmt.Fprintf(c.out, "\n=== Gamma-Aware Digital Mispricing Blotter (research / dry-run) ===\n")
	fmt.Fprintf(c.out, "Run time:  %s\n", report.ScannedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(c.out, "Spot:      %.2f\n", report.Spot)
	fmt.Fprintf(c.out, "GEX raw:   %s\n", humanize.CommafWithDigits(report.GEXRaw, 0))
	fmt.Fprintf(c.out, "GEX regime score [-1..1]: %.3f\n", report.Regime)
	fmt.Fprintf(c.out, "Evaluated: %d (skipped %d)\n\n", report.Evaluated, report.Skipped)
}

// printTable imprime el top de oportunidades con EV neto de fees.
func (c *Console) printTable(records []domain.EvaluationRecord) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Target", "Thresh", "Mid", "P adj", "Fee", "EV yes", "EV no", "Signal", "Title")

	for i, rec := range records {
		table.Append(
			fmt.Sprintf("%d", i+1),
			rec.TargetTimeET,
			fmt.Sprintf("%.0f", rec.ThresholdSPX),
			fmt.Sprintf("%.2f", rec.Mid),
			fmt.Sprintf("%.3f", rec.ProbAdjusted),
			fmt.Sprintf("%.4f", rec.Fee),
			fmt.Sprintf("%+.4f", rec.EVYes),
			fmt.Sprintf("%+.4f", rec.EVNo),
			string(rec.Signal),
			truncate(rec.Title, 40),
		)
	}

	table.Render()
}

// printTips imprime las notas de interpretación del blotter.
func (c *Console) printTips() {
	fmt.Fprintln(c.out, "\nInterpretation tips:")
	fmt.Fprintln(c.out, "- signal aplica el umbral de edge mínimo sobre EV neto del fee estimado")
	fmt.Fprintln(c.out, "- SPY actúa como proxy de SPX; la IV es la del strike más cercano del front expiry")
	fmt.Fprintln(c.out, "- el overlay de gamma es heurístico: tilt pequeño y acotado a propósito")
}

// truncate recorta un título largo para la tabla.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
