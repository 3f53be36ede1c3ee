// Package notify implementa el despacho de alertas y el render de estado
// operacional: consola (tablas) y Telegram.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/arbot/internal/domain"
)

// Console implementa ports.AlertNotifier escribiendo a un writer, y expone
// los renders tabulares que usa el CLI operacional.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// SendAlerts imprime cada alerta en una línea.
func (c *Console) SendAlerts(_ context.Context, messages []string) error {
	now := time.Now().Format("15:04:05")
	for _, msg := range messages {
		fmt.Fprintf(c.out, "[%s] ALERT: %s\n", now, msg)
	}
	return nil
}

// PrintStatus imprime el snapshot de métricas y el modo vigente.
func (c *Console) PrintStatus(m domain.Metrics, state domain.ModeState) {
	fmt.Fprintf(c.out, "\nmode=%s trigger=%s dry_run=%t\n", state.Mode, state.Trigger, state.DryRun)

	table := tablewriter.NewWriter(c.out)
	table.Header("Opportunities", "Executions", "Success", "Total PnL", "Peak PnL", "Drawdown", "Avg latency")
	table.Append(
		fmt.Sprintf("%d", m.OpportunitiesCount),
		fmt.Sprintf("%d", m.ExecutionsCount),
		fmt.Sprintf("%.1f%%", m.SuccessRate()),
		fmt.Sprintf("$%.2f", m.TotalPnL),
		fmt.Sprintf("$%.2f", m.PeakPnL),
		fmt.Sprintf("%.1f%%", m.DrawdownPct()),
		fmt.Sprintf("%.0fms", m.AvgLatencyMs),
	)
	table.Render()
}

// PrintQueue imprime los items de la cola de revisión.
func (c *Console) PrintQueue(items []domain.QueueItem) {
	if len(items) == 0 {
		fmt.Fprintln(c.out, "review queue is empty")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Status", "Event", "Question", "Min cost", "Profit USD", "Created")
	for _, it := range items {
		table.Append(
			fmt.Sprintf("%d", it.ID),
			string(it.Status),
			it.Opportunity.Pair.EventID,
			it.Opportunity.Summary(),
			fmt.Sprintf("%.4f", it.Opportunity.Result.MinCost),
			fmt.Sprintf("$%.2f", it.Opportunity.ProfitUSD),
			it.CreatedAt.Format(time.RFC3339),
		)
	}
	table.Render()
}

// PrintRuns imprime el historial de invocaciones del pipeline.
func (c *Console) PrintRuns(runs []domain.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "no runs recorded")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "Status", "Pairs", "Opps", "Queued", "Executed", "Started", "Message")
	for _, r := range runs {
		table.Append(
			shortID(r.ID),
			string(r.Status),
			fmt.Sprintf("%d", r.PairsChecked),
			fmt.Sprintf("%d", r.Opportunities),
			fmt.Sprintf("%d", r.Queued),
			fmt.Sprintf("%d", r.Executed),
			r.StartedAt.Format("01-02 15:04:05"),
			r.Message,
		)
	}
	table.Render()
}

// shortID recorta un uuid a su primer bloque.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
