package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Reporter.
type Console struct {
	out    io.Writer
	trades bool // imprimir el trade log completo
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(trades bool) *Console {
	return &Console{out: os.Stdout, trades: trades}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer, trades bool) *Console {
	return &Console{out: w, trades: trades}
}

// PrintBacktest imprime el resumen de una sesión y, opcionalmente, sus trades.
func (c *Console) PrintBacktest(r domain.SessionResult) error {
	fmt.Fprintf(c.out, "\n=== %s  %s @ %s  [%s %s] ===\n",
		r.Ticker, r.AwayTeam, r.HomeTeam, r.StrategyName, r.StrategyVersion)

	outcome := "no final"
	if r.HomeWon != nil {
		outcome = "away won"
		if *r.HomeWon {
			outcome = "home won"
		}
	}

	pnl := r.PnL()
	sign := "+"
	if pnl.IsNegative() {
		sign = ""
	}
	fmt.Fprintf(c.out, "  game %s | phase %s | %s\n", r.GameID, r.FinalPhase, outcome)
	fmt.Fprintf(c.out, "  ticks %d (traded %d, skipped %d) | trades %d\n",
		r.Ticks, r.TradedTicks, r.SkippedTicks, len(r.Trades))
	fmt.Fprintf(c.out, "  cash $%s -> $%s  (%s$%s)  position %d\n",
		r.InitialCash.StringFixed(2), r.FinalCash.StringFixed(2), sign, pnl.StringFixed(2), r.FinalPosition)

	if c.trades && len(r.Trades) > 0 {
		table := tablewriter.NewWriter(c.out)
		table.Header("#", "Time", "Action", "Price", "Size", "Covered", "Opened", "Pos", "Cash")
		for i, t := range r.Trades {
			table.Append(
				fmt.Sprintf("%d", i+1),
				t.At.UTC().Format("15:04:05"),
				strings.ToUpper(string(t.Action)),
				fmt.Sprintf("%d¢", t.Price),
				fmt.Sprintf("%d", t.Size),
				fmt.Sprintf("%d", t.Covered),
				fmt.Sprintf("%d", t.Opened),
				fmt.Sprintf("%d", t.Position),
				"$"+t.Cash.StringFixed(2),
			)
		}
		table.Render()
	}
	return nil
}

// PrintPerformance imprime una fila por (estrategia, versión, modelo).
func (c *Console) PrintPerformance(perf []domain.StrategyPerformance) error {
	if len(perf) == 0 {
		fmt.Fprintln(c.out, "No predictions stored")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Strategy", "Version", "Model", "Preds", "Games", "Acc%", "Trades", "Avg$", "Min$", "Max$", "Win%", "ROI%")
	for _, p := range perf {
		table.Append(
			truncate(p.StrategyName, 20),
			p.StrategyVersion,
			p.ModelVersion,
			fmt.Sprintf("%d", p.Predictions),
			fmt.Sprintf("%d", p.Games),
			fmt.Sprintf("%.1f", p.Accuracy),
			fmt.Sprintf("%d", p.Trades),
			fmt.Sprintf("%.2f", p.AvgFinalCash),
			fmt.Sprintf("%.2f", p.MinFinalCash),
			fmt.Sprintf("%.2f", p.MaxFinalCash),
			fmt.Sprintf("%.1f", p.WinRate),
			fmt.Sprintf("%+.2f", p.ROI),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Acc% = predicciones del lado correcto de 50 | Win% = partidos cerrados con cash > inicial")
	return nil
}

// PrintCalibration imprime predicho vs. observado por rango.
func (c *Console) PrintCalibration(bins []domain.CalibrationBin) error {
	if len(bins) == 0 {
		fmt.Fprintln(c.out, "No settled predictions to calibrate")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Range", "Count", "Avg pred%", "Actual%", "Gap")
	for _, b := range bins {
		table.Append(
			fmt.Sprintf("%.0f-%.0f", b.Lower, b.Upper),
			fmt.Sprintf("%d", b.Count),
			fmt.Sprintf("%.1f", b.AvgPredicted),
			fmt.Sprintf("%.1f", b.ActualWinRate),
			fmt.Sprintf("%+.1f", b.ActualWinRate-b.AvgPredicted),
		)
	}
	table.Render()
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
