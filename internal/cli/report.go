package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/MacroPower/acctsim/pkg/holder"
	"github.com/MacroPower/acctsim/pkg/metrics"
	"github.com/MacroPower/acctsim/pkg/sim"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = cellStyle.Bold(true)
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newTable(styled bool, rows int) *table.Table {
	t := table.New()
	if !styled {
		return t.Border(lipgloss.ASCIIBorder()).StyleFunc(func(_, _ int) lipgloss.Style {
			return cellStyle
		})
	}

	return t.Border(lipgloss.RoundedBorder()).StyleFunc(func(row, _ int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row == rows-1:
			return totalStyle
		default:
			return cellStyle
		}
	})
}

func statsRow(label string, s holder.Stats) []string {
	return []string{
		label,
		strconv.Itoa(s.Reads),
		strconv.Itoa(s.Deposits),
		strconv.Itoa(s.Deposited),
		strconv.Itoa(s.Withdrawals),
		strconv.Itoa(s.Withdrawn),
		strconv.Itoa(s.Declined),
	}
}

func renderReport(r *sim.Report, styled bool) string {
	rows := make([][]string, 0, len(r.Holders)+1)
	for _, h := range r.Holders {
		rows = append(rows, statsRow(strconv.Itoa(h.ID), h.Stats))
	}

	rows = append(rows, statsRow("total", r.Totals))

	t := newTable(styled, len(rows)).
		Headers("HOLDER", "READS", "DEPOSITS", "DEPOSITED", "WITHDRAWALS", "WITHDRAWN", "DECLINED").
		Rows(rows...)

	summary := fmt.Sprintf("initial balance: %d, final balance: %d, elapsed: %s",
		r.Initial, r.Final, r.Elapsed.Round(1e6))

	return lipgloss.JoinVertical(lipgloss.Left, t.String(), summary)
}

func renderMetrics(samples []metrics.Sample, styled bool) string {
	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, []string{s.Name, s.Labels, strconv.FormatFloat(s.Value, 'f', -1, 64)})
	}

	// Pass one extra row so no metric is styled as a total.
	return newTable(styled, len(rows)+1).
		Headers("METRIC", "LABELS", "VALUE").
		Rows(rows...).
		String()
}
