package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table writes rows under headers. Borders and header styling are only drawn
// when color output is enabled; otherwise columns are separated by spaces.
func (w *Writer) Table(headers []string, rows [][]string) {
	if w.Quiet {
		return
	}

	t := table.New().Headers(headers...).Rows(rows...)

	if w.terminal.ColorEnabled() {
		header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cell := lipgloss.NewStyle().Padding(0, 1)

		t = t.Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return header
				}

				return cell
			})
	} else {
		cell := lipgloss.NewStyle().PaddingRight(2)

		t = t.Border(lipgloss.HiddenBorder()).
			BorderTop(false).
			BorderBottom(false).
			BorderLeft(false).
			BorderRight(false).
			BorderColumn(false).
			BorderHeader(false).
			StyleFunc(func(int, int) lipgloss.Style { return cell })
	}

	w.Println(t.String())
}

// KeyValues writes aligned "key: value" pairs in order.
func (w *Writer) KeyValues(pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0]))
	}

	for _, p := range pairs {
		w.Print("%-*s  %s\n", width+1, p[0]+":", p[1])
	}
}
