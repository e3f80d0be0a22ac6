package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeTable renders rows under headers. Terminals get a bordered table;
// anything else gets tab-separated lines with a header line.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	if !isTerminal(w) {
		fmt.Fprintln(w, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// note prints a secondary line, faint on terminals.
func note(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if isTerminal(w) {
		msg = faintStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
}

func idLabelRows(items []domain.IDLabel) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.ID, item.Label})
	}
	return rows
}

// attrRows renders attributes one per row in name order.
func attrRows(attrs domain.Attributes) [][]string {
	rows := make([][]string, 0, len(attrs))
	for _, name := range attrs.Keys() {
		rows = append(rows, []string{name, valueText(attrs[name])})
	}
	return rows
}

// valueText renders every element of a list, joined with "; ".
func valueText(v domain.AttrValue) string {
	if v.Kind() != domain.AttrList {
		return v.Text()
	}
	parts := make([]string, 0, len(v.Items()))
	for _, item := range v.Items() {
		if text := item.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "; ")
}

func institutionRows(insts []domain.Institution) [][]string {
	rows := make([][]string, 0, len(insts))
	for i := range insts {
		rows = append(rows, []string{insts[i].ID, insts[i].HEIID, insts[i].Label, insts[i].IndexKey})
	}
	return rows
}

func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
