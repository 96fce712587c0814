package cli

import (
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/rag"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableDeadStyle   = tableCellStyle.Foreground(colorRed)
	tableOKStyle     = tableCellStyle.Foreground(colorGreen)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

// processTable lists each process with its label and outcome.
// Finished processes show their position in the safe sequence.
func processTable(m *deadlock.Model, g rag.Graph, rep *deadlock.Report) string {
	label := g.Labeler()
	order := make(map[string]int, len(rep.SafeSequence))
	for i, pid := range rep.SafeSequence {
		order[pid] = i + 1
	}

	rows := make([][]string, 0, len(m.Processes))
	for _, pid := range m.Processes {
		status := "finished #" + strconv.Itoa(order[pid])
		if slices.Contains(rep.DeadlockedProcessIDs, pid) {
			status = "deadlocked"
		}
		rows = append(rows, []string{pid, label(pid), status})
	}

	t := newTable("Process", "Label", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 2 {
				if rows[row][2] == "deadlocked" {
					return tableDeadStyle
				}
				return tableOKStyle
			}
			return tableCellStyle
		})
	return t.Render()
}

// matrixTable renders one row per process and one column per resource.
func matrixTable(m *deadlock.Model, cells [][]int) string {
	headers := append([]string{""}, m.Resources...)
	rows := make([][]string, len(m.Processes))
	for p, pid := range m.Processes {
		row := make([]string, 0, len(m.Resources)+1)
		row = append(row, pid)
		for _, v := range cells[p] {
			row = append(row, strconv.Itoa(v))
		}
		rows[p] = row
	}
	return newTable(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return tableHeaderStyle.Padding(0, 1)
			}
			return tableCellStyle
		}).
		Render()
}

// vectorTable renders per-resource vectors, one named row each.
func vectorTable(resources []string, names []string, vectors ...[]int) string {
	headers := append([]string{""}, resources...)
	rows := make([][]string, len(vectors))
	for i, vec := range vectors {
		row := make([]string, 0, len(vec)+1)
		row = append(row, names[i])
		for _, v := range vec {
			row = append(row, strconv.Itoa(v))
		}
		rows[i] = row
	}
	return newTable(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return tableHeaderStyle.Padding(0, 1)
			}
			return tableCellStyle
		}).
		Render()
}

// matricesView renders allocation, request and the resource vectors.
func matricesView(m *deadlock.Model) string {
	if len(m.Processes) == 0 || len(m.Resources) == 0 {
		return StyleDim.Render("(no processes or resources)")
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Allocation"))
	b.WriteString("\n")
	b.WriteString(matrixTable(m, m.Allocation))
	b.WriteString("\n")
	b.WriteString(StyleTitle.Render("Request"))
	b.WriteString("\n")
	b.WriteString(matrixTable(m, m.Request))
	b.WriteString("\n")
	b.WriteString(StyleTitle.Render("Resources"))
	b.WriteString("\n")
	b.WriteString(vectorTable(m.Resources,
		[]string{"total", "allocated", "available"},
		m.Total, m.Allocated, m.Available))
	return b.String()
}
