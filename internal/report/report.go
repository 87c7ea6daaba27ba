// Package report renders a human-readable summary of a finished build.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vk/variantgrid/internal/pipeline"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failedStyle = cellStyle.Foreground(lipgloss.Color("196"))
	borderColor = lipgloss.Color("63")
)

// Headers are the column titles of the summary table.
var Headers = []string{"Task", "Group", "Unit", "State", "Artifacts"}

// Rows flattens r into table rows, one per unit.
func Rows(r *pipeline.Report) [][]string {
	rows := make([][]string, 0, len(r.Units))
	for _, u := range r.Units {
		rows = append(rows, []string{
			u.Unit.Task,
			group(u.Unit),
			u.Unit.BaseName,
			u.State.String(),
			strconv.Itoa(len(u.Artifacts)),
		})
	}
	return rows
}

// group is the unit's directory below its task, "-" when it sits directly
// in the task directory.
func group(u pipeline.SourceUnit) string {
	rel, err := filepath.Rel(u.Task, u.RelDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "-"
	}
	return filepath.ToSlash(rel)
}

// Write renders the summary of r to w.
func Write(w io.Writer, r *pipeline.Report) error {
	title := titleStyle.Render(fmt.Sprintf("Build %s", r.RunID))
	if len(r.Units) == 0 {
		_, err := fmt.Fprintf(w, "%s\nNo source units were built.\n", title)
		return err
	}

	artifacts := 0
	for _, u := range r.Units {
		artifacts += len(u.Artifacts)
	}

	rows := Rows(r)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && rows[row][3] == pipeline.Aborted.String() {
				return failedStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintf(w, "%s\n%s\n%d units, %d artifacts\n", title, t.String(), len(r.Units), artifacts)
	return err
}
