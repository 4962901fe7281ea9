package srql

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"srql/viz"
)

func (m Model) View() tea.View {

	if m.width == 0 {
		return tea.NewView("Loading...")
	}

	var sections []string
	sections = append(sections, m.renderQueryLine())

	if m.sess.Error != "" {
		sections = append(sections, errorStyle.Render(m.sess.Error))
	}

	if m.sess.BuilderOpen {
		sections = append(sections, m.renderBuilder())
	}

	sections = append(sections, m.renderTable())

	if summary := vizSummary(m.sess.Viz); summary != "" {
		sections = append(sections, mutedStyle.Render(summary))
	}

	screenLayer := lipgloss.NewLayer("screen", strings.Join(sections, "\n"))

	footerContent := renderFooter(len(m.sess.Results), m.sess.Route, m.busy, m.width)
	footerLayer := lipgloss.NewLayer("footer", footerContent).Y(m.height - footerHeight)

	canvas := lipgloss.NewCanvas(m.width, m.height)
	canvas.Compose(screenLayer)
	canvas.Compose(footerLayer)

	view := tea.NewView(canvas)
	view.AltScreen = true
	return view
}

func (m Model) renderQueryLine() string {

	prompt := "  "
	text := m.sess.Draft
	if m.mode == modeQuery {
		prompt = "> "
		text = m.input.Value()
		return prompt + hlCellStyle.Render(text)
	}
	if m.sess.Unsupported {
		text += mutedStyle.Render("  (builder unavailable for this query)")
	}
	return prompt + text
}

// renderBuilder draws the structured form: context tokens on one line, then
// one row per filter with the selected cell highlighted.
func (m Model) renderBuilder() string {

	var content strings.Builder
	state := m.sess.State

	content.WriteString(fmt.Sprintf("entity:%s  time:%s  sort:%s:%s  limit:%d",
		state.Entity, orDash(state.Time), state.SortField, state.SortDir, state.Limit))
	if state.Bucket != "" {
		content.WriteString(fmt.Sprintf("  bucket:%s agg:%s series:%s",
			state.Bucket, state.Agg, orDash(state.Series)))
	}
	content.WriteString("\n\nFilters:\n")

	for i, filter := range state.Filters {
		selected := i == m.row

		deleteStr := "[del]"
		fieldStr := filter.Field
		opStr := string(filter.Op)
		valueStr := filter.Value

		if selected {
			switch m.col {
			case colDelete:
				deleteStr = hlCellStyle.Render(deleteStr)
			case colField:
				fieldStr = hlCellStyle.Render(m.edit.Value())
			case colOp:
				opStr = hlCellStyle.Render(opStr)
			case colValue:
				valueStr = hlCellStyle.Render(m.edit.Value())
			}
		}

		prefix := "  "
		if selected {
			prefix = "> "
		}
		content.WriteString(fmt.Sprintf("%s%s %s %s %s\n", prefix, deleteStr, fieldStr, opStr, valueStr))
	}

	var help string
	switch m.col {
	case colDelete:
		help = "a: add  d: delete  Tab: next cell  Enter: run  ctrl+p: stage  Esc: close"
	case colOp:
		help = "←→: change op  Tab: next cell  Enter: run  ctrl+p: stage  Esc: close"
	default:
		help = "type to edit  Tab: next cell  Enter: run  ctrl+p: stage  Esc: close"
	}
	content.WriteString("\n" + mutedStyle.Render(help))

	return dialogStyle.Render(content.String())
}

func (m Model) renderTable() string {

	rows := m.sess.Results
	if len(rows) == 0 {
		return mutedStyle.Render("no results")
	}

	cols := columnOrder(rows[0])

	tbl := table.New()
	styleTable(tbl)
	tbl.Headers(cols...)

	budget := m.height - footerHeight - 8
	if budget < 1 {
		budget = 1
	}
	for i, row := range rows {
		if i == budget {
			break
		}
		cells := make([]string, len(cols))
		for j, col := range cols {
			cells[j] = cellText(row[col])
		}
		tbl.Row(cells...)
	}

	return tbl.Render()
}

// columnOrder puts recognized time columns first, then the rest sorted.
func columnOrder(row map[string]any) []string {

	var cols []string
	for key := range row {
		cols = append(cols, key)
	}
	sort.Slice(cols, func(i, j int) bool {
		ti, tj := timeCol(cols[i]), timeCol(cols[j])
		if ti != tj {
			return ti
		}
		return cols[i] < cols[j]
	})
	return cols
}

func timeCol(name string) bool {
	switch name {
	case "timestamp", "ts", "time", "bucket", "inserted_at", "observed_at":
		return true
	}
	return false
}

func cellText(value any) string {
	if value == nil {
		return ""
	}
	text := fmt.Sprintf("%v", value)
	if len(text) > 40 {
		text = text[:39] + "…"
	}
	return text
}

// vizSummary describes the inferred chart shape in one line.
func vizSummary(inf viz.Inference) string {

	switch inf.Kind {
	case viz.Timeseries:
		return fmt.Sprintf("chart: timeseries %s over %s (%d points)",
			inf.YKey, inf.XKey, len(inf.Points))
	case viz.Categories:
		return fmt.Sprintf("chart: %s by %s (%d buckets)",
			inf.ValueKey, inf.LabelKey, len(inf.Items))
	}
	return ""
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
