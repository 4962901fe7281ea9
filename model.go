package srql

import (
	"context"
	"strconv"

	tea "charm.land/bubbletea/v2"

	"srql/adapter"
	nt "srql/entity"
	"srql/page"
)

const footerHeight = 2

type mode int

const (
	modeBrowse mode = iota
	modeQuery
	modeBuilder
)

// builderCol is the selected cell within a builder filter row.
type builderCol int

const (
	colDelete builderCol = iota
	colField
	colOp
	colValue
)

// Model is the bubbletea model for the query explorer.
type Model struct {
	page   *page.Page
	sess   page.Session
	actor  *adapter.Actor
	logger nt.Logger
	ctx    context.Context

	mode  mode
	input textInput // query line editor
	edit  textInput // builder cell editor
	row   int       // selected builder filter row
	col   builderCol
	busy  bool

	width  int
	height int
}

func (m Model) Init() tea.Cmd {
	return m.loadList(m.sess.Query, "")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	switch msg := msg.(type) {

	case loadedMsg:
		m.sess = msg.sess
		m.busy = false
		return m, nil

	case errorMsg:
		m.logger.Error(m.ctx, "command failed", msg.err)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeQuery:
			return m.updateQuery(msg)
		case modeBuilder:
			return m.updateBuilder(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {

	switch msg.String() {

	case "ctrl+c", "q":
		return m, tea.Quit

	case "/":
		m.mode = modeQuery
		m.input = newTextInput(m.sess.Draft)

	case "b":
		return m.toggleBuilder()

	case "enter", "r":
		m.busy = true
		return m, m.loadList(m.sess.Query, "")

	case "]":
		if m.sess.Pagination.NextCursor != "" {
			m.busy = true
			return m, m.loadList(m.sess.Query, m.sess.Pagination.NextCursor)
		}

	case "[":
		if m.sess.Pagination.PrevCursor != "" {
			m.busy = true
			return m, m.loadList(m.sess.Query, m.sess.Pagination.PrevCursor)
		}
	}

	return m, nil
}

func (m Model) updateQuery(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {

	switch msg.String() {

	case "esc":
		m.mode = modeBrowse
		return m, nil

	case "enter":
		m.sess, _ = m.page.HandleEvent(m.sess, page.ChangeDraft{Text: m.input.Value()})
		var effect page.Effect
		m.sess, effect = m.page.HandleEvent(m.sess, page.Submit{})
		m.mode = modeBrowse
		if effect.Reload || effect.Route != "" {
			m.busy = true
			return m, m.loadList(m.sess.Query, "")
		}
		return m, nil

	default:
		m.input = m.input.handleKey(msg)
		m.sess, _ = m.page.HandleEvent(m.sess, page.ChangeDraft{Text: m.input.Value()})
		return m, nil
	}
}

func (m Model) updateBuilder(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {

	switch msg.String() {

	case "esc":
		m = m.commitEdit()
		return m.toggleBuilder()

	case "enter":
		m = m.commitEdit()
		var effect page.Effect
		m.sess, effect = m.page.HandleEvent(m.sess, page.RunBuilder{})
		if m.sess.BuilderOpen {
			m.sess, _ = m.page.HandleEvent(m.sess, page.ToggleBuilder{})
		}
		m.mode = modeBrowse
		if effect.Reload || effect.Route != "" {
			m.busy = true
			return m, m.loadList(m.sess.Query, "")
		}
		return m, nil

	case "ctrl+p":
		m = m.commitEdit()
		m.sess, _ = m.page.HandleEvent(m.sess, page.ApplyBuilder{})
		return m, nil

	case "tab":
		m = m.commitEdit()
		m.col = (m.col + 1) % 4
		m = m.reloadEdit()
		return m, nil

	case "up", "ctrl+k":
		m = m.commitEdit()
		if m.row > 0 {
			m.row--
		}
		m = m.reloadEdit()
		return m, nil

	case "down", "ctrl+j":
		m = m.commitEdit()
		if m.row < len(m.sess.State.Filters)-1 {
			m.row++
		}
		m = m.reloadEdit()
		return m, nil

	case "left", "right":
		if m.col == colOp {
			m.sess, _ = m.page.HandleEvent(m.sess, page.FieldChange{Changes: map[string]string{
				filterKey(m.row, "op"): string(cycleOp(m.currentFilter().Op, msg.String() == "right")),
			}})
		} else if m.col == colValue || m.col == colField {
			m.edit = m.edit.handleKey(msg)
		}
		return m, nil

	case "a":
		if m.col == colDelete {
			m.sess, _ = m.page.HandleEvent(m.sess, page.AddFilter{})
			m.row = len(m.sess.State.Filters) - 1
			m = m.reloadEdit()
			return m, nil
		}
		m.edit = m.edit.handleKey(msg)
		return m, nil

	case "d":
		if m.col == colDelete {
			m.sess, _ = m.page.HandleEvent(m.sess, page.RemoveFilter{Index: m.row})
			if m.row >= len(m.sess.State.Filters) {
				m.row = len(m.sess.State.Filters) - 1
			}
			m = m.reloadEdit()
			return m, nil
		}
		m.edit = m.edit.handleKey(msg)
		return m, nil

	default:
		if m.col == colValue || m.col == colField {
			m.edit = m.edit.handleKey(msg)
		}
		return m, nil
	}
}

// toggleBuilder routes the toggle through the page and aligns TUI mode and
// cell selection with the result.
func (m Model) toggleBuilder() (tea.Model, tea.Cmd) {

	m.sess, _ = m.page.HandleEvent(m.sess, page.ToggleBuilder{})
	if m.sess.BuilderOpen {
		m.mode = modeBuilder
		m.row = 0
		m.col = colValue
		m = m.reloadEdit()
	} else {
		m.mode = modeBrowse
	}
	return m, nil
}

// commitEdit pushes the cell editor's text into builder state.
func (m Model) commitEdit() Model {

	if m.row >= len(m.sess.State.Filters) {
		return m
	}

	switch m.col {
	case colField:
		m.sess, _ = m.page.HandleEvent(m.sess, page.FieldChange{Changes: map[string]string{
			filterKey(m.row, "field"): m.edit.Value(),
		}})
	case colValue:
		m.sess, _ = m.page.HandleEvent(m.sess, page.FieldChange{Changes: map[string]string{
			filterKey(m.row, "value"): m.edit.Value(),
		}})
	}
	return m
}

// reloadEdit seeds the cell editor from the currently selected cell.
func (m Model) reloadEdit() Model {

	filter := m.currentFilter()
	switch m.col {
	case colField:
		m.edit = newTextInput(filter.Field)
	case colValue:
		m.edit = newTextInput(filter.Value)
	default:
		m.edit = newTextInput("")
	}
	return m
}

func (m Model) currentFilter() nt.Filter {
	if m.row >= 0 && m.row < len(m.sess.State.Filters) {
		return m.sess.State.Filters[m.row]
	}
	return nt.Filter{}
}

func filterKey(row int, part string) string {
	return "filters." + strconv.Itoa(row) + "." + part
}

// cycleOp steps through the recognized ops in display order.
func cycleOp(op nt.Op, forward bool) nt.Op {

	for i, known := range nt.Ops {
		if known != op {
			continue
		}
		if forward {
			return nt.Ops[(i+1)%len(nt.Ops)]
		}
		return nt.Ops[(i-1+len(nt.Ops))%len(nt.Ops)]
	}
	return nt.Ops[0]
}
