package srql

import (
	tea "charm.land/bubbletea/v2"

	"srql/page"
)

// loadList executes the session's query through the page orchestrator.
func (m Model) loadList(query, cursor string) tea.Cmd {

	sess := m.sess
	return func() tea.Msg {
		loaded := m.page.LoadList(m.ctx, sess, page.Request{
			Query:  query,
			Cursor: cursor,
			Actor:  m.actor,
		})
		return loadedMsg{sess: loaded}
	}
}
