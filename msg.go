package srql

import "srql/page"

// loadedMsg carries the session back from a list load.
type loadedMsg struct {
	sess page.Session
}

// errorMsg surfaces a fault from a command.
type errorMsg struct {
	err error
}
