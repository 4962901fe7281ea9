package srql

import tea "charm.land/bubbletea/v2"

// textInput is a minimal editable text field for the query line and builder
// values.
type textInput struct {
	value  string
	cursor int
}

func newTextInput(value string) textInput {
	return textInput{
		value:  value,
		cursor: len(value),
	}
}

func (t textInput) handleKey(msg tea.KeyPressMsg) textInput {
	switch msg.String() {
	case "backspace":
		if t.cursor > 0 {
			t.value = t.value[:t.cursor-1] + t.value[t.cursor:]
			t.cursor--
		}
	case "delete":
		if t.cursor < len(t.value) {
			t.value = t.value[:t.cursor] + t.value[t.cursor+1:]
		}
	case "left":
		if t.cursor > 0 {
			t.cursor--
		}
	case "right":
		if t.cursor < len(t.value) {
			t.cursor++
		}
	case "home", "ctrl+a":
		t.cursor = 0
	case "end", "ctrl+e":
		t.cursor = len(t.value)
	default:
		if len(msg.String()) == 1 {
			t.value = t.value[:t.cursor] + msg.String() + t.value[t.cursor:]
			t.cursor++
		}
	}
	return t
}

func (t textInput) Value() string {
	return t.value
}
