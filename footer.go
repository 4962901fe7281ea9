package srql

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// renderFooter shows the result count and route, right-aligned, with a busy
// marker while a load is in flight.
func renderFooter(count int, route string, busy bool, width int) string {

	left := fmt.Sprintf("%d rows", count)
	if busy {
		left = "loading…"
	}
	right := route

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return mutedStyle.Render(left + strings.Repeat(" ", padding) + right)
}
