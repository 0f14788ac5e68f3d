package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// The strip covers the 88 keys of a full piano, A0 to C8.
const (
	stripLow  = 21
	stripHigh = 108
)

var (
	whiteIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	blackIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	outputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	bothStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
)

func isBlackKey(note uint8) bool {
	switch note % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// pianoStrip draws the keyboard as two rows, black keys above their
// left white neighbor. Incoming notes light green, emitted notes
// blue, both at once cyan.
func pianoStrip(input, output map[uint8]bool) string {
	lit := func(note uint8, idle lipgloss.Style) lipgloss.Style {
		in, out := input[note], output[note]
		switch {
		case in && out:
			return bothStyle
		case out:
			return outputStyle
		case in:
			return inputStyle
		}
		return idle
	}

	var top, bottom []string
	for note := uint8(stripLow); note <= stripHigh; note++ {
		if isBlackKey(note) {
			top[len(top)-1] = lit(note, blackIdle).Render("▀")
			continue
		}
		top = append(top, " ")
		bottom = append(bottom, lit(note, whiteIdle).Render("█"))
	}
	return strings.Join(top, "") + "\n" + strings.Join(bottom, "")
}
