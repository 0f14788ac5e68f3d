package midi

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// DrumChannel is MIDI channel 10 (zero-based 9), ignored for playing.
const DrumChannel uint8 = 9

// EventType identifies a watcher connection event
type EventType int

const (
	Connected EventType = iota
	Disconnected
)

// Event reports a port connection change to the TUI
type Event struct {
	Type EventType
	Port string
}
