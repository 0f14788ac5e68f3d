// Package keymap holds the note-to-key mapping table: which physical key,
// under which modifiers, sounds a given MIDI note when the target app's
// transposition sits at zero.
package keymap

// Key identifies one addressable key on the virtual keyboard. Playable
// keys are single lowercase letters and digits; the remaining keys are
// reserved for the presser (modifiers and transpose arrows).
type Key string

const (
	KeyShift Key = "leftshift"
	KeyCtrl  Key = "leftctrl"
	KeyUp    Key = "up"
	KeyDown  Key = "down"
)

// Playable reports whether the key may appear in a mapping table entry.
func (k Key) Playable() bool {
	if len(k) != 1 {
		return false
	}
	c := k[0]
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')
}

// Mapping ties a MIDI note to the key and modifier state that sound it.
// Immutable once loaded.
type Mapping struct {
	Note  uint8 `json:"note"`
	Key   Key   `json:"key"`
	Shift bool  `json:"shift"`
	Ctrl  bool  `json:"ctrl"`
}

// Table is an ordered list of mappings. Resolution scans it front to
// back, so order is part of the contract: earlier entries win cost ties.
type Table []Mapping

// FirstForNote returns the first mapping for an exact note.
func (t Table) FirstForNote(note uint8) (Mapping, bool) {
	for _, m := range t {
		if m.Note == note {
			return m, true
		}
	}
	return Mapping{}, false
}

// Keys returns the distinct playable keys in table order, for device
// capability registration.
func (t Table) Keys() []Key {
	seen := make(map[Key]bool, len(t))
	var keys []Key
	for _, m := range t {
		if !seen[m.Key] {
			seen[m.Key] = true
			keys = append(keys, m.Key)
		}
	}
	return keys
}

// Band classifies notes into the ranges the enable flags gate: low is
// everything below C2, high everything above C7.
type Band int

const (
	BandLow Band = iota
	BandBase
	BandHigh
)

func BandOf(note uint8) Band {
	switch {
	case note < 36:
		return BandLow
	case note > 96:
		return BandHigh
	default:
		return BandBase
	}
}

// builtin covers the full 88-key range A0..C8. The octaves outside the
// app's plain keyboard are reached by holding Ctrl; accidentals inside
// it by holding Shift.
var builtin = Table{
	// Low range (A0 to B1), Ctrl held
	{Note: 21, Key: "1", Ctrl: true}, // A0
	{Note: 22, Key: "2", Ctrl: true}, // A#0
	{Note: 23, Key: "3", Ctrl: true}, // B0
	{Note: 24, Key: "4", Ctrl: true}, // C1
	{Note: 25, Key: "5", Ctrl: true}, // C#1
	{Note: 26, Key: "6", Ctrl: true}, // D1
	{Note: 27, Key: "7", Ctrl: true}, // D#1
	{Note: 28, Key: "8", Ctrl: true}, // E1
	{Note: 29, Key: "9", Ctrl: true}, // F1
	{Note: 30, Key: "0", Ctrl: true}, // F#1
	{Note: 31, Key: "q", Ctrl: true}, // G1
	{Note: 32, Key: "w", Ctrl: true}, // G#1
	{Note: 33, Key: "e", Ctrl: true}, // A1
	{Note: 34, Key: "r", Ctrl: true}, // A#1
	{Note: 35, Key: "t", Ctrl: true}, // B1

	// Lower octaves (C2 to B3)
	{Note: 36, Key: "1"},              // C2
	{Note: 37, Key: "1", Shift: true}, // C#2
	{Note: 38, Key: "2"},              // D2
	{Note: 39, Key: "2", Shift: true}, // D#2
	{Note: 40, Key: "3"},              // E2
	{Note: 41, Key: "4"},              // F2
	{Note: 42, Key: "4", Shift: true}, // F#2
	{Note: 43, Key: "5"},              // G2
	{Note: 44, Key: "5", Shift: true}, // G#2
	{Note: 45, Key: "6"},              // A2
	{Note: 46, Key: "6", Shift: true}, // A#2
	{Note: 47, Key: "7"},              // B2
	{Note: 48, Key: "8"},              // C3
	{Note: 49, Key: "8", Shift: true}, // C#3
	{Note: 50, Key: "9"},              // D3
	{Note: 51, Key: "9", Shift: true}, // D#3
	{Note: 52, Key: "0"},              // E3
	{Note: 53, Key: "q"},              // F3
	{Note: 54, Key: "q", Shift: true}, // F#3
	{Note: 55, Key: "w"},              // G3
	{Note: 56, Key: "w", Shift: true}, // G#3
	{Note: 57, Key: "e"},              // A3
	{Note: 58, Key: "e", Shift: true}, // A#3
	{Note: 59, Key: "r"},              // B3

	// Middle octaves (C4 to C#6)
	{Note: 60, Key: "t"},              // C4
	{Note: 61, Key: "t", Shift: true}, // C#4
	{Note: 62, Key: "y"},              // D4
	{Note: 63, Key: "y", Shift: true}, // D#4
	{Note: 64, Key: "u"},              // E4
	{Note: 65, Key: "i"},              // F4
	{Note: 66, Key: "i", Shift: true}, // F#4
	{Note: 67, Key: "o"},              // G4
	{Note: 68, Key: "o", Shift: true}, // G#4
	{Note: 69, Key: "p"},              // A4
	{Note: 70, Key: "p", Shift: true}, // A#4
	{Note: 71, Key: "a"},              // B4
	{Note: 72, Key: "s"},              // C5
	{Note: 73, Key: "s", Shift: true}, // C#5
	{Note: 74, Key: "d"},              // D5
	{Note: 75, Key: "d", Shift: true}, // D#5
	{Note: 76, Key: "f"},              // E5
	{Note: 77, Key: "g"},              // F5
	{Note: 78, Key: "g", Shift: true}, // F#5
	{Note: 79, Key: "h"},              // G5
	{Note: 80, Key: "h", Shift: true}, // G#5
	{Note: 81, Key: "j"},              // A5
	{Note: 82, Key: "j", Shift: true}, // A#5
	{Note: 83, Key: "k"},              // B5
	{Note: 84, Key: "l"},              // C6
	{Note: 85, Key: "l", Shift: true}, // C#6

	// High octaves (D6 to C7)
	{Note: 86, Key: "z"},              // D6
	{Note: 87, Key: "z", Shift: true}, // D#6
	{Note: 88, Key: "x"},              // E6
	{Note: 89, Key: "c"},              // F6
	{Note: 90, Key: "c", Shift: true}, // F#6
	{Note: 91, Key: "v"},              // G6
	{Note: 92, Key: "v", Shift: true}, // G#6
	{Note: 93, Key: "b"},              // A6
	{Note: 94, Key: "b", Shift: true}, // A#6
	{Note: 95, Key: "n"},              // B6
	{Note: 96, Key: "m"},              // C7

	// High range (C#7 to C8), Ctrl held
	{Note: 97, Key: "y", Ctrl: true},  // C#7
	{Note: 98, Key: "u", Ctrl: true},  // D7
	{Note: 99, Key: "i", Ctrl: true},  // D#7
	{Note: 100, Key: "o", Ctrl: true}, // E7
	{Note: 101, Key: "p", Ctrl: true}, // F7
	{Note: 102, Key: "a", Ctrl: true}, // F#7
	{Note: 103, Key: "s", Ctrl: true}, // G7
	{Note: 104, Key: "d", Ctrl: true}, // G#7
	{Note: 105, Key: "f", Ctrl: true}, // A7
	{Note: 106, Key: "g", Ctrl: true}, // A#7
	{Note: 107, Key: "h", Ctrl: true}, // B7
	{Note: 108, Key: "j", Ctrl: true}, // C8
}

// Builtin returns the default table. Callers must treat it as read-only.
func Builtin() Table {
	return builtin
}
