// Package solver picks, for each requested note, a physical key plus the
// modifier and transposition state needed to sound it without corrupting
// notes already held. It owns the bookkeeping of what the virtual
// keyboard currently has latched.
package solver

import (
	"math"

	"midi2keys/keymap"
)

// Mode selects how much transposition movement a resolution may spend.
type Mode int

const (
	// Efficiency keeps tap sequences short: only candidates within
	// maxJump taps of the current transposition qualify.
	Efficiency Mode = iota
	// Accuracy ignores the jump limit and takes the cheapest candidate
	// anywhere inside the transposition range.
	Accuracy
)

func (m Mode) String() string {
	if m == Accuracy {
		return "accuracy"
	}
	return "efficiency"
}

// busyPenalty is added to the cost of a candidate whose key is already
// sounding another note. It keeps occupied keys as a last resort instead
// of rejecting them outright: stealing a key cuts a note short, which
// beats dropping the new one when nothing else fits.
const busyPenalty = 100

// Result is a successful resolution: press Mapping.Key with the
// mapping's modifiers once the device transposition sits at Delta.
type Result struct {
	Delta   int
	Mapping keymap.Mapping
}

// State tracks what the engine believes the target keyboard has latched.
// It is not safe for concurrent use; callers serialize access (the
// presser guards it together with the device handle).
type State struct {
	table keymap.Table

	// held maps each pressed key to the input notes occupying it.
	// Entries are removed as soon as their note set empties, so
	// presence in the map means the key is physically down.
	held  map[keymap.Key]map[uint8]struct{}
	shift bool
	ctrl  bool

	// transpose is a ratchet: the device only exposes +1/-1 taps, so
	// this belief changes only by counting taps actually issued (via
	// RegisterNoteOn) or at an explicit resynchronization point.
	transpose int
}

// NewState creates an empty state resolving against table.
func NewState(table keymap.Table) *State {
	return &State{
		table: table,
		held:  make(map[keymap.Key]map[uint8]struct{}),
	}
}

// Solve searches the table for a way to sound target. It does not mutate
// state: the caller actuates the result first, then records it with
// RegisterNoteOn.
//
// Every mapping reaching target within transposeRange is costed by the
// number of taps from the current transposition, plus busyPenalty when
// its key is occupied. Candidates whose modifiers clash with held notes
// are rejected outright. Efficiency mode drops candidates costing more
// than maxJump; both modes pick the cheapest survivor, first table entry
// winning ties.
func (s *State) Solve(target uint8, mode Mode, maxJump, transposeRange int) (Result, bool) {
	var best Result
	minCost := math.MaxInt
	found := false

	for _, m := range s.table {
		delta := int(target) - int(m.Note)
		if abs(delta) > transposeRange {
			continue
		}
		if !s.modifierSafe(m) {
			continue
		}

		cost := abs(delta - s.transpose)
		if _, busy := s.held[m.Key]; busy {
			cost += busyPenalty
		}
		if mode == Efficiency && cost > maxJump {
			continue
		}

		if cost < minCost {
			minCost = cost
			best = Result{Delta: delta, Mapping: m}
			found = true
		}
	}
	return best, found
}

// modifierSafe reports whether pressing m would leave every held key's
// meaning intact. Shift and Ctrl are global on the target keyboard:
// toggling one silently remaps every held key at once, so while anything
// is held a candidate must match the latched modifiers exactly.
func (s *State) modifierSafe(m keymap.Mapping) bool {
	if len(s.held) == 0 {
		return true
	}
	return m.Shift == s.shift && m.Ctrl == s.ctrl
}

// RegisterNoteOn records note as occupying key, with the transposition
// and modifier state the actuator has just realized. Call only after the
// physical actions succeeded (or were attempted); this is the sole
// writer of the engine's device belief.
func (s *State) RegisterNoteOn(key keymap.Key, note uint8, delta int, shift, ctrl bool) {
	set, ok := s.held[key]
	if !ok {
		set = make(map[uint8]struct{})
		s.held[key] = set
	}
	set[note] = struct{}{}
	s.transpose = delta
	s.shift = shift
	s.ctrl = ctrl
}

// RegisterNoteOff removes note from whichever key it occupies. It
// returns the key when its occupant set emptied, signalling the caller
// to release it physically. When the last held note goes, both modifier
// flags reset: nothing sounds, so the modifiers are free.
//
// A note that was never registered (double release, or a note that
// failed to resolve) returns false and mutates nothing.
func (s *State) RegisterNoteOff(note uint8) (keymap.Key, bool) {
	for key, notes := range s.held {
		if _, ok := notes[note]; !ok {
			continue
		}
		delete(notes, note)
		released := len(notes) == 0
		if released {
			delete(s.held, key)
		}
		if len(s.held) == 0 {
			s.shift = false
			s.ctrl = false
		}
		if released {
			return key, true
		}
		return "", false
	}
	return "", false
}

// ResetKeys clears all held-key bookkeeping and both modifier flags,
// returning the keys that were down so the caller can emit matching
// releases. Transposition belief is untouched: the device offset does
// not move when keys let go.
func (s *State) ResetKeys() []keymap.Key {
	keys := make([]keymap.Key, 0, len(s.held))
	for key := range s.held {
		keys = append(keys, key)
	}
	s.held = make(map[keymap.Key]map[uint8]struct{})
	s.shift = false
	s.ctrl = false
	return keys
}

// ResetTransposition zeroes the transposition belief without issuing any
// taps. Only valid when the device offset is independently known to be
// zero; otherwise the ratchet desyncs until the next known-good reset.
func (s *State) ResetTransposition() {
	s.transpose = 0
}

// Transposition returns the engine's current transposition belief.
func (s *State) Transposition() int {
	return s.transpose
}

// ShiftActive reports the modifier state the engine believes is latched.
func (s *State) ShiftActive() bool {
	return s.shift
}

func (s *State) CtrlActive() bool {
	return s.ctrl
}

// KeyBusy reports whether key is currently sounding at least one note.
func (s *State) KeyBusy(key keymap.Key) bool {
	_, ok := s.held[key]
	return ok
}

// HeldKeyCount returns how many physical keys are currently down.
func (s *State) HeldKeyCount() int {
	return len(s.held)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
