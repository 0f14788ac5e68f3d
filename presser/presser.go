package presser

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"midi2keys/keymap"
	"midi2keys/solver"
)

// tapSettle is the pause after a transpose tap or a forced release,
// long enough for the game to register the transition.
const tapSettle = 5 * time.Millisecond

// Presser owns the virtual keyboard and the resolution state. One lock
// covers both: every sequence of key transitions runs to completion
// before the next note is handled.
type Presser struct {
	mu     sync.Mutex
	dev    Device
	state  *solver.State
	offset int
	log    *zap.Logger
}

func New(dev Device, table keymap.Table, log *zap.Logger) *Presser {
	return &Presser{dev: dev, state: solver.NewState(table), log: log}
}

// PlayNote resolves a note and walks the device to it: transpose taps,
// modifier toggles, then the key itself. It reports whether a key was
// pressed.
func (p *Presser) PlayNote(note uint8, mode solver.Mode, maxJump, transposeRange int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	res, ok := p.state.Solve(note, mode, maxJump, transposeRange)
	if !ok {
		p.log.Debug("note unresolvable",
			zap.Uint8("note", note),
			zap.Stringer("mode", mode),
			zap.Int("transposition", p.state.Transposition()))
		return false
	}
	m := res.Mapping

	if res.Delta != p.state.Transposition() {
		p.tapTranspose(res.Delta)
	}

	if m.Shift != p.state.ShiftActive() {
		p.set(keymap.KeyShift, m.Shift)
	}
	if m.Ctrl != p.state.CtrlActive() {
		p.set(keymap.KeyCtrl, m.Ctrl)
	}

	// A stolen key must come up before it can go down again.
	if p.state.KeyBusy(m.Key) {
		p.set(m.Key, false)
		time.Sleep(tapSettle)
	}

	p.set(m.Key, true)
	p.state.RegisterNoteOn(m.Key, note, res.Delta, m.Shift, m.Ctrl)
	return true
}

// ReleaseNote lifts the key a note holds, once its last occupant is
// gone. It reports whether a key came up.
func (p *Presser) ReleaseNote(note uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	key, ok := p.state.RegisterNoteOff(note)
	if !ok {
		return false
	}
	p.set(key, false)
	if !p.state.ShiftActive() {
		p.set(keymap.KeyShift, false)
	}
	if !p.state.CtrlActive() {
		p.set(keymap.KeyCtrl, false)
	}
	return true
}

// ReleaseAll force-releases everything believed held plus both
// modifiers. Transposition is left alone.
func (p *Presser) ReleaseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := p.state.ResetKeys()
	for _, k := range keys {
		p.set(k, false)
	}
	p.set(keymap.KeyShift, false)
	p.set(keymap.KeyCtrl, false)
	p.log.Info("released all keys", zap.Int("count", len(keys)))
}

// ResyncTransposition zeroes the transposition bookkeeping without
// emitting taps. Nothing verifies the game agrees; use it after
// fixing the game's transposition by hand.
func (p *Presser) ResyncTransposition() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.ResetTransposition()
	p.offset = 0
	p.log.Info("transposition counters zeroed")
}

// Transposition returns the believed game transposition in taps.
func (p *Presser) Transposition() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Transposition()
}

// HeldKeyCount returns how many keys are believed down.
func (p *Presser) HeldKeyCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.HeldKeyCount()
}

// tapTranspose walks the game's transposition to delta with Up or
// Down taps, pausing after each so none get swallowed.
func (p *Presser) tapTranspose(delta int) {
	diff := delta - p.state.Transposition()
	key := keymap.KeyUp
	if diff < 0 {
		key = keymap.KeyDown
	}
	for i := 0; i < abs(diff); i++ {
		p.set(key, true)
		p.set(key, false)
		time.Sleep(tapSettle)
	}
	p.offset = delta
}

// set emits one transition. Device failures are logged and skipped;
// the note sequence keeps going.
func (p *Presser) set(key keymap.Key, pressed bool) {
	if err := p.dev.Set(key, pressed); err != nil {
		p.log.Warn("key emission failed",
			zap.String("key", string(key)),
			zap.Bool("pressed", pressed),
			zap.Error(err))
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
