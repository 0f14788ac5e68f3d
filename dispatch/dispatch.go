// Package dispatch routes raw MIDI messages to the presser, applying
// the range gates, quantization and the solver/direct split.
package dispatch

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"midi2keys/config"
	"midi2keys/keymap"
	"midi2keys/midi"
	"midi2keys/presser"
	"midi2keys/solver"
)

// Dispatcher consumes raw note events from the input port callback.
// It also tracks the active input and output note sets for the TUI.
type Dispatcher struct {
	settings *config.Settings
	presser  *presser.Presser
	table    keymap.Table
	log      *zap.Logger

	mu  sync.Mutex
	in  map[uint8]struct{}
	out map[uint8]struct{}

	updates chan struct{}
}

func New(settings *config.Settings, pr *presser.Presser, table keymap.Table, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		settings: settings,
		presser:  pr,
		table:    table,
		log:      log,
		in:       make(map[uint8]struct{}),
		out:      make(map[uint8]struct{}),
		updates:  make(chan struct{}, 1),
	}
}

// Handle processes one raw MIDI message. It runs on the input port's
// callback goroutine; anything that is not a 3-byte note message is
// dropped without logging.
func (d *Dispatcher) Handle(raw []byte) {
	if len(raw) < 3 {
		return
	}
	status := raw[0] & 0xF0
	channel := raw[0] & 0x0F
	note := raw[1]
	velocity := raw[2]

	on := status == midi.NoteOn && velocity > 0
	off := status == midi.NoteOff || (status == midi.NoteOn && velocity == 0)
	if !on && !off {
		return
	}

	// The input strip shows everything, drums included.
	d.trackInput(note, on)

	if channel == midi.DrumChannel {
		return
	}

	if d.settings.SolverEnabled() {
		d.quantize(on)
		d.handleSolver(note, on)
		return
	}

	final, ok := d.directNote(note)
	if !ok {
		if on {
			d.log.Debug("note outside enabled ranges", zap.Uint8("note", note))
		}
		return
	}
	d.quantize(on)
	d.handleDirect(final, note, on)
}

func (d *Dispatcher) handleSolver(note uint8, on bool) {
	if on {
		mode := solver.Accuracy
		if d.settings.Efficiency() {
			mode = solver.Efficiency
		}
		if d.presser.PlayNote(note, mode, d.settings.MaxJump(), d.settings.TransposeRange()) {
			d.trackOutput(note, true)
		}
		return
	}
	d.presser.ReleaseNote(note)
	d.trackOutput(note, false)
}

func (d *Dispatcher) handleDirect(final, original uint8, on bool) {
	m, ok := d.table.FirstForNote(final)
	if !ok {
		d.log.Debug("no mapping for note", zap.Uint8("note", final))
		return
	}
	opt := presser.DirectOptions{
		HoldCtrl:       d.settings.HoldCtrl(),
		TransposeShift: d.settings.TransposeShift(),
		LazyTranspose:  d.settings.LazyTranspose(),
		TransposeDelay: d.settings.TransposeDelay(),
	}
	if on {
		d.trackOutput(original, true)
		d.presser.PlayDirect(m, opt)
		return
	}
	d.trackOutput(original, false)
	d.presser.ReleaseDirect(m, opt)
}

// directNote applies the band gates. With auto-octave on, a gated note
// walks up an octave at a time, then down, until an enabled band takes
// it. The second return is false when no band can.
func (d *Dispatcher) directNote(note uint8) (uint8, bool) {
	if d.bandEnabled(note) {
		return note, true
	}
	if !d.settings.AutoOctave() {
		return 0, false
	}
	for n := int(note) + 12; n <= 108; n += 12 {
		if d.bandEnabled(uint8(n)) {
			return uint8(n), true
		}
	}
	for n := int(note) - 12; n >= 21; n -= 12 {
		if d.bandEnabled(uint8(n)) {
			return uint8(n), true
		}
	}
	return 0, false
}

func (d *Dispatcher) bandEnabled(note uint8) bool {
	switch keymap.BandOf(note) {
	case keymap.BandLow:
		return d.settings.LowRange()
	case keymap.BandHigh:
		return d.settings.HighRange()
	default:
		return d.settings.BaseRange()
	}
}

// quantize holds a note-on until the next grid boundary. Note-offs
// pass through untouched.
func (d *Dispatcher) quantize(on bool) {
	if !on || !d.settings.QuantizeEnabled() {
		return
	}
	if wait := quantizeWait(time.Now(), d.settings.QuantizeGrid()); wait > 0 {
		time.Sleep(wait)
	}
}

// quantizeWait returns how long a note-on must wait to land on the
// next wall-clock grid boundary.
func quantizeWait(now time.Time, grid time.Duration) time.Duration {
	gridMs := int64(grid / time.Millisecond)
	if gridMs <= 0 {
		return 0
	}
	rem := now.UnixMilli() % gridMs
	if rem == 0 {
		return 0
	}
	return time.Duration(gridMs-rem) * time.Millisecond
}

func (d *Dispatcher) trackInput(note uint8, on bool) {
	d.mu.Lock()
	if on {
		d.in[note] = struct{}{}
	} else {
		delete(d.in, note)
	}
	d.mu.Unlock()
	d.notify()
}

func (d *Dispatcher) trackOutput(note uint8, on bool) {
	d.mu.Lock()
	if on {
		d.out[note] = struct{}{}
	} else {
		delete(d.out, note)
	}
	d.mu.Unlock()
	d.notify()
}

// notify pokes the TUI without ever blocking the MIDI callback.
func (d *Dispatcher) notify() {
	select {
	case d.updates <- struct{}{}:
	default:
	}
}

// Updates signals that the active note sets changed.
func (d *Dispatcher) Updates() <-chan struct{} {
	return d.updates
}

// ActiveInput returns the notes currently sounding on the MIDI side.
func (d *Dispatcher) ActiveInput() map[uint8]bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	set := make(map[uint8]bool, len(d.in))
	for n := range d.in {
		set[n] = true
	}
	return set
}

// ActiveOutput returns the notes the presser currently voices.
func (d *Dispatcher) ActiveOutput() map[uint8]bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	set := make(map[uint8]bool, len(d.out))
	for n := range d.out {
		set[n] = true
	}
	return set
}
