package presser

import (
	"time"

	"midi2keys/keymap"
)

// DirectOptions selects the key-stroke variant for the direct path.
type DirectOptions struct {
	// HoldCtrl keeps ctrl-band keys held instead of tapping them.
	HoldCtrl bool
	// TransposeShift replaces Shift+key strokes with a transpose-up,
	// plain key, transpose-down sequence.
	TransposeShift bool
	// LazyTranspose latches the transposition at 0 or 1 instead of
	// returning to 0 around every sharp.
	LazyTranspose bool
	// TransposeDelay is the pause between transpose taps and key
	// strokes in the TransposeShift variants.
	TransposeDelay time.Duration
}

// PlayDirect presses the mapping for a note without consulting the
// resolver. The stroke sequence depends on the mapping's modifier and
// the options; the lock is held through any configured delays.
func (p *Presser) PlayDirect(m keymap.Mapping, opt DirectOptions) {
	p.mu.Lock()
	defer p.mu.Unlock()

	handledTranspose := false
	if opt.TransposeShift {
		if opt.LazyTranspose {
			target := 0
			if m.Shift && !m.Ctrl {
				target = 1
			}
			if target != p.offset {
				key := keymap.KeyDown
				if target > p.offset {
					key = keymap.KeyUp
				}
				p.set(key, true)
				p.set(key, false)
				if opt.TransposeDelay > 0 {
					time.Sleep(opt.TransposeDelay)
				}
				p.offset = target
			}
			handledTranspose = true
		} else {
			// The eager variant always returns to net zero.
			p.offset = 0
		}
	}

	switch {
	case m.Ctrl:
		if opt.HoldCtrl {
			p.set(keymap.KeyCtrl, true)
			p.set(m.Key, true)
			p.set(keymap.KeyCtrl, false)
		} else {
			p.set(keymap.KeyCtrl, true)
			p.set(m.Key, true)
			p.set(m.Key, false)
			p.set(keymap.KeyCtrl, false)
		}
	case m.Shift:
		if opt.TransposeShift {
			if handledTranspose {
				p.set(m.Key, true)
			} else {
				p.set(keymap.KeyUp, true)
				p.set(keymap.KeyUp, false)
				if opt.TransposeDelay > 0 {
					time.Sleep(opt.TransposeDelay)
				}
				p.set(m.Key, true)
				if opt.TransposeDelay > 0 {
					time.Sleep(opt.TransposeDelay)
				}
				p.set(keymap.KeyDown, true)
				p.set(keymap.KeyDown, false)
			}
		} else {
			p.set(keymap.KeyShift, true)
			p.set(m.Key, true)
			p.set(m.Key, false)
			p.set(keymap.KeyShift, false)
		}
	default:
		p.set(m.Key, true)
	}
}

// ReleaseDirect lifts the key for the variants that left it held.
// Tapped variants have nothing to release.
func (p *Presser) ReleaseDirect(m keymap.Mapping, opt DirectOptions) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case m.Ctrl && opt.HoldCtrl:
		p.set(m.Key, false)
	case m.Shift && opt.TransposeShift:
		p.set(m.Key, false)
	case !m.Shift && !m.Ctrl:
		p.set(m.Key, false)
	}
}
