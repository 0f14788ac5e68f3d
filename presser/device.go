// Package presser turns resolved notes into key transitions on a
// virtual keyboard device.
package presser

import "midi2keys/keymap"

// Device emits key transitions to the operating system.
type Device interface {
	// Set presses (true) or releases (false) a key.
	Set(key keymap.Key, pressed bool) error
	Close() error
}
