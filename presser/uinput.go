package presser

import (
	"fmt"

	"github.com/holoplot/go-evdev"

	"midi2keys/keymap"
)

// keyCodes maps mapping keys to Linux input event codes.
var keyCodes = map[keymap.Key]evdev.EvCode{
	"1": evdev.KEY_1,
	"2": evdev.KEY_2,
	"3": evdev.KEY_3,
	"4": evdev.KEY_4,
	"5": evdev.KEY_5,
	"6": evdev.KEY_6,
	"7": evdev.KEY_7,
	"8": evdev.KEY_8,
	"9": evdev.KEY_9,
	"0": evdev.KEY_0,
	"a": evdev.KEY_A,
	"b": evdev.KEY_B,
	"c": evdev.KEY_C,
	"d": evdev.KEY_D,
	"e": evdev.KEY_E,
	"f": evdev.KEY_F,
	"g": evdev.KEY_G,
	"h": evdev.KEY_H,
	"i": evdev.KEY_I,
	"j": evdev.KEY_J,
	"k": evdev.KEY_K,
	"l": evdev.KEY_L,
	"m": evdev.KEY_M,
	"n": evdev.KEY_N,
	"o": evdev.KEY_O,
	"p": evdev.KEY_P,
	"q": evdev.KEY_Q,
	"r": evdev.KEY_R,
	"s": evdev.KEY_S,
	"t": evdev.KEY_T,
	"u": evdev.KEY_U,
	"v": evdev.KEY_V,
	"w": evdev.KEY_W,
	"x": evdev.KEY_X,
	"y": evdev.KEY_Y,
	"z": evdev.KEY_Z,

	keymap.KeyShift: evdev.KEY_LEFTSHIFT,
	keymap.KeyCtrl:  evdev.KEY_LEFTCTRL,
	keymap.KeyUp:    evdev.KEY_UP,
	keymap.KeyDown:  evdev.KEY_DOWN,
}

// UinputKeyboard is a virtual keyboard backed by /dev/uinput.
type UinputKeyboard struct {
	dev *evdev.InputDevice
}

// NewUinputKeyboard registers a virtual keyboard exposing every key the
// table uses plus the modifier and transpose keys.
func NewUinputKeyboard(name string, table keymap.Table) (*UinputKeyboard, error) {
	seen := make(map[evdev.EvCode]bool)
	var codes []evdev.EvCode
	add := func(k keymap.Key) error {
		code, ok := keyCodes[k]
		if !ok {
			return fmt.Errorf("no key code for %q", k)
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
		return nil
	}

	for _, k := range table.Keys() {
		if err := add(k); err != nil {
			return nil, err
		}
	}
	for _, k := range []keymap.Key{keymap.KeyShift, keymap.KeyCtrl, keymap.KeyUp, keymap.KeyDown} {
		if err := add(k); err != nil {
			return nil, err
		}
	}

	dev, err := evdev.CreateDevice(name,
		evdev.InputID{BusType: evdev.BUS_VIRTUAL, Version: 1},
		map[evdev.EvType][]evdev.EvCode{evdev.EV_KEY: codes},
	)
	if err != nil {
		return nil, fmt.Errorf("create uinput device: %w", err)
	}
	return &UinputKeyboard{dev: dev}, nil
}

func (u *UinputKeyboard) Set(key keymap.Key, pressed bool) error {
	code, ok := keyCodes[key]
	if !ok {
		return fmt.Errorf("no key code for %q", key)
	}
	var value int32
	if pressed {
		value = 1
	}
	if err := u.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value}); err != nil {
		return err
	}
	return u.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT})
}

func (u *UinputKeyboard) Close() error {
	return u.dev.Close()
}
