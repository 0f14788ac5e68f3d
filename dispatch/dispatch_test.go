package dispatch

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"midi2keys/config"
	"midi2keys/keymap"
	"midi2keys/presser"
)

type action struct {
	key     keymap.Key
	pressed bool
}

type fakeDevice struct {
	actions []action
}

func (f *fakeDevice) Set(key keymap.Key, pressed bool) error {
	f.actions = append(f.actions, action{key, pressed})
	return nil
}

func (f *fakeDevice) Close() error { return nil }

func newTestDispatcher(t *testing.T, mutate func(*config.Config)) (*Dispatcher, *fakeDevice) {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	dev := &fakeDevice{}
	table := keymap.Builtin()
	pr := presser.New(dev, table, zap.NewNop())
	return New(config.NewSettings(cfg), pr, table, zap.NewNop()), dev
}

func directOnly(cfg *config.Config) {
	cfg.Solver.Enabled = false
}

func TestHandleDropsShortMessages(t *testing.T) {
	d, dev := newTestDispatcher(t, nil)

	d.Handle(nil)
	d.Handle([]byte{0x90})
	d.Handle([]byte{0x90, 60})

	if len(dev.actions) != 0 {
		t.Errorf("actions = %v, want none", dev.actions)
	}
	if len(d.ActiveInput()) != 0 {
		t.Error("short messages should not reach the input tracker")
	}
}

func TestHandleIgnoresNonNoteStatus(t *testing.T) {
	d, dev := newTestDispatcher(t, nil)

	d.Handle([]byte{0xB0, 64, 127}) // control change
	d.Handle([]byte{0xE0, 0, 64})   // pitch bend

	if len(dev.actions) != 0 || len(d.ActiveInput()) != 0 {
		t.Error("non-note messages should be dropped")
	}
}

func TestHandleDrumChannel(t *testing.T) {
	d, dev := newTestDispatcher(t, nil)

	d.Handle([]byte{0x99, 60, 100})

	if !d.ActiveInput()[60] {
		t.Error("drum notes still show on the input strip")
	}
	if len(dev.actions) != 0 {
		t.Errorf("actions = %v, want none for channel 10", dev.actions)
	}
	if len(d.ActiveOutput()) != 0 {
		t.Error("drum notes must not reach the output")
	}
}

func TestHandleVelocityZeroIsNoteOff(t *testing.T) {
	d, dev := newTestDispatcher(t, nil)

	d.Handle([]byte{0x90, 60, 100})
	if len(dev.actions) == 0 || dev.actions[0] != (action{"t", true}) {
		t.Fatalf("actions = %v, want t down first", dev.actions)
	}
	if !d.ActiveOutput()[60] {
		t.Error("output set should contain the sounding note")
	}

	dev.actions = nil
	d.Handle([]byte{0x90, 60, 0})
	if len(dev.actions) == 0 || dev.actions[0] != (action{"t", false}) {
		t.Fatalf("actions = %v, want t up first", dev.actions)
	}
	if d.ActiveOutput()[60] {
		t.Error("output set should drop the note on release")
	}
	if d.ActiveInput()[60] {
		t.Error("input set should drop the note on release")
	}
}

func TestHandleDirectPath(t *testing.T) {
	d, dev := newTestDispatcher(t, directOnly)

	d.Handle([]byte{0x90, 60, 100})
	if len(dev.actions) != 1 || dev.actions[0] != (action{"t", true}) {
		t.Fatalf("actions = %v, want a single plain press", dev.actions)
	}

	dev.actions = nil
	d.Handle([]byte{0x80, 60, 0})
	if len(dev.actions) != 1 || dev.actions[0] != (action{"t", false}) {
		t.Fatalf("actions = %v, want a single plain release", dev.actions)
	}
}

func TestHandleRangeGateDropsNote(t *testing.T) {
	d, dev := newTestDispatcher(t, directOnly)

	// C1 sits in the low band, which is off by default.
	d.Handle([]byte{0x90, 24, 100})

	if len(dev.actions) != 0 {
		t.Errorf("actions = %v, want none", dev.actions)
	}
	if !d.ActiveInput()[24] {
		t.Error("gated notes still show on the input strip")
	}
	if len(d.ActiveOutput()) != 0 {
		t.Error("gated notes must not reach the output")
	}
}

func TestHandleAutoOctaveWalksUp(t *testing.T) {
	d, dev := newTestDispatcher(t, func(cfg *config.Config) {
		directOnly(cfg)
		cfg.Ranges.AutoOctave = true
	})

	// C1 walks up into the base band and lands on C2.
	d.Handle([]byte{0x90, 24, 100})

	if len(dev.actions) != 1 || dev.actions[0] != (action{"1", true}) {
		t.Fatalf("actions = %v, want C2's key pressed", dev.actions)
	}
	if !d.ActiveOutput()[24] {
		t.Error("output tracks the original note, not the shifted one")
	}
}

func TestHandleAutoOctaveWalksDown(t *testing.T) {
	d, dev := newTestDispatcher(t, func(cfg *config.Config) {
		directOnly(cfg)
		cfg.Ranges.AutoOctave = true
	})

	// E7 is above the base band; the only enabled octave is below.
	d.Handle([]byte{0x90, 100, 100})

	if len(dev.actions) != 1 || dev.actions[0] != (action{"x", true}) {
		t.Fatalf("actions = %v, want E6's key pressed", dev.actions)
	}
}

func TestHandleDirectUnmappedNote(t *testing.T) {
	d, dev := newTestDispatcher(t, func(cfg *config.Config) {
		directOnly(cfg)
		cfg.Ranges.High = true
	})

	// Above the highest table entry but inside an enabled band.
	d.Handle([]byte{0x90, 112, 100})

	if len(dev.actions) != 0 {
		t.Errorf("actions = %v, want none for an unmapped note", dev.actions)
	}
}

func TestQuantizeWait(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		grid time.Duration
		want time.Duration
	}{
		{"zero grid", time.UnixMilli(1030), 0, 0},
		{"on the boundary", time.UnixMilli(1000), 100 * time.Millisecond, 0},
		{"mid grid", time.UnixMilli(1030), 100 * time.Millisecond, 70 * time.Millisecond},
		{"just before boundary", time.UnixMilli(1099), 100 * time.Millisecond, time.Millisecond},
		{"one ms grid", time.UnixMilli(1234), time.Millisecond, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := quantizeWait(tc.now, tc.grid); got != tc.want {
				t.Errorf("quantizeWait(%v, %v) = %v, want %v", tc.now.UnixMilli(), tc.grid, got, tc.want)
			}
		})
	}
}

func TestUpdatesSignalCoalesces(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	// Many events, one pending signal: the callback never blocks on a
	// slow TUI.
	for i := 0; i < 10; i++ {
		d.Handle([]byte{0x90, uint8(60 + i), 100})
	}

	select {
	case <-d.Updates():
	default:
		t.Fatal("expected a pending update signal")
	}
	select {
	case <-d.Updates():
		t.Fatal("expected the channel to hold at most one signal")
	default:
	}
}
