package config

import (
	"sync/atomic"
	"time"
)

// Settings holds the live tunables shared between the TUI and the MIDI
// callback. Every field is atomic: the callback reads them per event
// while the TUI writes them, with no lock between the two.
type Settings struct {
	solverEnabled  atomic.Bool
	efficiency     atomic.Bool
	maxJump        atomic.Int64
	transposeRange atomic.Int64

	quantize   atomic.Bool
	quantizeMs atomic.Int64

	lowRange   atomic.Bool
	baseRange  atomic.Bool
	highRange  atomic.Bool
	autoOctave atomic.Bool

	holdCtrl       atomic.Bool
	transposeShift atomic.Bool
	lazyTranspose  atomic.Bool
	transposeMs    atomic.Int64
}

// NewSettings seeds the runtime settings from a loaded config.
func NewSettings(c *Config) *Settings {
	s := &Settings{}
	s.solverEnabled.Store(c.Solver.Enabled)
	s.efficiency.Store(c.Solver.Mode != ModeAccuracy)
	s.SetMaxJump(c.Solver.MaxJump)
	s.SetTransposeRange(c.Solver.TransposeRange)
	s.quantize.Store(c.Quantize.Enabled)
	s.quantizeMs.Store(int64(c.Quantize.GridMs))
	s.lowRange.Store(c.Ranges.Low)
	s.baseRange.Store(c.Ranges.Base)
	s.highRange.Store(c.Ranges.High)
	s.autoOctave.Store(c.Ranges.AutoOctave)
	s.holdCtrl.Store(c.Direct.HoldCtrl)
	s.transposeShift.Store(c.Direct.TransposeShift)
	s.lazyTranspose.Store(c.Direct.LazyTranspose)
	s.transposeMs.Store(int64(c.Direct.TransposeDelayMs))
	return s
}

// Capture writes the current runtime values back into the config,
// so toggles made in the TUI survive a restart.
func (c *Config) Capture(s *Settings) {
	c.Solver.Enabled = s.SolverEnabled()
	if s.Efficiency() {
		c.Solver.Mode = ModeEfficiency
	} else {
		c.Solver.Mode = ModeAccuracy
	}
	c.Solver.MaxJump = s.MaxJump()
	c.Solver.TransposeRange = s.TransposeRange()
	c.Quantize.Enabled = s.QuantizeEnabled()
	c.Quantize.GridMs = int(s.QuantizeGrid() / time.Millisecond)
	c.Ranges.Low = s.LowRange()
	c.Ranges.Base = s.BaseRange()
	c.Ranges.High = s.HighRange()
	c.Ranges.AutoOctave = s.AutoOctave()
	c.Direct.HoldCtrl = s.HoldCtrl()
	c.Direct.TransposeShift = s.TransposeShift()
	c.Direct.LazyTranspose = s.LazyTranspose()
	c.Direct.TransposeDelayMs = int(s.TransposeDelay() / time.Millisecond)
}

func (s *Settings) SolverEnabled() bool        { return s.solverEnabled.Load() }
func (s *Settings) SetSolverEnabled(v bool)    { s.solverEnabled.Store(v) }
func (s *Settings) Efficiency() bool           { return s.efficiency.Load() }
func (s *Settings) SetEfficiency(v bool)       { s.efficiency.Store(v) }
func (s *Settings) MaxJump() int               { return int(s.maxJump.Load()) }
func (s *Settings) TransposeRange() int        { return int(s.transposeRange.Load()) }
func (s *Settings) QuantizeEnabled() bool      { return s.quantize.Load() }
func (s *Settings) SetQuantizeEnabled(v bool)  { s.quantize.Store(v) }
func (s *Settings) LowRange() bool             { return s.lowRange.Load() }
func (s *Settings) SetLowRange(v bool)         { s.lowRange.Store(v) }
func (s *Settings) BaseRange() bool            { return s.baseRange.Load() }
func (s *Settings) SetBaseRange(v bool)        { s.baseRange.Store(v) }
func (s *Settings) HighRange() bool            { return s.highRange.Load() }
func (s *Settings) SetHighRange(v bool)        { s.highRange.Store(v) }
func (s *Settings) AutoOctave() bool           { return s.autoOctave.Load() }
func (s *Settings) SetAutoOctave(v bool)       { s.autoOctave.Store(v) }
func (s *Settings) HoldCtrl() bool             { return s.holdCtrl.Load() }
func (s *Settings) SetHoldCtrl(v bool)         { s.holdCtrl.Store(v) }
func (s *Settings) TransposeShift() bool       { return s.transposeShift.Load() }
func (s *Settings) SetTransposeShift(v bool)   { s.transposeShift.Store(v) }
func (s *Settings) LazyTranspose() bool        { return s.lazyTranspose.Load() }
func (s *Settings) SetLazyTranspose(v bool)    { s.lazyTranspose.Store(v) }

// SetMaxJump clamps the jump limit to at least 1 tap.
func (s *Settings) SetMaxJump(v int) {
	if v < 1 {
		v = 1
	}
	s.maxJump.Store(int64(v))
}

// SetTransposeRange clamps the range to at least 1 semitone.
func (s *Settings) SetTransposeRange(v int) {
	if v < 1 {
		v = 1
	}
	s.transposeRange.Store(int64(v))
}

// QuantizeGrid returns the quantization grid as a duration.
func (s *Settings) QuantizeGrid() time.Duration {
	return time.Duration(s.quantizeMs.Load()) * time.Millisecond
}

// SetQuantizeGridMs clamps the grid to at least 1ms.
func (s *Settings) SetQuantizeGridMs(ms int) {
	if ms < 1 {
		ms = 1
	}
	s.quantizeMs.Store(int64(ms))
}

// TransposeDelay returns the delay between direct-path transpose taps.
func (s *Settings) TransposeDelay() time.Duration {
	return time.Duration(s.transposeMs.Load()) * time.Millisecond
}

func (s *Settings) SetTransposeDelayMs(ms int) {
	if ms < 0 {
		ms = 0
	}
	s.transposeMs.Store(int64(ms))
}
