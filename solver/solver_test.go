package solver

import (
	"testing"

	"midi2keys/keymap"
)

func TestSolveDirectHit(t *testing.T) {
	table := keymap.Table{{Note: 60, Key: "t"}}
	s := NewState(table)

	res, ok := s.Solve(60, Efficiency, 12, 24)
	if !ok {
		t.Fatal("expected a resolution")
	}
	if res.Delta != 0 {
		t.Errorf("delta = %d, want 0", res.Delta)
	}
	if res.Mapping.Key != "t" || res.Mapping.Shift || res.Mapping.Ctrl {
		t.Errorf("mapping = %+v, want plain t", res.Mapping)
	}
}

func TestSolveDeltaWithinRange(t *testing.T) {
	s := NewState(keymap.Builtin())

	for target := 0; target <= 127; target++ {
		res, ok := s.Solve(uint8(target), Accuracy, 12, 24)
		if !ok {
			continue
		}
		if res.Delta > 24 || res.Delta < -24 {
			t.Errorf("target %d: delta %d outside transpose range 24", target, res.Delta)
		}
		if int(res.Mapping.Note)+res.Delta != target {
			t.Errorf("target %d: mapping note %d + delta %d does not produce target",
				target, res.Mapping.Note, res.Delta)
		}
	}
}

func TestSolveEfficiencyRespectsMaxJump(t *testing.T) {
	s := NewState(keymap.Builtin())

	for target := 0; target <= 127; target++ {
		res, ok := s.Solve(uint8(target), Efficiency, 5, 24)
		if !ok {
			continue
		}
		// No keys are held, so cost is the raw tap count.
		if cost := abs(res.Delta - s.Transposition()); cost > 5 {
			t.Errorf("target %d: cost %d exceeds max jump 5", target, cost)
		}
	}
}

func TestSolveAccuracyIgnoresMaxJump(t *testing.T) {
	table := keymap.Table{{Note: 97, Key: "y", Ctrl: true}}
	s := NewState(table)

	if res, ok := s.Solve(97, Accuracy, 1, 24); !ok || res.Delta != 0 {
		t.Errorf("got (%+v, %v), want delta 0 resolution", res, ok)
	}

	// Park the transposition belief at 10 taps; nothing held afterwards.
	s.RegisterNoteOn("y", 97, 10, false, true)
	if _, ok := s.RegisterNoteOff(97); !ok {
		t.Fatal("expected key release")
	}

	if _, ok := s.Solve(97, Efficiency, 3, 24); ok {
		t.Error("efficiency mode should reject a 10-tap jump with max jump 3")
	}
	res, ok := s.Solve(97, Accuracy, 3, 24)
	if !ok {
		t.Fatal("accuracy mode should ignore max jump")
	}
	if res.Delta != 0 {
		t.Errorf("delta = %d, want 0", res.Delta)
	}
}

func TestSolveModifierSafety(t *testing.T) {
	table := keymap.Table{
		{Note: 60, Key: "t"},
		{Note: 61, Key: "t", Shift: true},
	}
	s := NewState(table)
	s.RegisterNoteOn("t", 60, 0, false, false)

	t.Run("efficiency finds nothing", func(t *testing.T) {
		// The shift variant clashes with the latched modifiers and the
		// plain mapping's key is busy, pushing its cost past max jump.
		if res, ok := s.Solve(61, Efficiency, 12, 24); ok {
			t.Errorf("expected no resolution, got %+v", res)
		}
	})

	t.Run("accuracy steals the busy key", func(t *testing.T) {
		res, ok := s.Solve(61, Accuracy, 12, 24)
		if !ok {
			t.Fatal("expected a steal resolution")
		}
		if res.Mapping.Key != "t" || res.Mapping.Shift {
			t.Errorf("mapping = %+v, want plain t", res.Mapping)
		}
		if res.Delta != 1 {
			t.Errorf("delta = %d, want 1", res.Delta)
		}
	})
}

func TestSolveNeverMixesModifiersWhileHeld(t *testing.T) {
	s := NewState(keymap.Builtin())
	// Hold C#2 = Shift+1.
	s.RegisterNoteOn("1", 37, 0, true, false)

	for target := 0; target <= 127; target++ {
		res, ok := s.Solve(uint8(target), Accuracy, 12, 24)
		if !ok {
			continue
		}
		if !res.Mapping.Shift || res.Mapping.Ctrl {
			t.Errorf("target %d: got shift=%v ctrl=%v, want shift-only while shift note held",
				target, res.Mapping.Shift, res.Mapping.Ctrl)
		}
	}
}

func TestSolvePrefersFreeKeyOverBusy(t *testing.T) {
	table := keymap.Table{
		{Note: 60, Key: "t"},
		{Note: 72, Key: "s"},
	}
	s := NewState(table)
	s.RegisterNoteOn("t", 60, 0, false, false)

	// Another 60: the direct key costs 0+penalty, the free key 12 taps.
	res, ok := s.Solve(60, Accuracy, 12, 24)
	if !ok {
		t.Fatal("expected a resolution")
	}
	if res.Mapping.Key != "s" {
		t.Errorf("key = %q, want free key s", res.Mapping.Key)
	}
	if res.Delta != -12 {
		t.Errorf("delta = %d, want -12", res.Delta)
	}
}

func TestSolveTieBreaksByTableOrder(t *testing.T) {
	table := keymap.Table{
		{Note: 58, Key: "e", Shift: true},
		{Note: 62, Key: "y"},
	}
	s := NewState(table)
	// Both mappings reach 60 at cost 2.
	res, ok := s.Solve(60, Efficiency, 12, 24)
	if !ok {
		t.Fatal("expected a resolution")
	}
	if res.Mapping.Key != "e" {
		t.Errorf("key = %q, want first table entry e", res.Mapping.Key)
	}
}

func TestSolveRejectsOutOfRange(t *testing.T) {
	table := keymap.Table{{Note: 60, Key: "t"}}
	s := NewState(table)

	if _, ok := s.Solve(90, Accuracy, 100, 24); ok {
		t.Error("delta 30 should exceed transpose range 24")
	}
	if _, ok := s.Solve(84, Accuracy, 100, 24); !ok {
		t.Error("delta 24 should sit inside transpose range 24")
	}
}

func TestRegisterNoteOnOffRestoresState(t *testing.T) {
	s := NewState(keymap.Builtin())

	s.RegisterNoteOn("t", 61, 1, true, false)
	if !s.ShiftActive() || s.CtrlActive() {
		t.Fatalf("modifiers = %v/%v, want shift only", s.ShiftActive(), s.CtrlActive())
	}
	if s.Transposition() != 1 {
		t.Fatalf("transposition = %d, want 1", s.Transposition())
	}

	key, ok := s.RegisterNoteOff(61)
	if !ok || key != "t" {
		t.Fatalf("got (%q, %v), want key t released", key, ok)
	}
	if s.HeldKeyCount() != 0 {
		t.Errorf("%d keys still held", s.HeldKeyCount())
	}
	if s.ShiftActive() || s.CtrlActive() {
		t.Error("modifiers should reset once nothing is held")
	}
	// Transposition is a ratchet: releasing keys does not move it.
	if s.Transposition() != 1 {
		t.Errorf("transposition = %d, want 1", s.Transposition())
	}
}

func TestRegisterNoteOffTwice(t *testing.T) {
	s := NewState(keymap.Builtin())
	s.RegisterNoteOn("t", 60, 0, false, false)

	if _, ok := s.RegisterNoteOff(60); !ok {
		t.Fatal("first release should return the key")
	}
	if key, ok := s.RegisterNoteOff(60); ok {
		t.Errorf("second release returned %q, want nothing", key)
	}
}

func TestRegisterNoteOffUnknownNote(t *testing.T) {
	s := NewState(keymap.Builtin())
	if key, ok := s.RegisterNoteOff(42); ok {
		t.Errorf("got %q for a note never registered", key)
	}
}

func TestSharedKeyReleasesOnlyWhenEmpty(t *testing.T) {
	s := NewState(keymap.Builtin())
	// A steal leaves two notes occupying one key.
	s.RegisterNoteOn("t", 60, 0, false, false)
	s.RegisterNoteOn("t", 61, 1, false, false)

	if key, ok := s.RegisterNoteOff(60); ok {
		t.Errorf("releasing 60 freed %q while 61 still occupies it", key)
	}
	if !s.KeyBusy("t") {
		t.Error("key t should still be busy")
	}
	key, ok := s.RegisterNoteOff(61)
	if !ok || key != "t" {
		t.Errorf("got (%q, %v), want t released", key, ok)
	}
}

func TestResetKeys(t *testing.T) {
	s := NewState(keymap.Builtin())
	s.RegisterNoteOn("t", 60, 0, false, false)
	s.RegisterNoteOn("y", 62, 0, false, false)

	keys := s.ResetKeys()
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}
	got := map[keymap.Key]bool{}
	for _, k := range keys {
		got[k] = true
	}
	if !got["t"] || !got["y"] {
		t.Errorf("keys = %v, want t and y", keys)
	}
	if s.HeldKeyCount() != 0 {
		t.Error("held keys should be empty after reset")
	}
	if s.ShiftActive() || s.CtrlActive() {
		t.Error("modifiers should be false after reset")
	}
}

func TestResetTransposition(t *testing.T) {
	s := NewState(keymap.Builtin())
	s.RegisterNoteOn("t", 65, 5, false, false)
	s.ResetTransposition()
	if s.Transposition() != 0 {
		t.Errorf("transposition = %d, want 0", s.Transposition())
	}
	// Held bookkeeping is untouched.
	if s.HeldKeyCount() != 1 {
		t.Errorf("%d keys held, want 1", s.HeldKeyCount())
	}
}
