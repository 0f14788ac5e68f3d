package keymap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Load reads an external mapping table: a JSON array of
// {note, key, shift, ctrl} records. Any malformed entry aborts the load;
// a table with silently dropped mappings is worse than no table.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping table: %w", err)
	}

	var entries []Mapping
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	t := Table(entries)
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate checks every entry: notes must be in MIDI range and unique
// within the table, keys must be playable.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New("mapping table is empty")
	}
	seen := make(map[uint8]bool, len(t))
	for i, m := range t {
		if m.Note > 127 {
			return fmt.Errorf("entry %d: note %d outside MIDI range", i, m.Note)
		}
		if seen[m.Note] {
			return fmt.Errorf("entry %d: duplicate note %d", i, m.Note)
		}
		seen[m.Note] = true
		if !m.Key.Playable() {
			return fmt.Errorf("entry %d: key %q is not a playable key", i, m.Key)
		}
	}
	return nil
}
