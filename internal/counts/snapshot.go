package counts

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/weirdgloop/hiscorebot/internal/hiscores"
)

// Value is one cell of a count table. Rank is the count itself; Level is
// only meaningful in the lowest-ranks table.
type Value struct {
	Rank  int
	Level int
}

// Snapshot holds every count of one run: a value per (table, skill) plus a
// per-table updated timestamp. It is seeded from the previous module text,
// mutated by the updater, and serialized to a JSON file beside the logs.
type Snapshot struct {
	values  map[Table]map[hiscores.Skill]Value
	updated map[Table]time.Time
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		values:  make(map[Table]map[hiscores.Skill]Value),
		updated: make(map[Table]time.Time),
	}
}

// Get returns the cell for (table, skill) and whether it is present.
func (s *Snapshot) Get(t Table, sk hiscores.Skill) (Value, bool) {
	v, ok := s.values[t][sk]
	return v, ok
}

// Set stores the cell for (table, skill), replacing any previous value.
func (s *Snapshot) Set(t Table, sk hiscores.Skill, v Value) {
	m, ok := s.values[t]
	if !ok {
		m = make(map[hiscores.Skill]Value)
		s.values[t] = m
	}
	m[sk] = v
}

// SetUpdated stamps the table's last-updated time.
func (s *Snapshot) SetUpdated(t Table, at time.Time) {
	s.updated[t] = at
}

// Updated returns the table's last-updated time, zero when never stamped.
func (s *Snapshot) Updated(t Table) time.Time {
	return s.updated[t]
}

// Len returns the number of populated cells across all tables.
func (s *Snapshot) Len() int {
	n := 0
	for _, m := range s.values {
		n += len(m)
	}
	return n
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	for t, m := range s.values {
		for sk, v := range m {
			out.Set(t, sk, v)
		}
	}
	for t, at := range s.updated {
		out.updated[t] = at
	}
	return out
}

// WriteFile serializes the snapshot to path: sorted keys, two-space indent,
// trailing newline. Threshold cells are plain integers, lowest-ranks cells
// are {level, rank} objects, and updated stamps are English-formatted dates.
func (s *Snapshot) WriteFile(path string) error {
	out := make(map[string]any, len(s.values))

	for _, t := range Tables() {
		cells, okV := s.values[t]
		at, okU := s.updated[t]
		if !okV && !okU {
			continue
		}

		entry := make(map[string]any, len(cells)+1)
		for sk, v := range cells {
			if t == LowestRanks {
				entry[sk.String()] = map[string]int{"rank": v.Rank, "level": v.Level}
			} else {
				entry[sk.String()] = v.Rank
			}
		}
		if okU {
			entry[EN.UpdatedKey()] = EN.FormatDate(at)
		}
		out[t.Key()] = entry
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
