package counts

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/weirdgloop/hiscorebot/internal/hiscores"
)

// moduleLine matches one count assignment in the module source:
// count_99s["attack"] = "1,234". Date slots never match because their
// values contain letters and spaces.
var moduleLine = regexp.MustCompile(`^(\w+)\[['"](.+?)['"]\]\s*=\s*['"]([\d,]+)['"]`)

// ParseModule extracts the previous counts from the English module text.
// The result seeds the next run: each recovered rank becomes the starting
// estimate for that cell's search. Lines that do not look like counts and
// keys naming unknown skills are skipped.
func ParseModule(text string) *Snapshot {
	snap := NewSnapshot()

	for _, line := range strings.Split(text, "\n") {
		m := moduleLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		table, ok := TableFromKey(m[1])
		if !ok {
			continue
		}

		value, err := strconv.Atoi(strings.ReplaceAll(m[3], ",", ""))
		if err != nil {
			continue
		}

		key := m[2]
		suffix := ""
		if table == LowestRanks {
			// "divination.rank" carries the rank; a bare "divination"
			// carries the level.
			if i := strings.Index(key, "."); i >= 0 {
				key, suffix = key[:i], key[i+1:]
			} else {
				suffix = EN.LevelKey()
			}
		}

		skill, ok := hiscores.FromName(key)
		if !ok {
			slog.Warn("unrecognized skill in module", "key", key, "table", m[1])
			continue
		}

		switch {
		case table != LowestRanks:
			snap.Set(table, skill, Value{Rank: value})
		case suffix == EN.LevelKey():
			v, _ := snap.Get(table, skill)
			v.Level = value
			snap.Set(table, skill, v)
		default:
			v, _ := snap.Get(table, skill)
			v.Rank = value
			snap.Set(table, skill, v)
		}
	}

	return snap
}
