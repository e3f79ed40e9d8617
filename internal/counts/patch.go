package counts

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/weirdgloop/hiscorebot/internal/hiscores"
)

// ErrMissingSlot means the module text has no slot for a (table, key) pair
// the patcher was asked to update.
var ErrMissingSlot = errors.New("module slot not found")

const (
	// Value classes for the two slot shapes. Dates need Unicode letters
	// (localized month names), numbers are comma- or dot-grouped digits.
	numberClass = `[\d.,]+?`
	dateClass   = `[\p{L}\p{N}_ ]+?`
)

// replaceSlot rewrites the first `table["name"] = "..."` slot in text with
// the given value, leaving every other byte unchanged.
func replaceSlot(text, table, name, value string, date bool) (string, error) {
	class := numberClass
	if date {
		class = dateClass
	}

	pattern := fmt.Sprintf(`%s\[['"]%s['"]\]\s*=\s*['"](%s)['"]`,
		regexp.QuoteMeta(table), regexp.QuoteMeta(name), class)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return text, fmt.Errorf("compiling slot pattern for %s[%q]: %w", table, name, err)
	}

	loc := re.FindStringIndex(text)
	if loc == nil {
		return text, fmt.Errorf("%w: %s[%q]", ErrMissingSlot, table, name)
	}

	repl := fmt.Sprintf(`%s["%s"] = "%s"`, table, name, value)
	return text[:loc[0]] + repl + text[loc[1]:], nil
}

// PatchModule substitutes every count in snap into the module text for the
// given language and returns the patched text. Within each table the skill
// slots are written first and the updated date last.
//
// In strict mode a missing slot aborts the patch; otherwise it is logged and
// skipped. English runs strict (the module shape is ours to keep correct),
// translated modules may lag behind new skills.
func PatchModule(text string, lang Language, snap *Snapshot, strict bool) (string, error) {
	for _, table := range Tables() {
		name := lang.TableName(table)
		patched := false

		for _, skill := range hiscores.Skills() {
			v, ok := snap.Get(table, skill)
			if !ok {
				continue
			}

			var err error
			if table == LowestRanks {
				text, err = patchLowest(text, lang, name, skill, v, strict)
			} else {
				text, err = patchValue(text, name, lang.SkillName(skill), lang.FormatNumber(v.Rank), strict)
			}
			if err != nil {
				return text, err
			}
			patched = true
		}

		if at := snap.Updated(table); patched && !at.IsZero() {
			next, err := replaceSlot(text, name, lang.UpdatedKey(), lang.FormatDate(at), true)
			if err != nil {
				if strict {
					return text, err
				}
				slog.Warn("skipping missing module slot", "language", lang.String(), "error", err)
			} else {
				text = next
			}
		}
	}

	return text, nil
}

// patchLowest writes the two slots of a lowest-ranks cell: the bare skill
// key holds the level, the ".rank"-suffixed key holds the rank.
func patchLowest(text string, lang Language, table string, skill hiscores.Skill, v Value, strict bool) (string, error) {
	skillName := lang.SkillName(skill)

	text, err := patchValue(text, table, skillName, lang.FormatNumber(v.Level), strict)
	if err != nil {
		return text, err
	}
	return patchValue(text, table, skillName+"."+lang.RankKey(), lang.FormatNumber(v.Rank), strict)
}

func patchValue(text, table, name, value string, strict bool) (string, error) {
	next, err := replaceSlot(text, table, name, value, false)
	if err != nil {
		if strict {
			return text, err
		}
		slog.Warn("skipping missing module slot", "error", err)
		return text, nil
	}
	return next, nil
}
