// Package hiscores reads the RuneScape hiscores ranking pages: it models the
// ranked skill tables, fetches pages through the proxy rotator, and locates
// the rank of the last player at or above a target level or experience value.
package hiscores

import (
	"fmt"
	"strings"
)

// Experience thresholds used by the count tables. Elite skills use a
// different curve and hit 99/120 at different totals.
const (
	XP99       = 13034431
	XP120      = 104273167
	XP99Elite  = 36073511
	XP120Elite = 80618654
	XPMax      = 200000000
)

// Skill identifies one ranked hiscores category. The integer value is the
// `table` parameter the ranking site expects, so the assignment is fixed:
// Overall is 0, the skills run 1..28 in release order.
type Skill int

const (
	Overall Skill = iota
	Attack
	Defence
	Strength
	Constitution
	Ranged
	Prayer
	Magic
	Cooking
	Woodcutting
	Fletching
	Fishing
	Firemaking
	Crafting
	Smithing
	Mining
	Herblore
	Agility
	Thieving
	Slayer
	Farming
	Runecrafting
	Hunter
	Construction
	Summoning
	Dungeoneering
	Divination
	Invention
	Archaeology

	skillCount = int(Archaeology) // ranked skills, excluding Overall
)

var skillNames = [...]string{
	Overall:       "overall",
	Attack:        "attack",
	Defence:       "defence",
	Strength:      "strength",
	Constitution:  "constitution",
	Ranged:        "ranged",
	Prayer:        "prayer",
	Magic:         "magic",
	Cooking:       "cooking",
	Woodcutting:   "woodcutting",
	Fletching:     "fletching",
	Fishing:       "fishing",
	Firemaking:    "firemaking",
	Crafting:      "crafting",
	Smithing:      "smithing",
	Mining:        "mining",
	Herblore:      "herblore",
	Agility:       "agility",
	Thieving:      "thieving",
	Slayer:        "slayer",
	Farming:       "farming",
	Runecrafting:  "runecrafting",
	Hunter:        "hunter",
	Construction:  "construction",
	Summoning:     "summoning",
	Dungeoneering: "dungeoneering",
	Divination:    "divination",
	Invention:     "invention",
	Archaeology:   "archaeology",
}

// Skills returns every skill including Overall, in table-id order.
func Skills() []Skill {
	ret := make([]Skill, skillCount+1)
	for i := range ret {
		ret[i] = Skill(i)
	}
	return ret
}

// FromName looks a skill up by its lowercase English name.
func FromName(name string) (Skill, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range skillNames {
		if n == name {
			return Skill(i), true
		}
	}
	return 0, false
}

// String returns the lowercase English name of the skill.
func (s Skill) String() string {
	if s < 0 || int(s) >= len(skillNames) {
		return fmt.Sprintf("skill(%d)", int(s))
	}
	return skillNames[s]
}

// TableID is the value of the `table` query parameter for this skill.
func (s Skill) TableID() int { return int(s) }

// IsElite reports whether the skill uses the elite experience curve.
func (s Skill) IsElite() bool { return s == Invention }

// XP99 is the minimum experience for level 99 in this skill.
func (s Skill) XP99() int {
	if s.IsElite() {
		return XP99Elite
	}
	return XP99
}

// XP120 is the minimum experience for level 120 in this skill.
func (s Skill) XP120() int {
	if s.IsElite() {
		return XP120Elite
	}
	return XP120
}

// XPMax is the experience cap: 200m for a single skill, the sum of all
// skill caps for Overall.
func (s Skill) XPMax() int {
	if s == Overall {
		return XPMax * skillCount
	}
	return XPMax
}

// CountKind selects one of the threshold count tables.
type CountKind int

const (
	Count99 CountKind = iota
	Count120
	CountMax
)

// Threshold returns the experience threshold for the given count kind.
func (s Skill) Threshold(kind CountKind) int {
	switch kind {
	case Count99:
		return s.XP99()
	case Count120:
		return s.XP120()
	default:
		return s.XPMax()
	}
}
