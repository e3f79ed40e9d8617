// Package counts maintains the wiki's hiscore counts module: it parses the
// previous counts out of the module text, refreshes them from the ranking
// site, snapshots the result to disk, and patches the text for every
// published language.
package counts

// Table identifies one of the count tables kept in the module.
type Table int

const (
	Count99s Table = iota
	Count99sIronman
	Count120s
	Count120sIronman
	Count200mXP
	Count200mXPIronman
	LowestRanks
)

var tableKeys = [...]string{
	Count99s:           "count_99s",
	Count99sIronman:    "count_99s_ironman",
	Count120s:          "count_120s",
	Count120sIronman:   "count_120s_ironman",
	Count200mXP:        "count_200mxp",
	Count200mXPIronman: "count_200mxp_ironman",
	LowestRanks:        "lowest_ranks",
}

// Tables returns every table in storage order.
func Tables() []Table {
	ret := make([]Table, len(tableKeys))
	for i := range ret {
		ret[i] = Table(i)
	}
	return ret
}

// TableFromKey looks a table up by its English storage key.
func TableFromKey(key string) (Table, bool) {
	for i, k := range tableKeys {
		if k == key {
			return Table(i), true
		}
	}
	return 0, false
}

// Key returns the English storage key of the table.
func (t Table) Key() string { return tableKeys[t] }

func (t Table) String() string { return tableKeys[t] }
