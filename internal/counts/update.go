package counts

import (
	"context"
	"log/slog"
	"time"

	"github.com/weirdgloop/hiscorebot/internal/hiscores"
)

// RankSource abstracts the ranking lookups the updater drives.
type RankSource interface {
	FindRank(ctx context.Context, dir hiscores.Direction, skill hiscores.Skill, col hiscores.Column, threshold, seed int) (int, error)
	LowestRank(ctx context.Context, skill hiscores.Skill) (hiscores.LowestRank, error)
}

// thresholdTables pairs each threshold table with the ladder and count kind
// it is derived from. Lowest ranks are handled separately.
var thresholdTables = []struct {
	table Table
	dir   hiscores.Direction
	kind  hiscores.CountKind
}{
	{Count99s, hiscores.Main, hiscores.Count99},
	{Count99sIronman, hiscores.Ironman, hiscores.Count99},
	{Count120s, hiscores.Main, hiscores.Count120},
	{Count120sIronman, hiscores.Ironman, hiscores.Count120},
	{Count200mXP, hiscores.Main, hiscores.CountMax},
	{Count200mXPIronman, hiscores.Ironman, hiscores.CountMax},
}

// Update refreshes every cell of the prior snapshot from the ranking site
// and returns the result. A failed lookup leaves that cell at its prior
// value; the run carries on with the remaining cells. Overall is excluded
// from the 99 and 120 tables but counted for the xp cap and lowest ranks.
// Every table's updated stamp is set to now once collection finishes.
func Update(ctx context.Context, src RankSource, prior *Snapshot, now time.Time) *Snapshot {
	snap := prior.Clone()

	for _, skill := range hiscores.Skills() {
		for _, tt := range thresholdTables {
			if skill == hiscores.Overall && tt.kind != hiscores.CountMax {
				continue
			}

			seed := 1
			if v, ok := snap.Get(tt.table, skill); ok {
				seed = v.Rank
			}

			rank, err := src.FindRank(ctx, tt.dir, skill, hiscores.ColumnXP, skill.Threshold(tt.kind), seed)
			if err != nil {
				slog.Error("unable to update count, keeping previous value",
					"table", tt.table.Key(), "skill", skill.String(),
					"direction", tt.dir.String(), "error", err)
				continue
			}

			slog.Info("count updated",
				"table", tt.table.Key(), "skill", skill.String(), "count", rank)
			snap.Set(tt.table, skill, Value{Rank: rank})
		}

		low, err := src.LowestRank(ctx, skill)
		if err != nil {
			slog.Error("unable to update lowest rank, keeping previous value",
				"skill", skill.String(), "error", err)
			continue
		}
		snap.Set(LowestRanks, skill, Value{Rank: low.Rank, Level: low.Level})
	}

	for _, t := range Tables() {
		snap.SetUpdated(t, now)
	}
	return snap
}
