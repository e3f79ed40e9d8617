package hiscores

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrPageUnderflow means a backward jump tried to move before page 1.
	ErrPageUnderflow = errors.New("page number dropped below 1")
	// ErrInvariant means a ladder page violated the descending-order
	// contract the finder relies on.
	ErrInvariant = errors.New("ladder ordering invariant violated")
	// ErrEmpty means a ladder had no rows where at least one was required.
	ErrEmpty = errors.New("ladder is empty")
)

// searchBias tracks which direction the search moved first. Once the search
// has crossed the target coming from that direction, the bracket is closed
// and the step may only shrink.
type searchBias int

const (
	biasNone searchBias = iota
	biasUp
	biasDown
)

// finderState is the per-call state of the adaptive search.
type finderState struct {
	page     int
	step     int
	checked  map[int]bool
	bias     searchBias
	overshot bool
}

// FindRank returns the rank of the last player whose value in col is at
// least threshold, or 0 when no ranked player qualifies.
//
// seed is the previously known count; the search starts on the page that
// rank would occupy and brackets the target from there: the step doubles
// while moving away from the starting page in one direction, and halves once
// the target has been overshot. Visited pages are tracked so that a bracket
// collapsing onto a page boundary terminates at that boundary's rank.
func (c *Client) FindRank(ctx context.Context, dir Direction, skill Skill, col Column, threshold, seed int) (int, error) {
	if seed < 0 {
		seed = 0
	}
	st := finderState{
		page:    startPage(seed),
		step:    1,
		checked: make(map[int]bool),
	}

	c.logger.Debug("rank search starting",
		"direction", dir.String(), "skill", skill.String(), "column", col.String(),
		"threshold", threshold, "seed", seed, "page", st.page)

	for {
		page, err := c.Fetch(ctx, dir, skill, st.page)
		if err != nil {
			return 0, err
		}
		rows := page.Rows

		first := rows[0].Value(col)
		last := rows[len(rows)-1].Value(col)
		if first < last {
			return 0, fmt.Errorf("%w: page %d ascends from %d to %d",
				ErrInvariant, st.page, first, last)
		}

		switch {
		case last >= threshold:
			// The boundary is on this page or further down the ladder.
			next, done := st.advance(biasUp)
			if done {
				return rows[len(rows)-1].Rank, nil
			}
			st.page = next

		case first < threshold:
			// Every row here is below the threshold; move back up.
			if st.page == 1 {
				c.logger.Debug("no qualifying players",
					"skill", skill.String(), "pages", len(st.checked))
				return 0, nil
			}
			next, done := st.advance(biasDown)
			if done {
				// The page above was already visited: the last qualifying
				// player is the one just before this page's first row.
				return rows[0].Rank - 1, nil
			}
			st.page = next
			if st.page < 1 {
				return 0, fmt.Errorf("searching %s %s: %w", dir, skill, ErrPageUnderflow)
			}

		default:
			// first >= threshold > last: the boundary is inside this page.
			rank := 0
			for _, row := range rows {
				if row.Value(col) < threshold {
					break
				}
				rank = row.Rank
			}
			if rank == 0 {
				return 0, fmt.Errorf("scanning page %d: %w", st.page, ErrInvariant)
			}
			c.logger.Debug("rank found",
				"skill", skill.String(), "rank", rank, "pages", len(st.checked)+1)
			return rank, nil
		}
	}
}

// advance updates the search state for a move in direction d and returns the
// next page to visit. done is true when the neighboring page in the move
// direction has already been visited: the bracket has collapsed onto the
// boundary between the two pages and the caller should stop here.
func (st *finderState) advance(d searchBias) (next int, done bool) {
	if st.bias == biasNone {
		// First page decides the bias; the step stays at 1 so the first
		// hop cannot overshoot.
		st.bias = d
	} else {
		if st.bias != d && !st.overshot {
			st.overshot = true
		}
		if st.bias == d && !st.overshot {
			st.step *= 2
		} else {
			st.step = max(1, st.step/2)
		}
	}

	neighbor := st.page + 1
	if d == biasDown {
		neighbor = st.page - 1
	}
	if st.checked[neighbor] {
		return 0, true
	}

	st.checked[st.page] = true
	if d == biasUp {
		return st.page + st.step, false
	}
	return st.page - st.step, false
}

// startPage converts a rank into the 1-based ladder page holding it.
func startPage(rank int) int {
	return max(1, (rank+PageSize-1)/PageSize)
}

// LowestRank returns the rank and level of the very last entry of the main
// ladder for skill. The last page number comes from page 1's pagination
// strip; when the strip is missing, page 1 itself is taken as the last page.
func (c *Client) LowestRank(ctx context.Context, skill Skill) (LowestRank, error) {
	page, err := c.Fetch(ctx, Main, skill, 1)
	if err != nil {
		return LowestRank{}, err
	}

	if page.LastPage > 1 {
		page, err = c.Fetch(ctx, Main, skill, page.LastPage)
		if err != nil {
			return LowestRank{}, err
		}
	}

	if len(page.Rows) == 0 {
		return LowestRank{}, fmt.Errorf("lowest rank for %s: %w", skill, ErrEmpty)
	}
	last := page.Rows[len(page.Rows)-1]

	c.logger.Debug("lowest rank found",
		"skill", skill.String(), "rank", last.Rank, "level", last.Level)
	return LowestRank{Rank: last.Rank, Level: last.Level}, nil
}
