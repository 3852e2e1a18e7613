package backtest

import (
	"fmt"
	"math"
	"sort"

	"taa-signals/internal/domain"
)

// StepInput is everything one simulated month needs to decide its weights.
type StepInput struct {
	Month         string
	Index         int
	Rebalance     domain.RebalanceFrequency
	Concentration int
	Prev          domain.WeightMap
	Candidates    []domain.Candidate
	Selected      []domain.RankedAsset
}

// StepResult is the outcome of one simulated month. Return is fractional.
type StepResult struct {
	Start   domain.WeightMap
	Return  float64
	End     domain.WeightMap
	Entries []domain.AuditEntry
}

// IsResetMonth reports whether step index i restores equal weights.
func IsResetMonth(freq domain.RebalanceFrequency, i int) bool {
	return freq == domain.RebalanceMonthly || i%12 == 0
}

// Step applies one month of the rebalance discipline. Start weights never
// exceed a total of 1 and the remainder is held as cash earning nothing.
// Outside a reset month a new entrant gets 1/K capped at the uninvested
// remainder, so drifted holdings can leave it less than 1/K.
func Step(in StepInput) StepResult {
	target := 1 / float64(in.Concentration)
	reset := IsResetMonth(in.Rebalance, in.Index)

	byRank := make(map[string]domain.RankedAsset, len(in.Selected))
	for _, s := range in.Selected {
		byRank[s.Symbol] = s
	}
	returns := make(map[string]float64, len(in.Candidates))
	for _, c := range in.Candidates {
		returns[c.Symbol] = c.PeriodReturn
	}

	start := make(domain.WeightMap, len(in.Selected))
	reasons := make(map[string]domain.AuditReason, len(in.Selected))

	if reset {
		for _, s := range in.Selected {
			start[s.Symbol] = target
			if in.Prev[s.Symbol] > 0 {
				reasons[s.Symbol] = domain.ReasonRebalance
			} else {
				reasons[s.Symbol] = domain.ReasonNewEntry
			}
		}
	} else {
		for _, s := range in.Selected {
			if w := in.Prev[s.Symbol]; w > 0 {
				start[s.Symbol] = w
				reasons[s.Symbol] = domain.ReasonHold
			}
		}
		for _, s := range in.Selected {
			if _, held := start[s.Symbol]; held {
				continue
			}
			w := math.Min(target, 1-start.Total())
			if w <= 0 {
				continue
			}
			start[s.Symbol] = w
			reasons[s.Symbol] = domain.ReasonNewEntry
		}
	}

	var ret float64
	for sym, w := range start {
		ret += w * returns[sym]
	}

	entries := make([]domain.AuditEntry, 0, len(start)+len(in.Prev))
	for _, s := range in.Selected {
		w, ok := start[s.Symbol]
		if !ok {
			continue
		}
		r := returns[s.Symbol]
		entries = append(entries, domain.AuditEntry{
			Month:        in.Month,
			Symbol:       s.Symbol,
			Weight:       w,
			Return:       r * 100,
			Contribution: w * r * 100,
			Reason:       reasons[s.Symbol],
			Detail:       fmt.Sprintf("rank %d, buffer %.2f%%", s.Rank, s.Buffer),
		})
	}

	var dropped []string
	for sym, w := range in.Prev {
		if _, ok := byRank[sym]; !ok && w > 0 {
			dropped = append(dropped, sym)
		}
	}
	sort.Strings(dropped)
	for _, sym := range dropped {
		entries = append(entries, domain.AuditEntry{
			Month:  in.Month,
			Symbol: sym,
			Return: returns[sym] * 100,
			Reason: domain.ReasonLiquidation,
			Detail: "left the risk-on selection",
		})
	}

	end := make(domain.WeightMap, len(start))
	if growth := 1 + ret; growth > 0 {
		for sym, w := range start {
			if v := w * (1 + returns[sym]) / growth; v > 0 {
				end[sym] = v
			}
		}
	}

	return StepResult{Start: start, Return: ret, End: end, Entries: entries}
}
