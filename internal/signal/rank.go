package signal

import (
	"cmp"
	"slices"

	"taa-signals/internal/domain"
)

// Rank keeps the Risk-On candidates, orders them by buffer (largest first,
// ties broken by symbol) and selects the top concentration of them at an
// equal target weight.
func Rank(candidates []domain.Candidate, concentration int) []domain.RankedAsset {
	if concentration <= 0 {
		return nil
	}

	on := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.IsRiskOn {
			on = append(on, c)
		}
	}
	slices.SortStableFunc(on, func(a, b domain.Candidate) int {
		if c := cmp.Compare(b.Buffer, a.Buffer); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	if len(on) > concentration {
		on = on[:concentration]
	}

	weight := 1 / float64(concentration)
	out := make([]domain.RankedAsset, len(on))
	for i, c := range on {
		out[i] = domain.RankedAsset{
			Symbol:       c.Symbol,
			Rank:         i + 1,
			Buffer:       c.Buffer,
			TargetWeight: weight,
		}
	}
	return out
}

// Candidates converts live signals into ranking candidates.
func Candidates(signals []domain.TrendSignal) []domain.Candidate {
	out := make([]domain.Candidate, len(signals))
	for i, s := range signals {
		out[i] = domain.Candidate{
			Symbol:   s.Symbol,
			IsRiskOn: s.Status == domain.RiskOn,
			Buffer:   s.Buffer,
		}
	}
	return out
}
