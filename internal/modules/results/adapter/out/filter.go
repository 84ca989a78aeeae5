package out

import (
	"sort"

	"fitlab/internal/modules/results/domain"
)

// applyFilter narrows a newest-first list the same way the SQL queries do.
func applyFilter(all []domain.TestResult, filter domain.Filter) []domain.TestResult {
	out := make([]domain.TestResult, 0, len(all))
	for _, r := range all {
		if filter.AthleteID != "" && r.AthleteID != filter.AthleteID {
			continue
		}
		if filter.TestName != "" && r.TestName != filter.TestName {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		out = append(out, r)
	}
	if filter.Order == domain.OrderBest {
		sort.SliceStable(out, func(i, j int) bool { return domain.RankKey(out[i]) > domain.RankKey(out[j]) })
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}
