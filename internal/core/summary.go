package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// RecentLimit is how many transactions the dashboard shows.
const RecentLimit = 10

// Dashboard is the aggregate view rendered after login.
type Dashboard struct {
	Identity       Identity
	Profile        Profile
	Spent          Money
	Remaining      Money // may be negative
	Budget         BudgetStatus
	ByCategory     []CategoryAmount
	Recent         []Transaction
	TotalEntries   int
	RemainingChart Money // Remaining clamped at zero
}

// NewDashboard assembles the dashboard from a profile and the owner's ledger.
// txs must already be in display order.
func NewDashboard(id Identity, p Profile, spent Money, groups map[Category]Money, txs []Transaction) Dashboard {
	remaining := p.SpendableLimit.Sub(spent)
	chart := remaining
	if chart.Cents < 0 {
		chart = Money{}
	}
	recent := txs
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	return Dashboard{
		Identity:       id,
		Profile:        p,
		Spent:          spent,
		Remaining:      remaining,
		RemainingChart: chart,
		Budget:         EvaluateBudget(p.SpendableLimit, spent, id.Currency),
		ByCategory:     SortedBreakdown(groups),
		Recent:         recent,
		TotalEntries:   len(txs),
	}
}

// SortedBreakdown orders category totals by amount descending, then by the
// fixed category order.
func SortedBreakdown(groups map[Category]Money) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(groups))
	for _, c := range categories {
		if m, ok := groups[c]; ok {
			out = append(out, CategoryAmount{Category: c, Amount: m})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}
