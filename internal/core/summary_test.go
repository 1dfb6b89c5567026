package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDashboard(t *testing.T) {
	id := Identity{Username: "alice", DisplayName: "Alice", Currency: CurrencyINR}
	p := Profile{Username: "alice", SpendableLimit: Money{Cents: 50000}}

	var txs []Transaction
	for i := 0; i < 12; i++ {
		txs = append(txs, Transaction{ID: int64(i + 1), Amount: Money{Cents: 5000}, Category: CategoryFood})
	}
	groups := map[Category]Money{
		CategoryFood:   {Cents: 20000},
		CategoryTravel: {Cents: 40000},
	}

	d := NewDashboard(id, p, Money{Cents: 60000}, groups, txs)

	assert.Equal(t, int64(-10000), d.Remaining.Cents)
	assert.True(t, d.RemainingChart.IsZero())
	assert.Equal(t, AlertCritical, d.Budget.Tier)
	assert.Len(t, d.Recent, RecentLimit)
	assert.Equal(t, 12, d.TotalEntries)
	require.Len(t, d.ByCategory, 2)
	assert.Equal(t, CategoryTravel, d.ByCategory[0].Category)
}

func TestSortedBreakdownEmpty(t *testing.T) {
	assert.Empty(t, SortedBreakdown(nil))
}
