package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AlertTier is the severity of the budget banner. Higher values are more severe.
type AlertTier int

const (
	AlertNone AlertTier = iota
	AlertInfo
	AlertWarning
	AlertCritical
)

var (
	thresholdInfo     = decimal.NewFromInt(50)
	thresholdWarning  = decimal.NewFromInt(75)
	thresholdCritical = decimal.NewFromInt(90)
)

func (t AlertTier) String() string {
	switch t {
	case AlertInfo:
		return "informational"
	case AlertWarning:
		return "warning"
	case AlertCritical:
		return "critical"
	}
	return "none"
}

// PercentUsed returns spent/limit*100. It is zero when limit is not positive.
func PercentUsed(limit, spent Money) decimal.Decimal {
	if limit.Cents <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(spent.Cents).Mul(hundred).Div(decimal.NewFromInt(limit.Cents))
}

// Alert classifies spending against the limit. A zero limit never alerts.
func Alert(limit, spent Money) AlertTier {
	if limit.Cents <= 0 {
		return AlertNone
	}
	pct := PercentUsed(limit, spent)
	switch {
	case pct.GreaterThanOrEqual(thresholdCritical):
		return AlertCritical
	case pct.GreaterThanOrEqual(thresholdWarning):
		return AlertWarning
	case pct.GreaterThanOrEqual(thresholdInfo):
		return AlertInfo
	}
	return AlertNone
}

// BudgetStatus is the evaluated alert for a limit/spent pair.
type BudgetStatus struct {
	Tier        AlertTier
	PercentUsed decimal.Decimal
	Message     string
}

// EvaluateBudget computes tier, percentage and banner text.
func EvaluateBudget(limit, spent Money, c Currency) BudgetStatus {
	tier := Alert(limit, spent)
	return BudgetStatus{
		Tier:        tier,
		PercentUsed: PercentUsed(limit, spent).Round(2),
		Message:     AlertMessage(tier, limit, spent, c),
	}
}

// AlertMessage renders the banner text for a tier. AlertNone yields "".
func AlertMessage(tier AlertTier, limit, spent Money, c Currency) string {
	switch tier {
	case AlertCritical:
		return fmt.Sprintf("CRITICAL ALERT: Budget 90%% exhausted! (%s / %s)", spent.Format(c), limit.Format(c))
	case AlertWarning:
		return "WARNING: You have crossed 75% of your budget. Spend wisely."
	case AlertInfo:
		return "REMINDER: 50% of budget utilized."
	}
	return ""
}
