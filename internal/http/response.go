package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/session"
)

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Error: message})
}

// Money travels as a fixed two-decimal string so clients never see floats.
type identityView struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency"`
}

type sessionView struct {
	Authenticated bool          `json:"authenticated"`
	Screen        string        `json:"screen"`
	Identity      *identityView `json:"identity,omitempty"`
}

type profileView struct {
	Username       string `json:"username"`
	Occupation     string `json:"occupation"`
	MonthlyIncome  string `json:"monthly_income"`
	Salary         string `json:"salary"`
	OtherIncome    string `json:"other_income"`
	SpendableLimit string `json:"spendable_limit"`
	SavingsGoal    string `json:"savings_goal"`
	CurrentSavings string `json:"current_savings"`
	EmergencyFund  string `json:"emergency_fund"`
}

type transactionView struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
}

type categoryAmountView struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type budgetView struct {
	Tier        string `json:"tier"`
	PercentUsed string `json:"percent_used"`
	Message     string `json:"message,omitempty"`
}

type dashboardView struct {
	Identity       identityView         `json:"identity"`
	Profile        profileView          `json:"profile"`
	Spent          string               `json:"spent"`
	Remaining      string               `json:"remaining"`
	RemainingChart string               `json:"remaining_chart"`
	Budget         budgetView           `json:"budget"`
	ByCategory     []categoryAmountView `json:"by_category"`
	Recent         []transactionView    `json:"recent"`
	TotalEntries   int                  `json:"total_entries"`
}

type breakdownView struct {
	Total      string               `json:"total"`
	ByCategory []categoryAmountView `json:"by_category"`
}

func newIdentityView(id core.Identity) identityView {
	return identityView{Username: id.Username, DisplayName: id.DisplayName, Currency: string(id.Currency)}
}

func newSessionView(st session.State) sessionView {
	v := sessionView{Authenticated: st.Authenticated, Screen: string(st.Screen)}
	if st.Authenticated {
		id := newIdentityView(st.Identity)
		v.Identity = &id
	}
	return v
}

func newProfileView(p core.Profile) profileView {
	return profileView{
		Username:       p.Username,
		Occupation:     string(p.Occupation),
		MonthlyIncome:  p.MonthlyIncome.String(),
		Salary:         p.Salary.String(),
		OtherIncome:    p.OtherIncome.String(),
		SpendableLimit: p.SpendableLimit.String(),
		SavingsGoal:    p.SavingsGoal.String(),
		CurrentSavings: p.CurrentSavings.String(),
		EmergencyFund:  p.EmergencyFund.String(),
	}
}

func newTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		Date:        t.Date.String(),
		Description: t.Description,
		Category:    string(t.Category),
		Amount:      t.Amount.String(),
	}
}

func newTransactionViews(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionView(t))
	}
	return out
}

func newCategoryAmountViews(rows []core.CategoryAmount) []categoryAmountView {
	out := make([]categoryAmountView, 0, len(rows))
	for _, r := range rows {
		out = append(out, categoryAmountView{Category: string(r.Category), Amount: r.Amount.String()})
	}
	return out
}

func newDashboardView(d core.Dashboard) dashboardView {
	return dashboardView{
		Identity:       newIdentityView(d.Identity),
		Profile:        newProfileView(d.Profile),
		Spent:          d.Spent.String(),
		Remaining:      d.Remaining.String(),
		RemainingChart: d.RemainingChart.String(),
		Budget: budgetView{
			Tier:        d.Budget.Tier.String(),
			PercentUsed: d.Budget.PercentUsed.StringFixed(2),
			Message:     d.Budget.Message,
		},
		ByCategory:   newCategoryAmountViews(d.ByCategory),
		Recent:       newTransactionViews(d.Recent),
		TotalEntries: d.TotalEntries,
	}
}
