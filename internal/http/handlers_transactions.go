package http

import (
	"bytes"
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/session"
)

// exportFilename is the attachment name offered for the CSV download.
const exportFilename = "expense_activity.csv"

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, sess *session.Session, id core.Identity) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeErr(w, r, err)
		return
	}

	amount, err := core.NewMoney(p.Get("amount"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	category, err := core.ParseCategory(p.Get("category"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	date := core.Today()
	if v := p.Get("date"); v != "" {
		if date, err = core.ParseDate(v); err != nil {
			s.writeErr(w, r, err)
			return
		}
	}

	t, err := s.deps.Ledger.Append(r.Context(), core.Transaction{
		Username:    id.Username,
		Description: p.Get("description"),
		Amount:      amount,
		Category:    category,
		Date:        date,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction recorded",
		applog.NewFields().
			WithOperation(applog.OpAppend).
			WithUser(id.Username).
			WithTransaction(t.ID, t.Amount.Cents, string(t.Category)).
			ToSlice()...)
	writeJSON(w, http.StatusCreated, newTransactionView(t))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, sess *session.Session, id core.Identity) {
	txs, err := s.deps.Ledger.ListFor(r.Context(), id.Username)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": newTransactionViews(txs),
	})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request, sess *session.Session, id core.Identity) {
	total, err := s.deps.Ledger.TotalFor(r.Context(), id.Username)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	groups, err := s.deps.Ledger.GroupByCategory(r.Context(), id.Username)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdownView{
		Total:      total.String(),
		ByCategory: newCategoryAmountViews(core.SortedBreakdown(groups)),
	})
}

// handleExport renders the whole ledger into a buffer first so a storage
// failure still produces a proper error status.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, sess *session.Session, id core.Identity) {
	var buf bytes.Buffer
	if err := s.deps.Ledger.ExportCSV(r.Context(), id.Username, &buf); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
