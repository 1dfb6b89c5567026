package http

import (
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/session"
)

// handleOnboarding saves the first profile and moves the session to the dashboard.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if _, err := sess.Require(session.ScreenOnboarding); err != nil {
		s.writeErr(w, r, err)
		return
	}

	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeErr(w, r, err)
		return
	}

	profile, err := profileFromBody(p)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	st, saved, err := s.deps.Router.CompleteOnboarding(r.Context(), sess, profile)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Onboarding completed",
		applog.NewFields().WithOperation(applog.OpOnboard).WithUser(saved.Username).ToSlice()...)

	writeJSON(w, http.StatusCreated, map[string]any{
		"session": newSessionView(st),
		"profile": newProfileView(saved),
	})
}

func profileFromBody(p *RequestBodyParser) (core.Profile, error) {
	occupation, err := core.ParseOccupation(p.Get("occupation"))
	if err != nil {
		return core.Profile{}, err
	}
	profile := core.Profile{Occupation: occupation}

	fields := []struct {
		key string
		dst *core.Money
	}{
		{"salary", &profile.Salary},
		{"other_income", &profile.OtherIncome},
		{"spendable_limit", &profile.SpendableLimit},
		{"savings_goal", &profile.SavingsGoal},
		{"current_savings", &profile.CurrentSavings},
		{"emergency_fund", &profile.EmergencyFund},
	}
	for _, f := range fields {
		m, err := p.Money(f.key)
		if err != nil {
			return core.Profile{}, err
		}
		*f.dst = m
	}
	return profile, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, sess *session.Session, id core.Identity) {
	d, err := s.deps.Ledger.Dashboard(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDashboardView(d))
}

// handleUpdateLimits edits the spending figures. Omitting savings_goal keeps
// the stored goal.
func (s *Server) handleUpdateLimits(w http.ResponseWriter, r *http.Request, sess *session.Session, id core.Identity) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeErr(w, r, err)
		return
	}

	var u core.LimitsUpdate
	var err error
	if u.SpendableLimit, err = p.Money("spendable_limit"); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if u.CurrentSavings, err = p.Money("current_savings"); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if u.EmergencyFund, err = p.Money("emergency_fund"); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if p.Has("savings_goal") {
		goal, err := p.Money("savings_goal")
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		u.SavingsGoal = &goal
	}

	updated, err := s.deps.Profiles.UpdateLimits(r.Context(), id.Username, u)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(updated))
}
