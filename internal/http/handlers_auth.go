package http

import (
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/session"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeErr(w, r, err)
		return
	}

	currency, err := core.ParseCurrency(p.Get("currency"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	budget, err := p.Money("monthly_budget")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	reg := core.Registration{
		Username:        p.Get("username"),
		Password:        p.Secret("password"),
		ConfirmPassword: p.Secret("confirm_password"),
		FullName:        p.Get("full_name"),
		Email:           p.Get("email"),
		Phone:           p.Get("phone"),
		Currency:        currency,
		MonthlyBudget:   budget,
		AcceptedTerms:   p.Bool("accept_terms"),
	}

	st, err := s.deps.Router.Register(r.Context(), sess, reg)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.rotateSession(w, sess)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Account registered",
		applog.NewFields().WithOperation(applog.OpRegister).WithUser(st.Identity.Username).ToSlice()...)
	writeJSON(w, http.StatusCreated, newSessionView(st))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeErr(w, r, err)
		return
	}

	st, err := s.deps.Router.Login(r.Context(), sess, p.Get("username"), p.Secret("password"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.rotateSession(w, sess)
	writeJSON(w, http.StatusOK, newSessionView(st))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	st := s.deps.Router.Logout(r.Context(), sess)
	writeJSON(w, http.StatusOK, newSessionView(st))
}
