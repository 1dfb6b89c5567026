package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"expensetracker/internal/auth"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
	"expensetracker/internal/storage"
)

type testEnv struct {
	srv  *Server
	ts   *httptest.Server
	repo *storage.SQLiteRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	accounts := services.NewAccountService(repo, auth.NewHasher(bcrypt.MinCost))
	profiles := services.NewProfileService(repo)
	ledger := services.NewLedgerService(repo, repo, repo, nil)

	srv := NewServer(":0", Deps{
		Router:   session.NewRouter(accounts, profiles),
		Sessions: session.NewStore(100, 0),
		Ledger:   ledger,
		Profiles: profiles,
		Storage:  repo,
		Logger:   applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard}),
	}, Options{CookieName: "sid", RateLimitPerMinute: 1000})

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.limiter.Stop()
		repo.Close()
	})
	return &testEnv{srv: srv, ts: ts, repo: repo}
}

// client returns an HTTP client with its own cookie jar, i.e. its own session.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := c.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func register(t *testing.T, e *testEnv, c *http.Client, username string) {
	t.Helper()
	resp := postJSON(t, c, e.ts.URL+"/api/auth/register", map[string]any{
		"username":         username,
		"password":         "pw",
		"confirm_password": "pw",
		"full_name":        "Alice Doe",
		"currency":         "₹ INR",
		"accept_terms":     true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func onboard(t *testing.T, e *testEnv, c *http.Client, limit string) {
	t.Helper()
	resp := postJSON(t, c, e.ts.URL+"/api/onboarding", map[string]any{
		"occupation":      "Student",
		"salary":          "1000",
		"other_income":    250.5,
		"spendable_limit": limit,
		"savings_goal":    "200",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthAndReady(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)

	resp := get(t, c, e.ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = get(t, c, e.ts.URL+"/readyz")
	body := decode[map[string]any](t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])

	require.NoError(t, e.repo.Close())
	resp = get(t, c, e.ts.URL+"/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}

func TestCategories(t *testing.T) {
	e := newTestEnv(t)
	resp := get(t, e.client(t), e.ts.URL+"/api/categories")
	body := decode[map[string][]string](t, resp)
	assert.Len(t, body["categories"], 12)
	assert.Equal(t, "Food & Beverages", body["categories"][0])
}

func TestSession_StartsOnAuthScreen(t *testing.T) {
	e := newTestEnv(t)
	resp := get(t, e.client(t), e.ts.URL+"/api/session")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "sid" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	view := decode[sessionView](t, resp)
	assert.False(t, view.Authenticated)
	assert.Equal(t, "auth", view.Screen)
	assert.Nil(t, view.Identity)
}

func TestRegisterOnboardAndTrack(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)

	register(t, e, c, "alice")
	view := decode[sessionView](t, get(t, c, e.ts.URL+"/api/session"))
	assert.Equal(t, "onboarding", view.Screen)
	require.NotNil(t, view.Identity)
	assert.Equal(t, "Alice Doe", view.Identity.DisplayName)
	assert.Equal(t, "INR", view.Identity.Currency)

	resp := get(t, c, e.ts.URL+"/api/dashboard")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "dashboard is closed until onboarding")
	resp.Body.Close()

	onboard(t, e, c, "500")
	view = decode[sessionView](t, get(t, c, e.ts.URL+"/api/session"))
	assert.Equal(t, "dashboard", view.Screen)

	for _, tx := range []map[string]any{
		{"description": "lunch", "amount": "200", "category": "1. Food & Beverages (खाना)", "date": "2024-03-01"},
		{"description": "bus", "amount": 150, "category": "Travel", "date": "2024-03-02"},
		{"description": "snack", "amount": "60", "category": "food & beverages", "date": "2024-03-02"},
	} {
		resp := postJSON(t, c, e.ts.URL+"/api/transactions", tx)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	list := decode[map[string][]transactionView](t, get(t, c, e.ts.URL+"/api/transactions"))
	txs := list["transactions"]
	require.Len(t, txs, 3)
	assert.Equal(t, "bus", txs[0].Description, "newest date first, ties by id")
	assert.Equal(t, "snack", txs[1].Description)
	assert.Equal(t, "lunch", txs[2].Description)
	assert.Equal(t, "150.00", txs[0].Amount)

	breakdown := decode[breakdownView](t, get(t, c, e.ts.URL+"/api/transactions/breakdown"))
	assert.Equal(t, "410.00", breakdown.Total)
	require.Len(t, breakdown.ByCategory, 2)
	assert.Equal(t, categoryAmountView{Category: "Food & Beverages", Amount: "260.00"}, breakdown.ByCategory[0])

	dash := decode[dashboardView](t, get(t, c, e.ts.URL+"/api/dashboard"))
	assert.Equal(t, "410.00", dash.Spent)
	assert.Equal(t, "90.00", dash.Remaining)
	assert.Equal(t, "warning", dash.Budget.Tier)
	assert.Equal(t, "82.00", dash.Budget.PercentUsed)
	assert.Equal(t, "1250.50", dash.Profile.MonthlyIncome)
	assert.Equal(t, 3, dash.TotalEntries)

	resp = get(t, c, e.ts.URL+"/api/transactions/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "expense_activity.csv")
	records, err := csv.NewReader(resp.Body).ReadAll()
	resp.Body.Close()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"date", "description", "category", "amount"}, records[0])
	assert.Equal(t, []string{"2024-03-02", "bus", "Travel", "150.00"}, records[1])
}

func TestUpdateLimits_KeepsGoalWhenOmitted(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	register(t, e, c, "bob")
	onboard(t, e, c, "500")

	resp := postJSON(t, c, e.ts.URL+"/api/profile/limits", map[string]any{
		"spendable_limit": "800",
		"current_savings": "10",
		"emergency_fund":  "5",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[profileView](t, resp)
	assert.Equal(t, "800.00", p.SpendableLimit)
	assert.Equal(t, "200.00", p.SavingsGoal)

	form := url.Values{"spendable_limit": {"800"}, "savings_goal": {"300"}}
	resp, err := c.PostForm(e.ts.URL+"/api/profile/limits", form)
	require.NoError(t, err)
	p = decode[profileView](t, resp)
	assert.Equal(t, "300.00", p.SavingsGoal)
	assert.Equal(t, "0.00", p.CurrentSavings)
}

func TestLogin_RoutesByProfile(t *testing.T) {
	e := newTestEnv(t)
	first := e.client(t)
	register(t, e, first, "carol")

	second := e.client(t)
	resp := postJSON(t, second, e.ts.URL+"/api/auth/login", map[string]string{"username": "carol", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "onboarding", decode[sessionView](t, resp).Screen)

	onboard(t, e, second, "0")

	third := e.client(t)
	resp = postJSON(t, third, e.ts.URL+"/api/auth/login", map[string]string{"username": "carol", "password": "pw"})
	assert.Equal(t, "dashboard", decode[sessionView](t, resp).Screen)

	resp = postJSON(t, third, e.ts.URL+"/api/auth/logout", nil)
	view := decode[sessionView](t, resp)
	assert.False(t, view.Authenticated)
	assert.Equal(t, "auth", view.Screen)

	resp = get(t, third, e.ts.URL+"/api/dashboard")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == "sid" {
			return ck.Value
		}
	}
	t.Fatal("no session cookie set")
	return ""
}

func TestLogin_RotatesSessionID(t *testing.T) {
	e := newTestEnv(t)
	register(t, e, e.client(t), "erin")

	c := e.client(t)
	resp := get(t, c, e.ts.URL+"/api/session")
	planted := sessionCookie(t, resp)
	resp.Body.Close()

	resp = postJSON(t, c, e.ts.URL+"/api/auth/login", map[string]string{"username": "erin", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	issued := sessionCookie(t, resp)
	resp.Body.Close()
	assert.NotEqual(t, planted, issued)

	_, ok := e.srv.deps.Sessions.Get(planted)
	assert.False(t, ok, "pre-login id must be discarded")

	// A client still holding the pre-login id is not signed in.
	req, err := http.NewRequest(http.MethodGet, e.ts.URL+"/api/session", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "sid", Value: planted})
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.False(t, decode[sessionView](t, resp).Authenticated)

	view := decode[sessionView](t, get(t, c, e.ts.URL+"/api/session"))
	assert.True(t, view.Authenticated)
}

func TestRegister_RotatesSessionID(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)

	resp := get(t, c, e.ts.URL+"/api/session")
	planted := sessionCookie(t, resp)
	resp.Body.Close()

	resp = postJSON(t, c, e.ts.URL+"/api/auth/register", map[string]any{
		"username":         "frank",
		"password":         "pw",
		"confirm_password": "pw",
		"full_name":        "Frank",
		"currency":         "INR",
		"accept_terms":     true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEqual(t, planted, sessionCookie(t, resp))
	resp.Body.Close()

	_, ok := e.srv.deps.Sessions.Get(planted)
	assert.False(t, ok)
	assert.Equal(t, "onboarding", decode[sessionView](t, get(t, c, e.ts.URL+"/api/session")).Screen)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	register(t, e, c, "dave")

	other := e.client(t)
	wrong := postJSON(t, other, e.ts.URL+"/api/auth/login", map[string]string{"username": "dave", "password": "nope"})
	unknown := postJSON(t, other, e.ts.URL+"/api/auth/login", map[string]string{"username": "nobody", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, wrong.StatusCode)
	assert.Equal(t, wrong.StatusCode, unknown.StatusCode)
	assert.Equal(t, decode[apiError](t, wrong), decode[apiError](t, unknown))

	view := decode[sessionView](t, get(t, other, e.ts.URL+"/api/session"))
	assert.False(t, view.Authenticated, "failed login leaves the session signed out")
}

func TestRegister_Errors(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	register(t, e, c, "erin")

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"duplicate username", map[string]any{"username": "erin", "password": "x", "confirm_password": "x", "accept_terms": true}, http.StatusConflict},
		{"password mismatch", map[string]any{"username": "frank", "password": "x", "confirm_password": "y", "accept_terms": true}, http.StatusUnprocessableEntity},
		{"terms not accepted", map[string]any{"username": "frank", "password": "x", "confirm_password": "x"}, http.StatusUnprocessableEntity},
		{"bad currency", map[string]any{"username": "frank", "password": "x", "confirm_password": "x", "accept_terms": true, "currency": "EUR"}, http.StatusUnprocessableEntity},
		{"negative budget", map[string]any{"username": "frank", "password": "x", "confirm_password": "x", "accept_terms": true, "monthly_budget": "-5"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, e.client(t), e.ts.URL+"/api/auth/register", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestCreateTransaction_Validation(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	register(t, e, c, "gina")
	onboard(t, e, c, "100")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"zero amount", map[string]any{"description": "x", "amount": "0", "category": "Travel"}},
		{"negative amount", map[string]any{"description": "x", "amount": "-3", "category": "Travel"}},
		{"blank description", map[string]any{"description": "   ", "amount": "3", "category": "Travel"}},
		{"unknown category", map[string]any{"description": "x", "amount": "3", "category": "Gadgets"}},
		{"bad date", map[string]any{"description": "x", "amount": "3", "category": "Travel", "date": "2024-02-30"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, c, e.ts.URL+"/api/transactions", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		})
	}

	list := decode[map[string][]transactionView](t, get(t, c, e.ts.URL+"/api/transactions"))
	assert.NotNil(t, list["transactions"])
	assert.Empty(t, list["transactions"], "rejected entries are never stored")
}

func TestMalformedBody(t *testing.T) {
	e := newTestEnv(t)
	resp, err := e.client(t).Post(e.ts.URL+"/api/auth/login", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, statusFor(session.ErrUnauthenticated))
	assert.Equal(t, http.StatusForbidden, statusFor(session.ErrInvalidTransition))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEnv(t)
	resp := get(t, e.client(t), e.ts.URL+"/api/nope")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
