package notify

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "expensetracker/internal/log"
)

func TestGatewaySender_Send(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		got = r
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer ts.Close()

	s := NewGatewaySender(GatewayConfig{URL: ts.URL, AccountSID: "AC1", AuthToken: "tok", From: "+15550000"}, ts.Client())
	require.NoError(t, s.Send(context.Background(), " +15551234 ", "CRITICAL: budget exceeded"))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "+15551234", got.PostForm.Get("To"))
	assert.Equal(t, "+15550000", got.PostForm.Get("From"))
	assert.Equal(t, "CRITICAL: budget exceeded", got.PostForm.Get("Body"))
	user, pass, ok := got.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "AC1", user)
	assert.Equal(t, "tok", pass)
}

func TestGatewaySender_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid To"}`))
	}))
	defer ts.Close()

	s := NewGatewaySender(GatewayConfig{URL: ts.URL, From: "+1"}, nil)
	err := s.Send(context.Background(), "+15551234", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "invalid To")
}

func TestGatewaySender_EmptyRecipient(t *testing.T) {
	s := NewGatewaySender(GatewayConfig{URL: "http://127.0.0.1:1"}, nil)
	assert.ErrorIs(t, s.Send(context.Background(), "  ", "hi"), ErrEmptyRecipient)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf, Component: applog.ComponentNotify})
	s := NewLogSender(logger)

	require.NoError(t, s.Send(context.Background(), "+15551234", "WARNING: 80% used"))
	out := buf.String()
	assert.Contains(t, out, "*****1234")
	assert.NotContains(t, out, "+15551234")
	assert.Contains(t, out, "component=notify")

	assert.ErrorIs(t, s.Send(context.Background(), "", "x"), ErrEmptyRecipient)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", mask("123"))
	assert.Equal(t, "**3456", mask("123456"))
}
