// Package notify delivers budget alerts as SMS.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	applog "expensetracker/internal/log"
)

// Sender delivers a pre-formatted message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

var ErrEmptyRecipient = errors.New("empty recipient")

// GatewayConfig points at a Twilio-compatible messages endpoint, e.g.
// https://api.twilio.com/2010-04-01/Accounts/<sid>/Messages.json
type GatewayConfig struct {
	URL        string
	AccountSID string
	AuthToken  string
	From       string
	Timeout    time.Duration
}

// GatewaySender posts form-encoded To/From/Body with basic auth.
type GatewaySender struct {
	cfg    GatewayConfig
	client *http.Client
}

func NewGatewaySender(cfg GatewayConfig, client *http.Client) *GatewaySender {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &GatewaySender{cfg: cfg, client: client}
}

func (g *GatewaySender) Send(ctx context.Context, to, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrEmptyRecipient
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", g.cfg.From)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if g.cfg.AccountSID != "" {
		req.SetBasicAuth(g.cfg.AccountSID, g.cfg.AuthToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// LogSender only logs the message. Used when no gateway is configured.
type LogSender struct {
	logger *applog.Logger
}

func NewLogSender(logger *applog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(ctx context.Context, to, body string) error {
	if strings.TrimSpace(to) == "" {
		return ErrEmptyRecipient
	}
	l.logger.InfoContext(ctx, "SMS gateway not configured, notification logged only",
		applog.FieldOperation, applog.OpNotify,
		"to", mask(to),
		"body", body)
	return nil
}

// mask keeps the last four digits of a phone number.
func mask(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
