package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"expensetracker/internal/core"

	"golang.org/x/sync/errgroup"
)

// LedgerService appends to and reads from the transaction ledger. Persisting
// comes first; event publishing and budget notifications never fail an append.
type LedgerService struct {
	ledger    LedgerStore
	profiles  ProfileStore
	accounts  AccountStore
	publisher Publisher
}

func NewLedgerService(ledger LedgerStore, profiles ProfileStore, accounts AccountStore, publisher Publisher) *LedgerService {
	return &LedgerService{
		ledger:    ledger,
		profiles:  profiles,
		accounts:  accounts,
		publisher: publisher,
	}
}

// Append validates and stores t, returning it with its assigned id.
func (s *LedgerService) Append(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Description = strings.TrimSpace(t.Description)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.ledger.AppendTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	t.ID = id

	if err := s.publishSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}

	if err := s.notifyBudget(ctx, t); err != nil {
		slog.ErrorContext(ctx, "Failed to send budget notification",
			"username", t.Username, "error", err)
	}

	return t, nil
}

func (s *LedgerService) publishSync(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id)
}

// notifyBudget sends an alert when t moved the owner into a more severe tier.
func (s *LedgerService) notifyBudget(ctx context.Context, t core.Transaction) error {
	if s.publisher == nil {
		return nil
	}

	profile, err := s.profiles.GetProfile(ctx, t.Username)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if profile.SpendableLimit.Cents <= 0 {
		return nil
	}

	after, err := s.ledger.TotalSpent(ctx, t.Username)
	if err != nil {
		return fmt.Errorf("load total: %w", err)
	}
	before := after.Sub(t.Amount)

	tier := core.Alert(profile.SpendableLimit, after)
	if tier <= core.Alert(profile.SpendableLimit, before) {
		return nil
	}

	account, err := s.accounts.GetAccount(ctx, t.Username)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if strings.TrimSpace(account.Phone) == "" {
		slog.DebugContext(ctx, "No phone on file, skipping budget notification", "username", t.Username)
		return nil
	}

	body := core.AlertMessage(tier, profile.SpendableLimit, after, account.Currency)
	if err := s.publisher.PublishBudgetAlert(ctx, account.Phone, body); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}

	slog.InfoContext(ctx, "Budget notification queued",
		"username", t.Username,
		"alert_tier", tier.String())
	return nil
}

// TotalFor sums the owner's ledger. An empty ledger yields zero.
func (s *LedgerService) TotalFor(ctx context.Context, username string) (core.Money, error) {
	return s.ledger.TotalSpent(ctx, username)
}

// ListFor returns the owner's transactions, newest date first.
func (s *LedgerService) ListFor(ctx context.Context, username string) ([]core.Transaction, error) {
	return s.ledger.ListTransactions(ctx, username)
}

// GroupByCategory returns per-category totals; categories without entries are absent.
func (s *LedgerService) GroupByCategory(ctx context.Context, username string) (map[core.Category]core.Money, error) {
	return s.ledger.SpentByCategory(ctx, username)
}

// Dashboard gathers profile and ledger aggregates for id. A missing profile
// yields core.ErrNotFound.
func (s *LedgerService) Dashboard(ctx context.Context, id core.Identity) (core.Dashboard, error) {
	var (
		profile core.Profile
		total   core.Money
		groups  map[core.Category]core.Money
		txs     []core.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.profiles.GetProfile(gctx, id.Username)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.ledger.TotalSpent(gctx, id.Username)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = s.ledger.SpentByCategory(gctx, id.Username)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.ledger.ListTransactions(gctx, id.Username)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}

	return core.NewDashboard(id, profile, total, groups, txs), nil
}

// ExportHeader is the first CSV row written by ExportCSV.
var ExportHeader = []string{"date", "description", "category", "amount"}

// ExportCSV writes the owner's ledger as CSV in display order. The ledger is
// read only.
func (s *LedgerService) ExportCSV(ctx context.Context, username string, w io.Writer) error {
	txs, err := s.ledger.ListTransactions(ctx, username)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		record := []string{t.Date.String(), csvText(t.Description), string(t.Category), t.Amount.String()}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvText prefixes a quote to text a spreadsheet would evaluate as a formula.
func csvText(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
