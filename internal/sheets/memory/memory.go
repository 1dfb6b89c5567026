// Package memory is an in-process TransactionWriter used when no spreadsheet
// is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/core"
	ports "expensetracker/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows [][]string
	fail error
}

var _ ports.TransactionWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendTransaction stores the rendered row and returns a synthetic row reference.
func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", s.fail
	}
	s.rows = append(s.rows, ports.Row(t))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything written so far.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// FailWith makes subsequent appends return err; nil restores normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}
