package sheets

import (
	"context"
	"strconv"

	"expensetracker/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter mirrors ledger entries into an external spreadsheet.
	TransactionWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)

// Header is the column layout of a mirrored ledger row.
var Header = []string{"id", "date", "username", "description", "category", "amount"}

// Row renders t in Header order.
func Row(t core.Transaction) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Date.String(),
		t.Username,
		t.Description,
		string(t.Category),
		t.Amount.String(),
	}
}

// CellValues renders t in Header order for a RAW write: id and amount stay
// numeric, text columns are stored verbatim and never parsed as formulas.
func CellValues(t core.Transaction) []any {
	return []any{
		t.ID,
		t.Date.String(),
		t.Username,
		t.Description,
		string(t.Category),
		t.Amount.Decimal().InexactFloat64(),
	}
}
