// Package normalize turns structured statement rows into transactions:
// parsed dates, sign-free decimal amounts with explicit direction, and a
// keyword-derived category. Rows missing a date, description or usable
// amount are skipped, not failed; one bad row never sinks a statement.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"taxdesk/internal/domain"
	"taxdesk/internal/tabular"
)

var (
	creditWordPattern = regexp.MustCompile(`(?i)credit|cr|deposit|inflow`)
	debitWordPattern  = regexp.MustCompile(`(?i)debit|dr|withdrawal|outflow`)
)

// Result carries the normalized transactions plus how many rows were
// dropped, so callers can surface data-quality problems to the user.
type Result struct {
	Transactions []domain.NormalizedTransaction
	Skipped      int
}

// NormalizeRows converts structured rows into transactions using the
// detected column map. currency is always NGN.
func NormalizeRows(rows []tabular.StructuredRow, headers []string, bankName string) Result {
	columns := DetectColumns(headers)
	res := Result{}

	for _, row := range rows {
		tx, ok := normalizeRow(row, columns, bankName)
		if !ok {
			res.Skipped++
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

func normalizeRow(row tabular.StructuredRow, columns ColumnMap, bankName string) (domain.NormalizedTransaction, bool) {
	if columns.DateKey == "" {
		return domain.NormalizedTransaction{}, false
	}
	date, ok := cellDate(row, columns.DateKey)
	if !ok {
		return domain.NormalizedTransaction{}, false
	}

	rawDesc := cellText(row, columns.DescriptionKey)
	if strings.TrimSpace(rawDesc) == "" {
		return domain.NormalizedTransaction{}, false
	}

	direction := detectDirection(row, columns)

	amount, ok := extractAmount(row, columns, direction)
	if !ok || amount.IsZero() {
		return domain.NormalizedTransaction{}, false
	}

	category, subCategory := InferCategory(rawDesc)

	return domain.NormalizedTransaction{
		Date:           date,
		Description:    CleanDescription(rawDesc),
		RawDescription: rawDesc,
		Amount:         amount,
		Direction:      direction,
		Category:       category,
		SubCategory:    subCategory,
		Currency:       "NGN",
		BankName:       bankName,
	}, true
}

// detectDirection resolves credit vs debit in priority order: split
// credit/debit columns, then an explicit type column, then the sign of a
// single amount column. Unresolvable rows default to debit so unlabeled
// noise never inflates income.
func detectDirection(row tabular.StructuredRow, columns ColumnMap) domain.Direction {
	if columns.CreditKey != "" && columns.DebitKey != "" {
		if v, ok := ParseAmount(cellText(row, columns.CreditKey)); ok && v.IsPositive() {
			return domain.DirectionCredit
		}
		if v, ok := ParseAmount(cellText(row, columns.DebitKey)); ok && v.IsPositive() {
			return domain.DirectionDebit
		}
	}

	if columns.TypeKey != "" {
		val := strings.ToLower(cellText(row, columns.TypeKey))
		if creditWordPattern.MatchString(val) {
			return domain.DirectionCredit
		}
		if debitWordPattern.MatchString(val) {
			return domain.DirectionDebit
		}
	}

	if columns.AmountKey != "" {
		raw := cellText(row, columns.AmountKey)
		if strings.Contains(raw, "(") || strings.HasPrefix(raw, "-") {
			return domain.DirectionDebit
		}
		return domain.DirectionCredit
	}

	return domain.DirectionDebit
}

// extractAmount pulls the transaction amount, preferring split
// credit/debit columns over a single amount column.
func extractAmount(row tabular.StructuredRow, columns ColumnMap, direction domain.Direction) (decimal.Decimal, bool) {
	if columns.CreditKey != "" && columns.DebitKey != "" {
		if direction == domain.DirectionCredit {
			return ParseAmount(cellText(row, columns.CreditKey))
		}
		return ParseAmount(cellText(row, columns.DebitKey))
	}
	if columns.AmountKey != "" {
		return ParseAmount(cellText(row, columns.AmountKey))
	}
	return decimal.Zero, false
}

func cellText(row tabular.StructuredRow, key string) string {
	if key == "" {
		return ""
	}
	c, ok := row.Lookup(key)
	if !ok {
		return ""
	}
	return c.Text
}

func cellDate(row tabular.StructuredRow, key string) (time.Time, bool) {
	c, ok := row.Lookup(key)
	if !ok {
		return time.Time{}, false
	}
	if c.Kind == tabular.CellDate {
		return c.Date, true
	}
	return ParseDate(c.Text)
}
