// Package normalize derives the comparison keys the matcher works on:
// normalized description tokens, signed amounts and calendar dates.
package normalize

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MrJamesThe3rd/conciliar/internal/statement"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

// minTokenLen drops single letters and digits left over from abbreviations.
const minTokenLen = 2

// stopwords are connectives that carry no identity in bank descriptions.
var stopwords = map[string]struct{}{
	"a": {}, "o": {}, "e": {}, "de": {}, "da": {}, "do": {}, "das": {}, "dos": {},
	"em": {}, "na": {}, "no": {}, "para": {}, "por": {}, "com": {},
	"the": {}, "of": {}, "and": {}, "to": {}, "for": {},
}

// Text case-folds s, strips diacritics, turns punctuation into spaces and
// collapses whitespace.
func Text(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	folded := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}

		return ' '
	}, stripped)

	return strings.Join(strings.Fields(folded), " ")
}

// Tokens returns the significant tokens of s in order of first appearance,
// without duplicates.
func Tokens(s string) []string {
	fields := strings.Fields(Text(s))
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))

	for _, f := range fields {
		if len(f) < minTokenLen {
			continue
		}

		if _, stop := stopwords[f]; stop {
			continue
		}

		if _, dup := seen[f]; dup {
			continue
		}

		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}

	return tokens
}

// Key is the comparable form of a movement or ledger transaction.
type Key struct {
	Tokens []string
	Amount decimal.Decimal // signed: positive = inflow
	Dates  []time.Time     // calendar dates the record may be matched on
}

// MovementKey derives the key of a statement movement.
func MovementKey(m statement.Movement) Key {
	return Key{
		Tokens: Tokens(m.Description),
		Amount: m.Amount,
		Dates:  []time.Time{statement.Date(m.Date)},
	}
}

// TransactionKey derives the key of a ledger transaction. Expenses are
// signed negative; both issue and due dates are candidate dates.
func TransactionKey(tx *transaction.Transaction) Key {
	amount := tx.Amount.Abs()
	if tx.Kind == transaction.KindExpense {
		amount = amount.Neg()
	}

	var dates []time.Time

	for _, d := range []time.Time{tx.IssueDate, tx.DueDate} {
		if !d.IsZero() {
			dates = append(dates, statement.Date(d))
		}
	}

	desc := tx.Description
	if tx.RawDescription != "" && tx.RawDescription != tx.Description {
		desc += " " + tx.RawDescription
	}

	return Key{
		Tokens: Tokens(desc),
		Amount: amount,
		Dates:  dates,
	}
}

// DayGap returns the smallest distance in whole days between any date of a
// and any date of b. ok is false when either side has no date.
func DayGap(a, b Key) (int, bool) {
	best := -1

	for _, da := range a.Dates {
		for _, db := range b.Dates {
			gap := int(da.Sub(db).Hours() / 24)
			if gap < 0 {
				gap = -gap
			}

			if best < 0 || gap < best {
				best = gap
			}
		}
	}

	return best, best >= 0
}
