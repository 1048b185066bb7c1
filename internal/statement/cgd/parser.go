// Package cgd decodes Caixa Geral de Depósitos account, statement and card
// exports (CSV or XLSX) into a statement.Statement. The export variant is
// auto-detected by matching column headers against known profiles.
package cgd

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/conciliar/internal/encoding"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
)

const (
	formatName = "cgd"
	bankName   = "Caixa Geral de Depósitos"
	dateLayout = "02-01-2006"
)

var zipMagic = []byte("PK\x03\x04")

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Name() string { return formatName }

func (p *Parser) Extensions() []string { return []string{".csv", ".xlsx"} }

// Match reports whether data is a CGD export: an XLSX workbook or a
// delimited file with a known header row.
func (p *Parser) Match(data []byte) bool {
	if bytes.HasPrefix(data, zipMagic) {
		return true
	}

	rows, err := readCSV(data)
	if err != nil {
		return false
	}

	profile, _, _ := detectProfile(rows)

	return profile != nil
}

func (p *Parser) Parse(data []byte) (*statement.Statement, error) {
	var (
		rows [][]string
		err  error
	)

	if bytes.HasPrefix(data, zipMagic) {
		rows, err = readXLSX(data)
	} else {
		rows, err = readCSV(data)
	}

	if err != nil {
		return nil, &statement.ParseError{Kind: statement.ErrUnrecognizedFormat, Err: err}
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, &statement.ParseError{
			Kind: statement.ErrUnrecognizedFormat,
			Err:  fmt.Errorf("no matching CGD format found: expected columns for conta, extrato, or cartão"),
		}
	}

	st, err := parsePreamble(profile, rows[:headerIdx])
	if err != nil {
		return nil, err
	}

	movements, err := parseRows(profile, colMap, rows[headerIdx+1:], headerIdx+1)
	if err != nil {
		return nil, err
	}

	st.Movements = movements

	return st, nil
}

func readCSV(data []byte) ([][]string, error) {
	utf8Data, err := enc.ToUTF8(data, "")
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(utf8Data))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parsePreamble reads the "label ;value" rows above the header for the
// account identification and the closing balance.
func parsePreamble(p *Profile, rows [][]string) (*statement.Statement, error) {
	labels := make(map[string]string)
	lines := make(map[string]int)

	for i, row := range rows {
		if len(row) < 2 {
			continue
		}

		label := strings.TrimSpace(row[0])
		if _, seen := labels[label]; seen || label == "" {
			continue
		}

		labels[label] = strings.TrimSpace(row[1])
		lines[label] = i + 1
	}

	st := &statement.Statement{Format: formatName, BankName: bankName}

	for _, key := range p.AccountKeys {
		if v, ok := labels[key]; ok {
			st.AccountNumber, st.Currency = splitAccount(v)
			break
		}
	}

	if st.AccountNumber == "" {
		return nil, statement.Errorf(statement.ErrMissingField, p.AccountKeys[0], 0, "")
	}

	for _, key := range p.BalanceKeys {
		v, ok := labels[key]
		if !ok {
			continue
		}

		balance, err := parseEuropeanAmount(v)
		if err != nil {
			return nil, statement.Errorf(statement.ErrMalformedAmount, key, lines[key], v)
		}

		st.ClosingBalance = balance

		return st, nil
	}

	return nil, statement.Errorf(statement.ErrMissingField, p.BalanceKeys[0], 0, "")
}

// splitAccount splits "0000 - EUR - Conta Extracto" into number and currency.
func splitAccount(v string) (string, string) {
	parts := strings.Split(v, " - ")
	number := strings.TrimSpace(parts[0])

	if len(parts) > 1 {
		return number, strings.ToUpper(strings.TrimSpace(parts[1]))
	}

	return number, ""
}

// parseRows extracts movements from data rows using the matched profile.
// Rows without a date, and rows carrying neither a description nor an
// amount, are footers or page markers and are skipped. Any other row that
// cannot be fully read rejects the file.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]statement.Movement, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var movements []statement.Movement

	for i, row := range rows {
		rowNum := headerRowNum + i + 1 // 1-based

		raw := cellValue(row, dateIdx)
		if raw == "" {
			continue
		}

		desc := cellValue(row, descIdx)

		date, ok := parseDate(raw)
		if !ok {
			if desc == "" && !hasAmount(p, cols, row) {
				continue
			}

			return nil, statement.Errorf(statement.ErrMalformedDate, p.DateCol, rowNum, raw)
		}

		if desc == "" {
			return nil, statement.Errorf(statement.ErrMissingField, p.DescCol, rowNum, "")
		}

		amount, dir, err := parseAmount(p, cols, row, rowNum)
		if err != nil {
			return nil, err
		}

		movements = append(movements, statement.NewMovement(date, desc, amount, dir, ""))
	}

	return movements, nil
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// hasAmount reports whether any amount cell of the row is filled.
func hasAmount(p *Profile, cols colIndex, row []string) bool {
	if p.AmountMode == amountSingle {
		return cellValue(row, cols[p.AmountCol]) != ""
	}

	return cellValue(row, cols[p.DebitCol]) != "" || cellValue(row, cols[p.CreditCol]) != ""
}

// parseAmount extracts the signed amount and direction from a row based on the profile's amount mode.
func parseAmount(p *Profile, cols colIndex, row []string, rowNum int) (decimal.Decimal, statement.Direction, error) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleAmount(row, cols[p.AmountCol], p.AmountCol, rowNum)
	case amountSplit:
		return parseSplitAmount(p, row, cols[p.DebitCol], cols[p.CreditCol], rowNum)
	}

	return decimal.Decimal{}, "", statement.Errorf(statement.ErrUnrecognizedFormat, p.Name, rowNum, "")
}

// parseSingleAmount handles a single signed amount column.
func parseSingleAmount(row []string, idx int, col string, rowNum int) (decimal.Decimal, statement.Direction, error) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Decimal{}, "", statement.Errorf(statement.ErrMissingField, col, rowNum, "")
	}

	amount, err := parseEuropeanAmount(s)
	if err != nil {
		return decimal.Decimal{}, "", statement.Errorf(statement.ErrMalformedAmount, col, rowNum, s)
	}

	dir, ok := statement.DirectionOf(amount)
	if !ok {
		return decimal.Decimal{}, "", statement.Errorf(statement.ErrDirectionMismatch, col, rowNum, s)
	}

	return amount, dir, nil
}

// parseSplitAmount handles separate debit/credit columns. The column, not
// the sign of the value, decides the direction.
func parseSplitAmount(p *Profile, row []string, debitIdx, creditIdx, rowNum int) (decimal.Decimal, statement.Direction, error) {
	debit := cellValue(row, debitIdx)
	credit := cellValue(row, creditIdx)

	if debit != "" && credit != "" {
		return decimal.Decimal{}, "", statement.Errorf(statement.ErrDirectionMismatch, p.DebitCol, rowNum, debit+" / "+credit)
	}

	col, s, dir := p.DebitCol, debit, statement.DirectionDebit
	if credit != "" {
		col, s, dir = p.CreditCol, credit, statement.DirectionCredit
	}

	if s == "" {
		return decimal.Decimal{}, "", statement.Errorf(statement.ErrMissingField, p.DebitCol+"/"+p.CreditCol, rowNum, "")
	}

	amount, err := parseEuropeanAmount(s)
	if err != nil {
		return decimal.Decimal{}, "", statement.Errorf(statement.ErrMalformedAmount, col, rowNum, s)
	}

	if amount.IsZero() {
		return decimal.Decimal{}, "", statement.Errorf(statement.ErrDirectionMismatch, col, rowNum, s)
	}

	amount = amount.Abs()
	if dir == statement.DirectionDebit {
		amount = amount.Neg()
	}

	return amount, dir, nil
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
