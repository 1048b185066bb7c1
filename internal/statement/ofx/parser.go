// Package ofx decodes OFX bank and credit-card statements, in both the
// SGML (1.x) and XML (2.x) renditions, into a statement.Statement.
package ofx

import (
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/conciliar/internal/encoding"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
)

const (
	tagRoot     = "OFX"
	tagTxn      = "STMTTRN"
	tagTxnList  = "BANKTRANLIST"
	tagLedger   = "LEDGERBAL"
	tagFI       = "FI"
	typeCredit  = "CREDIT"
	typeDebit   = "DEBIT"
	formatName  = "ofx"
	fieldAcctID = "ACCTID"
	fieldBalAmt = "LEDGERBAL.BALAMT"
)

// Parser decodes OFX statements.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Name() string { return formatName }

func (p *Parser) Extensions() []string { return []string{".ofx", ".qfx"} }

func (p *Parser) Match(data []byte) bool { return hasSignature(data) }

// field is a leaf value together with the line it was read from.
type field struct {
	value string
	line  int
}

// txnBlock collects the leaves of one STMTTRN aggregate.
type txnBlock struct {
	line   int
	fields map[string]field
}

// header collects the account identification and balance leaves.
type header struct {
	fields map[string]field
}

func (h *header) set(name string, tok token) error {
	if prev, ok := h.fields[name]; ok {
		if name == fieldAcctID && prev.value != tok.value {
			return &statement.ParseError{
				Kind:  statement.ErrUnrecognizedFormat,
				Field: name,
				Line:  tok.line,
				Err:   fmt.Errorf("file holds more than one account (%s, %s)", prev.value, tok.value),
			}
		}

		return nil
	}

	h.fields[name] = field{value: tok.value, line: tok.line}

	return nil
}

// Parse decodes a complete OFX file. Any missing or malformed required
// field rejects the whole file.
func (p *Parser) Parse(data []byte) (*statement.Statement, error) {
	if !hasSignature(data) {
		return nil, statement.Errorf(statement.ErrUnrecognizedFormat, "", 0, "")
	}

	text, err := encoding.ToUTF8(data, declaredCharset(data))
	if err != nil {
		return nil, &statement.ParseError{Kind: statement.ErrUnrecognizedFormat, Err: err}
	}

	hdr, blocks, err := walk(lex(string(text)))
	if err != nil {
		return nil, err
	}

	return build(hdr, blocks)
}

// walk runs through the tag stream keeping a stack of open aggregates.
// A tag followed by text is a leaf; a tag followed by nothing opens an
// aggregate. Closing tags pop up to the matching aggregate, which tolerates
// the unclosed leaves of SGML files.
func walk(tokens []token) (*header, []txnBlock, error) {
	var (
		stack   []string
		current *txnBlock
		blocks  []txnBlock
		sawRoot bool
		hdr     = &header{fields: make(map[string]field)}
	)

	for _, tok := range tokens {
		switch tok.kind {
		case tokenOpen:
			if tok.name == tagRoot {
				sawRoot = true
			}

			if tok.value == "" {
				if tok.name == tagTxn {
					if current != nil {
						return nil, nil, statement.Errorf(statement.ErrTruncatedBlock, tagTxn, current.line, "")
					}

					current = &txnBlock{line: tok.line, fields: make(map[string]field)}
				}

				stack = append(stack, tok.name)

				continue
			}

			if current != nil {
				if _, seen := current.fields[tok.name]; !seen {
					current.fields[tok.name] = field{value: tok.value, line: tok.line}
				}

				continue
			}

			if err := hdr.set(headerKey(stack, tok.name), tok); err != nil {
				return nil, nil, err
			}

		case tokenClose:
			idx := lastIndex(stack, tok.name)
			if idx < 0 {
				// closing tag of a leaf (XML) or of something never opened
				continue
			}

			if current != nil {
				txnIdx := lastIndex(stack, tagTxn)
				if tok.name != tagTxn && idx < txnIdx {
					return nil, nil, statement.Errorf(statement.ErrTruncatedBlock, tagTxn, current.line, "")
				}

				if tok.name == tagTxn {
					blocks = append(blocks, *current)
					current = nil
				}
			}

			stack = stack[:idx]
		}
	}

	if !sawRoot {
		return nil, nil, statement.Errorf(statement.ErrUnrecognizedFormat, tagRoot, 0, "")
	}

	if current != nil {
		return nil, nil, statement.Errorf(statement.ErrTruncatedBlock, tagTxn, current.line, "")
	}

	return hdr, blocks, nil
}

// headerKey qualifies the leaves whose meaning depends on their parent.
func headerKey(stack []string, name string) string {
	parent := ""
	if len(stack) > 0 {
		parent = stack[len(stack)-1]
	}

	switch {
	case parent == tagLedger:
		return tagLedger + "." + name
	case parent == tagFI && name == "ORG":
		return "FI.ORG"
	case parent == tagTxnList:
		return tagTxnList + "." + name
	}

	return name
}

func lastIndex(stack []string, name string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			return i
		}
	}

	return -1
}

func build(hdr *header, blocks []txnBlock) (*statement.Statement, error) {
	acct, ok := hdr.fields[fieldAcctID]
	if !ok || acct.value == "" {
		return nil, statement.Errorf(statement.ErrMissingField, fieldAcctID, 0, "")
	}

	bal, ok := hdr.fields[fieldBalAmt]
	if !ok {
		return nil, statement.Errorf(statement.ErrMissingField, fieldBalAmt, 0, "")
	}

	closing, ok := parseAmount(bal.value)
	if !ok {
		return nil, statement.Errorf(statement.ErrMalformedAmount, fieldBalAmt, bal.line, bal.value)
	}

	st := &statement.Statement{
		Format:         formatName,
		BankName:       hdr.fields["FI.ORG"].value,
		BranchCode:     hdr.fields["BRANCHID"].value,
		AccountNumber:  acct.value,
		Currency:       strings.ToUpper(hdr.fields["CURDEF"].value),
		ClosingBalance: closing,
		Movements:      make([]statement.Movement, 0, len(blocks)),
	}

	if st.BankName == "" {
		st.BankName = hdr.fields["BANKID"].value
	}

	if asOf, ok := hdr.fields[tagLedger+".DTASOF"]; ok {
		d, ok := parseDate(asOf.value)
		if !ok {
			return nil, statement.Errorf(statement.ErrMalformedDate, tagLedger+".DTASOF", asOf.line, asOf.value)
		}

		st.BalanceDate = &d
	}

	for _, b := range blocks {
		m, err := buildMovement(b)
		if err != nil {
			return nil, err
		}

		st.Movements = append(st.Movements, m)
	}

	return st, nil
}

func buildMovement(b txnBlock) (statement.Movement, error) {
	posted, ok := b.fields["DTPOSTED"]
	if !ok {
		return statement.Movement{}, statement.Errorf(statement.ErrMissingField, "DTPOSTED", b.line, "")
	}

	date, ok := parseDate(posted.value)
	if !ok {
		return statement.Movement{}, statement.Errorf(statement.ErrMalformedDate, "DTPOSTED", posted.line, posted.value)
	}

	amt, ok := b.fields["TRNAMT"]
	if !ok {
		return statement.Movement{}, statement.Errorf(statement.ErrMissingField, "TRNAMT", b.line, "")
	}

	amount, ok := parseAmount(amt.value)
	if !ok {
		return statement.Movement{}, statement.Errorf(statement.ErrMalformedAmount, "TRNAMT", amt.line, amt.value)
	}

	desc := b.fields["MEMO"].value
	if desc == "" {
		desc = b.fields["NAME"].value
	}

	if desc == "" {
		return statement.Movement{}, statement.Errorf(statement.ErrMissingField, "MEMO", b.line, "")
	}

	dir, err := direction(b.fields["TRNTYPE"], amt)
	if err != nil {
		return statement.Movement{}, err
	}

	if !statement.Agrees(dir, amount) {
		return statement.Movement{}, &statement.ParseError{
			Kind:  statement.ErrDirectionMismatch,
			Field: "TRNAMT",
			Line:  amt.line,
			Value: amt.value,
			Err:   fmt.Errorf("declared %s", dir),
		}
	}

	return statement.NewMovement(date, desc, amount, dir, b.fields["FITID"].value), nil
}

// direction takes CREDIT/DEBIT transaction types as authoritative and
// derives the direction from the amount sign for every other type.
func direction(trnType, amt field) (statement.Direction, error) {
	switch strings.ToUpper(trnType.value) {
	case typeCredit:
		return statement.DirectionCredit, nil
	case typeDebit:
		return statement.DirectionDebit, nil
	}

	amount, _ := parseAmount(amt.value)

	dir, ok := statement.DirectionOf(amount)
	if !ok {
		return "", statement.Errorf(statement.ErrDirectionMismatch, "TRNAMT", amt.line, amt.value)
	}

	return dir, nil
}
