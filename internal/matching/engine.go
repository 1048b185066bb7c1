// Package matching proposes, for each statement movement, the ledger
// transaction that best explains it, with a 0-100 confidence score.
package matching

import (
	"math"

	"github.com/MrJamesThe3rd/conciliar/internal/normalize"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

// Breakdown holds the sub-scores, each in [0, 1], of one candidate.
type Breakdown struct {
	Amount      float64
	Date        float64
	Description float64
}

// Result is the outcome of matching one movement. Score and Breakdown
// describe the best compatible candidate; Suggestion is nil when that
// candidate scored below the threshold or no candidate was compatible.
type Result struct {
	Movement   statement.Movement
	Suggestion *transaction.Transaction
	Score      int
	Breakdown  Breakdown
}

func (r Result) Matched() bool {
	return r.Suggestion != nil
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Engine{cfg: cfg}, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Compatible reports whether a ledger kind can explain a movement direction.
func Compatible(dir statement.Direction, kind transaction.Kind) bool {
	switch dir {
	case statement.DirectionCredit:
		return kind == transaction.KindIncome
	case statement.DirectionDebit:
		return kind == transaction.KindExpense
	}

	return false
}

// MatchAll matches every movement independently against the same pool.
// Results keep the order of movements.
func (e *Engine) MatchAll(movements []statement.Movement, candidates []*transaction.Transaction) []Result {
	keys := candidateKeys(candidates)

	results := make([]Result, len(movements))
	for i, m := range movements {
		results[i] = e.match(m, candidates, keys)
	}

	return results
}

// RematchOne matches a single movement against the current pool.
func (e *Engine) RematchOne(m statement.Movement, candidates []*transaction.Transaction) Result {
	keys := candidateKeys(candidates)

	return e.match(m, candidates, keys)
}

// candidateKeys precomputes comparison keys. Nil entries keep a zero key and
// are skipped by match.
func candidateKeys(candidates []*transaction.Transaction) []normalize.Key {
	keys := make([]normalize.Key, len(candidates))
	for i, tx := range candidates {
		if tx != nil {
			keys[i] = normalize.TransactionKey(tx)
		}
	}

	return keys
}

// scored is a candidate under consideration.
type scored struct {
	tx        *transaction.Transaction
	id        string
	score     int
	gap       int
	breakdown Breakdown
}

// better reports whether a ranks above b: higher score, then closer date,
// then smaller id.
func (a scored) better(b scored) bool {
	if a.score != b.score {
		return a.score > b.score
	}

	if a.gap != b.gap {
		return a.gap < b.gap
	}

	return a.id < b.id
}

func (e *Engine) match(m statement.Movement, candidates []*transaction.Transaction, keys []normalize.Key) Result {
	res := Result{Movement: m}
	mk := normalize.MovementKey(m)

	var (
		best  scored
		found bool
	)

	for i, tx := range candidates {
		if tx == nil || !Compatible(m.Direction, tx.Kind) {
			continue
		}

		c := e.score(mk, keys[i])
		c.tx = tx
		c.id = tx.ID.String()

		if !found || c.better(best) {
			best, found = c, true
		}
	}

	if !found {
		return res
	}

	res.Score = best.score
	res.Breakdown = best.breakdown

	if best.score >= e.cfg.Threshold {
		res.Suggestion = best.tx
	}

	return res
}

func (e *Engine) score(mk, tk normalize.Key) scored {
	var (
		b   Breakdown
		gap = math.MaxInt
	)

	if mk.Amount.Abs().Equal(tk.Amount.Abs()) {
		b.Amount = 1
	}

	if g, ok := normalize.DayGap(mk, tk); ok {
		gap = g
		if g <= e.cfg.WindowDays {
			b.Date = 1 - float64(g)/float64(e.cfg.WindowDays+1)
		}
	}

	b.Description = clamp(e.cfg.Similarity(mk.Tokens, tk.Tokens))

	total := float64(e.cfg.WeightAmount)*b.Amount +
		float64(e.cfg.WeightDate)*b.Date +
		float64(e.cfg.WeightDescription)*b.Description

	return scored{score: int(math.Round(total)), gap: gap, breakdown: b}
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}

	return v
}
