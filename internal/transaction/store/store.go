package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a ledger row in selectColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx                transaction.Transaction
		kind, status      string
		rawDesc, costCent sql.NullString
	)

	if err := s.Scan(
		&tx.ID, &kind, &status, &tx.Description, &rawDesc, &tx.Amount, &tx.Currency,
		&tx.IssueDate, &tx.DueDate, &costCent,
		&tx.CreatedAt, &tx.UpdatedAt, &tx.DeletedAt,
	); err != nil {
		return nil, err
	}

	tx.Kind = transaction.Kind(kind)
	tx.Status = transaction.Status(status)
	tx.RawDescription = rawDesc.String

	if costCent.Valid {
		tx.CostCenter = &costCent.String
	}

	tx.IssueDate = tx.IssueDate.UTC()
	tx.DueDate = tx.DueDate.UTC()

	return &tx, nil
}

const selectColumns = `
	id, kind, status, description, raw_description, amount, currency,
	issue_date, due_date, cost_center, created_at, updated_at, deleted_at
`

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO ledger_transactions
			(kind, status, description, raw_description, amount, currency, issue_date, due_date, cost_center, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.Kind,
		tx.Status,
		tx.Description,
		tx.RawDescription,
		tx.Amount,
		tx.Currency,
		tx.IssueDate,
		tx.DueDate,
		tx.CostCenter,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + `
		FROM ledger_transactions
		WHERE id = $1 AND deleted_at IS NULL`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

// ListTransactions applies the filter; the date range matches entries whose
// issue or due date falls inside it.
func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + `
		FROM ledger_transactions
		WHERE deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argIdx)

		args = append(args, *filter.Kind)
		argIdx++
	}

	switch {
	case filter.StartDate != nil && filter.EndDate != nil:
		query += fmt.Sprintf(
			" AND ((issue_date BETWEEN $%d AND $%d) OR (due_date BETWEEN $%d AND $%d))",
			argIdx, argIdx+1, argIdx, argIdx+1,
		)

		args = append(args, *filter.StartDate, *filter.EndDate)
	case filter.StartDate != nil:
		query += fmt.Sprintf(" AND (issue_date >= $%d OR due_date >= $%d)", argIdx, argIdx)

		args = append(args, *filter.StartDate)
	case filter.EndDate != nil:
		query += fmt.Sprintf(" AND (issue_date <= $%d OR due_date <= $%d)", argIdx, argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY issue_date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status transaction.Status) error {
	query := `
		UPDATE ledger_transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return requireAffected(res)
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE ledger_transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}
