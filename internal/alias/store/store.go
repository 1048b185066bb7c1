package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conciliar/internal/alias"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindMatch returns the description of the longest pattern contained in
// rawDescription, compared case-insensitively as plain text.
func (s *Store) FindMatch(ctx context.Context, rawDescription string) (string, error) {
	query := `
		SELECT preferred_description
		FROM description_mappings
		WHERE POSITION(LOWER(raw_pattern) IN LOWER($1)) > 0
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var preferred string

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&preferred)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("finding alias for %q: %w", rawDescription, err)
	}

	return preferred, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern, preferredDescription string) error {
	query := `
		INSERT INTO description_mappings (raw_pattern, preferred_description)
		VALUES ($1, $2)
		ON CONFLICT ((LOWER(raw_pattern)))
		DO UPDATE SET preferred_description = EXCLUDED.preferred_description, created_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, rawPattern, preferredDescription); err != nil {
		return fmt.Errorf("storing alias %q: %w", rawPattern, err)
	}

	return nil
}

func (s *Store) ListMappings(ctx context.Context) ([]alias.Mapping, error) {
	query := `
		SELECT id, raw_pattern, preferred_description, created_at
		FROM description_mappings
		ORDER BY LOWER(raw_pattern)
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing aliases: %w", err)
	}
	defer rows.Close()

	var mappings []alias.Mapping

	for rows.Next() {
		var m alias.Mapping
		if err := rows.Scan(&m.ID, &m.RawPattern, &m.PreferredDescription, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}

		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}

func (s *Store) DeleteMapping(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM description_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting alias: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting alias: %w", err)
	}

	if n == 0 {
		return alias.ErrNotFound
	}

	return nil
}
