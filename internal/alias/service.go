// Package alias remembers the preferred description for raw bank text so
// that ledger entries created from statement movements read the way the
// operator writes them.
package alias

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=alias
type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (string, error)
	// CreateMapping replaces the description of an existing pattern.
	CreateMapping(ctx context.Context, rawPattern, preferredDescription string) error
	ListMappings(ctx context.Context) ([]Mapping, error)
	DeleteMapping(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the preferred description for the longest stored pattern
// contained in rawDescription, or "" when none matches.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (string, error) {
	raw := strings.TrimSpace(rawDescription)
	if raw == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, raw)
}

// Learn remembers a mapping between a raw pattern and a preferred description.
// Learning a description identical to the raw text is a no-op.
func (s *Service) Learn(ctx context.Context, rawPattern, preferredDescription string) error {
	raw := strings.TrimSpace(rawPattern)
	preferred := strings.TrimSpace(preferredDescription)

	if raw == "" || preferred == "" {
		return fmt.Errorf("%w: pattern and description are required", ErrInvalidMapping)
	}

	if strings.EqualFold(raw, preferred) {
		return nil
	}

	return s.repo.CreateMapping(ctx, raw, preferred)
}

func (s *Service) List(ctx context.Context) ([]Mapping, error) {
	return s.repo.ListMappings(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMapping(ctx, id)
}
