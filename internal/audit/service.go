package audit

import (
	"context"
	"fmt"

	"github.com/devine-water/devine-water/internal/shared"
)

// Service coordinates activity log reads for the API.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Result wraps a timeline page with paging metadata.
type Result struct {
	Rows   []Entry
	Paging shared.Pagination
}

// List returns activity log entries with paging.
func (s *Service) List(ctx context.Context, f ListFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return Result{}, err
	}
	return Result{Rows: rows, Paging: shared.NewPagination(f.Page, f.PageSize, total)}, nil
}
