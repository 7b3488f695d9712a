package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/auth"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

// Service wraps account management rules.
type Service struct {
	repo    Repository
	auditor *audit.Recorder
}

// NewService constructs a new Service.
func NewService(repo Repository, auditor *audit.Recorder) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Create registers an account with a hashed credential.
func (s *Service) Create(ctx context.Context, req CreateUserRequest, actor int64) (*User, error) {
	if !shared.ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, req.Role)
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        req.Phone,
		Address:      req.Address,
		Status:       StatusActive,
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor,
		Action:   audit.ActionCreate,
		Entity:   "User",
		EntityID: strconv.FormatInt(id, 10),
		Details:  "role=" + string(req.Role),
	})
	return s.repo.Get(ctx, id)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// List returns accounts with paging.
func (s *Service) List(ctx context.Context, f ListFilters) ([]User, shared.Pagination, error) {
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	users, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(f.Page, f.PageSize, total), nil
}

// Update applies partial mutations to an account.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest, actor int64) (*User, error) {
	updates := make(map[string]interface{})
	if req.Username != nil {
		updates["username"] = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = hash
	}
	if req.Role != nil {
		if !shared.ValidRole(*req.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, *req.Role)
		}
		updates["role"] = *req.Role
	}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor,
		Action:   audit.ActionUpdate,
		Entity:   "User",
		EntityID: strconv.FormatInt(id, 10),
	})
	return s.repo.Get(ctx, id)
}

// Deactivate flips an account to inactive. Accounts are never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, id int64, actor int64) error {
	if err := s.repo.SetStatus(ctx, id, StatusInactive); err != nil {
		return err
	}
	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor,
		Action:   audit.ActionDelete,
		Entity:   "User",
		EntityID: strconv.FormatInt(id, 10),
		Details:  "status=inactive",
	})
	return nil
}
