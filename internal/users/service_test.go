package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

type stubRepo struct {
	nextID int64
	users  map[int64]*User
	emails map[string]int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{nextID: 1, users: map[int64]*User{}, emails: map[string]int64{}}
}

func (s *stubRepo) Get(_ context.Context, id int64) (*User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubRepo) List(_ context.Context, f ListFilters) ([]User, int, error) {
	var out []User
	for _, u := range s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (s *stubRepo) Create(_ context.Context, u User) (int64, error) {
	if _, exists := s.emails[u.Email]; exists {
		return 0, httpx.ErrDuplicate
	}
	id := s.nextID
	s.nextID++
	u.ID = id
	s.users[id] = &u
	s.emails[u.Email] = id
	return id, nil
}

func (s *stubRepo) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	u, ok := s.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if v, ok := updates["full_name"]; ok {
		u.FullName = v.(string)
	}
	if v, ok := updates["status"]; ok {
		u.Status = v.(string)
	}
	return nil
}

func (s *stubRepo) SetStatus(_ context.Context, id int64, status string) error {
	u, ok := s.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	u.Status = status
	return nil
}

func newService(repo Repository) *Service {
	var auditor *audit.Recorder
	return NewService(repo, auditor)
}

func validCreate() CreateUserRequest {
	return CreateUserRequest{
		Username: "customer1",
		Email:    "Customer1@DevineWater.local",
		Password: "password123",
		Role:     shared.RoleCustomer,
		FullName: "Demo Customer",
	}
}

func TestCreateUser(t *testing.T) {
	repo := newStubRepo()
	svc := newService(repo)

	user, err := svc.Create(context.Background(), validCreate(), 99)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, user.Status)
	assert.Equal(t, "customer1@devinewater.local", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[user.ID].PasswordHash), []byte("password123")))
}

func TestCreateUserUnknownRole(t *testing.T) {
	svc := newService(newStubRepo())

	req := validCreate()
	req.Role = "manager"
	_, err := svc.Create(context.Background(), req, 99)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := newService(newStubRepo())

	_, err := svc.Create(context.Background(), validCreate(), 99)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validCreate(), 99)
	assert.True(t, errors.Is(err, httpx.ErrDuplicate))
}

func TestDeactivateKeepsRow(t *testing.T) {
	repo := newStubRepo()
	svc := newService(repo)

	user, err := svc.Create(context.Background(), validCreate(), 99)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), user.ID, 99))
	got, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, got.Status)
}

func TestUpdateUser(t *testing.T) {
	repo := newStubRepo()
	svc := newService(repo)

	user, err := svc.Create(context.Background(), validCreate(), 99)
	require.NoError(t, err)

	newName := "Renamed Customer"
	updated, err := svc.Update(context.Background(), user.ID, UpdateUserRequest{FullName: &newName}, 99)
	require.NoError(t, err)
	assert.Equal(t, newName, updated.FullName)
}

func TestUpdateUserUnknownRole(t *testing.T) {
	repo := newStubRepo()
	svc := newService(repo)

	user, err := svc.Create(context.Background(), validCreate(), 99)
	require.NoError(t, err)

	bad := shared.Role("manager")
	_, err = svc.Update(context.Background(), user.ID, UpdateUserRequest{Role: &bad}, 99)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}
