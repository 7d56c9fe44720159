package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flicky/go-marketplace-api/internal/access"
	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/model"
	"github.com/flicky/go-marketplace-api/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Create(ctx context.Context, caller access.Caller, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := authorize(caller, access.ManageUser, access.Resource{}); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = model.RoleCustomer
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user, err := createUser(ctx, s.userRepo, req.RegisterRequest, role, active)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *UserService) List(ctx context.Context, caller access.Caller) ([]dto.UserResponse, error) {
	if err := authorize(caller, access.ManageUser, access.Resource{}); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, nil
}

func (s *UserService) GetByID(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.UserResponse, error) {
	if err := authorize(caller, access.ReadUser, access.Owned(id)); err != nil {
		return nil, err
	}
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *UserService) GetByEmail(ctx context.Context, caller access.Caller, email string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := authorize(caller, access.ReadUser, access.Owned(user.ID)); err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Update applies the non-nil fields. Role and isActive are admin-only.
func (s *UserService) Update(ctx context.Context, caller access.Caller, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := authorize(caller, access.WriteUser, access.Owned(id)); err != nil {
		return nil, err
	}
	if (req.Role != nil || req.IsActive != nil) && !access.Authorize(caller, access.ManageUser, access.Resource{}) {
		return nil, ErrAccessDenied
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUserAlreadyExists
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *UserService) SoftDelete(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	if err := authorize(caller, access.WriteUser, access.Owned(id)); err != nil {
		return err
	}
	if err := s.userRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// HardDelete removes the row and everything that cascades from it. Sellers
// whose products were ever ordered can only be soft deleted.
func (s *UserService) HardDelete(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	if err := authorize(caller, access.ManageUser, access.Resource{}); err != nil {
		return err
	}
	if err := s.userRepo.HardDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		if errors.Is(err, repository.ErrInUse) {
			return ErrUserHasSales
		}
		return fmt.Errorf("hard delete user: %w", err)
	}
	return nil
}

func (s *UserService) get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
