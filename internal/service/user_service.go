package service

import (
	"context"
	"fmt"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"

	"github.com/google/uuid"
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, creator Actor) (*model.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, updater Actor) (*model.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID, deleter Actor) error
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=60"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	FullName     string `json:"full_name" validate:"required"`
	RoleID       uint   `json:"role_id" validate:"required"`
	DepartmentID *uint  `json:"department_id"`
}

type UpdateUserRequest struct {
	Username     string  `json:"username" validate:"required,min=3,max=60"`
	Email        string  `json:"email" validate:"required,email"`
	Password     *string `json:"password,omitempty" validate:"omitempty,min=6"` // Optional
	FullName     string  `json:"full_name" validate:"required"`
	RoleID       uint    `json:"role_id" validate:"required"`
	DepartmentID *uint   `json:"department_id"`
	IsActive     *bool   `json:"is_active"`
}

type userService struct {
	repos *repository.Repositories
}

func NewUserService(repos *repository.Repositories) UserService {
	return &userService{repos: repos}
}

// checkAssignment validates the role and department pair of a user
func (s *userService) checkAssignment(ctx context.Context, roleID uint, deptID *uint) error {
	role, err := s.repos.Roles.FindByID(ctx, roleID)
	if err != nil {
		return storageErr(err, fmt.Sprintf("role %d", roleID))
	}
	if role.Code == model.RoleDepartment && deptID == nil {
		return invalid("role %s requires a department_id", role.Name)
	}
	if deptID != nil {
		if _, err := s.repos.Departments.FindByID(ctx, *deptID); err != nil {
			return storageErr(err, fmt.Sprintf("department %d", *deptID))
		}
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, creator Actor) (*model.User, error) {
	// 1. Validate request
	if err := validateInput(req); err != nil {
		return nil, err
	}

	// 2. Username and email are unique
	exists, err := s.repos.Users.ExistsUsernameOrEmail(ctx, req.Username, req.Email, uuid.Nil)
	if err != nil {
		return nil, storageErr(err, "check user uniqueness")
	}
	if exists {
		return nil, conflict("username or email already exists")
	}

	// 3. Role and department must exist
	if err := s.checkAssignment(ctx, req.RoleID, req.DepartmentID); err != nil {
		return nil, err
	}

	// 4. Create user
	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		RoleID:       &req.RoleID,
		DepartmentID: req.DepartmentID,
		IsActive:     true,
		TokenVersion: uuid.NewString(),
	}
	user.CreatedBy = creator.Label()
	user.UpdatedBy = creator.Label()

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: failed to hash password", ErrUpstreamFailure)
	}

	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, storageErr(err, "create user "+req.Username)
	}

	created, err := s.repos.Users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, storageErr(err, "reload user")
	}
	return created, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, updater Actor) (*model.User, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storageErr(err, "user "+userID.String())
	}

	exists, err := s.repos.Users.ExistsUsernameOrEmail(ctx, req.Username, req.Email, userID)
	if err != nil {
		return nil, storageErr(err, "check user uniqueness")
	}
	if exists {
		return nil, conflict("username or email already exists")
	}

	if err := s.checkAssignment(ctx, req.RoleID, req.DepartmentID); err != nil {
		return nil, err
	}

	user.Username = req.Username
	user.Email = req.Email
	user.FullName = req.FullName
	user.RoleID = &req.RoleID
	user.DepartmentID = req.DepartmentID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updater.Label()

	// Update password if provided
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("%w: failed to hash password", ErrUpstreamFailure)
		}
	}

	// associations are reloaded below, not written
	user.Role = nil
	user.Department = nil
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, storageErr(err, "update user "+req.Username)
	}

	updated, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storageErr(err, "reload user")
	}
	return updated, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID, deleter Actor) error {
	if userID == deleter.UserID {
		return invalid("users cannot delete themselves")
	}
	return storageErr(s.repos.Users.Delete(ctx, userID), "user "+userID.String())
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.repos.Users.FindAll(ctx)
	if err != nil {
		return nil, storageErr(err, "list users")
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "user "+id.String())
	}
	response := user.ToResponse()
	return &response, nil
}
