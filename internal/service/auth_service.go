package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionExpired     = errors.New("session expired (logged in on another device)")
)

type AuthService interface {
	Login(ctx context.Context, login, password string) (*LoginResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
}

type LoginResponse struct {
	Token        string             `json:"token"`
	User         model.UserResponse `json:"user"`
	Role         *model.Role        `json:"role"`
	Capabilities []model.Capability `json:"capabilities"`
}

type TokenValidationResponse struct {
	User         model.UserResponse `json:"user"`
	Role         *model.Role        `json:"role"`
	Capabilities []model.Capability `json:"capabilities"`
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// Login accepts a username or an email and starts a new single session
func (s *authService) Login(ctx context.Context, login, password string) (*LoginResponse, error) {
	// 1. Find user by username or email
	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr(err, "find user")
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Single session: a new token version invalidates older tokens
	newTokenVersion := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, newTokenVersion); err != nil {
		return nil, storageErr(err, "update session")
	}
	user.TokenVersion = newTokenVersion

	// 5. Generate JWT token with TokenVersion
	token, err := jwt.GenerateToken(jwt.Claims{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Name:         user.FullName,
		RoleCode:     string(user.RoleCode()),
		DepartmentID: user.DepartmentID,
		TokenVersion: newTokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate token: %v", ErrUpstreamFailure, err)
	}

	resp := user.ToResponse()
	return &LoginResponse{
		Token:        token,
		User:         resp,
		Role:         user.Role,
		Capabilities: resp.Capabilities,
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid("new password must be at least 6 characters")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return storageErr(err, "user "+userID.String())
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}

	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("%w: failed to hash new password", ErrUpstreamFailure)
	}
	return storageErr(s.userRepo.UpdatePassword(ctx, user.ID, user.Password, user.Username), "update password")
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, storageErr(err, "user "+claims.UserID.String())
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}

	resp := user.ToResponse()
	return &TokenValidationResponse{
		User:         resp,
		Role:         user.Role,
		Capabilities: resp.Capabilities,
	}, nil
}
