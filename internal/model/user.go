package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Username     string      `gorm:"type:varchar(60);uniqueIndex;not null" json:"username" validate:"required"`
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string      `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName     string      `gorm:"type:varchar(255)" json:"full_name"`
	RoleID       *uint       `gorm:"index" json:"role_id"`
	Role         *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	DepartmentID *uint       `gorm:"index" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	TokenVersion string      `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// RoleCode returns the code of the user's role, or "" when no active role is assigned
func (u *User) RoleCode() RoleCode {
	if u.Role == nil || !u.Role.Active {
		return ""
	}
	return u.Role.Code
}

// DisplayName is the name stamped on documents: full name, else username, else email
func (u *User) DisplayName() string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID           uuid.UUID    `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	FullName     string       `json:"full_name"`
	RoleID       *uint        `json:"role_id,omitempty"`
	Role         *Role        `json:"role,omitempty"`
	DepartmentID *uint        `json:"department_id,omitempty"`
	Department   *Department  `json:"department,omitempty"`
	IsActive     bool         `json:"is_active"`
	Capabilities []Capability `json:"capabilities"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		RoleID:       u.RoleID,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		Department:   u.Department,
		IsActive:     u.IsActive,
		Capabilities: CapabilitiesOf(u.RoleCode()),
	}
}
