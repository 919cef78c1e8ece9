package service

import (
	"fmt"

	"indrhi-inventory/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID       uuid.UUID
	Username     string
	Email        string
	Name         string
	Role         model.RoleCode
	DepartmentID *uint
}

// SystemActor stamps audit fields written by seeding and the reset-password command
var SystemActor = Actor{Username: "system", Role: model.RoleAdmin}

func (a Actor) Can(c model.Capability) bool {
	return model.RoleCan(a.Role, c)
}

func (a Actor) require(c model.Capability) error {
	if !a.Can(c) {
		return fmt.Errorf("%w: role %q lacks %s", ErrForbidden, a.Role, c)
	}
	return nil
}

// Label identifies the actor on audit fields: username, else email
func (a Actor) Label() string {
	if a.Username != "" {
		return a.Username
	}
	return a.Email
}

// DisplayName prefers the person's name for document stamps
func (a Actor) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Label()
}

func (a Actor) userID() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}

// seesDepartment reports whether the actor may read requests of deptID
func (a Actor) seesDepartment(deptID uint) bool {
	if a.Can(model.CapRequestViewAll) {
		return true
	}
	return a.DepartmentID != nil && *a.DepartmentID == deptID
}

func (a Actor) logFields() map[string]interface{} {
	return map[string]interface{}{
		"id":    a.UserID,
		"name":  a.DisplayName(),
		"email": a.Email,
	}
}
