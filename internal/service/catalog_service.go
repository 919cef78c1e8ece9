package service

import (
	"context"
	"fmt"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
)

// CatalogService maintains departments and roles
type CatalogService interface {
	ListDepartments(ctx context.Context) ([]model.Department, error)
	GetDepartment(ctx context.Context, id uint) (*model.Department, error)
	CreateDepartment(ctx context.Context, input DepartmentInput) (*model.Department, error)
	UpdateDepartment(ctx context.Context, id uint, input DepartmentInput) (*model.Department, error)
	DeleteDepartment(ctx context.Context, id uint) error

	ListRoles(ctx context.Context) ([]model.Role, error)
	CreateRole(ctx context.Context, input RoleInput) (*model.Role, error)
	UpdateRole(ctx context.Context, id uint, input RoleInput) (*model.Role, error)
	DeleteRole(ctx context.Context, id uint) error
}

type DepartmentInput struct {
	Code string `json:"code" validate:"required,max=20"`
	Name string `json:"name" validate:"required,max=150"`
}

type RoleInput struct {
	Code        model.RoleCode `json:"code" validate:"required"`
	Name        string         `json:"name" validate:"required,max=100"`
	Description string         `json:"description"`
	Active      *bool          `json:"active"`
}

type catalogService struct {
	repos *repository.Repositories
}

func NewCatalogService(repos *repository.Repositories) CatalogService {
	return &catalogService{repos: repos}
}

func (s *catalogService) ListDepartments(ctx context.Context) ([]model.Department, error) {
	depts, err := s.repos.Departments.FindAll(ctx)
	return depts, storageErr(err, "list departments")
}

func (s *catalogService) GetDepartment(ctx context.Context, id uint) (*model.Department, error) {
	dept, err := s.repos.Departments.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, fmt.Sprintf("department %d", id))
	}
	return dept, nil
}

func (s *catalogService) CreateDepartment(ctx context.Context, input DepartmentInput) (*model.Department, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if err := s.uniqueDepartmentCode(ctx, input.Code, 0); err != nil {
		return nil, err
	}

	dept := &model.Department{Code: input.Code, Name: input.Name}
	if err := s.repos.Departments.Create(ctx, dept); err != nil {
		return nil, storageErr(err, "create department "+input.Code)
	}
	return dept, nil
}

func (s *catalogService) UpdateDepartment(ctx context.Context, id uint, input DepartmentInput) (*model.Department, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	dept, err := s.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.uniqueDepartmentCode(ctx, input.Code, id); err != nil {
		return nil, err
	}

	dept.Code = input.Code
	dept.Name = input.Name
	if err := s.repos.Departments.Update(ctx, dept); err != nil {
		return nil, storageErr(err, "update department "+input.Code)
	}
	return dept, nil
}

// DeleteDepartment is refused while users or requests reference the department
func (s *catalogService) DeleteDepartment(ctx context.Context, id uint) error {
	if _, err := s.GetDepartment(ctx, id); err != nil {
		return err
	}
	users, err := s.repos.Departments.CountUsers(ctx, id)
	if err != nil {
		return storageErr(err, "count department users")
	}
	requests, err := s.repos.Departments.CountRequests(ctx, id)
	if err != nil {
		return storageErr(err, "count department requests")
	}
	if users > 0 || requests > 0 {
		return conflict("department %d is referenced by %d users and %d requests", id, users, requests)
	}
	return storageErr(s.repos.Departments.Delete(ctx, id), fmt.Sprintf("department %d", id))
}

func (s *catalogService) uniqueDepartmentCode(ctx context.Context, code string, excludeID uint) error {
	exists, err := s.repos.Departments.ExistsCode(ctx, code, excludeID)
	if err != nil {
		return storageErr(err, "check department code")
	}
	if exists {
		return conflict("department code %s already exists", code)
	}
	return nil
}

func (s *catalogService) ListRoles(ctx context.Context) ([]model.Role, error) {
	roles, err := s.repos.Roles.FindAll(ctx)
	return roles, storageErr(err, "list roles")
}

func (s *catalogService) checkRole(ctx context.Context, input *RoleInput, excludeID uint) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if !input.Code.Valid() {
		return invalid("unknown role code %q", input.Code)
	}
	exists, err := s.repos.Roles.ExistsName(ctx, input.Name, excludeID)
	if err != nil {
		return storageErr(err, "check role name")
	}
	if exists {
		return conflict("role name %s already exists", input.Name)
	}
	return nil
}

func (s *catalogService) CreateRole(ctx context.Context, input RoleInput) (*model.Role, error) {
	if err := s.checkRole(ctx, &input, 0); err != nil {
		return nil, err
	}
	role := &model.Role{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		Active:      input.Active == nil || *input.Active,
	}
	if err := s.repos.Roles.Create(ctx, role); err != nil {
		return nil, storageErr(err, "create role "+input.Name)
	}
	return role, nil
}

func (s *catalogService) UpdateRole(ctx context.Context, id uint, input RoleInput) (*model.Role, error) {
	role, err := s.repos.Roles.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, fmt.Sprintf("role %d", id))
	}
	if err := s.checkRole(ctx, &input, id); err != nil {
		return nil, err
	}

	role.Code = input.Code
	role.Name = input.Name
	role.Description = input.Description
	if input.Active != nil {
		role.Active = *input.Active
	}
	if err := s.repos.Roles.Update(ctx, role); err != nil {
		return nil, storageErr(err, "update role "+input.Name)
	}
	return role, nil
}

// DeleteRole is refused while users hold the role
func (s *catalogService) DeleteRole(ctx context.Context, id uint) error {
	if _, err := s.repos.Roles.FindByID(ctx, id); err != nil {
		return storageErr(err, fmt.Sprintf("role %d", id))
	}
	users, err := s.repos.Roles.CountUsers(ctx, id)
	if err != nil {
		return storageErr(err, "count role users")
	}
	if users > 0 {
		return conflict("role %d is assigned to %d users", id, users)
	}
	return storageErr(s.repos.Roles.Delete(ctx, id), fmt.Sprintf("role %d", id))
}
