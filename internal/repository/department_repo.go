package repository

import (
	"context"

	"indrhi-inventory/internal/model"

	"gorm.io/gorm"
)

type DepartmentRepository interface {
	FindAll(ctx context.Context) ([]model.Department, error)
	FindByID(ctx context.Context, id uint) (*model.Department, error)
	ExistsCode(ctx context.Context, code string, excludeID uint) (bool, error)
	Create(ctx context.Context, dept *model.Department) error
	Update(ctx context.Context, dept *model.Department) error
	Delete(ctx context.Context, id uint) error
	CountUsers(ctx context.Context, id uint) (int64, error)
	CountRequests(ctx context.Context, id uint) (int64, error)
}

type departmentRepo struct {
	db *gorm.DB
}

func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) FindAll(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	err := r.db.WithContext(ctx).Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *departmentRepo) FindByID(ctx context.Context, id uint) (*model.Department, error) {
	var dept model.Department
	if err := r.db.WithContext(ctx).First(&dept, id).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) ExistsCode(ctx context.Context, code string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Department{}).
		Where("code = ? AND id <> ?", code, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

func (r *departmentRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Department{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *departmentRepo) CountUsers(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("department_id = ?", id).Count(&count).Error
	return count, err
}

// CountRequests includes rejected (soft-deleted) requests, which still carry the department in their number
func (r *departmentRepo) CountRequests(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.SupplyRequest{}).Where("department_id = ?", id).Count(&count).Error
	return count, err
}
