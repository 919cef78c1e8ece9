package repository

import (
	"context"

	"indrhi-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter narrows ListRequests. Zero values mean "any".
type RequestFilter struct {
	Stage        model.RequestStage
	DepartmentID *uint
}

type RequestRepository interface {
	Create(tx *gorm.DB, req *model.SupplyRequest) error
	Save(tx *gorm.DB, req *model.SupplyRequest) error
	SoftDelete(tx *gorm.DB, req *model.SupplyRequest, deletedBy string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error)
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.SupplyRequest, error)
	FindDeletedByID(tx *gorm.DB, id uuid.UUID) (*model.SupplyRequest, error)
	FindAll(ctx context.Context, filter RequestFilter) ([]model.SupplyRequest, error)
	CountByStage(ctx context.Context) (map[model.RequestStage]int64, error)
}

type requestRepo struct {
	db *gorm.DB
}

func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db}
}

func (r *requestRepo) Create(tx *gorm.DB, req *model.SupplyRequest) error {
	return tx.Create(req).Error
}

func (r *requestRepo) Save(tx *gorm.DB, req *model.SupplyRequest) error {
	return tx.Save(req).Error
}

func (r *requestRepo) SoftDelete(tx *gorm.DB, req *model.SupplyRequest, deletedBy string) error {
	if err := tx.Model(req).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(req).Error
}

func (r *requestRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error) {
	var req model.SupplyRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.SupplyRequest, error) {
	var req model.SupplyRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindDeletedByID only returns a row that has been soft-deleted (rejected)
func (r *requestRepo) FindDeletedByID(tx *gorm.DB, id uuid.UUID) (*model.SupplyRequest, error) {
	var req model.SupplyRequest
	if err := tx.Unscoped().Where("id = ? AND deleted_at IS NOT NULL", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) FindAll(ctx context.Context, filter RequestFilter) ([]model.SupplyRequest, error) {
	var reqs []model.SupplyRequest
	q := r.db.WithContext(ctx).Order("date DESC, request_number DESC")
	if filter.Stage != "" {
		q = q.Where("stage = ?", filter.Stage)
	}
	if filter.DepartmentID != nil {
		q = q.Where("department_id = ?", *filter.DepartmentID)
	}
	err := q.Find(&reqs).Error
	return reqs, err
}

func (r *requestRepo) CountByStage(ctx context.Context) (map[model.RequestStage]int64, error) {
	var rows []struct {
		Stage model.RequestStage
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&model.SupplyRequest{}).
		Select("stage, COUNT(*) as total").
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.RequestStage]int64, len(model.AllStages))
	for _, s := range model.AllStages {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Stage] = row.Total
	}
	return counts, nil
}
