package repository

import (
	"context"

	"indrhi-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransitionRepository interface {
	Create(tx *gorm.DB, t *model.RequestTransition) error
	FindByRequest(ctx context.Context, requestID uuid.UUID) ([]model.RequestTransition, error)
}

type transitionRepo struct {
	db *gorm.DB
}

func NewTransitionRepo(db *gorm.DB) TransitionRepository {
	return &transitionRepo{db}
}

func (r *transitionRepo) Create(tx *gorm.DB, t *model.RequestTransition) error {
	return tx.Create(t).Error
}

func (r *transitionRepo) FindByRequest(ctx context.Context, requestID uuid.UUID) ([]model.RequestTransition, error) {
	var transitions []model.RequestTransition
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&transitions).Error
	return transitions, err
}
