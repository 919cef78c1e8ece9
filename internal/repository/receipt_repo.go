package repository

import (
	"context"

	"indrhi-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReceiptRepository interface {
	Create(tx *gorm.DB, receipt *model.MerchandiseReceipt) error
	Save(tx *gorm.DB, receipt *model.MerchandiseReceipt) error
	SoftDelete(tx *gorm.DB, receipt *model.MerchandiseReceipt, deletedBy string) error
	FindAll(ctx context.Context) ([]model.MerchandiseReceipt, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.MerchandiseReceipt, error)
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.MerchandiseReceipt, error)
}

type receiptRepo struct {
	db *gorm.DB
}

func NewReceiptRepo(db *gorm.DB) ReceiptRepository {
	return &receiptRepo{db}
}

func (r *receiptRepo) Create(tx *gorm.DB, receipt *model.MerchandiseReceipt) error {
	return tx.Create(receipt).Error
}

func (r *receiptRepo) Save(tx *gorm.DB, receipt *model.MerchandiseReceipt) error {
	return tx.Save(receipt).Error
}

func (r *receiptRepo) SoftDelete(tx *gorm.DB, receipt *model.MerchandiseReceipt, deletedBy string) error {
	if err := tx.Model(receipt).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(receipt).Error
}

func (r *receiptRepo) FindAll(ctx context.Context) ([]model.MerchandiseReceipt, error) {
	var receipts []model.MerchandiseReceipt
	err := r.db.WithContext(ctx).Order("date DESC, receipt_number DESC").Find(&receipts).Error
	return receipts, err
}

func (r *receiptRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MerchandiseReceipt, error) {
	var receipt model.MerchandiseReceipt
	if err := r.db.WithContext(ctx).First(&receipt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.MerchandiseReceipt, error) {
	var receipt model.MerchandiseReceipt
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&receipt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}
