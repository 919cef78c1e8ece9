package repository

import (
	"context"

	"indrhi-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArticleRepository interface {
	Create(tx *gorm.DB, article *model.Article) error
	FindAll(ctx context.Context, search string) ([]model.Article, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error)
	FindByCode(ctx context.Context, code string) (*model.Article, error)
	FindByCodes(ctx context.Context, codes []string) ([]model.Article, error)
	ExistsCode(ctx context.Context, code string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Article, error)
	FindByCodeForUpdate(tx *gorm.DB, code string) (*model.Article, error)
	UpdateStock(tx *gorm.DB, id uuid.UUID, quantity decimal.Decimal, updatedBy string) error
}

type articleRepo struct {
	db *gorm.DB
}

func NewArticleRepo(db *gorm.DB) ArticleRepository {
	return &articleRepo{db}
}

func (r *articleRepo) Create(tx *gorm.DB, article *model.Article) error {
	return tx.Create(article).Error
}

func (r *articleRepo) FindAll(ctx context.Context, search string) ([]model.Article, error) {
	var articles []model.Article
	q := r.db.WithContext(ctx).Order("code ASC")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("code LIKE ? OR description LIKE ?", like, like)
	}
	err := q.Find(&articles).Error
	return articles, err
}

func (r *articleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	var article model.Article
	if err := r.db.WithContext(ctx).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepo) FindByCode(ctx context.Context, code string) (*model.Article, error) {
	var article model.Article
	if err := r.db.WithContext(ctx).First(&article, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Article, error) {
	var articles []model.Article
	if len(codes) == 0 {
		return articles, nil
	}
	err := r.db.WithContext(ctx).Where("code IN ?", codes).Find(&articles).Error
	return articles, err
}

// ExistsCode includes soft-deleted rows because the unique index does
func (r *articleRepo) ExistsCode(ctx context.Context, code string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Article{}).
		Where("code = ? AND id <> ?", code, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Update writes catalog fields only; on-hand quantity belongs to the ledger
func (r *articleRepo) Update(ctx context.Context, article *model.Article) error {
	return r.db.WithContext(ctx).Model(article).
		Select("code", "description", "minimum_quantity", "unit_of_measure", "unit_price", "updated_by", "updated_at").
		Updates(article).Error
}

func (r *articleRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Article{}).Where("id = ?", id).Update("deleted_by", deletedBy)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(&model.Article{}, "id = ?", id).Error
	})
}

func (r *articleRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Article, error) {
	var article model.Article
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepo) FindByCodeForUpdate(tx *gorm.DB, code string) (*model.Article, error) {
	var article model.Article
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&article, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// UpdateStock takes *gorm.DB (tx) so it runs inside the caller's transaction
func (r *articleRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, quantity decimal.Decimal, updatedBy string) error {
	return tx.Model(&model.Article{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"on_hand_quantity": quantity,
			"updated_by":       updatedBy,
		}).Error
}
