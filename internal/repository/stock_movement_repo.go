package repository

import (
	"context"
	"time"

	"indrhi-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	Create(tx *gorm.DB, movement *model.StockMovement) error
	FindByArticleID(ctx context.Context, articleID uuid.UUID) ([]model.StockMovement, error)
	FindByReference(ctx context.Context, refType model.ReferenceType, refID uuid.UUID) ([]model.StockMovement, error)
	SumApplied(ctx context.Context, articleID uuid.UUID) (decimal.Decimal, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// StockMovementData is one chart point: totals per day
type StockMovementData struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

// DashboardStats is the overview block
type DashboardStats struct {
	TotalArticles   int64                        `json:"total_articles"`
	LowStockCount   int64                        `json:"low_stock_count"`
	TotalValuation  decimal.Decimal              `json:"total_valuation"`
	RequestsByStage map[model.RequestStage]int64 `json:"requests_by_stage"`
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

// Create is the only write; the ledger is append-only
func (r *stockMovementRepo) Create(tx *gorm.DB, movement *model.StockMovement) error {
	return tx.Create(movement).Error
}

// FindByArticleID lists the article's history; the code stamped on old rows may predate a rename
func (r *stockMovementRepo) FindByArticleID(ctx context.Context, articleID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepo) FindByReference(ctx context.Context, refType model.ReferenceType, refID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepo) SumApplied(ctx context.Context, articleID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select("COALESCE(SUM(applied_quantity), 0)").
		Where("article_id = ?", articleID).
		Row().Scan(&total)
	return total, err
}

func (r *stockMovementRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate applied quantities per day, split by direction
	rows, err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN applied_quantity > 0 THEN applied_quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN applied_quantity < 0 THEN -applied_quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *stockMovementRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Article{}).Count(&stats.TotalArticles).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Article{}).
		Where("on_hand_quantity < minimum_quantity").
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Article{}).
		Select("COALESCE(SUM(on_hand_quantity * unit_price), 0)").
		Row().Scan(&stats.TotalValuation); err != nil {
		return nil, err
	}

	byStage, err := NewRequestRepo(r.db).CountByStage(ctx)
	if err != nil {
		return nil, err
	}
	stats.RequestsByStage = byStage

	return &stats, nil
}
