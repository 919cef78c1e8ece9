package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementKind string

const (
	MoveReceipt         MovementKind = "RECEIPT"
	MoveReceiptReversal MovementKind = "RECEIPT_REVERSAL"
	MoveDispatch        MovementKind = "DISPATCH"
	MoveAdjustment      MovementKind = "ADJUSTMENT"
)

type ReferenceType string

const (
	RefRequest ReferenceType = "REQUEST"
	RefReceipt ReferenceType = "RECEIPT"
	RefArticle ReferenceType = "ARTICLE"
)

// StockMovement is an append-only ledger row. Quantity is what was asked for,
// AppliedQuantity what actually changed after clamping on-hand at zero.
type StockMovement struct {
	ID              uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	ArticleID       uuid.UUID       `gorm:"type:char(36);not null;index" json:"article_id"`
	ArticleCode     string          `gorm:"type:varchar(50);not null;index" json:"article_code"`
	Kind            MovementKind    `gorm:"type:varchar(20);not null" json:"kind"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	AppliedQuantity decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"applied_quantity"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"balance_after"`
	ReferenceType   ReferenceType   `gorm:"type:varchar(20);not null" json:"reference_type"`
	ReferenceID     *uuid.UUID      `gorm:"type:char(36);index" json:"reference_id,omitempty"`
	ReferenceNumber string          `gorm:"type:varchar(40)" json:"reference_number,omitempty"`
	Note            string          `gorm:"type:text" json:"note,omitempty"`
	CreatedBy       string          `gorm:"type:varchar(255)" json:"created_by"`
	CreatedByUserID *uuid.UUID      `gorm:"type:char(36)" json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
