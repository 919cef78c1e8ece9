package model

import "time"

// PurchaseType distinguishes direct purchases (CD) from minor purchases (CM) in order numbers
type PurchaseType string

const (
	PurchaseDirect PurchaseType = "CD"
	PurchaseMinor  PurchaseType = "CM"
)

func (p PurchaseType) Valid() bool {
	return p == PurchaseDirect || p == PurchaseMinor
}

// MerchandiseReceipt records goods entering the warehouse
type MerchandiseReceipt struct {
	BaseModel
	ReceiptNumber string       `gorm:"type:varchar(30);uniqueIndex;not null" json:"receipt_number"`
	OrderNumber   string       `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_number"`
	PurchaseType  PurchaseType `gorm:"type:varchar(2);not null" json:"purchase_type"`
	Supplier      string       `gorm:"type:varchar(200);not null" json:"supplier"`
	InvoiceNumber string       `gorm:"type:varchar(60)" json:"invoice_number,omitempty"`
	Date          time.Time    `gorm:"not null;index" json:"date"`
	LineItems     LineItems    `gorm:"type:text;not null" json:"line_items"`
	Note          string       `gorm:"type:text" json:"note"`
}
