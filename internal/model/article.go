package model

import "github.com/shopspring/decimal"

type UnitOfMeasure string

const (
	UnitEach    UnitOfMeasure = "UNIDAD"
	UnitBox     UnitOfMeasure = "CAJA"
	UnitPack    UnitOfMeasure = "PAQUETE"
	UnitRoll    UnitOfMeasure = "ROLLO"
	UnitGallon  UnitOfMeasure = "GALON"
	UnitLiter   UnitOfMeasure = "LITRO"
	UnitPound   UnitOfMeasure = "LIBRA"
	UnitKilo    UnitOfMeasure = "KILO"
	UnitMeter   UnitOfMeasure = "METRO"
	UnitReam    UnitOfMeasure = "RESMA"
	UnitDozen   UnitOfMeasure = "DOCENA"
	UnitPair    UnitOfMeasure = "PAR"
	UnitBottle  UnitOfMeasure = "FRASCO"
	UnitCarton  UnitOfMeasure = "CARTON"
	UnitBale    UnitOfMeasure = "FARDO"
)

var validUnits = map[UnitOfMeasure]bool{
	UnitEach: true, UnitBox: true, UnitPack: true, UnitRoll: true, UnitGallon: true,
	UnitLiter: true, UnitPound: true, UnitKilo: true, UnitMeter: true, UnitReam: true,
	UnitDozen: true, UnitPair: true, UnitBottle: true, UnitCarton: true, UnitBale: true,
}

// Valid reports whether u is one of the known units
func (u UnitOfMeasure) Valid() bool {
	return validUnits[u]
}

// Article is a warehouse catalog item. OnHandQuantity is only changed through the stock ledger.
type Article struct {
	BaseModel
	Code            string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required,max=50"`
	Description     string          `gorm:"type:varchar(255);not null" json:"description" validate:"required"`
	OnHandQuantity  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"on_hand_quantity"`
	MinimumQuantity decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"minimum_quantity" validate:"dec_gte0"`
	UnitOfMeasure   UnitOfMeasure   `gorm:"type:varchar(20);not null" json:"unit_of_measure" validate:"required"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"unit_price" validate:"dec_gte0"`
}

// IsLowStock reports whether on-hand has dropped below the configured minimum
func (a *Article) IsLowStock() bool {
	return a.OnHandQuantity.LessThan(a.MinimumQuantity)
}
