package repository

import (
	"gorm.io/gorm"
)

// NumbersWithPrefix lists every value of column starting with prefix,
// soft-deleted rows included so that numbers are never handed out twice.
func NumbersWithPrefix(tx *gorm.DB, table interface{}, column, prefix string) ([]string, error) {
	var numbers []string
	err := tx.Unscoped().Model(table).
		Where(column+" LIKE ?", prefix+"%").
		Pluck(column, &numbers).Error
	return numbers, err
}
