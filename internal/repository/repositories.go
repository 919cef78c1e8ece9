package repository

import "gorm.io/gorm"

// Repositories bundles every repository over one connection pool
type Repositories struct {
	Articles    ArticleRepository
	Departments DepartmentRepository
	Roles       RoleRepository
	Users       UserRepository
	Requests    RequestRepository
	Receipts    ReceiptRepository
	Movements   StockMovementRepository
	Transitions TransitionRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Articles:    NewArticleRepo(db),
		Departments: NewDepartmentRepo(db),
		Roles:       NewRoleRepo(db),
		Users:       NewUserRepo(db),
		Requests:    NewRequestRepo(db),
		Receipts:    NewReceiptRepo(db),
		Movements:   NewStockMovementRepo(db),
		Transitions: NewTransitionRepo(db),
	}
}
