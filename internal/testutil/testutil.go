package testutil

import (
	"sync"
	"testing"

	"indrhi-inventory/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with every table migrated.
// The pool is pinned to one connection so all queries see the same memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// SeedDepartment inserts a department and returns it
func SeedDepartment(t *testing.T, db *gorm.DB, code, name string) *model.Department {
	t.Helper()
	dept := &model.Department{Code: code, Name: name}
	if err := db.Create(dept).Error; err != nil {
		t.Fatalf("Failed to seed department %s: %v", code, err)
	}
	return dept
}

// SeedRole returns the first role with code, creating it when missing
func SeedRole(t *testing.T, db *gorm.DB, code model.RoleCode) *model.Role {
	t.Helper()
	var role model.Role
	err := db.Where("code = ?", code).First(&role).Error
	if err == nil {
		return &role
	}
	role = model.Role{Code: code, Name: string(code), Active: true}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("Failed to seed role %s: %v", code, err)
	}
	return &role
}

// SeedUser inserts an active user with the given role and optional department
func SeedUser(t *testing.T, db *gorm.DB, username, fullName string, code model.RoleCode, deptID *uint) *model.User {
	t.Helper()
	role := SeedRole(t, db, code)
	user := &model.User{
		Username:     username,
		Email:        username + "@indrhi.gob.do",
		FullName:     fullName,
		RoleID:       &role.ID,
		DepartmentID: deptID,
		IsActive:     true,
		TokenVersion: uuid.NewString(),
	}
	if err := user.SetPassword("secret123"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Omit("Role", "Department").Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	user.Role = role
	return user
}

// SeedArticle inserts an article and books qty as an opening ADJUSTMENT so the ledger stays consistent
func SeedArticle(t *testing.T, db *gorm.DB, code string, qty int64) *model.Article {
	t.Helper()
	article := &model.Article{
		Code:           code,
		Description:    "Articulo " + code,
		OnHandQuantity: decimal.NewFromInt(qty),
		UnitOfMeasure:  model.UnitEach,
		UnitPrice:      decimal.NewFromInt(10),
	}
	if err := db.Create(article).Error; err != nil {
		t.Fatalf("Failed to seed article %s: %v", code, err)
	}
	if qty != 0 {
		movement := &model.StockMovement{
			ArticleID:       article.ID,
			ArticleCode:     code,
			Kind:            model.MoveAdjustment,
			Quantity:        decimal.NewFromInt(qty),
			AppliedQuantity: decimal.NewFromInt(qty),
			BalanceAfter:    decimal.NewFromInt(qty),
			ReferenceType:   model.RefArticle,
			ReferenceID:     &article.ID,
			CreatedBy:       "seed",
		}
		if err := db.Create(movement).Error; err != nil {
			t.Fatalf("Failed to seed opening movement for %s: %v", code, err)
		}
	}
	return article
}

// OnHand reloads the on-hand quantity of code
func OnHand(t *testing.T, db *gorm.DB, code string) decimal.Decimal {
	t.Helper()
	var article model.Article
	if err := db.First(&article, "code = ?", code).Error; err != nil {
		t.Fatalf("Failed to load article %s: %v", code, err)
	}
	return article.OnHandQuantity
}

// RecordedEvent is one call to RecordingPublisher.Publish
type RecordedEvent struct {
	Name    string
	Payload map[string]interface{}
}

// RecordingPublisher captures published events for assertions
type RecordingPublisher struct {
	mu     sync.Mutex
	events []RecordedEvent
}

func (p *RecordingPublisher) Publish(event string, payload map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, RecordedEvent{Name: event, Payload: payload})
}

// Names returns the recorded event names in order
func (p *RecordingPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.Name
	}
	return names
}

// Count returns how many events named name were published
func (p *RecordingPublisher) Count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Name == name {
			n++
		}
	}
	return n
}
