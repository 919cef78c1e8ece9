package service

import (
	"context"
	"testing"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/internal/testutil"
	"indrhi-inventory/pkg/lock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const testDate = "2025-03-10"

var bg = context.Background()

type fixture struct {
	db        *gorm.DB
	repos     *repository.Repositories
	events    *testutil.RecordingPublisher
	lifecycle LifecycleService
	receipts  ReceiptService
	inventory InventoryService

	dept          *model.Department
	warehouseUser *model.User

	admin      Actor
	requester  Actor
	authorizer Actor
	warehouse  Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	events := &testutil.RecordingPublisher{}
	locker := lock.NewLocalLocker()

	dept := testutil.SeedDepartment(t, db, "TI", "Tecnologia de la Informacion")
	f := &fixture{
		db:        db,
		repos:     repos,
		events:    events,
		lifecycle: NewLifecycleService(db, repos, locker, events),
		receipts:  NewReceiptService(db, repos, locker, events),
		inventory: NewInventoryService(db, repos, events),
		dept:      dept,
	}

	f.admin = actorOf(testutil.SeedUser(t, db, "admin", "Administrador", model.RoleAdmin, nil))
	f.requester = actorOf(testutil.SeedUser(t, db, "mrosario", "Maria Rosario", model.RoleDepartment, &dept.ID))
	f.authorizer = actorOf(testutil.SeedUser(t, db, "jdiaz", "Jose Diaz", model.RoleAuthorizer, nil))
	f.warehouseUser = testutil.SeedUser(t, db, "ualmonte", "Ulises Almonte", model.RoleWarehouse, nil)
	f.warehouse = actorOf(f.warehouseUser)
	return f
}

func actorOf(u *model.User) Actor {
	return Actor{
		UserID:       u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Name:         u.FullName,
		Role:         u.RoleCode(),
		DepartmentID: u.DepartmentID,
	}
}

func item(code string, qty int64) model.LineItem {
	return model.LineItem{Code: code, Quantity: decimal.NewFromInt(qty)}
}

func dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func (f *fixture) createRequest(t *testing.T, items ...model.LineItem) *model.SupplyRequest {
	t.Helper()
	req, err := f.lifecycle.CreateRequest(bg, f.requester, RequestInput{Date: testDate, LineItems: items})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	return req
}

// advance walks a draft forward until it reaches stage, reusing its own items at manage time
func (f *fixture) advance(t *testing.T, req *model.SupplyRequest, stage model.RequestStage) *model.SupplyRequest {
	t.Helper()
	var err error
	for req.Stage != stage {
		switch req.Stage {
		case model.StageDraft:
			req, err = f.lifecycle.SubmitRequest(bg, f.requester, req.ID)
		case model.StageSubmitted:
			_, err = f.lifecycle.Authorize(bg, f.authorizer, []uuid.UUID{req.ID}, DecisionApprove, "")
			if err == nil {
				req, err = f.repos.Requests.FindByID(bg, req.ID)
			}
		case model.StageApproved:
			req, err = f.lifecycle.Manage(bg, f.warehouse, req.ID, req.LineItems)
		case model.StageManaged:
			var res *DispatchResult
			res, err = f.lifecycle.Dispatch(bg, f.warehouse, []uuid.UUID{req.ID}, nil)
			if err == nil {
				req = &res.Dispatched[0]
			}
		default:
			t.Fatalf("cannot advance from %s", req.Stage)
		}
		if err != nil {
			t.Fatalf("advance to %s: %v", stage, err)
		}
	}
	return req
}

func (f *fixture) onHand(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	return testutil.OnHand(t, f.db, code)
}

func (f *fixture) assertReconciled(t *testing.T, code string) {
	t.Helper()
	rec, err := f.inventory.Reconcile(bg, f.warehouse, code)
	if err != nil {
		t.Fatalf("Reconcile(%s): %v", code, err)
	}
	if !rec.Consistent {
		t.Errorf("%s: on-hand %s differs from ledger sum %s", code, rec.OnHand, rec.LedgerSum)
	}
}

func (f *fixture) stageRows(t *testing.T, number string) []model.SupplyRequest {
	t.Helper()
	var rows []model.SupplyRequest
	if err := f.db.Unscoped().Where("request_number = ?", number).Find(&rows).Error; err != nil {
		t.Fatalf("load rows of %s: %v", number, err)
	}
	return rows
}
