package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/internal/testutil"

	"github.com/google/uuid"
)

var _ LifecycleService = (*lifecycleService)(nil)

func TestEndToEnd_ReceiveRequestDispatch(t *testing.T) {
	f := newFixture(t)
	testutil.SeedArticle(t, f.db, "A-100", 0)

	if _, err := f.receipts.ReceiveMerchandise(bg, f.warehouse, ReceiptInput{
		PurchaseType: model.PurchaseDirect,
		Supplier:     "Suministros del Caribe",
		Date:         testDate,
		LineItems:    model.LineItems{item("A-100", 50)},
	}); err != nil {
		t.Fatalf("ReceiveMerchandise: %v", err)
	}
	if got := f.onHand(t, "A-100"); !got.Equal(dec(50)) {
		t.Fatalf("Expected 50 after receipt, got %s", got)
	}

	req := f.createRequest(t, item("A-100", 20))
	wantNumber := fmt.Sprintf("SD%d-2025-0001", f.dept.ID)
	if req.RequestNumber != wantNumber {
		t.Errorf("Expected number %s, got %s", wantNumber, req.RequestNumber)
	}

	req = f.advance(t, req, model.StageManaged)
	if !req.LineItems[0].Quantity.Equal(dec(20)) {
		t.Errorf("Expected managed quantity 20, got %s", req.LineItems[0].Quantity)
	}

	dispatcher := f.warehouseUser.ID
	res, err := f.lifecycle.Dispatch(bg, f.warehouse, []uuid.UUID{req.ID}, &dispatcher)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if got := f.onHand(t, "A-100"); !got.Equal(dec(30)) {
		t.Errorf("Expected 30 after dispatch, got %s", got)
	}
	if res.DispatchedBy != "Ulises Almonte" {
		t.Errorf("Expected dispatched_by Ulises Almonte, got %q", res.DispatchedBy)
	}

	stored, err := f.repos.Requests.FindByID(bg, req.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Stage != model.StageDispatched {
		t.Errorf("Expected DISPATCHED, got %s", stored.Stage)
	}
	if stored.DispatchedByUserID == nil || *stored.DispatchedByUserID != dispatcher {
		t.Errorf("Expected dispatched_by_user_id %s, got %v", dispatcher, stored.DispatchedByUserID)
	}
	if stored.DispatchedBy != "Ulises Almonte" || stored.DispatchedAt == nil {
		t.Errorf("Dispatch stamp not stored: %q / %v", stored.DispatchedBy, stored.DispatchedAt)
	}

	history, err := f.lifecycle.History(bg, f.admin, req.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	wantStages := []model.RequestStage{model.StageDraft, model.StageSubmitted, model.StageApproved, model.StageManaged, model.StageDispatched}
	if len(history) != len(wantStages) {
		t.Fatalf("Expected %d transitions, got %d", len(wantStages), len(history))
	}
	for i, tr := range history {
		if tr.ToStage != wantStages[i] {
			t.Errorf("transition %d: expected %s, got %s", i, wantStages[i], tr.ToStage)
		}
	}

	booked, err := f.lifecycle.Movements(bg, f.admin, req.ID)
	if err != nil {
		t.Fatalf("Movements: %v", err)
	}
	if len(booked) != 1 || booked[0].Kind != model.MoveDispatch || !booked[0].AppliedQuantity.Equal(dec(-20)) {
		t.Errorf("Expected one DISPATCH of -20 booked against the request, got %+v", booked)
	}
	if booked[0].ReferenceNumber != req.RequestNumber {
		t.Errorf("Expected reference %s, got %s", req.RequestNumber, booked[0].ReferenceNumber)
	}

	f.assertReconciled(t, "A-100")
	if f.events.Count(EventRequestDispatched) != 1 {
		t.Errorf("Expected one dispatch event, got %v", f.events.Names())
	}
}

func TestStageExclusivity(t *testing.T) {
	f := newFixture(t)
	testutil.SeedArticle(t, f.db, "P-1", 100)
	req := f.createRequest(t, item("P-1", 3))

	for _, stage := range []model.RequestStage{model.StageSubmitted, model.StageApproved, model.StageManaged, model.StageDispatched} {
		req = f.advance(t, req, stage)
		rows := f.stageRows(t, req.RequestNumber)
		if len(rows) != 1 {
			t.Fatalf("Expected exactly one row for %s at %s, got %d", req.RequestNumber, stage, len(rows))
		}
		if rows[0].Stage != stage {
			t.Errorf("Expected stored stage %s, got %s", stage, rows[0].Stage)
		}
		if !rows[0].Submitted() {
			t.Errorf("Expected submitted flag past DRAFT")
		}
	}
}

func TestNumbering_SequentialPerDepartmentAndYear(t *testing.T) {
	f := newFixture(t)
	other := testutil.SeedDepartment(t, f.db, "RH", "Recursos Humanos")

	var numbers []string
	for i := 0; i < 3; i++ {
		numbers = append(numbers, f.createRequest(t, item("X", 1)).RequestNumber)
	}
	for i, n := range numbers {
		want := fmt.Sprintf("SD%d-2025-%04d", f.dept.ID, i+1)
		if n != want {
			t.Errorf("request %d: expected %s, got %s", i, want, n)
		}
	}

	otherDept, err := f.lifecycle.CreateRequest(bg, f.admin, RequestInput{DepartmentID: &other.ID, Date: testDate, LineItems: model.LineItems{item("X", 1)}})
	if err != nil {
		t.Fatalf("CreateRequest other dept: %v", err)
	}
	if want := fmt.Sprintf("SD%d-2025-0001", other.ID); otherDept.RequestNumber != want {
		t.Errorf("Expected %s, got %s", want, otherDept.RequestNumber)
	}

	lastYear, err := f.lifecycle.CreateRequest(bg, f.requester, RequestInput{Date: "2024-12-31", LineItems: model.LineItems{item("X", 1)}})
	if err != nil {
		t.Fatalf("CreateRequest 2024: %v", err)
	}
	if want := fmt.Sprintf("SD%d-2024-0001", f.dept.ID); lastYear.RequestNumber != want {
		t.Errorf("Expected %s, got %s", want, lastYear.RequestNumber)
	}
}

func TestNumbering_RejectedNumbersAreNotReused(t *testing.T) {
	f := newFixture(t)
	first := f.advance(t, f.createRequest(t, item("X", 1)), model.StageSubmitted)
	if _, err := f.lifecycle.Authorize(bg, f.authorizer, []uuid.UUID{first.ID}, DecisionReject, "sin presupuesto"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	second := f.createRequest(t, item("X", 1))
	if want := fmt.Sprintf("SD%d-2025-0002", f.dept.ID); second.RequestNumber != want {
		t.Errorf("Expected %s after a rejected 0001, got %s", want, second.RequestNumber)
	}
}

func TestNumbering_ConcurrentCreatesAreUnique(t *testing.T) {
	f := newFixture(t)
	const n = 8

	var wg sync.WaitGroup
	var mu sync.Mutex
	var numbers []string
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := f.lifecycle.CreateRequest(bg, f.requester, RequestInput{Date: testDate, LineItems: model.LineItems{item("X", 1)}})
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			numbers = append(numbers, req.RequestNumber)
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("CreateRequest: %v", err)
	}

	sort.Strings(numbers)
	for i, num := range numbers {
		if want := fmt.Sprintf("SD%d-2025-%04d", f.dept.ID, i+1); num != want {
			t.Errorf("position %d: expected %s, got %s", i, want, num)
		}
	}
}

func TestSubmit_DuplicateSubmissionRejected(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t, item("X", 2))

	submitted, err := f.lifecycle.SubmitRequest(bg, f.requester, req.ID)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if len(submitted.RequestedItems) != 1 || !submitted.RequestedItems[0].Quantity.Equal(dec(2)) {
		t.Errorf("Expected requested_items snapshot, got %+v", submitted.RequestedItems)
	}

	_, err = f.lifecycle.SubmitRequest(bg, f.requester, req.ID)
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("Expected ErrDuplicateSubmission, got %v", err)
	}

	_, err = f.lifecycle.SubmitRequest(bg, f.requester, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestCreate_RejectsNonPositiveQuantities(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name  string
		items model.LineItems
		want  error
	}{
		{"zero", model.LineItems{item("X", 0)}, ErrInvalidQuantity},
		{"negative", model.LineItems{item("X", 1), item("Y", -4)}, ErrInvalidQuantity},
		{"missing_code", model.LineItems{item("", 1)}, ErrValidation},
		{"empty", model.LineItems{}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.lifecycle.CreateRequest(bg, f.requester, RequestInput{Date: testDate, LineItems: tt.items})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestManage_InvalidQuantityLeavesRequestUntouched(t *testing.T) {
	f := newFixture(t)
	req := f.advance(t, f.createRequest(t, item("X", 5)), model.StageApproved)

	for _, items := range []model.LineItems{{item("X", 0)}, {item("X", -1)}} {
		_, err := f.lifecycle.Manage(bg, f.warehouse, req.ID, items)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("Expected ErrInvalidQuantity, got %v", err)
		}
	}

	stored, err := f.repos.Requests.FindByID(bg, req.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Stage != model.StageApproved {
		t.Errorf("Expected APPROVED, got %s", stored.Stage)
	}
	if !stored.LineItems[0].Quantity.Equal(dec(5)) {
		t.Errorf("Expected quantity 5 kept, got %s", stored.LineItems[0].Quantity)
	}
}

func TestManage_FillsCatalogDataAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	testutil.SeedArticle(t, f.db, "A-100", 10)
	req := f.advance(t, f.createRequest(t, item("A-100", 5)), model.StageApproved)

	managed, err := f.lifecycle.Manage(bg, f.warehouse, req.ID, model.LineItems{item("A-100", 4)})
	if err != nil {
		t.Fatalf("Manage: %v", err)
	}
	if managed.LineItems[0].Name != "Articulo A-100" || managed.LineItems[0].Unit != string(model.UnitEach) {
		t.Errorf("Expected catalog name/unit, got %+v", managed.LineItems[0])
	}
	if !managed.RequestedItems[0].Quantity.Equal(dec(5)) {
		t.Errorf("Expected requested snapshot 5, got %s", managed.RequestedItems[0].Quantity)
	}

	again, err := f.lifecycle.Manage(bg, f.warehouse, req.ID, model.LineItems{item("A-100", 9)})
	if err != nil {
		t.Fatalf("retry Manage: %v", err)
	}
	if !again.LineItems[0].Quantity.Equal(dec(4)) {
		t.Errorf("Retry must not overwrite managed items, got %s", again.LineItems[0].Quantity)
	}
	if f.events.Count(EventRequestManaged) != 1 {
		t.Errorf("Expected one managed event, got %d", f.events.Count(EventRequestManaged))
	}
}

func TestAvailability(t *testing.T) {
	f := newFixture(t)
	testutil.SeedArticle(t, f.db, "A-1", 3)
	req := f.advance(t, f.createRequest(t, item("A-1", 5), item("GHOST", 1)), model.StageApproved)

	av, err := f.lifecycle.Availability(bg, f.warehouse, req.ID)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(av) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(av))
	}
	if !av[0].InCatalog || !av[0].OnHand.Equal(dec(3)) || av[0].Sufficient {
		t.Errorf("Unexpected availability for A-1: %+v", av[0])
	}
	if av[1].InCatalog || av[1].Sufficient {
		t.Errorf("Unknown article should not be in catalog: %+v", av[1])
	}
}

func TestDispatch_OverDispatchClampsAtZero(t *testing.T) {
	f := newFixture(t)
	testutil.SeedArticle(t, f.db, "B-5", 5)
	req := f.advance(t, f.createRequest(t, item("B-5", 9)), model.StageManaged)

	if _, err := f.lifecycle.Dispatch(bg, f.warehouse, []uuid.UUID{req.ID}, nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got := f.onHand(t, "B-5"); !got.Equal(dec(0)) {
		t.Errorf("Expected 0 after over-dispatch, got %s", got)
	}

	movements, err := f.inventory.Movements(bg, f.warehouse, "B-5")
	if err != nil {
		t.Fatalf("Movements: %v", err)
	}
	last := movements[len(movements)-1]
	if last.Kind != model.MoveDispatch || !last.Quantity.Equal(dec(-9)) || !last.AppliedQuantity.Equal(dec(-5)) {
		t.Errorf("Expected DISPATCH -9 applied -5, got %s %s applied %s", last.Kind, last.Quantity, last.AppliedQuantity)
	}
	f.assertReconciled(t, "B-5")
}

func TestDispatch_UnknownArticleIsSkippedWithWarning(t *testing.T) {
	f := newFixture(t)
	testutil.SeedArticle(t, f.db, "A-1", 10)
	req := f.advance(t, f.createRequest(t, item("A-1", 2), item("NOPE", 3)), model.StageManaged)

	res, err := f.lifecycle.Dispatch(bg, f.warehouse, []uuid.UUID{req.ID}, nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Expected one warning, got %v", res.Warnings)
	}
	if got := f.onHand(t, "A-1"); !got.Equal(dec(8)) {
		t.Errorf("Expected 8, got %s", got)
	}
}

func TestDispatch_FallsBackToActingUser(t *testing.T) {
	f := newFixture(t)
	req := f.advance(t, f.createRequest(t, item("X", 1)), model.StageManaged)

	unknown := uuid.New()
	res, err := f.lifecycle.Dispatch(bg, f.warehouse, []uuid.UUID{req.ID}, &unknown)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.DispatchedBy != f.warehouse.Username {
		t.Errorf("Expected fallback to %s, got %s", f.warehouse.Username, res.DispatchedBy)
	}
	if res.Dispatched[0].DispatchedByUserID == nil || *res.Dispatched[0].DispatchedByUserID != f.warehouse.UserID {
		t.Errorf("Expected acting user id on record")
	}
}

func TestRetriesAreIdempotent(t *testing.T) {
	f := newFixture(t)
	testutil.SeedArticle(t, f.db, "A-1", 10)
	req := f.advance(t, f.createRequest(t, item("A-1", 4)), model.StageSubmitted)

	for i := 0; i < 2; i++ {
		res, err := f.lifecycle.Authorize(bg, f.authorizer, []uuid.UUID{req.ID}, DecisionApprove, "")
		if err != nil {
			t.Fatalf("approve attempt %d: %v", i+1, err)
		}
		if i == 1 && (len(res.Unchanged) != 1 || len(res.Processed) != 0) {
			t.Errorf("Expected second approve to be a no-op, got %+v", res)
		}
	}

	if _, err := f.lifecycle.Manage(bg, f.warehouse, req.ID, model.LineItems{item("A-1", 4)}); err != nil {
		t.Fatalf("Manage: %v", err)
	}
	for i := 0; i < 2; i++ {
		res, err := f.lifecycle.Dispatch(bg, f.warehouse, []uuid.UUID{req.ID}, nil)
		if err != nil {
			t.Fatalf("dispatch attempt %d: %v", i+1, err)
		}
		if i == 1 && len(res.Unchanged) != 1 {
			t.Errorf("Expected second dispatch to be a no-op, got %+v", res)
		}
	}
	if got := f.onHand(t, "A-1"); !got.Equal(dec(6)) {
		t.Errorf("Stock must be decremented once, got %s", got)
	}

	history, err := f.lifecycle.History(bg, f.admin, req.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 5 {
		t.Errorf("Expected 5 transitions despite retries, got %d", len(history))
	}
}

func TestAuthorize_BatchIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	submitted := f.advance(t, f.createRequest(t, item("X", 1)), model.StageSubmitted)
	draft := f.createRequest(t, item("X", 1))

	_, err := f.lifecycle.Authorize(bg, f.authorizer, []uuid.UUID{submitted.ID, draft.ID}, DecisionApprove, "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	stored, err := f.repos.Requests.FindByID(bg, submitted.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Stage != model.StageSubmitted {
		t.Errorf("Expected batch rollback to keep SUBMITTED, got %s", stored.Stage)
	}
}

func TestDispatch_BatchRollsBackStock(t *testing.T) {
	f := newFixture(t)
	testutil.SeedArticle(t, f.db, "A-1", 10)
	managed := f.advance(t, f.createRequest(t, item("A-1", 3)), model.StageManaged)
	approved := f.advance(t, f.createRequest(t, item("A-1", 3)), model.StageApproved)

	_, err := f.lifecycle.Dispatch(bg, f.warehouse, []uuid.UUID{managed.ID, approved.ID}, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}
	if got := f.onHand(t, "A-1"); !got.Equal(dec(10)) {
		t.Errorf("Expected stock untouched after rollback, got %s", got)
	}
	f.assertReconciled(t, "A-1")
}

func TestAuthorize_RejectDeletesAndRetriesAreNoOps(t *testing.T) {
	f := newFixture(t)
	req := f.advance(t, f.createRequest(t, item("X", 1)), model.StageSubmitted)

	res, err := f.lifecycle.Authorize(bg, f.authorizer, []uuid.UUID{req.ID}, DecisionReject, "duplicada")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if len(res.Processed) != 1 {
		t.Errorf("Expected one processed id, got %+v", res)
	}
	if _, err := f.repos.Requests.FindByID(bg, req.ID); err == nil {
		t.Error("Rejected request should no longer be found")
	}

	res, err = f.lifecycle.Authorize(bg, f.authorizer, []uuid.UUID{req.ID}, DecisionReject, "")
	if err != nil || len(res.Unchanged) != 1 {
		t.Errorf("Expected reject retry to be a no-op, got %+v / %v", res, err)
	}

	_, err = f.lifecycle.Authorize(bg, f.authorizer, []uuid.UUID{req.ID}, DecisionApprove, "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound approving a rejected request, got %v", err)
	}

	transitions, err := f.repos.Transitions.FindByRequest(bg, req.ID)
	if err != nil {
		t.Fatalf("FindByRequest: %v", err)
	}
	last := transitions[len(transitions)-1]
	if last.ToStage != model.StageRejected || last.Note != "duplicada" {
		t.Errorf("Expected REJECTED transition with note, got %+v", last)
	}
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t)
	draft := f.createRequest(t, item("X", 1))

	if _, err := f.lifecycle.Manage(bg, f.warehouse, draft.ID, model.LineItems{item("X", 1)}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Manage on DRAFT: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.lifecycle.Dispatch(bg, f.warehouse, []uuid.UUID{draft.ID}, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Dispatch on DRAFT: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.lifecycle.Authorize(bg, f.authorizer, []uuid.UUID{draft.ID}, DecisionReject, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Reject on DRAFT: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.lifecycle.Authorize(bg, f.authorizer, []uuid.UUID{draft.ID}, "maybe", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("Unknown decision: expected ErrValidation, got %v", err)
	}

	submitted := f.advance(t, draft, model.StageSubmitted)
	if _, err := f.lifecycle.Dispatch(bg, f.warehouse, []uuid.UUID{submitted.ID}, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Dispatch on SUBMITTED: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.lifecycle.UpdateDraft(bg, f.requester, submitted.ID, RequestInput{LineItems: model.LineItems{item("X", 2)}}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("UpdateDraft on SUBMITTED: expected ErrInvalidTransition, got %v", err)
	}
	if err := f.lifecycle.DeleteDraft(bg, f.requester, submitted.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("DeleteDraft on SUBMITTED: expected ErrInvalidTransition, got %v", err)
	}
}

func TestCapabilitiesAreEnforced(t *testing.T) {
	f := newFixture(t)
	req := f.advance(t, f.createRequest(t, item("X", 1)), model.StageSubmitted)

	if _, err := f.lifecycle.Authorize(bg, f.requester, []uuid.UUID{req.ID}, DecisionApprove, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("Department user authorizing: expected ErrForbidden, got %v", err)
	}
	if _, err := f.lifecycle.Authorize(bg, f.warehouse, []uuid.UUID{req.ID}, DecisionApprove, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("Warehouse authorizing: expected ErrForbidden, got %v", err)
	}
	if _, err := f.lifecycle.CreateRequest(bg, f.authorizer, RequestInput{LineItems: model.LineItems{item("X", 1)}}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Authorizer creating: expected ErrForbidden, got %v", err)
	}
	if _, err := f.lifecycle.Dispatch(bg, f.authorizer, []uuid.UUID{req.ID}, nil); !errors.Is(err, ErrForbidden) {
		t.Errorf("Authorizer dispatching: expected ErrForbidden, got %v", err)
	}
}

func TestDepartmentScope(t *testing.T) {
	f := newFixture(t)
	other := testutil.SeedDepartment(t, f.db, "JUR", "Juridico")
	otherUser := actorOf(testutil.SeedUser(t, f.db, "lperez", "Luis Perez", model.RoleDepartment, &other.ID))

	mine := f.createRequest(t, item("X", 1))
	// department users always file for their own department
	theirs, err := f.lifecycle.CreateRequest(bg, otherUser, RequestInput{DepartmentID: &f.dept.ID, Date: testDate, LineItems: model.LineItems{item("X", 1)}})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if theirs.DepartmentID != other.ID {
		t.Errorf("Expected department %d, got %d", other.ID, theirs.DepartmentID)
	}

	list, err := f.lifecycle.ListRequests(bg, f.requester, repository.RequestFilter{})
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("Expected only own request, got %d", len(list))
	}
	if _, err := f.lifecycle.Movements(bg, f.requester, theirs.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other department movements, got %v", err)
	}
	if _, err := f.lifecycle.GetRequest(bg, f.requester, theirs.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other department, got %v", err)
	}
	if _, err := f.lifecycle.SubmitRequest(bg, f.requester, theirs.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound submitting other department, got %v", err)
	}

	all, err := f.lifecycle.ListRequests(bg, f.authorizer, repository.RequestFilter{Stage: model.StageDraft})
	if err != nil {
		t.Fatalf("ListRequests all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected authorizer to see 2 drafts, got %d", len(all))
	}
	if _, err := f.lifecycle.ListRequests(bg, f.authorizer, repository.RequestFilter{Stage: "ARCHIVED"}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for unknown stage, got %v", err)
	}
}

func TestUpdateAndDeleteDraft(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t, item("X", 1))

	updated, err := f.lifecycle.UpdateDraft(bg, f.requester, req.ID, RequestInput{Note: "urgente", LineItems: model.LineItems{item("X", 3), item("Y", 1)}})
	if err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}
	if len(updated.LineItems) != 2 || updated.Note != "urgente" {
		t.Errorf("Update not applied: %+v", updated)
	}
	if updated.RequestNumber != req.RequestNumber {
		t.Errorf("Number must not change on update")
	}

	if _, err := f.lifecycle.UpdateDraft(bg, f.requester, req.ID, RequestInput{Date: "2031-01-01", LineItems: model.LineItems{item("X", 3)}}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation moving a draft to another year, got %v", err)
	}

	if err := f.lifecycle.DeleteDraft(bg, f.requester, req.ID); err != nil {
		t.Fatalf("DeleteDraft: %v", err)
	}
	if _, err := f.lifecycle.GetRequest(bg, f.requester, req.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected deleted draft to be gone, got %v", err)
	}
}
