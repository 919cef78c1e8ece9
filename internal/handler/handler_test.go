package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/internal/service"
	"indrhi-inventory/internal/testutil"
	"indrhi-inventory/pkg/lock"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type server struct {
	app    *fiber.App
	dept   *model.Department
	tokens map[string]string
	users  map[string]*model.User
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	locker := lock.NewLocalLocker()
	events := &testutil.RecordingPublisher{}

	app := fiber.New()
	RegisterRoutes(app, Services{
		Auth:      service.NewAuthService(repos.Users),
		Users:     service.NewUserService(repos),
		Catalog:   service.NewCatalogService(repos),
		Inventory: service.NewInventoryService(db, repos, events),
		Lifecycle: service.NewLifecycleService(db, repos, locker, events),
		Receipts:  service.NewReceiptService(db, repos, locker, events),
		Dashboard: service.NewDashboardService(repos.Movements),
		UserRepo:  repos.Users,
	})

	s := &server{
		app:    app,
		dept:   testutil.SeedDepartment(t, db, "TI", "Tecnologia de la Informacion"),
		tokens: map[string]string{},
		users:  map[string]*model.User{},
	}
	s.users["admin"] = testutil.SeedUser(t, db, "admin", "Administrador", model.RoleAdmin, nil)
	s.users["mrosario"] = testutil.SeedUser(t, db, "mrosario", "Maria Rosario", model.RoleDepartment, &s.dept.ID)
	s.users["jdiaz"] = testutil.SeedUser(t, db, "jdiaz", "Jose Diaz", model.RoleAuthorizer, nil)
	s.users["ualmonte"] = testutil.SeedUser(t, db, "ualmonte", "Ulises Almonte", model.RoleWarehouse, nil)

	for name := range s.users {
		status, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"login": name, "password": "secret123"})
		if status != fiber.StatusOK {
			t.Fatalf("login %s: status %d: %s", name, status, env.Message)
		}
		var login struct {
			Token string `json:"token"`
		}
		decode(t, env, &login)
		s.tokens[name] = login.Token
	}
	return s
}

func (s *server) do(t *testing.T, method, path, user string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token, ok := s.tokens[user]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func (s *server) mustDo(t *testing.T, want int, method, path, user string, body interface{}, out interface{}) {
	t.Helper()
	status, env := s.do(t, method, path, user, body)
	if status != want {
		t.Fatalf("%s %s as %s: expected %d, got %d (%s)", method, path, user, want, status, env.Message)
	}
	if out != nil {
		decode(t, env, out)
	}
}

func decode(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func lines(code string, qty int64) []map[string]interface{} {
	return []map[string]interface{}{{"codigo": code, "cantidad": qty}}
}

func TestAPI_EndToEnd(t *testing.T) {
	s := newServer(t)

	var article model.Article
	s.mustDo(t, fiber.StatusCreated, http.MethodPost, "/api/v1/articles", "ualmonte", map[string]interface{}{
		"code": "A-100", "description": "Toner HP 85A", "unit_of_measure": "UNIDAD", "unit_price": "3500",
	}, &article)

	var receipt service.ReceiptResult
	s.mustDo(t, fiber.StatusCreated, http.MethodPost, "/api/v1/receipts", "ualmonte", map[string]interface{}{
		"purchase_type": "CD", "supplier": "Suministros del Caribe", "date": "2025-03-10", "line_items": lines("A-100", 50),
	}, &receipt)
	if receipt.Receipt.ReceiptNumber != "INDRHI-EM-2025-0001" || receipt.Receipt.OrderNumber != "INDRHI-DAF-CD-2025-0001" {
		t.Errorf("Unexpected receipt numbers %s / %s", receipt.Receipt.ReceiptNumber, receipt.Receipt.OrderNumber)
	}

	var req model.SupplyRequest
	s.mustDo(t, fiber.StatusCreated, http.MethodPost, "/api/v1/requests", "mrosario", map[string]interface{}{
		"date": "2025-03-11", "line_items": lines("A-100", 20),
	}, &req)
	if want := fmt.Sprintf("SD%d-2025-0001", s.dept.ID); req.RequestNumber != want {
		t.Errorf("Expected %s, got %s", want, req.RequestNumber)
	}

	base := "/api/v1/requests/" + req.ID.String()
	s.mustDo(t, fiber.StatusOK, http.MethodPost, base+"/submit", "mrosario", nil, nil)
	s.mustDo(t, fiber.StatusOK, http.MethodPost, "/api/v1/requests/authorize", "jdiaz", map[string]interface{}{
		"ids": []string{req.ID.String()}, "decision": "approve",
	}, nil)
	s.mustDo(t, fiber.StatusOK, http.MethodPost, base+"/manage", "ualmonte", map[string]interface{}{
		"line_items": lines("A-100", 20),
	}, nil)

	var dispatched service.DispatchResult
	s.mustDo(t, fiber.StatusOK, http.MethodPost, "/api/v1/requests/dispatch", "ualmonte", map[string]interface{}{
		"ids": []string{req.ID.String()}, "user_id": s.users["ualmonte"].ID.String(),
	}, &dispatched)
	if dispatched.DispatchedBy != "Ulises Almonte" {
		t.Errorf("Expected dispatched_by Ulises Almonte, got %q", dispatched.DispatchedBy)
	}

	var after model.Article
	s.mustDo(t, fiber.StatusOK, http.MethodGet, "/api/v1/articles/"+article.ID.String(), "mrosario", nil, &after)
	if !after.OnHandQuantity.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected 30 on hand, got %s", after.OnHandQuantity)
	}

	var rec service.Reconciliation
	s.mustDo(t, fiber.StatusOK, http.MethodGet, "/api/v1/articles/code/A-100/reconcile", "ualmonte", nil, &rec)
	if !rec.Consistent {
		t.Errorf("Expected ledger to reconcile, got %+v", rec)
	}

	var history []model.RequestTransition
	s.mustDo(t, fiber.StatusOK, http.MethodGet, base+"/history", "mrosario", nil, &history)
	if len(history) != 5 {
		t.Errorf("Expected 5 transitions, got %d", len(history))
	}

	var movements []model.StockMovement
	s.mustDo(t, fiber.StatusOK, http.MethodGet, base+"/movements", "mrosario", nil, &movements)
	if len(movements) != 1 || !movements[0].AppliedQuantity.Equal(decimal.NewFromInt(-20)) {
		t.Errorf("Expected one -20 dispatch movement, got %+v", movements)
	}

	var got struct {
		LineItems []map[string]interface{} `json:"line_items"`
	}
	s.mustDo(t, fiber.StatusOK, http.MethodGet, base, "mrosario", nil, &got)
	if len(got.LineItems) != 1 {
		t.Fatalf("Expected one line item, got %+v", got.LineItems)
	}
	if qty, ok := got.LineItems[0]["cantidad"].(float64); !ok || qty != 20 {
		t.Errorf("Expected cantidad as the number 20, got %#v", got.LineItems[0]["cantidad"])
	}
}

func TestAPI_ErrorStatuses(t *testing.T) {
	s := newServer(t)

	var req model.SupplyRequest
	s.mustDo(t, fiber.StatusCreated, http.MethodPost, "/api/v1/requests", "mrosario", map[string]interface{}{
		"line_items": lines("X-1", 2),
	}, &req)
	base := "/api/v1/requests/" + req.ID.String()
	s.mustDo(t, fiber.StatusOK, http.MethodPost, base+"/submit", "mrosario", nil, nil)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   interface{}
		want   int
	}{
		{"no_token", http.MethodGet, "/api/v1/requests", "", nil, fiber.StatusUnauthorized},
		{"duplicate_submit", http.MethodPost, base + "/submit", "mrosario", nil, fiber.StatusConflict},
		{"forbidden_authorize", http.MethodPost, "/api/v1/requests/authorize", "mrosario", map[string]interface{}{"ids": []string{req.ID.String()}, "decision": "approve"}, fiber.StatusForbidden},
		{"manage_before_approval", http.MethodPost, base + "/manage", "ualmonte", map[string]interface{}{"line_items": lines("X-1", 1)}, fiber.StatusConflict},
		{"zero_quantity", http.MethodPost, "/api/v1/requests", "mrosario", map[string]interface{}{"line_items": lines("X-1", 0)}, fiber.StatusUnprocessableEntity},
		{"unknown_request", http.MethodGet, "/api/v1/requests/6f1c1c2e-8d1a-4a7e-9c55-0b7d5f0e4a11", "jdiaz", nil, fiber.StatusNotFound},
		{"bad_id", http.MethodGet, "/api/v1/requests/not-a-uuid", "jdiaz", nil, fiber.StatusBadRequest},
		{"users_need_capability", http.MethodGet, "/api/v1/users", "ualmonte", nil, fiber.StatusForbidden},
		{"dashboard_denied_to_department", http.MethodGet, "/api/v1/dashboard/stats", "mrosario", nil, fiber.StatusForbidden},
		{"wrong_password", http.MethodPost, "/api/v1/auth/login", "", map[string]string{"login": "jdiaz", "password": "nope"}, fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(t, tt.method, tt.path, tt.user, tt.body)
			if status != tt.want {
				t.Errorf("Expected %d, got %d (%s)", tt.want, status, env.Message)
			}
			if env.Success {
				t.Error("Expected success=false")
			}
		})
	}

	// the refused authorize left the request untouched
	var stored model.SupplyRequest
	s.mustDo(t, fiber.StatusOK, http.MethodGet, base, "jdiaz", nil, &stored)
	if stored.Stage != model.StageSubmitted {
		t.Errorf("Expected SUBMITTED, got %s", stored.Stage)
	}
}

func TestAPI_Catalog(t *testing.T) {
	s := newServer(t)

	var dept model.Department
	s.mustDo(t, fiber.StatusCreated, http.MethodPost, "/api/v1/departments", "admin", map[string]string{"code": "RH", "name": "Recursos Humanos"}, &dept)
	s.mustDo(t, fiber.StatusForbidden, http.MethodPost, "/api/v1/departments", "ualmonte", map[string]string{"code": "JUR", "name": "Juridico"}, nil)

	var depts []model.Department
	s.mustDo(t, fiber.StatusOK, http.MethodGet, "/api/v1/departments", "mrosario", nil, &depts)
	if len(depts) != 2 {
		t.Errorf("Expected 2 departments, got %d", len(depts))
	}
	s.mustDo(t, fiber.StatusConflict, http.MethodDelete, fmt.Sprintf("/api/v1/departments/%d", s.dept.ID), "admin", nil, nil)
	s.mustDo(t, fiber.StatusOK, http.MethodDelete, fmt.Sprintf("/api/v1/departments/%d", dept.ID), "admin", nil, nil)

	var caps map[model.RoleCode][]model.Capability
	s.mustDo(t, fiber.StatusOK, http.MethodGet, "/api/v1/roles/capabilities", "mrosario", nil, &caps)
	if len(caps[model.RoleDepartment]) != 2 {
		t.Errorf("Expected 2 department capabilities, got %v", caps[model.RoleDepartment])
	}

	var users []model.UserResponse
	s.mustDo(t, fiber.StatusOK, http.MethodGet, "/api/v1/users", "admin", nil, &users)
	if len(users) != 4 {
		t.Errorf("Expected 4 users, got %d", len(users))
	}
}
