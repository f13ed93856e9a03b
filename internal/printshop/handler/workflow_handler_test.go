package handler

import (
	"net/http"
	"testing"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"github.com/folkstudio/printflow/internal/printshop/reconciler"
	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/folkstudio/printflow/internal/printshop/service"
	"github.com/folkstudio/printflow/internal/printshop/storage"
	"github.com/folkstudio/printflow/internal/printshop/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type testEnv struct {
	router   *gin.Engine
	remoteDB *gorm.DB
	localDB  *gorm.DB
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	remoteDB := testutil.SetupTestDB(t)
	localDB := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(remoteDB, localDB, nil, nil)
	store := storage.NewBinaryStore(nil, "", t.TempDir(), nil)
	services := service.NewServices(repos, store, nil)
	rec := reconciler.New(repos.Orders, 0, nil)
	handlers := NewHandlers(services, repos, rec)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")

	orders := api.Group("/orders")
	orders.GET("", handlers.Order.List)
	orders.POST("", handlers.Order.Create)
	orders.GET("/:id", handlers.Order.Get)
	orders.PUT("/:id", handlers.Order.Update)
	orders.DELETE("/:id", handlers.Order.Delete)
	orders.POST("/:id/advance", handlers.Workflow.Advance)
	orders.POST("/:id/return", handlers.Workflow.Return)
	orders.POST("/:id/resubmit", handlers.Workflow.Resubmit)
	orders.GET("/:id/activity", handlers.Activity.OrderHistory)
	api.GET("/activity/by-actor/:actorId", handlers.Activity.ActorHistory)
	api.GET("/sync/pending", handlers.Sync.Pending)

	return &testEnv{router: r, remoteDB: remoteDB, localDB: localDB}
}

func TestOrderEndpointsRequireAuth(t *testing.T) {
	env := setupEnv(t)

	w := testutil.DoRequest(env.router, http.MethodGet, "/api/v1/orders", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	env := setupEnv(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_name": "Dona Maria",
		"quantity":      3,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	order := data["order"].(map[string]interface{})
	id := order["id"].(string)
	if id == "" {
		t.Fatal("create returned no id")
	}
	if order["kanban_stage"] != entity.StageWaitingConfirmation {
		t.Errorf("stage = %v, want waiting_confirmation", order["kanban_stage"])
	}
	if data["synced"] != true {
		t.Error("healthy remote should report synced=true")
	}

	w = testutil.DoRequest(env.router, http.MethodGet, "/api/v1/orders/"+id, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	got := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if got["customer_name"] != "Dona Maria" {
		t.Errorf("customer_name = %v", got["customer_name"])
	}

	w = testutil.DoRequest(env.router, http.MethodGet, "/api/v1/orders/order-nope", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing order status = %d, want 404", w.Code)
	}
}

func TestAdvanceEndpointReportsGuardDetail(t *testing.T) {
	env := setupEnv(t)
	token := testutil.DefaultTestToken()

	testutil.SeedTestOrder(t, env.remoteDB, "order-h-001", entity.StagePhotolith)

	w := testutil.DoRequest(env.router, http.MethodPost, "/api/v1/orders/order-h-001/advance", map[string]interface{}{
		"checklist": map[string]bool{
			"interpretation": true,
			"order_match":    true,
			"photolith_ok":   true,
		},
	}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["requirement"] != "attachment" {
		t.Errorf("requirement = %v, want attachment", data["requirement"])
	}
}

func TestAdvanceEndpointHappyPathAndActivity(t *testing.T) {
	env := setupEnv(t)
	token := testutil.DefaultTestToken()

	testutil.SeedTestOrder(t, env.remoteDB, "order-h-002", entity.StageWaitingConfirmation)

	w := testutil.DoRequest(env.router, http.MethodPost, "/api/v1/orders/order-h-002/advance", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("advance status = %d, body %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	order := data["order"].(map[string]interface{})
	if order["kanban_stage"] != entity.StagePhotolith {
		t.Errorf("stage = %v, want photolith", order["kanban_stage"])
	}

	w = testutil.DoRequest(env.router, http.MethodGet, "/api/v1/orders/order-h-002/activity", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("activity status = %d", w.Code)
	}
	items := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(items))
	}
	entry := items[0].(map[string]interface{})
	// the operator identity comes from the JWT
	if entry["changed_by_id"] != "test-user-001" {
		t.Errorf("changed_by_id = %v", entry["changed_by_id"])
	}

	w = testutil.DoRequest(env.router, http.MethodGet, "/api/v1/activity/by-actor/test-user-001", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("actor activity status = %d", w.Code)
	}
	items = testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("expected 1 actor entry, got %d", len(items))
	}
}

func TestReturnEndpointValidation(t *testing.T) {
	env := setupEnv(t)
	token := testutil.DefaultTestToken()

	testutil.SeedTestOrder(t, env.remoteDB, "order-h-003", entity.StageWaitingConfirmation)

	w := testutil.DoRequest(env.router, http.MethodPost, "/api/v1/orders/order-h-003/return", map[string]interface{}{
		"reason": "  ",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank reason status = %d, want 400", w.Code)
	}

	w = testutil.DoRequest(env.router, http.MethodPost, "/api/v1/orders/order-h-003/return", map[string]interface{}{
		"reason": "arte fora do padrao",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("return status = %d, body %s", w.Code, w.Body.String())
	}
	order := testutil.ParseResponse(w)["data"].(map[string]interface{})["order"].(map[string]interface{})
	if order["kanban_stage"] != entity.StageReturned {
		t.Errorf("stage = %v, want returned", order["kanban_stage"])
	}

	w = testutil.DoRequest(env.router, http.MethodPost, "/api/v1/orders/order-h-003/resubmit", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("resubmit status = %d, body %s", w.Code, w.Body.String())
	}
	order = testutil.ParseResponse(w)["data"].(map[string]interface{})["order"].(map[string]interface{})
	if order["kanban_stage"] != entity.StageWaitingConfirmation {
		t.Errorf("stage = %v, want waiting_confirmation", order["kanban_stage"])
	}
}

func TestSyncPendingEndpoint(t *testing.T) {
	env := setupEnv(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.router, http.MethodGet, "/api/v1/sync/pending", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["total"].(float64) != 0 {
		t.Errorf("expected empty pending queue, got %v", data["total"])
	}

	testutil.SeedTestOrder(t, env.localDB, "order-h-004", entity.StageWaitingConfirmation)

	w = testutil.DoRequest(env.router, http.MethodGet, "/api/v1/sync/pending", nil, token)
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["total"].(float64) != 1 {
		t.Errorf("expected 1 pending order, got %v", data["total"])
	}
}
