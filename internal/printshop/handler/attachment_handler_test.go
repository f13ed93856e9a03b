package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
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

func setupAttachmentEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
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
	api.POST("/orders/:id/attachments/:kind", handlers.Attachment.Upload)
	api.GET("/attachments", handlers.Attachment.Download)

	return r, remoteDB
}

func doUpload(t *testing.T, r *gin.Engine, path string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.png")
	if err != nil {
		t.Fatalf("failed to build multipart form: %v", err)
	}
	fw.Write(content)
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadAndDownloadAttachment(t *testing.T) {
	r, remoteDB := setupAttachmentEnv(t)
	token := testutil.DefaultTestToken()

	testutil.SeedTestOrder(t, remoteDB, "order-up-001", entity.StagePhotolith)

	content := []byte("png bytes")
	w := doUpload(t, r, "/api/v1/orders/order-up-001/attachments/photolith", content, token)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	ref := data["ref"].(string)
	if ref == "" {
		t.Fatal("upload returned no ref")
	}

	var order entity.Order
	if err := remoteDB.Where("id = ?", "order-up-001").First(&order).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if order.PhotolithURL != ref {
		t.Errorf("order ref = %q, want %q", order.PhotolithURL, ref)
	}

	w2 := testutil.DoRequest(r, http.MethodGet, "/api/v1/attachments?ref="+ref, nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("download status = %d", w2.Code)
	}
	got, _ := io.ReadAll(w2.Body)
	if !bytes.Equal(got, content) {
		t.Errorf("downloaded content mismatch: %q", got)
	}
}

func TestUploadRejectsUnknownKind(t *testing.T) {
	r, remoteDB := setupAttachmentEnv(t)
	token := testutil.DefaultTestToken()

	testutil.SeedTestOrder(t, remoteDB, "order-up-002", entity.StagePhotolith)

	w := doUpload(t, r, "/api/v1/orders/order-up-002/attachments/invoice", []byte("x"), token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadUnknownOrder(t *testing.T) {
	r, _ := setupAttachmentEnv(t)
	token := testutil.DefaultTestToken()

	w := doUpload(t, r, "/api/v1/orders/order-nope/attachments/photolith", []byte("x"), token)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
