package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	router, gdb, _ := newTestServer(t)
	return router, gdb
}

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB, *db.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config, _ := (&cfg.MockLoader{DataDir: t.TempDir()}).Load()
	database, _ := db.NewDatabase(config)
	t.Cleanup(func() { database.Close() })
	if err := database.Migrate(model.All(config, log.NopLogger{}, database)...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	gdb, _ := database.Db()

	server, _ := NewServer(log.NopLogger{}, config, database)
	router, err := server.Router()
	if err != nil {
		t.Fatal(err)
	}

	gdb.Create(&model.Category{Name: "Kinh Tế", URL: "https://gacsach.top/kinh-te"})
	gdb.Create(&model.Author{Name: "Dale Carnegie"})
	for _, b := range []model.Book{
		{Title: "Đắc Nhân Tâm", URL: "https://gacsach.top/dac-nhan-tam", AuthorID: 1, CategoryID: 1, Status: model.StatusFull},
		{Title: "Sách rỗng", URL: "https://gacsach.top/sach-rong", AuthorID: 1, CategoryID: 1, Status: model.StatusPending},
	} {
		b := b
		if err := gdb.Omit("Author", "Category").Create(&b).Error; err != nil {
			t.Fatal(err)
		}
	}
	gdb.Omit("Book").Create(&model.Chapter{BookID: 1, Title: "Chương 1", URL: "https://gacsach.top/dac-nhan-tam/1"})
	return router, gdb, database
}

func do(t *testing.T, router *gin.Engine, method, path string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, body
}

func TestStats(t *testing.T) {
	router, _ := newTestRouter(t)
	code, body := do(t, router, http.MethodGet, "/api/stats")
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("code = %d body = %v", code, body)
	}
	stats := body["stats"].(map[string]interface{})
	want := map[string]float64{"categories": 1, "authors": 1, "books": 2, "chapters": 1}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("stats[%s] = %v, want %v", k, stats[k], v)
		}
	}
}

func TestBooksWithoutChaptersAndCleanup(t *testing.T) {
	router, gdb := newTestRouter(t)

	code, body := do(t, router, http.MethodGet, "/api/books/without-chapters")
	if code != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("code = %d body = %v", code, body)
	}
	books := body["books"].([]interface{})
	if books[0].(map[string]interface{})["title"] != "Sách rỗng" {
		t.Errorf("books = %v", books)
	}

	code, body = do(t, router, http.MethodDelete, "/api/books/cleanup")
	if code != http.StatusOK || body["deleted"] != float64(1) || body["message"] != "Đã xóa 1 sách không có chapters" {
		t.Fatalf("code = %d body = %v", code, body)
	}
	var n int64
	gdb.Model(&model.Book{}).Count(&n)
	if n != 1 {
		t.Errorf("books left = %d", n)
	}

	code, body = do(t, router, http.MethodDelete, "/api/books/cleanup")
	if code != http.StatusOK || body["deleted"] != float64(0) || body["message"] != "Không có sách nào cần xóa" {
		t.Errorf("code = %d body = %v", code, body)
	}
}

func TestDeleteBook(t *testing.T) {
	router, gdb := newTestRouter(t)

	code, body := do(t, router, http.MethodDelete, "/api/books/1")
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("code = %d body = %v", code, body)
	}
	var chapters int64
	gdb.Model(&model.Chapter{}).Count(&chapters)
	if chapters != 0 {
		t.Errorf("chapters left = %d", chapters)
	}

	if code, body := do(t, router, http.MethodDelete, "/api/books/1"); code != http.StatusNotFound || body["success"] != false {
		t.Errorf("code = %d body = %v", code, body)
	}
	if code, _ := do(t, router, http.MethodDelete, "/api/books/abc"); code != http.StatusBadRequest {
		t.Errorf("code = %d", code)
	}
}

func TestHealth(t *testing.T) {
	router, _, database := newTestServer(t)

	code, body := do(t, router, http.MethodGet, "/health")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("code = %d body = %v", code, body)
	}

	database.Close()
	code, body = do(t, router, http.MethodGet, "/health")
	if code != http.StatusServiceUnavailable || body["status"] != "unavailable" {
		t.Errorf("code = %d body = %v", code, body)
	}
}
