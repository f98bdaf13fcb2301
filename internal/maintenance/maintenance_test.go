package maintenance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/fetcher"
	"github.com/thep200/sach-crawler/internal/limiter"
	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/internal/snapshot"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
	"gorm.io/gorm"
)

const longPreview = "đây là một cuốn sách rất hay kể về hành trình của một cậu bé đi tìm kho báu ở sa mạc."

func sitePages(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/sach-dai":
		fmt.Fprintf(w, `<html><body><h1 class="page-title">Sách dài</h1>
<div class="field-name-field-image"><img src="/files/dai.jpg"></div>
<div class="field-name-body"><div class="field-item even"><p>LỜI NÓI ĐẦU</p><p>%s</p></div></div></body></html>`, longPreview)
	case "/sach-ngan":
		fmt.Fprint(w, `<html><body><div class="field-name-field-image"><img src="/files/ngan.jpg"></div>
<div class="field-name-body"><div class="field-item even"><p>Quá ngắn để dùng làm excerpt nhé</p></div></div></body></html>`)
	case "/files/dai.jpg", "/files/ngan.jpg":
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
	case "/files/trang.html":
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

type env struct {
	m      *Maintainer
	gdb    *gorm.DB
	server *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(sitePages))
	t.Cleanup(server.Close)

	config, _ := (&cfg.MockLoader{DataDir: t.TempDir()}).Load()
	config.Site.BaseUrl = server.URL
	database, _ := db.NewDatabase(config)
	t.Cleanup(func() { database.Close() })
	if err := database.Migrate(model.All(config, log.NopLogger{}, database)...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	gdb, err := database.Db()
	if err != nil {
		t.Fatal(err)
	}

	f, err := fetcher.NewFetcher(config, log.NopLogger{})
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMaintainer(log.NopLogger{}, config, database, f)
	if err != nil {
		t.Fatal(err)
	}
	m.Pacer = limiter.NewPacerWith(func(ctx context.Context, d time.Duration) error { return nil })
	return &env{m: m, gdb: gdb, server: server}
}

// seed tạo một thể loại, một tác giả và các sách theo url
func (e *env) seed(t *testing.T, urls ...string) []model.Book {
	t.Helper()
	category := &model.Category{Name: "Kinh Tế", URL: e.server.URL + "/kinh-te"}
	if _, err := e.m.CategoryMd.UpsertByURL(e.gdb, category); err != nil {
		t.Fatal(err)
	}
	authorID, _, err := e.m.AuthorMd.FirstOrCreate(e.gdb, "Tác giả")
	if err != nil {
		t.Fatal(err)
	}

	var books []model.Book
	for i, u := range urls {
		row := &model.Book{
			Title:      fmt.Sprintf("Sách %d", i+1),
			URL:        u,
			AuthorID:   authorID,
			CategoryID: category.CategoryID,
			Status:     model.StatusPending,
			Excerpt:    model.StringPtr("cũ"),
		}
		if _, err := e.m.BookMd.UpsertByURL(e.gdb, row); err != nil {
			t.Fatal(err)
		}
		books = append(books, *row)
	}
	return books
}

func (e *env) addChapter(t *testing.T, bookID uint, url string) {
	t.Helper()
	if _, err := e.m.ChapterMd.UpsertByURL(e.gdb, &model.Chapter{BookID: bookID, Title: "Chương", URL: url}); err != nil {
		t.Fatal(err)
	}
}

func (e *env) book(t *testing.T, url string) model.Book {
	t.Helper()
	var b model.Book
	if err := e.gdb.Where("url = ?", url).Take(&b).Error; err != nil {
		t.Fatalf("book %s: %v", url, err)
	}
	return b
}

func TestBackupRestore(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	books := e.seed(t, e.server.URL+"/a", e.server.URL+"/b")
	e.addChapter(t, books[0].BookID, e.server.URL+"/a/1")

	path, err := e.m.Backup(ctx, "books")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(path), "books_backup_") || filepath.Dir(path) != e.m.Config.Storage.BackupDir {
		t.Errorf("backup path = %s", path)
	}
	var saved []model.Book
	if err := snapshot.ReadJSON(path, &saved); err != nil || len(saved) != 2 {
		t.Fatalf("saved = %+v err=%v", saved, err)
	}

	if err := e.m.BookMd.UpdateExcerpt(e.gdb, books[0].BookID, model.StringPtr("mới")); err != nil {
		t.Fatal(err)
	}
	if _, err := e.m.DeleteBook(ctx, books[1].BookID); err != nil {
		t.Fatal(err)
	}

	n, err := e.m.Restore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("restored = %d", n)
	}
	if got := e.book(t, e.server.URL+"/a"); model.StringValue(got.Excerpt) != "cũ" || got.BookID != books[0].BookID {
		t.Errorf("book a = %+v", got)
	}
	if got := e.book(t, e.server.URL+"/b"); got.Title != "Sách 2" {
		t.Errorf("book b = %+v", got)
	}
	if count, _ := e.m.BookMd.Count(e.gdb); count != 2 {
		t.Errorf("books = %d", count)
	}
}

func TestBackupRestoreChaptersAndCategories(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	books := e.seed(t, e.server.URL+"/a")
	e.addChapter(t, books[0].BookID, e.server.URL+"/a/1")

	for _, table := range []string{"categories", "authors", "chapters"} {
		path, err := e.m.Backup(ctx, table)
		if err != nil {
			t.Fatal(err)
		}
		if table, err := TableOf(path); err != nil || table == "" {
			t.Errorf("TableOf(%s) = %q %v", path, table, err)
		}
		if n, err := e.m.Restore(ctx, path); err != nil || n != 1 {
			t.Errorf("restore %s = %d %v", table, n, err)
		}
	}

	var chapters int64
	e.gdb.Model(&model.Chapter{}).Count(&chapters)
	var authors int64
	e.gdb.Model(&model.Author{}).Count(&authors)
	if chapters != 1 || authors != 1 {
		t.Errorf("chapters = %d authors = %d", chapters, authors)
	}
}

func TestBackupErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.m.Backup(ctx, "users"); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("err = %v, want ErrUnknownTable", err)
	}
	if _, err := TableOf("/tmp/khong_phai_backup.json"); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("err = %v, want ErrUnknownTable", err)
	}

	bad := filepath.Join(t.TempDir(), BackupName("books", time.Now()))
	os.WriteFile(bad, []byte("{not json"), 0o644)
	if _, err := e.m.Restore(ctx, bad); err == nil {
		t.Error("restore of broken file succeeded")
	}
}

func TestBackupName(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	if got := BackupName("books", at); got != "books_backup_2026-01-02T03-04-05.006Z.json" {
		t.Errorf("BackupName = %s", got)
	}
}

func TestCleanup(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	books := e.seed(t, e.server.URL+"/a", e.server.URL+"/b", e.server.URL+"/c")
	e.addChapter(t, books[0].BookID, e.server.URL+"/a/1")

	found, err := e.m.FindBooksWithoutChapters(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 || found[0].BookID != books[1].BookID || found[1].BookID != books[2].BookID {
		t.Fatalf("found = %+v", found)
	}

	result, err := e.m.Cleanup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Found != 2 || len(result.Deleted) != 2 || len(result.Failed) != 0 || result.Deleted[0].Title != "Sách 2" {
		t.Errorf("result = %+v", result)
	}

	remaining, _ := e.m.BookMd.List(e.gdb)
	if len(remaining) != 1 || remaining[0].BookID != books[0].BookID {
		t.Errorf("remaining = %+v", remaining)
	}

	result, err = e.m.Cleanup(ctx)
	if err != nil || result.Found != 0 || len(result.Deleted) != 0 {
		t.Errorf("second cleanup = %+v %v", result, err)
	}

	if _, err := e.m.DeleteBook(ctx, 9999); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("err = %v, want ErrBookNotFound", err)
	}
}

func TestRefreshExcerpts(t *testing.T) {
	e := newEnv(t)
	e.seed(t, e.server.URL+"/sach-dai", e.server.URL+"/sach-ngan", e.server.URL+"/sach-loi")

	result, err := e.m.RefreshExcerpts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 3 || result.Success != 1 || result.Default != 2 || result.Failed != 0 {
		t.Errorf("result = %+v", result)
	}
	if _, err := os.Stat(result.BackupFile); err != nil {
		t.Errorf("backup file: %v", err)
	}

	want := "Đây là một cuốn sách rất hay kể về hành trình của một cậu bé đi tìm kho báu ở sa mạc."
	if got := e.book(t, e.server.URL+"/sach-dai"); model.StringValue(got.Excerpt) != want {
		t.Errorf("excerpt = %q", model.StringValue(got.Excerpt))
	}
	for _, u := range []string{"/sach-ngan", "/sach-loi"} {
		if got := e.book(t, e.server.URL+u); model.StringValue(got.Excerpt) != cfg.DefaultExcerpt {
			t.Errorf("%s excerpt = %q", u, model.StringValue(got.Excerpt))
		}
	}

	// backup vẫn giữ excerpt cũ nên có thể phục hồi
	if _, err := e.m.Restore(context.Background(), result.BackupFile); err != nil {
		t.Fatal(err)
	}
	if got := e.book(t, e.server.URL+"/sach-dai"); model.StringValue(got.Excerpt) != "cũ" {
		t.Errorf("restored excerpt = %q", model.StringValue(got.Excerpt))
	}
}

func TestRefreshImages(t *testing.T) {
	e := newEnv(t)
	books := e.seed(t, e.server.URL+"/sach-dai", e.server.URL+"/sach-ngan", e.server.URL+"/sach-loi")
	if err := e.m.BookMd.UpdateImage(e.gdb, books[1].BookID, model.StringPtr(e.server.URL+"/files/ngan.jpg")); err != nil {
		t.Fatal(err)
	}

	result, err := e.m.RefreshImages(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Success != 1 || result.Unchanged != 1 || result.Failed != 1 {
		t.Errorf("result = %+v", result)
	}
	if got := e.book(t, e.server.URL+"/sach-dai"); model.StringValue(got.ImageURL) != e.server.URL+"/files/dai.jpg" {
		t.Errorf("image = %q", model.StringValue(got.ImageURL))
	}
}

func TestCheckImages(t *testing.T) {
	e := newEnv(t)
	books := e.seed(t, e.server.URL+"/1", e.server.URL+"/2", e.server.URL+"/3", e.server.URL+"/4", e.server.URL+"/5")
	images := []string{
		e.server.URL + "/files/dai.jpg",
		e.server.URL + "/files/trang.html",
		e.server.URL + "/files/mat.jpg",
		"ftp://gacsach.top/a.jpg",
	}
	for i, img := range images {
		if err := e.m.BookMd.UpdateImage(e.gdb, books[i].BookID, model.StringPtr(img)); err != nil {
			t.Fatal(err)
		}
	}

	report, path, err := e.m.CheckImages(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := ImageStats{Total: 5, Valid: 1, Invalid: 3, Null: 1, TotalProblematic: 4}
	if report.Stats != want {
		t.Errorf("stats = %+v, want %+v", report.Stats, want)
	}
	if report.NullURLs[0].BookID != books[4].BookID || report.NullURLs[0].Author != "Tác giả" {
		t.Errorf("null urls = %+v", report.NullURLs)
	}

	reasons := []string{"Not an image. Content-Type: text/html", "HTTP status code: 404", "Invalid URL format"}
	for i, issue := range report.InvalidURLs {
		if issue.Reason != reasons[i] {
			t.Errorf("invalid[%d].Reason = %q, want %q", i, issue.Reason, reasons[i])
		}
	}

	var saved ImageReport
	if err := snapshot.ReadJSON(path, &saved); err != nil || saved.Stats != want {
		t.Errorf("saved report = %+v err=%v", saved.Stats, err)
	}
}

func TestPromptRestore(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := AskRestore(strings.NewReader(tt.input), &out, "books_backup.json"); got != tt.want {
			t.Errorf("AskRestore(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "books_backup.json") {
			t.Errorf("prompt = %q", out.String())
		}
	}

	e := newEnv(t)
	ctx := context.Background()
	e.seed(t, e.server.URL+"/a")
	path, _ := e.m.Backup(ctx, "books")
	e.m.BookMd.UpdateExcerpt(e.gdb, e.book(t, e.server.URL+"/a").BookID, model.StringPtr("mới"))

	restored, err := e.m.PromptRestore(ctx, strings.NewReader("y\n"), &bytes.Buffer{}, path)
	if err != nil || !restored {
		t.Fatalf("PromptRestore = %v %v", restored, err)
	}
	if got := e.book(t, e.server.URL+"/a"); model.StringValue(got.Excerpt) != "cũ" {
		t.Errorf("excerpt = %q", model.StringValue(got.Excerpt))
	}
}
