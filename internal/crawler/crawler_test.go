package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/extractor"
	"github.com/thep200/sach-crawler/internal/fetcher"
	"github.com/thep200/sach-crawler/internal/limiter"
	"github.com/thep200/sach-crawler/internal/snapshot"
	"github.com/thep200/sach-crawler/pkg/kafka"
	"github.com/thep200/sach-crawler/pkg/log"
)

const homePage = `<html><body><ul>
<li class="expanded"><a href="/the-loai">Thể loại</a><ul class="menu">
<li class="leaf"><a href="/kinh-te" title="Sách kinh tế">Kinh Tế</a></li>
<li class="leaf"><a href="/kiem-hiep">Kiếm Hiệp</a></li>
</ul></li></ul></body></html>`

func bookRow(slug, title string) string {
	return fmt.Sprintf(`<div class="views-row"><div class="tvtitle"><a href="/%s">%s</a></div>
<div class="tvauthor"><a>Tác giả</a></div><div class="tvdetail">1,234 views Full</div></div>`, slug, title)
}

func categoryPage(hasNext bool, rows ...string) string {
	body := "<html><body>"
	for _, r := range rows {
		body += r
	}
	if hasNext {
		body += `<ul class="pager"><li class="pager-next"><a href="?page=x">sau</a></li></ul>`
	}
	return body + "</body></html>"
}

const bookPage = `<html><body><h1 class="page-title">Sách A</h1>
<div class="field-name-field-author"><div class="field-item"><a>Tác giả A</a></div></div>
<div id="book-navigation-12"><ul class="menu">
<li><a href="/sach-a/chuong-1">Chương 1</a></li>
<li><a href="/sach-a/chuong-2">Chương 2</a></li>
<li><a href="/sach-a/chuong-3">Chương 3</a></li>
</ul></div></body></html>`

func chapterPage(title string) string {
	return fmt.Sprintf(`<html><body><h1 class="page-title">%s</h1>
<div class="field-name-body"><div class="field-item"><p>Nội dung %s</p></div></div></body></html>`, title, title)
}

type site struct {
	mu       sync.Mutex
	requests []string
}

func (s *site) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RequestURI())
	s.mu.Unlock()

	page := r.URL.Query().Get("page")
	switch r.URL.Path {
	case "/":
		fmt.Fprint(w, homePage)
	case "/kinh-te":
		switch page {
		case "":
			fmt.Fprint(w, categoryPage(true, bookRow("sach-a", "Sách A"), bookRow("sach-b", "Sách B")))
		case "1":
			fmt.Fprint(w, categoryPage(false, bookRow("sach-c", "Sách C")))
		default:
			http.Error(w, "unexpected page "+page, http.StatusInternalServerError)
		}
	case "/kiem-hiep":
		if page == "" {
			fmt.Fprint(w, categoryPage(true, bookRow("sach-d", "Sách D")))
			return
		}
		fmt.Fprint(w, categoryPage(true))
	case "/vo-han":
		fmt.Fprint(w, categoryPage(true, bookRow("sach-"+page, "Sách "+page)))
	case "/sach-a":
		fmt.Fprint(w, bookPage)
	case "/sach-a/chuong-1":
		fmt.Fprint(w, chapterPage("Chương 1"))
	case "/sach-a/chuong-2":
		fmt.Fprint(w, chapterPage("Chương 2"))
	case "/sach-b":
		fmt.Fprint(w, `<html><body><p>không có tiêu đề</p></body></html>`)
	default:
		http.NotFound(w, r)
	}
}

func (s *site) count(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r == uri {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	events []kafka.SnapshotEvent
}

func (p *recordingPublisher) PublishSnapshot(ctx context.Context, ev kafka.SnapshotEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type testEnv struct {
	crawler   *Crawler
	site      *site
	publisher *recordingPublisher
	sleeps    []time.Duration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := &site{}
	server := httptest.NewServer(http.HandlerFunc(s.handler))
	t.Cleanup(server.Close)

	config, _ := (&cfg.MockLoader{DataDir: t.TempDir()}).Load()
	config.Site.BaseUrl = server.URL
	config.Site.Timeout = 5 * time.Second

	f, err := fetcher.NewFetcher(config, log.NopLogger{})
	if err != nil {
		t.Fatal(err)
	}
	store, _ := snapshot.NewStore(config, log.NopLogger{})
	env := &testEnv{site: s, publisher: &recordingPublisher{}}

	c, err := NewCrawler(log.NopLogger{}, config, f, store, env.publisher)
	if err != nil {
		t.Fatal(err)
	}
	c.Pacer = limiter.NewPacerWith(func(ctx context.Context, d time.Duration) error {
		env.sleeps = append(env.sleeps, d)
		return ctx.Err()
	})
	env.crawler = c
	return env
}

func TestSelectRange(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5}
	tests := []struct {
		name string
		rng  Range
		all  bool
		want []int
	}{
		{"all", Range{Start: 2, End: 3}, true, items},
		{"inclusive", Range{Start: 1, End: 3}, false, []int{1, 2, 3}},
		{"negative end", Range{Start: 4, End: -1}, false, []int{4, 5}},
		{"end past len", Range{Start: 3, End: 100}, false, []int{3, 4, 5}},
		{"start past len", Range{Start: 10, End: 12}, false, []int{}},
		{"end before start", Range{Start: 3, End: 1}, false, []int{}},
		{"negative start", Range{Start: -2, End: 0}, false, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectRange(items, tt.rng, tt.all); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SelectRange = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewOptions(t *testing.T) {
	config, _ := (&cfg.MockLoader{DataDir: t.TempDir()}).Load()
	config.Crawler.FetchAll.Chapters = true
	opts := NewOptions(config)

	if !opts.FetchAll.Chapters || opts.FetchAll.Books {
		t.Errorf("FetchAll = %+v", opts.FetchAll)
	}
	if opts.BookRange != (Range{Start: 0, End: 4}) || opts.PageLimit != 5 || opts.DelayBetweenPages != 2*time.Second {
		t.Errorf("opts = %+v", opts)
	}
}

func TestPageURL(t *testing.T) {
	if got := pageURL("https://gacsach.top/kinh-te", 0); got != "https://gacsach.top/kinh-te" {
		t.Errorf("page 0 = %s", got)
	}
	if got := pageURL("https://gacsach.top/kinh-te", 3); got != "https://gacsach.top/kinh-te?page=3" {
		t.Errorf("page 3 = %s", got)
	}
}

func TestCrawlCategories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stats, categories, err := env.crawler.CrawlCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(categories) != 2 || categories[0].Title != "Sách kinh tế" || categories[1].Title != "Kiếm Hiệp" {
		t.Errorf("categories = %+v", categories)
	}
	if stats.Written != 1 || len(env.publisher.events) != 1 || env.publisher.events[0].Kind != kafka.KeyCategories {
		t.Errorf("stats = %+v events = %+v", stats, env.publisher.events)
	}

	saved, err := env.crawler.Store.ReadCategories()
	if err != nil || !reflect.DeepEqual(saved, categories) {
		t.Errorf("saved = %+v err=%v", saved, err)
	}
}

func TestCrawlCategoryBooks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, _, err := env.crawler.CrawlCategories(ctx); err != nil {
		t.Fatal(err)
	}
	stats, err := env.crawler.CrawlCategoryBooks(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// kinh-te: trang 0 có trang sau, trang 1 không có -> dừng
	// kiem-hiep: trang 1 không còn dòng nào -> dừng
	if env.site.count("/kinh-te?page=2") != 0 || env.site.count("/kiem-hiep?page=2") != 0 {
		t.Errorf("requests = %v", env.site.requests)
	}
	if stats.Categories != 2 || stats.Books != 4 || stats.Pages != 4 || stats.FetchFailed != 0 {
		t.Errorf("stats = %+v", stats)
	}

	var books []extractor.BookStub
	if err := env.crawler.Store.ReadCategoryBooks(env.crawler.Store.CategoryBooksPath("Kinh Tế"), &books); err != nil {
		t.Fatal(err)
	}
	if len(books) != 3 || books[2].Title != "Sách C" || books[0].Category != "Kinh Tế" || books[0].Views != "1,234" {
		t.Errorf("books = %+v", books)
	}

	// nghỉ giữa các trang và giữa hai thể loại
	for _, d := range env.sleeps {
		if d != env.crawler.Options.DelayBetweenPages {
			t.Errorf("sleep %v, want %v", d, env.crawler.Options.DelayBetweenPages)
		}
	}
	if len(env.sleeps) != 3 {
		t.Errorf("sleeps = %v", env.sleeps)
	}
}

func TestCrawlCategoryPageLimit(t *testing.T) {
	env := newTestEnv(t)
	env.crawler.Options.PageLimit = 3

	stats := newRunStats("test")
	books := env.crawler.crawlCategory(context.Background(), stats, extractor.Category{Name: "Vô Hạn", URL: env.crawler.Config.Site.BaseUrl + "/vo-han"})
	if len(books) != 3 || stats.Pages != 3 {
		t.Errorf("books = %d pages = %d", len(books), stats.Pages)
	}
}

func TestCrawlCategoryBooksMissingInput(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.crawler.CrawlCategoryBooks(context.Background()); !errors.Is(err, ErrInputMissing) {
		t.Errorf("err = %v, want ErrInputMissing", err)
	}
	if _, err := env.crawler.CrawlContent(context.Background()); !errors.Is(err, ErrInputMissing) {
		t.Errorf("err = %v, want ErrInputMissing", err)
	}
}

func writeBooksFile(t *testing.T, c *Crawler, name string, books []extractor.BookStub) {
	t.Helper()
	if _, err := c.Store.SaveCategoryBooks(context.Background(), name, books); err != nil {
		t.Fatal(err)
	}
}

func TestCrawlContent(t *testing.T) {
	env := newTestEnv(t)
	c := env.crawler
	c.Options.FetchAll = FetchAll{Files: true, BooksPerFile: true, Books: true, Chapters: true}

	writeBooksFile(t, c, "Kinh Tế", []extractor.BookStub{
		{Title: "Sách A", URL: c.Config.Site.BaseUrl + "/sach-a"},
		{Title: "Sách B", URL: "/sach-b"},
		{Title: "Sách lỗi", URL: "/sach-khong-ton-tai"},
	})

	stats, err := c.CrawlContent(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// sach-b không có tiêu đề, sach-khong-ton-tai 404, chương 3 404
	if stats.Books != 1 || stats.Chapters != 2 || stats.FetchFailed != 2 || stats.ParseFailed != 1 {
		t.Errorf("stats = %+v", stats)
	}

	dir := c.Store.BookDir("sach_a")
	for _, name := range []string{"book_sach_a.json", "chapter_chuong_1.json", "chapter_chuong_2.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing snapshot %s: %v", name, err)
		}
	}

	chapter, err := c.Store.ReadChapter(filepath.Join(dir, "chapter_chuong_2.json"))
	if err != nil {
		t.Fatal(err)
	}
	if chapter.Content != "Nội dung Chương 2" || chapter.URL != c.Config.Site.BaseUrl+"/sach-a/chuong-2" {
		t.Errorf("chapter = %+v", chapter)
	}

	book, _ := c.Store.ReadBook(c.Store.BookPath("sach_a"))
	if book.TotalChapters != 3 || book.Author != "Tác giả A" {
		t.Errorf("book = %+v", book)
	}

	// 3 event: 1 sách + 2 chương
	if len(env.publisher.events) != 3 {
		t.Fatalf("events = %+v", env.publisher.events)
	}
	last := env.publisher.events[2]
	if last.Kind != kafka.KeyChapter || last.BookDir != "sach_a" || last.FileName != "chapter_chuong_2.json" {
		t.Errorf("last event = %+v", last)
	}

	// nghỉ sau mỗi chương (3) và giữa các sách (2)
	if len(env.sleeps) != 5 {
		t.Errorf("sleeps = %v", env.sleeps)
	}
}

func TestCrawlContentRanges(t *testing.T) {
	env := newTestEnv(t)
	c := env.crawler
	c.Options.FileRange = Range{Start: 1, End: 1}
	c.Options.BookRangePerFile = Range{Start: 0, End: 0}
	c.Options.BookRange = Range{Start: 0, End: -1}
	c.Options.ChapterRange = Range{Start: 1, End: 1}

	writeBooksFile(t, c, "A Thể loại", []extractor.BookStub{{Title: "Khác", URL: "/khac"}})
	writeBooksFile(t, c, "B Thể loại", []extractor.BookStub{
		{Title: "Sách A", URL: "/sach-a"},
		{Title: "Sách B", URL: "/sach-b"},
	})

	stats, err := c.CrawlContent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if env.site.count("/khac") != 0 || env.site.count("/sach-b") != 0 {
		t.Errorf("requests = %v", env.site.requests)
	}
	if env.site.count("/sach-a/chuong-1") != 0 || env.site.count("/sach-a/chuong-2") != 1 {
		t.Errorf("requests = %v", env.site.requests)
	}
	if stats.Books != 1 || stats.Chapters != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCrawlContentCanceled(t *testing.T) {
	env := newTestEnv(t)
	c := env.crawler
	c.Options.FetchAll = FetchAll{Files: true, BooksPerFile: true, Books: true, Chapters: true}
	writeBooksFile(t, c, "Kinh Tế", []extractor.BookStub{{Title: "Sách A", URL: "/sach-a"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := c.CrawlContent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Interrupted || stats.Requests != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCrawlBookStopsOnCancelDuringChapters(t *testing.T) {
	env := newTestEnv(t)
	c := env.crawler
	c.Options.FetchAll.Chapters = true

	ctx, cancel := context.WithCancel(context.Background())
	c.Pacer = limiter.NewPacerWith(func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	})

	stats, err := c.CrawlBook(ctx, "/sach-a")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Chapters != 1 || !stats.Interrupted || env.site.count("/sach-a/chuong-2") != 0 {
		t.Errorf("stats = %+v requests = %v", stats, env.site.requests)
	}
}
