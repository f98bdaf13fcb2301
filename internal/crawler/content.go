package crawler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/thep200/sach-crawler/pkg/kafka"
)

// bookRef là phần của books_*.json mà crawler cần
type bookRef struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	sourceFile string
}

// CrawlContent đọc các file sách trong thư mục description, lấy chi tiết từng sách
// và nội dung các chương theo khoảng đã cấu hình
func (c *Crawler) CrawlContent(ctx context.Context) (*RunStats, error) {
	refs, err := c.bookRefs(ctx)
	if err != nil {
		return nil, err
	}

	stats := c.newRun(ctx, "lấy nội dung sách")
	defer stats.Log(ctx, c.Logger, "NỘI DUNG SÁCH")

	refs = SelectRange(refs, c.Options.BookRange, c.Options.FetchAll.Books)
	c.Logger.Info(ctx, "Bắt đầu xử lý %d sách (%s)", len(refs), describe(c.Options.BookRange, c.Options.FetchAll.Books))

	for i, ref := range refs {
		if c.stopped(ctx, stats) {
			break
		}
		c.Logger.Info(ctx, "[%d/%d] Đang xử lý sách: %s (nguồn: %s)", i+1, len(refs), ref.Title, ref.sourceFile)
		if !c.crawlBook(ctx, stats, ref.URL) {
			break
		}

		if i < len(refs)-1 && !c.wait(ctx, stats, c.Options.DelayBetweenBooks) {
			break
		}
	}
	return stats, nil
}

// CrawlBook lấy chi tiết và các chương của một sách
func (c *Crawler) CrawlBook(ctx context.Context, bookURL string) (*RunStats, error) {
	if bookURL == "" {
		return nil, fmt.Errorf("%w: empty book url", ErrInputMissing)
	}
	stats := c.newRun(ctx, "lấy nội dung một sách")
	defer stats.Log(ctx, c.Logger, "NỘI DUNG SÁCH")

	c.crawlBook(ctx, stats, bookURL)
	return stats, nil
}

func (c *Crawler) bookRefs(ctx context.Context) ([]bookRef, error) {
	files, err := c.Store.ListCategoryFiles()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputMissing, c.Config.Storage.DescriptionDir)
	}
	if err != nil {
		return nil, fmt.Errorf("list description files: %w", err)
	}

	selected := SelectRange(files, c.Options.FileRange, c.Options.FetchAll.Files)
	c.Logger.Info(ctx, "Tìm thấy %d file JSON, sẽ xử lý %d file (%s)", len(files), len(selected),
		describe(c.Options.FileRange, c.Options.FetchAll.Files))

	var refs []bookRef
	for _, path := range selected {
		name := filepath.Base(path)
		var books []bookRef
		if err := c.Store.ReadCategoryBooks(path, &books); err != nil {
			c.Logger.Error(ctx, "Lỗi khi phân tích file %s: %v", name, err)
			continue
		}

		picked := SelectRange(books, c.Options.BookRangePerFile, c.Options.FetchAll.BooksPerFile)
		for _, b := range picked {
			if b.URL == "" {
				continue
			}
			if b.Title == "" {
				b.Title = "Không có tiêu đề"
			}
			b.sourceFile = name
			refs = append(refs, b)
		}
		c.Logger.Info(ctx, "Đã lấy %d/%d url sách từ file %s", len(picked), len(books), name)
	}
	c.Logger.Info(ctx, "Tổng cộng: %d url sách từ %d file JSON", len(refs), len(selected))
	return refs, nil
}

// crawlBook trả về false khi context bị huỷ giữa chừng
func (c *Crawler) crawlBook(ctx context.Context, stats *RunStats, bookURL string) bool {
	c.Logger.Info(ctx, "Đang lấy thông tin sách từ: %s", bookURL)
	body, ok := c.fetch(ctx, stats, bookURL)
	if !ok {
		return !c.stopped(ctx, stats)
	}

	record, err := c.Extractor.ParseBookDetail(body, c.Fetcher.Absolute(bookURL))
	if err != nil || !record.Valid() {
		stats.ParseFailed++
		c.Logger.Error(ctx, "Không thể lấy thông tin sách từ %s", bookURL)
		return true
	}

	bookSlug, path, err := c.Store.SaveBook(ctx, record)
	if err != nil {
		stats.SaveFailed++
		c.Logger.Error(ctx, "Không thể lưu thông tin sách \"%s\": %v", record.Title, err)
		return true
	}
	stats.Books++
	c.publish(ctx, stats, kafka.KeyBook, path, record.URL)

	chapters := SelectRange(record.Chapters, c.Options.ChapterRange, c.Options.FetchAll.Chapters)
	c.Logger.Info(ctx, "Bắt đầu lấy nội dung %d/%d chương (%s)", len(chapters), len(record.Chapters),
		describe(c.Options.ChapterRange, c.Options.FetchAll.Chapters))

	for _, chapter := range chapters {
		if c.stopped(ctx, stats) {
			return false
		}
		c.crawlChapter(ctx, stats, bookSlug, chapter.URL)
		if !c.wait(ctx, stats, c.Options.DelayBetweenChapters) {
			return false
		}
	}
	return true
}

func (c *Crawler) crawlChapter(ctx context.Context, stats *RunStats, bookSlug, chapterURL string) {
	body, ok := c.fetch(ctx, stats, chapterURL)
	if !ok {
		return
	}

	record, err := c.Extractor.ParseChapter(body, c.Fetcher.Absolute(chapterURL))
	if err != nil || !record.Valid() {
		stats.ParseFailed++
		c.Logger.Error(ctx, "Không thể lấy nội dung chương từ %s", chapterURL)
		return
	}

	path, err := c.Store.SaveChapter(ctx, bookSlug, record)
	if err != nil {
		stats.SaveFailed++
		c.Logger.Error(ctx, "Không thể lưu chương \"%s\": %v", record.Title, err)
		return
	}
	stats.Chapters++
	c.publish(ctx, stats, kafka.KeyChapter, path, record.URL)
}
