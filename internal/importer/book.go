package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/model"
	"gorm.io/gorm"
)

// bookSnapshot là một phần tử trong books_*.json. views có thể là chuỗi "12,345" hoặc số.
type bookSnapshot struct {
	Title    string          `json:"title"`
	URL      string          `json:"url"`
	Image    *string         `json:"image"`
	Author   string          `json:"author"`
	Excerpt  string          `json:"excerpt"`
	Views    json.RawMessage `json:"views"`
	Status   string          `json:"status"`
	Rating   string          `json:"rating"`
	Category string          `json:"category"`
}

// parseViews chỉ giữ chữ số, không đọc được thì 0
func parseViews(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return v
}

// ImportBooks đọc các file books_*.json trong thư mục description (hoặc một file chỉ định)
// và upsert từng sách theo url
func (im *Importer) ImportBooks(ctx context.Context) (Stats, error) {
	stats := newStats()
	im.Logger.Info(ctx, "Bắt đầu import dữ liệu sách")

	files, err := im.bookFiles()
	if err != nil {
		return stats, err
	}
	im.Logger.Info(ctx, "Tìm thấy %d file dữ liệu sách cần xử lý", len(files))

	gdb, err := im.Database.Db()
	if err != nil {
		return stats, fmt.Errorf("open database: %w", err)
	}
	index, err := im.loadCategoryIndex(ctx, gdb)
	if err != nil {
		return stats, err
	}

	for i, path := range files {
		if ctx.Err() != nil {
			im.Logger.Warn(ctx, "Dừng import sách: %v", ctx.Err())
			break
		}
		im.Logger.Info(ctx, "[%d/%d] Đang xử lý file: %s", i+1, len(files), filepath.Base(path))
		stats.Merge(im.importBookFile(ctx, gdb, index, path))
	}

	if total, err := im.BookMd.Count(gdb); err == nil {
		im.Logger.Info(ctx, "Tổng số sách trong database: %d", total)
	}
	stats.Log(ctx, im.Logger, "SÁCH")
	return stats, nil
}

// ImportBookFile import một file books_*.json
func (im *Importer) ImportBookFile(ctx context.Context, path string) (Stats, error) {
	if _, err := os.Stat(path); err != nil {
		return newStats(), fmt.Errorf("%w: %s", ErrInputMissing, path)
	}
	gdb, err := im.Database.Db()
	if err != nil {
		return newStats(), fmt.Errorf("open database: %w", err)
	}
	index, err := im.loadCategoryIndex(ctx, gdb)
	if err != nil {
		return newStats(), err
	}
	return im.importBookFile(ctx, gdb, index, path), nil
}

func (im *Importer) bookFiles() ([]string, error) {
	if name := im.Config.Importer.SpecificFile; name != "" {
		path := filepath.Join(im.Config.Storage.DescriptionDir, name)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
		return []string{path}, nil
	}

	files, err := im.Store.ListCategoryFiles()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputMissing, im.Config.Storage.DescriptionDir)
	}
	return files, err
}

func (im *Importer) loadCategoryIndex(ctx context.Context, gdb *gorm.DB) (*categoryIndex, error) {
	categories, err := im.CategoryMd.List(gdb)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, model.ErrNoCategories
	}
	im.Logger.Info(ctx, "Đã tìm thấy %d thể loại trong database", len(categories))
	return newCategoryIndex(categories), nil
}

func (im *Importer) importBookFile(ctx context.Context, gdb *gorm.DB, index *categoryIndex, path string) Stats {
	stats := newStats()
	fileName := filepath.Base(path)

	var books []bookSnapshot
	if err := im.Store.ReadCategoryBooks(path, &books); err != nil {
		im.Logger.Error(ctx, "Không thể đọc file %s: %v", fileName, err)
		stats.Add(Failed)
		return stats
	}
	if len(books) > 0 && books[0].Title == "" {
		im.Logger.Warn(ctx, "Cấu trúc dữ liệu không phải là danh sách sách, bỏ qua file %s", fileName)
		return stats
	}

	defaultCategoryID, matched := index.ForFile(fileName)
	if matched {
		im.Logger.Info(ctx, "Đã tìm thấy thể loại phù hợp cho file %s (ID: %d)", fileName, defaultCategoryID)
	} else {
		im.Logger.Warn(ctx, "Không tìm thấy thể loại phù hợp cho file %s, sử dụng thể loại mặc định (ID: %d)", fileName, defaultCategoryID)
	}

	for i, book := range books {
		outcome, err := withTx(gdb, func(tx *gorm.DB) (Outcome, error) {
			return im.upsertBook(tx, index, defaultCategoryID, book)
		})
		stats.Add(outcome)

		switch outcome {
		case Inserted:
			im.Logger.Success(ctx, "[%d/%d] Đã thêm mới sách \"%s\"", i+1, len(books), book.Title)
		case Updated:
			im.Logger.Info(ctx, "[%d/%d] Đã cập nhật sách \"%s\"", i+1, len(books), book.Title)
		case SkippedMissingKey:
			im.Logger.Warn(ctx, "[%d/%d] Sách \"%s\" thiếu url, bỏ qua", i+1, len(books), book.Title)
		default:
			im.Logger.Error(ctx, "[%d/%d] Lỗi khi xử lý sách \"%s\": %v", i+1, len(books), book.Title, err)
		}
	}

	im.Logger.Info(ctx, "--- Kết quả xử lý file %s: thêm mới %d, cập nhật %d, lỗi %d, bỏ qua %d ---",
		fileName, stats.Inserted, stats.Updated, stats.Failed, stats.Skipped())
	return stats
}

func (im *Importer) upsertBook(tx *gorm.DB, index *categoryIndex, defaultCategoryID uint, book bookSnapshot) (Outcome, error) {
	if strings.TrimSpace(book.URL) == "" {
		return SkippedMissingKey, nil
	}

	categoryID, ok := index.Lookup(book.Category)
	if !ok {
		categoryID = defaultCategoryID
	}

	authorName := strings.TrimSpace(book.Author)
	if authorName == "" {
		authorName = im.Config.Importer.DefaultAuthor
	}
	if authorName == "" {
		authorName = cfg.DefaultAuthor
	}
	authorID, _, err := im.AuthorMd.FirstOrCreate(tx, model.TruncateString(authorName, 255))
	if err != nil {
		return Failed, fmt.Errorf("resolve author: %w", err)
	}

	var image *string
	if book.Image != nil {
		image = model.StringPtr(*book.Image)
	}

	row := &model.Book{
		Title:      model.TruncateString(book.Title, 500),
		URL:        book.URL,
		ImageURL:   image,
		AuthorID:   authorID,
		Excerpt:    model.StringPtr(book.Excerpt),
		Views:      parseViews(book.Views),
		Status:     model.NormalizeStatus(book.Status),
		Rating:     model.StringPtr(model.TruncateString(book.Rating, 64)),
		CategoryID: categoryID,
	}
	created, err := im.BookMd.UpsertByURL(tx, row)
	if err != nil {
		return Failed, err
	}
	return upsertOutcome(created), nil
}
