package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thep200/sach-crawler/internal/model"
	"gorm.io/gorm"
)

// ImportChapters duyệt các thư mục sách trong content dir (hoặc một thư mục chỉ định),
// khớp mỗi thư mục với một sách trong DB rồi upsert từng file chương theo url
func (im *Importer) ImportChapters(ctx context.Context) (Stats, error) {
	stats := newStats()
	im.Logger.Info(ctx, "Bắt đầu import dữ liệu chương sách")

	dirs, err := im.bookDirs()
	if err != nil {
		return stats, err
	}
	im.Logger.Info(ctx, "Tìm thấy %d thư mục sách cần xử lý", len(dirs))

	gdb, err := im.Database.Db()
	if err != nil {
		return stats, fmt.Errorf("open database: %w", err)
	}
	index, err := im.loadBookIndex(ctx, gdb)
	if err != nil {
		return stats, err
	}

	for i, dir := range dirs {
		if ctx.Err() != nil {
			im.Logger.Warn(ctx, "Dừng import chương: %v", ctx.Err())
			break
		}
		im.Logger.Info(ctx, "[%d/%d] Đang xử lý thư mục sách: %s", i+1, len(dirs), dir)
		stats.Merge(im.importBookDir(ctx, gdb, index, dir))
	}

	if total, err := im.ChapterMd.Count(gdb); err == nil {
		im.Logger.Info(ctx, "Tổng số chương trong database: %d", total)
	}
	stats.Log(ctx, im.Logger, "CHƯƠNG SÁCH")
	return stats, nil
}

// ImportChapterFile import một file chương trong thư mục sách dir. chapter_order được tính
// theo vị trí của file trong thư mục như khi import cả thư mục.
func (im *Importer) ImportChapterFile(ctx context.Context, dir, fileName string) (Outcome, error) {
	files, err := im.Store.ListBookFiles(dir)
	if err != nil {
		return Failed, fmt.Errorf("%w: %s", ErrInputMissing, im.Store.BookDir(dir))
	}
	chapters, summaries := SortChapterFiles(files)
	for _, name := range summaries {
		if name == fileName {
			return SkippedSummary, nil
		}
	}
	order := -1
	for i, name := range chapters {
		if name == fileName {
			order = i
			break
		}
	}
	if order < 0 {
		return Failed, fmt.Errorf("%w: %s", ErrInputMissing, filepath.Join(im.Store.BookDir(dir), fileName))
	}

	gdb, err := im.Database.Db()
	if err != nil {
		return Failed, fmt.Errorf("open database: %w", err)
	}
	index, err := im.loadBookIndex(ctx, gdb)
	if err != nil {
		return Failed, err
	}
	book, ok := index.Match(dir, DefaultMatchers)
	if !ok {
		return SkippedNoMatch, nil
	}
	return im.importChapterFile(gdb, filepath.Join(im.Store.BookDir(dir), fileName), book.ID, order)
}

func (im *Importer) bookDirs() ([]string, error) {
	root := im.Config.Storage.ContentDir
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInputMissing, root)
	}

	if dir := im.Config.Importer.SpecificBookDir; dir != "" {
		if info, err := os.Stat(im.Store.BookDir(dir)); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, im.Store.BookDir(dir))
		}
		return []string{dir}, nil
	}
	return im.Store.ListBookDirs()
}

func (im *Importer) loadBookIndex(ctx context.Context, gdb *gorm.DB) (*BookIndex, error) {
	books, err := im.BookMd.List(gdb)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	im.Logger.Info(ctx, "Đã tìm thấy %d sách trong database", len(books))
	return NewBookIndex(books), nil
}

func (im *Importer) importBookDir(ctx context.Context, gdb *gorm.DB, index *BookIndex, dir string) Stats {
	stats := newStats()

	files, err := im.Store.ListBookFiles(dir)
	if err != nil {
		im.Logger.Error(ctx, "Không thể đọc thư mục %s: %v", dir, err)
		stats.SkippedBooks++
		return stats
	}

	book, ok := index.Match(dir, DefaultMatchers)
	if !ok {
		im.Logger.Warn(ctx, "Không tìm thấy sách tương ứng với thư mục \"%s\", bỏ qua %d file", dir, len(files))
		for range files {
			stats.Add(SkippedNoMatch)
		}
		stats.SkippedBooks++
		return stats
	}
	im.Logger.Success(ctx, "Tìm thấy sách \"%s\" (ID: %d) cho thư mục %s", book.Title, book.ID, dir)

	chapters, summaries := SortChapterFiles(files)
	for _, name := range summaries {
		im.Logger.Warn(ctx, "Bỏ qua file giới thiệu sách: %s", name)
		stats.Add(SkippedSummary)
	}
	if len(chapters) == 0 {
		im.Logger.Warn(ctx, "Không tìm thấy file chương nào trong thư mục %s, bỏ qua sách này", dir)
		stats.SkippedBooks++
		return stats
	}

	for order, name := range chapters {
		path := filepath.Join(im.Store.BookDir(dir), name)
		outcome, err := im.importChapterFile(gdb, path, book.ID, order)
		stats.Add(outcome)

		switch outcome {
		case Inserted:
			im.Logger.Success(ctx, "[%d/%d] Đã thêm mới chương từ file %s", order+1, len(chapters), name)
		case Updated:
			im.Logger.Info(ctx, "[%d/%d] Đã cập nhật chương từ file %s", order+1, len(chapters), name)
		case SkippedMissingKey:
			im.Logger.Warn(ctx, "[%d/%d] File %s thiếu trường url, bỏ qua", order+1, len(chapters), name)
		default:
			im.Logger.Error(ctx, "[%d/%d] Lỗi khi xử lý file %s: %v", order+1, len(chapters), name, err)
		}
	}

	im.Logger.Info(ctx, "--- Kết quả xử lý sách \"%s\": thêm mới %d, cập nhật %d, lỗi %d, bỏ qua %d ---",
		book.Title, stats.Inserted, stats.Updated, stats.Failed, stats.Skipped())
	return stats
}

func (im *Importer) importChapterFile(gdb *gorm.DB, path string, bookID uint, order int) (Outcome, error) {
	return withTx(gdb, func(tx *gorm.DB) (Outcome, error) {
		record, err := im.Store.ReadChapter(path)
		if err != nil {
			return Failed, err
		}
		if strings.TrimSpace(record.URL) == "" {
			return SkippedMissingKey, nil
		}

		var next, prev *string
		if record.NextChapter != nil {
			next = model.StringPtr(*record.NextChapter)
		}
		if record.PrevChapter != nil {
			prev = model.StringPtr(*record.PrevChapter)
		}

		row := &model.Chapter{
			BookID:         bookID,
			Title:          model.TruncateString(record.Title, 500),
			URL:            record.URL,
			Content:        record.Content,
			NextChapterURL: next,
			PrevChapterURL: prev,
			ChapterOrder:   order,
		}
		created, err := im.ChapterMd.UpsertByURL(tx, row)
		if err != nil {
			return Failed, err
		}
		return upsertOutcome(created), nil
	})
}
