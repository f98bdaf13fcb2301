package maintenance

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/internal/textnorm"
)

func (m *Maintainer) defaultExcerpt() string {
	if m.Config.Maintenance.DefaultExcerpt != "" {
		return m.Config.Maintenance.DefaultExcerpt
	}
	return cfg.DefaultExcerpt
}

func (m *Maintainer) minExcerptLength() int {
	if m.Config.Maintenance.MinExcerptLength > 0 {
		return m.Config.Maintenance.MinExcerptLength
	}
	return 50
}

// crawlExcerpt lấy đoạn giới thiệu đã làm sạch từ trang sách, "" nếu không lấy được
func (m *Maintainer) crawlExcerpt(ctx context.Context, bookURL string) string {
	body, err := m.Fetcher.Fetch(ctx, bookURL)
	if err != nil {
		m.Logger.Error(ctx, "Lỗi khi crawl URL %s: %v", bookURL, err)
		return ""
	}
	preview, err := m.Extractor.ParsePreview(body)
	if err != nil || preview == "" {
		return ""
	}
	excerpt, ok := textnorm.CleanExcerpt(preview)
	if !ok {
		return ""
	}
	return excerpt
}

// RefreshExcerpts sao lưu bảng books rồi crawl lại excerpt của từng sách.
// Excerpt không dài hơn MinExcerptLength ký tự được thay bằng excerpt mặc định.
func (m *Maintainer) RefreshExcerpts(ctx context.Context) (Result, error) {
	result := newResult()
	m.Logger.Info(ctx, "Bắt đầu làm mới excerpt cho toàn bộ sách")

	backup, err := m.Backup(ctx, "books")
	if err != nil {
		return result, fmt.Errorf("backup books: %w", err)
	}
	result.BackupFile = backup

	gdb, err := m.Database.Db()
	if err != nil {
		return result, fmt.Errorf("open database: %w", err)
	}
	books, err := m.BookMd.List(gdb)
	if err != nil {
		return result, fmt.Errorf("list books: %w", err)
	}
	result.Total = len(books)

	for i, book := range books {
		if ctx.Err() != nil {
			m.Logger.Warn(ctx, "Dừng làm mới excerpt: %v", ctx.Err())
			break
		}
		m.Logger.Info(ctx, "[%d/%d] Đang xử lý sách: %s", i+1, len(books), book.Title)

		excerpt := m.crawlExcerpt(ctx, book.URL)
		if utf8.RuneCountInString(excerpt) > m.minExcerptLength() {
			result.Success++
		} else {
			excerpt = m.defaultExcerpt()
			result.Default++
		}

		if err := m.BookMd.UpdateExcerpt(gdb, book.BookID, model.StringPtr(excerpt)); err != nil {
			m.Logger.Error(ctx, "Lỗi khi xử lý sách ID %d: %v", book.BookID, err)
			result.Failed++
		}

		if i < len(books)-1 {
			if err := m.Pacer.Wait(ctx, m.Config.Maintenance.DelayBetweenBook); err != nil {
				break
			}
		}
	}

	result.Log(ctx, m.Logger, "LÀM MỚI EXCERPT")
	return result, nil
}

// RefreshImages sao lưu bảng books rồi crawl lại ảnh bìa, chỉ cập nhật khi url ảnh thay đổi
func (m *Maintainer) RefreshImages(ctx context.Context) (Result, error) {
	result := newResult()
	m.Logger.Info(ctx, "Bắt đầu cập nhật ảnh bìa cho toàn bộ sách")

	backup, err := m.Backup(ctx, "books")
	if err != nil {
		return result, fmt.Errorf("backup books: %w", err)
	}
	result.BackupFile = backup

	gdb, err := m.Database.Db()
	if err != nil {
		return result, fmt.Errorf("open database: %w", err)
	}
	books, err := m.BookMd.List(gdb)
	if err != nil {
		return result, fmt.Errorf("list books: %w", err)
	}
	result.Total = len(books)

	for i, book := range books {
		if ctx.Err() != nil {
			m.Logger.Warn(ctx, "Dừng cập nhật ảnh bìa: %v", ctx.Err())
			break
		}

		image := m.crawlImage(ctx, book.URL)
		switch {
		case image == nil:
			m.Logger.Warn(ctx, "[%d/%d] Không tìm thấy ảnh cho sách: %s", i+1, len(books), book.Title)
			result.Failed++
		case model.StringValue(book.ImageURL) == *image:
			result.Unchanged++
		default:
			if err := m.BookMd.UpdateImage(gdb, book.BookID, image); err != nil {
				m.Logger.Error(ctx, "Lỗi khi xử lý sách ID %d: %v", book.BookID, err)
				result.Failed++
				break
			}
			m.Logger.Success(ctx, "[%d/%d] Đã cập nhật ảnh cho sách: %s", i+1, len(books), book.Title)
			result.Success++
		}

		if i < len(books)-1 {
			if err := m.Pacer.Wait(ctx, m.Config.Maintenance.DelayBetweenBook); err != nil {
				break
			}
		}
	}

	result.Log(ctx, m.Logger, "CẬP NHẬT ẢNH BÌA")
	return result, nil
}

func (m *Maintainer) crawlImage(ctx context.Context, bookURL string) *string {
	body, err := m.Fetcher.Fetch(ctx, bookURL)
	if err != nil {
		m.Logger.Error(ctx, "Lỗi khi crawl URL %s: %v", bookURL, err)
		return nil
	}
	image, err := m.Extractor.ParseCoverImage(body)
	if err != nil {
		return nil
	}
	return image
}
