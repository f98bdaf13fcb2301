package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/thep200/sach-crawler/internal/model"
	"gorm.io/gorm"
)

var ErrBookNotFound = errors.New("book not found")

// BookRef là thông tin tối thiểu của một sách trả về cho người dùng
type BookRef struct {
	BookID uint   `json:"book_id"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
}

type CleanupResult struct {
	Found   int       `json:"found"`
	Deleted []BookRef `json:"books"`
	Failed  []BookRef `json:"failed,omitempty"`
}

func (m *Maintainer) FindBooksWithoutChapters(ctx context.Context) ([]BookRef, error) {
	gdb, err := m.Database.Db()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	books, err := m.BookMd.WithoutChapters(gdb)
	if err != nil {
		return nil, fmt.Errorf("find books without chapters: %w", err)
	}

	refs := make([]BookRef, 0, len(books))
	for _, b := range books {
		refs = append(refs, BookRef{BookID: b.BookID, Title: b.Title, URL: b.URL})
	}
	m.Logger.Info(ctx, "Tìm thấy %d sách không có chapters", len(refs))
	return refs, nil
}

// DeleteBook xoá sách và các chương của nó trong một transaction, trả về tiêu đề sách
func (m *Maintainer) DeleteBook(ctx context.Context, bookID uint) (string, error) {
	gdb, err := m.Database.Db()
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}

	var title string
	err = gdb.Transaction(func(tx *gorm.DB) error {
		var book model.Book
		if err := tx.Select("book_id", "title").Where("book_id = ?", bookID).Take(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", ErrBookNotFound, bookID)
			}
			return err
		}
		title = book.Title
		return m.BookMd.Delete(tx, bookID)
	})
	if err != nil {
		return "", err
	}
	m.Logger.Success(ctx, "Đã xóa sách ID %d: %s", bookID, title)
	return title, nil
}

// Cleanup xoá mọi sách không có chương, mỗi sách một transaction
func (m *Maintainer) Cleanup(ctx context.Context) (CleanupResult, error) {
	result := CleanupResult{Deleted: []BookRef{}}
	books, err := m.FindBooksWithoutChapters(ctx)
	if err != nil {
		return result, err
	}
	result.Found = len(books)
	if len(books) == 0 {
		m.Logger.Info(ctx, "Không có sách nào cần xóa")
		return result, nil
	}

	for _, b := range books {
		if ctx.Err() != nil {
			break
		}
		title, err := m.DeleteBook(ctx, b.BookID)
		if err != nil {
			m.Logger.Error(ctx, "Lỗi khi xóa sách ID %d: %v", b.BookID, err)
			result.Failed = append(result.Failed, b)
			continue
		}
		if title == "" {
			title = b.Title
		}
		result.Deleted = append(result.Deleted, BookRef{BookID: b.BookID, Title: title})
	}
	m.Logger.Info(ctx, "Đã xóa %d/%d sách không có chapters", len(result.Deleted), result.Found)
	return result, nil
}
