package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/extractor"
	"github.com/thep200/sach-crawler/internal/textnorm"
	"github.com/thep200/sach-crawler/pkg/log"
)

const (
	CategoriesFileName = "all_categories.json"
	CategoryFilePrefix = "books_"
	SummaryPrefix      = "book_"
	ChapterPrefix      = "chapter_"
	fileExt            = ".json"
)

// Store ghi và đọc các file JSON trung gian giữa crawler và importer.
// Tên file suy ra từ slug nên crawl lại sẽ ghi đè.
type Store struct {
	Config *cfg.Config
	Logger log.Logger
}

func NewStore(config *cfg.Config, logger log.Logger) (*Store, error) {
	return &Store{
		Config: config,
		Logger: logger,
	}, nil
}

func (s *Store) CategoriesPath() string {
	return filepath.Join(s.Config.Storage.CategoriesDir, CategoriesFileName)
}

func (s *Store) CategoryBooksPath(categoryName string) string {
	return filepath.Join(s.Config.Storage.DescriptionDir, CategoryFilePrefix+textnorm.Slugify(categoryName)+fileExt)
}

func (s *Store) BookDir(bookSlug string) string {
	return filepath.Join(s.Config.Storage.ContentDir, bookSlug)
}

func (s *Store) BookPath(bookSlug string) string {
	return filepath.Join(s.BookDir(bookSlug), SummaryPrefix+bookSlug+fileExt)
}

func (s *Store) ChapterPath(bookSlug, chapterTitle string) string {
	return filepath.Join(s.BookDir(bookSlug), ChapterPrefix+textnorm.Slugify(chapterTitle)+fileExt)
}

func (s *Store) SaveCategories(ctx context.Context, categories []extractor.Category) (string, error) {
	path := s.CategoriesPath()
	if err := WriteJSON(path, categories); err != nil {
		return "", err
	}
	s.Logger.Info(ctx, "Đã lưu %d thể loại vào file: %s", len(categories), path)
	return path, nil
}

func (s *Store) SaveCategoryBooks(ctx context.Context, categoryName string, books []extractor.BookStub) (string, error) {
	if textnorm.Slugify(categoryName) == "" {
		return "", fmt.Errorf("category name %q has empty slug", categoryName)
	}
	if books == nil {
		books = []extractor.BookStub{}
	}
	path := s.CategoryBooksPath(categoryName)
	if err := WriteJSON(path, books); err != nil {
		return "", err
	}
	s.Logger.Info(ctx, "Đã lưu %d sách của danh mục %s vào file: %s", len(books), categoryName, path)
	return path, nil
}

// SaveBook ghi file tóm tắt sách, trả về slug của sách (cũng là tên thư mục) và đường dẫn file
func (s *Store) SaveBook(ctx context.Context, record *extractor.BookDetailRecord) (string, string, error) {
	bookSlug := textnorm.Slugify(record.Title)
	if bookSlug == "" {
		return "", "", fmt.Errorf("book title %q has empty slug", record.Title)
	}
	path := s.BookPath(bookSlug)
	if err := WriteJSON(path, record); err != nil {
		return "", "", err
	}
	s.Logger.Info(ctx, "Đã lưu thông tin sách \"%s\" vào %s", record.Title, path)
	return bookSlug, path, nil
}

func (s *Store) SaveChapter(ctx context.Context, bookSlug string, record *extractor.ChapterRecord) (string, error) {
	if textnorm.Slugify(record.Title) == "" {
		return "", fmt.Errorf("chapter title %q has empty slug", record.Title)
	}
	path := s.ChapterPath(bookSlug, record.Title)
	if err := WriteJSON(path, record); err != nil {
		return "", err
	}
	s.Logger.Debug(ctx, "Đã lưu nội dung chương \"%s\" vào %s", record.Title, path)
	return path, nil
}

func (s *Store) ReadCategories() ([]extractor.Category, error) {
	var categories []extractor.Category
	if err := ReadJSON(s.CategoriesPath(), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListCategoryFiles trả về các file books_*.json (thực ra là mọi *.json trừ all_categories.json)
// trong thư mục description, sắp theo tên
func (s *Store) ListCategoryFiles() ([]string, error) {
	entries, err := os.ReadDir(s.Config.Storage.DescriptionDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) || name == CategoriesFileName {
			continue
		}
		files = append(files, filepath.Join(s.Config.Storage.DescriptionDir, name))
	}
	sort.Strings(files)
	return files, nil
}

func (s *Store) ReadCategoryBooks(path string, v interface{}) error {
	return ReadJSON(path, v)
}

// ListBookDirs trả về tên các thư mục sách trong content dir, sắp theo tên
func (s *Store) ListBookDirs() ([]string, error) {
	entries, err := os.ReadDir(s.Config.Storage.ContentDir)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ListBookFiles trả về tên (không kèm thư mục) của mọi file *.json trong thư mục sách
func (s *Store) ListBookFiles(bookDir string) ([]string, error) {
	entries, err := os.ReadDir(s.BookDir(bookDir))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), fileExt) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

func (s *Store) ReadChapter(path string) (*extractor.ChapterRecord, error) {
	record := &extractor.ChapterRecord{}
	if err := ReadJSON(path, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Store) ReadBook(path string) (*extractor.BookDetailRecord, error) {
	record := &extractor.BookDetailRecord{}
	if err := ReadJSON(path, record); err != nil {
		return nil, err
	}
	return record, nil
}

// IsSummaryFile cho biết file có phải file tóm tắt sách (không phải chương)
func IsSummaryFile(name string) bool {
	return strings.HasPrefix(name, SummaryPrefix)
}

// WriteJSON ghi v dạng JSON thụt lề vào path qua file tạm + rename,
// tạo thư mục cha nếu chưa có
func WriteJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func ReadJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
