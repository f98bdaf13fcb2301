package crawler

import (
	"fmt"
	"time"

	"github.com/thep200/sach-crawler/cfg"
)

// Range là khoảng chỉ số đóng [Start, End]. End < 0 nghĩa là tới cuối.
type Range struct {
	Start int
	End   int
}

func (r Range) String() string {
	if r.End < 0 {
		return fmt.Sprintf("từ %d đến cuối", r.Start)
	}
	return fmt.Sprintf("từ %d đến %d", r.Start, r.End)
}

type FetchAll struct {
	Files        bool
	BooksPerFile bool
	Books        bool
	Chapters     bool
}

// Options cố định cho cả một lần crawl, dựng một lần từ config
type Options struct {
	FetchAll FetchAll

	FileRange        Range
	BookRangePerFile Range
	BookRange        Range
	ChapterRange     Range

	DelayBetweenChapters time.Duration
	DelayBetweenBooks    time.Duration
	DelayBetweenPages    time.Duration

	// Số trang tối đa của mỗi danh mục, <= 0 là không giới hạn
	PageLimit int
}

func NewOptions(config *cfg.Config) Options {
	c := config.Crawler
	return Options{
		FetchAll: FetchAll{
			Files:        c.FetchAll.Files,
			BooksPerFile: c.FetchAll.BooksPerFile,
			Books:        c.FetchAll.Books,
			Chapters:     c.FetchAll.Chapters,
		},
		FileRange:            Range(c.FileRange),
		BookRangePerFile:     Range(c.BookRangePerFile),
		BookRange:            Range(c.BookRange),
		ChapterRange:         Range(c.ChapterRange),
		DelayBetweenChapters: c.DelayBetweenChapters,
		DelayBetweenBooks:    c.DelayBetweenBooks,
		DelayBetweenPages:    c.DelayBetweenPages,
		PageLimit:            c.PageLimit,
	}
}

// SelectRange trả về items khi all, ngược lại là items[rng.Start : rng.End+1],
// cắt gọn vào biên của slice
func SelectRange[T any](items []T, rng Range, all bool) []T {
	if all {
		return items
	}

	start := rng.Start
	if start < 0 {
		start = 0
	}
	if start > len(items) {
		start = len(items)
	}

	end := len(items)
	if rng.End >= 0 && rng.End+1 < end {
		end = rng.End + 1
	}
	if end < start {
		end = start
	}
	return items[start:end]
}

func describe(rng Range, all bool) string {
	if all {
		return "tất cả"
	}
	return rng.String()
}
