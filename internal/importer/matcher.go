package importer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/internal/snapshot"
	"github.com/thep200/sach-crawler/internal/textnorm"
)

// lastSegment trả về phần cuối của url, bỏ qua dấu "/" ở cuối
func lastSegment(rawURL string) string {
	rawURL = strings.TrimRight(rawURL, "/")
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		return rawURL[i+1:]
	}
	return rawURL
}

// BookCandidate là một sách trong DB dùng để khớp với thư mục snapshot
type BookCandidate struct {
	ID    uint
	Title string
	URL   string

	titleLower string
	slug       string
}

// SlugVariants trả về ba dạng slug từ url sách:
// "ban-ve-tu-do_john-stuart-mill.full", "ban-ve-tu-do", "ban_ve_tu_do"
func SlugVariants(rawURL string) []string {
	full := lastSegment(rawURL)
	if full == "" {
		return nil
	}
	simplified := strings.Replace(strings.SplitN(full, "_", 2)[0], ".full", "", 1)
	underscore := strings.ReplaceAll(simplified, "-", "_")

	variants := []string{full}
	for _, v := range []string{simplified, underscore} {
		if v != "" {
			variants = append(variants, v)
		}
	}
	return variants
}

// BookIndex tra cứu sách theo url, tiêu đề (chữ thường) và slug.
// Khi trùng khoá, sách đứng trước (book_id nhỏ hơn) được giữ.
type BookIndex struct {
	books   []BookCandidate
	byURL   map[string]int
	byTitle map[string]int
	bySlug  map[string]int
}

func NewBookIndex(books []model.Book) *BookIndex {
	idx := &BookIndex{
		byURL:   make(map[string]int),
		byTitle: make(map[string]int),
		bySlug:  make(map[string]int),
	}
	for _, b := range books {
		c := BookCandidate{
			ID:         b.BookID,
			Title:      b.Title,
			URL:        b.URL,
			titleLower: strings.ToLower(b.Title),
			slug:       strings.ToLower(strings.Replace(lastSegment(b.URL), ".full", "", 1)),
		}
		i := len(idx.books)
		idx.books = append(idx.books, c)

		putFirst(idx.byURL, c.URL, i)
		putFirst(idx.byTitle, c.titleLower, i)
		for _, v := range SlugVariants(c.URL) {
			putFirst(idx.bySlug, v, i)
		}
	}
	return idx
}

func putFirst(m map[string]int, key string, i int) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = i
	}
}

func (idx *BookIndex) Len() int {
	return len(idx.books)
}

func (idx *BookIndex) ByURL(rawURL string) (BookCandidate, bool) {
	i, ok := idx.byURL[rawURL]
	if !ok {
		return BookCandidate{}, false
	}
	return idx.books[i], true
}

// Matcher tìm sách cho một thư mục snapshot
type Matcher func(dir string, idx *BookIndex) (BookCandidate, bool)

// DefaultMatchers được thử lần lượt, kết quả đầu tiên được dùng
var DefaultMatchers = []Matcher{MatchSlug, MatchTitle, MatchSubstring}

// MatchSlug khớp chính xác tên thư mục với một trong ba dạng slug của url sách
func MatchSlug(dir string, idx *BookIndex) (BookCandidate, bool) {
	i, ok := idx.bySlug[dir]
	if !ok {
		return BookCandidate{}, false
	}
	return idx.books[i], true
}

// MatchTitle khớp tên thư mục (thay "_" bằng khoảng trắng) với tiêu đề sách, không phân biệt hoa thường
func MatchTitle(dir string, idx *BookIndex) (BookCandidate, bool) {
	i, ok := idx.byTitle[strings.ToLower(strings.ReplaceAll(dir, "_", " "))]
	if !ok {
		return BookCandidate{}, false
	}
	return idx.books[i], true
}

// MatchSubstring quét toàn bộ sách theo thứ tự index, lấy sách đầu tiên có tiêu đề hoặc slug
// chứa (hoặc nằm trong) tên thư mục
func MatchSubstring(dir string, idx *BookIndex) (BookCandidate, bool) {
	dirLower := strings.ToLower(dir)
	dirNorm := strings.ReplaceAll(dirLower, "_", " ")
	if dirLower == "" {
		return BookCandidate{}, false
	}

	for _, b := range idx.books {
		if b.titleLower != "" && (strings.Contains(b.titleLower, dirNorm) || strings.Contains(dirNorm, b.titleLower)) {
			return b, true
		}
		if b.slug != "" && (strings.Contains(b.slug, dirLower) || strings.Contains(dirLower, b.slug)) {
			return b, true
		}
	}
	return BookCandidate{}, false
}

// Match thử từng matcher theo thứ tự
func (idx *BookIndex) Match(dir string, matchers []Matcher) (BookCandidate, bool) {
	for _, m := range matchers {
		if b, ok := m(dir, idx); ok {
			return b, true
		}
	}
	return BookCandidate{}, false
}

// categoryIndex tra cứu thể loại theo tên, slug url và slug của tên
type categoryIndex struct {
	categories []model.Category
	byKey      map[string]uint
}

func newCategoryIndex(categories []model.Category) *categoryIndex {
	idx := &categoryIndex{
		categories: categories,
		byKey:      make(map[string]uint),
	}
	for _, c := range categories {
		urlSlug := lastSegment(c.URL)
		for _, key := range []string{c.Name, urlSlug, textnorm.Slugify(c.Name), textnorm.Slugify(urlSlug)} {
			if key == "" {
				continue
			}
			if _, ok := idx.byKey[key]; !ok {
				idx.byKey[key] = c.CategoryID
			}
		}
	}
	return idx
}

func (idx *categoryIndex) Lookup(name string) (uint, bool) {
	if name == "" {
		return 0, false
	}
	id, ok := idx.byKey[name]
	return id, ok
}

// ForFile đoán thể loại mặc định từ tên file books_<x>.json.
// Luôn trả về một category_id, cuối cùng là thể loại đầu tiên.
func (idx *categoryIndex) ForFile(fileName string) (uint, bool) {
	base := strings.Replace(strings.TrimSuffix(fileName, ".json"), snapshot.CategoryFilePrefix, "", 1)
	if id, ok := idx.byKey[base]; ok {
		return id, true
	}

	for _, c := range idx.categories {
		catName := strings.ToLower(c.Name)
		catSlug := lastSegment(c.URL)
		if catSlug != "" && (strings.Contains(base, catSlug) || strings.Contains(catSlug, base)) {
			return c.CategoryID, true
		}
		if catName != "" && (strings.Contains(base, strings.ReplaceAll(catName, " ", "_")) ||
			strings.Contains(catName, strings.ReplaceAll(base, "_", " "))) {
			return c.CategoryID, true
		}
	}
	return idx.categories[0].CategoryID, false
}

var chapterNumberRe = regexp.MustCompile(`chapter_.*?_(\d+)`)

func chapterNumber(name string) (int, bool) {
	m := chapterNumberRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func lessChapterFile(a, b string) bool {
	na, okA := chapterNumber(a)
	nb, okB := chapterNumber(b)
	switch {
	case okA && okB:
		if na != nb {
			return na < nb
		}
		return a < b
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

// SortChapterFiles tách file tóm tắt sách ra và sắp các file chương còn lại:
// file có số chương đứng trước theo số, file không có số đứng sau theo tên.
// Vị trí trong slice trả về chính là chapter_order.
func SortChapterFiles(files []string) (chapters []string, summaries []string) {
	for _, f := range files {
		if snapshot.IsSummaryFile(f) {
			summaries = append(summaries, f)
			continue
		}
		chapters = append(chapters, f)
	}
	sort.SliceStable(chapters, func(i, j int) bool {
		return lessChapterFile(chapters[i], chapters[j])
	})
	return chapters, summaries
}
