package extractor

type Kind int

const (
	CategoryList Kind = iota
	CategoryPage
	BookDetail
	Chapter
)

func (k Kind) String() string {
	switch k {
	case CategoryList:
		return "category_list"
	case CategoryPage:
		return "category_page"
	case BookDetail:
		return "book_detail"
	case Chapter:
		return "chapter"
	default:
		return "unknown"
	}
}

// Record là kết quả bóc tách một trang. Record thiếu trường bắt buộc có Valid() == false,
// bên gọi tự bỏ qua.
type Record interface {
	Kind() Kind
	Valid() bool
}

type Category struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type CategoryListRecord struct {
	Categories []Category
}

func (r *CategoryListRecord) Kind() Kind  { return CategoryList }
func (r *CategoryListRecord) Valid() bool { return len(r.Categories) > 0 }

// BookStub là một dòng sách trong trang danh mục
type BookStub struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Image    *string `json:"image"`
	Author   string  `json:"author"`
	Excerpt  string  `json:"excerpt"`
	Views    string  `json:"views"`
	Status   string  `json:"status"`
	Rating   string  `json:"rating"`
	Category string  `json:"category"`
}

type CategoryPageRecord struct {
	Books   []BookStub
	Rows    int
	HasNext bool
}

func (r *CategoryPageRecord) Kind() Kind  { return CategoryPage }
func (r *CategoryPageRecord) Valid() bool { return r.Rows > 0 }

type ChapterLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Index int    `json:"index"`
}

// BookDetailRecord cũng là nội dung file book_<slug>.json
type BookDetailRecord struct {
	Title         string        `json:"title"`
	URL           string        `json:"url"`
	Author        string        `json:"author"`
	Category      string        `json:"category"`
	Status        string        `json:"status"`
	CoverImage    *string       `json:"coverImage"`
	Description   string        `json:"description"`
	Rating        string        `json:"rating"`
	Votes         string        `json:"votes"`
	Views         string        `json:"views"`
	TotalChapters int           `json:"totalChapters"`
	Chapters      []ChapterLink `json:"chapters"`
}

func (r *BookDetailRecord) Kind() Kind  { return BookDetail }
func (r *BookDetailRecord) Valid() bool { return r.Title != "" }

// ChapterRecord cũng là nội dung file chapter_<slug>.json
type ChapterRecord struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Content     string  `json:"content"`
	NextChapter *string `json:"nextChapter"`
	PrevChapter *string `json:"prevChapter"`
}

func (r *ChapterRecord) Kind() Kind  { return Chapter }
func (r *ChapterRecord) Valid() bool { return r.Title != "" && r.URL != "" }
