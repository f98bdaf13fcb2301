package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/thep200/sach-crawler/internal/textnorm"
)

// Selector của giao diện gacsach
const (
	categoryLinkSelector = "li.expanded > ul.menu > li.leaf > a"

	bookRowSelector     = ".views-row"
	rowTitleSelector    = ".tvtitle a"
	rowImageSelector    = ".tvimg img"
	rowAuthorSelector   = ".tvauthor a"
	rowExcerptSelector  = ".tvbody"
	rowDetailSelector   = ".tvdetail"
	rowRatingSelector   = ".tvvote .clearfix"
	nextPagerSelector   = ".pager-next"
	pageTitleSelector   = ".page-title"
	authorSelector      = ".field-name-field-author .field-item a"
	bookCategorySelect  = ".field-name-field-mucsach .field-item a"
	statusSelector      = ".field-name-field-status .field-item"
	coverImageSelector  = ".field-name-field-image img"
	bodySelector        = ".field-name-body .field-item"
	previewSelector     = ".field-name-body .field-item.even"
	ratingSelector      = ".fivestar-summary-average-count .average-rating span"
	votesSelector       = ".fivestar-summary-average-count .total-votes span"
	viewsSelector       = ".ovnmeta .count"
	bookNavSelector     = `div[id^="book-navigation-"]`
	nextChapterSelector = ".page-links a.page-next"
	prevChapterSelector = ".page-links a.page-previous"

	StatusFull    = "Full"
	StatusOngoing = "Đang ra"
)

var (
	viewsRe       = regexp.MustCompile(`(\d[\d.,]+)\s+views`)
	optionTitleRe = regexp.MustCompile(`^-+\s*`)
)

type Extractor struct {
	base   *url.URL
	format textnorm.Format
}

type Option func(*Extractor)

// WithContentFormat chọn cách render nội dung chương
func WithContentFormat(format string) Option {
	return func(e *Extractor) {
		e.format = textnorm.Format(format)
	}
}

func NewExtractor(baseURL string, opts ...Option) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	e := &Extractor{base: base, format: textnorm.FormatStructured}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Extractor) absolute(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return e.base.ResolveReference(u).String()
}

func (e *Extractor) absolutePtr(ref string) *string {
	abs := e.absolute(ref)
	if abs == "" {
		return nil
	}
	return &abs
}

func document(markup []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Extract bóc tách markup theo loại trang. Chỉ trả lỗi khi không parse được HTML.
func (e *Extractor) Extract(markup []byte, kind Kind, pageURL string) (Record, error) {
	switch kind {
	case CategoryList:
		return e.ParseCategoryList(markup)
	case CategoryPage:
		return e.ParseCategoryPage(markup, "")
	case BookDetail:
		return e.ParseBookDetail(markup, pageURL)
	case Chapter:
		return e.ParseChapter(markup, pageURL)
	default:
		return nil, fmt.Errorf("unknown page kind %d", kind)
	}
}

func (e *Extractor) ParseCategoryList(markup []byte) (*CategoryListRecord, error) {
	doc, err := document(markup)
	if err != nil {
		return nil, err
	}

	record := &CategoryListRecord{}
	doc.Find(categoryLinkSelector).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if name == "" || href == "" {
			return
		}
		title := strings.TrimSpace(s.AttrOr("title", ""))
		if title == "" {
			title = name
		}
		record.Categories = append(record.Categories, Category{
			Name:  name,
			Title: title,
			URL:   e.absolute(href),
		})
	})
	return record, nil
}

// ParseCategoryPage đọc một trang danh mục. Dòng không có title hoặc url bị bỏ,
// nhưng vẫn được đếm vào Rows.
func (e *Extractor) ParseCategoryPage(markup []byte, category string) (*CategoryPageRecord, error) {
	doc, err := document(markup)
	if err != nil {
		return nil, err
	}

	rows := doc.Find(bookRowSelector)
	record := &CategoryPageRecord{
		Rows:    rows.Length(),
		HasNext: doc.Find(nextPagerSelector).Length() > 0,
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		link := row.Find(rowTitleSelector).First()
		title := strings.TrimSpace(link.Text())
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if title == "" || href == "" {
			return
		}

		detail := row.Find(rowDetailSelector).Text()
		views := "0"
		if m := viewsRe.FindStringSubmatch(detail); m != nil {
			views = m[1]
		}
		status := StatusOngoing
		if strings.Contains(detail, "Full") {
			status = StatusFull
		}

		record.Books = append(record.Books, BookStub{
			Title:    title,
			URL:      e.absolute(href),
			Image:    e.absolutePtr(row.Find(rowImageSelector).First().AttrOr("src", "")),
			Author:   strings.TrimSpace(row.Find(rowAuthorSelector).Text()),
			Excerpt:  strings.TrimSpace(row.Find(rowExcerptSelector).Text()),
			Views:    views,
			Status:   status,
			Rating:   strings.TrimSpace(row.Find(rowRatingSelector).Text()),
			Category: category,
		})
	})
	return record, nil
}

func (e *Extractor) ParseBookDetail(markup []byte, pageURL string) (*BookDetailRecord, error) {
	doc, err := document(markup)
	if err != nil {
		return nil, err
	}

	record := &BookDetailRecord{
		Title:       strings.TrimSpace(doc.Find(pageTitleSelector).First().Text()),
		URL:         e.absolute(pageURL),
		Author:      strings.TrimSpace(doc.Find(authorSelector).Text()),
		Category:    strings.TrimSpace(doc.Find(bookCategorySelect).Text()),
		Status:      strings.TrimSpace(doc.Find(statusSelector).Text()),
		CoverImage:  e.absolutePtr(doc.Find(coverImageSelector).First().AttrOr("src", "")),
		Description: strings.TrimSpace(doc.Find(bodySelector).Text()),
		Rating:      strings.TrimSpace(doc.Find(ratingSelector).Text()),
		Votes:       strings.TrimSpace(doc.Find(votesSelector).Text()),
		Views:       strings.TrimSpace(strings.Replace(doc.Find(viewsSelector).Text(), "lần xem", "", 1)),
	}
	record.Chapters = e.chapterLinks(doc)
	record.TotalChapters = len(record.Chapters)
	return record, nil
}

// chapterLinks lấy mục lục từ menu book-navigation, không có thì thử dropdown
// với value dạng "<id>::<url>" (bỏ hai option đầu).
func (e *Extractor) chapterLinks(doc *goquery.Document) []ChapterLink {
	nav := doc.Find(bookNavSelector).First()
	if nav.Length() == 0 {
		return []ChapterLink{}
	}

	chapters := []ChapterLink{}
	nav.Find(".menu li a").Each(func(i int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		chapters = append(chapters, ChapterLink{
			Title: strings.TrimSpace(s.Text()),
			URL:   e.absolute(href),
			Index: i + 1,
		})
	})
	if len(chapters) > 0 {
		return chapters
	}

	nav.Find("select option").Each(func(i int, s *goquery.Selection) {
		value := s.AttrOr("value", "")
		if i <= 1 || value == "" {
			return
		}
		parts := strings.Split(value, "::")
		if len(parts) != 2 {
			return
		}
		chapters = append(chapters, ChapterLink{
			Title: optionTitleRe.ReplaceAllString(strings.TrimSpace(s.Text()), ""),
			URL:   e.absolute(parts[1]),
			Index: i - 1,
		})
	})
	return chapters
}

func (e *Extractor) ParseChapter(markup []byte, pageURL string) (*ChapterRecord, error) {
	doc, err := document(markup)
	if err != nil {
		return nil, err
	}

	body, _ := doc.Find(bodySelector).First().Html()
	record := &ChapterRecord{
		Title:       strings.TrimSpace(doc.Find(pageTitleSelector).First().Text()),
		URL:         e.absolute(pageURL),
		Content:     textnorm.Render(body, e.format),
		NextChapter: e.absolutePtr(doc.Find(nextChapterSelector).First().AttrOr("href", "")),
		PrevChapter: e.absolutePtr(doc.Find(prevChapterSelector).First().AttrOr("href", "")),
	}
	return record, nil
}

// ParsePreview lấy đoạn giới thiệu thô của sách: các thẻ p nối bằng dòng trống,
// không có p thì lấy toàn bộ text.
func (e *Extractor) ParsePreview(markup []byte) (string, error) {
	doc, err := document(markup)
	if err != nil {
		return "", err
	}

	preview := doc.Find(previewSelector).First()
	var parts []string
	preview.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return strings.TrimSpace(preview.Text()), nil
	}
	return strings.Join(parts, "\n\n"), nil
}

// ParseCoverImage trả về url ảnh bìa tuyệt đối, nil nếu trang không có
func (e *Extractor) ParseCoverImage(markup []byte) (*string, error) {
	doc, err := document(markup)
	if err != nil {
		return nil, err
	}
	return e.absolutePtr(doc.Find(coverImageSelector).First().AttrOr("src", "")), nil
}
