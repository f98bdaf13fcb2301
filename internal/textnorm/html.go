package textnorm

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jaytaylor/html2text"
)

type Options struct {
	KeepParagraphs bool
	KeepLinks      bool
	KeepImages     bool
}

// Ký tự đánh dấu nằm trong vùng private use, không xuất hiện trong nội dung trang
const (
	paragraphMark = "\uE000"
	lineMark      = "\uE001"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	spaceRe      = regexp.MustCompile(`[\s\p{Zs}]+`)
	paragraphRe  = regexp.MustCompile(`\s*` + paragraphMark + `(?:\s*` + paragraphMark + `)*\s*`)
	lineRe       = regexp.MustCompile(`\s*` + lineMark + `\s*`)
	manyBreaksRe = regexp.MustCompile(`\n{3,}`)
)

// CleanHTML chuyển một đoạn HTML thành văn bản thuần.
// Với KeepParagraphs, các khối p, div, h1..h6, li cách nhau bởi một dòng trống và br thành xuống dòng;
// ngược lại toàn bộ văn bản nằm trên một dòng.
func CleanHTML(markup string, opts Options) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return stripTags(markup)
	}

	doc.Find("script, style").Remove()

	if opts.KeepLinks {
		doc.Find("a").Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok && href != "" {
				s.AppendHtml(html.EscapeString(" [" + href + "]"))
			}
		})
	}

	if opts.KeepImages {
		doc.Find("img").Each(func(_ int, s *goquery.Selection) {
			alt := s.AttrOr("alt", "")
			if alt == "" {
				alt = "image"
			}
			s.ReplaceWithHtml(html.EscapeString("[" + alt + ": " + s.AttrOr("src", "") + "]"))
		})
	} else {
		doc.Find("img").Remove()
	}

	doc.Find("br").ReplaceWithHtml(lineMark)

	// Ở chế độ một dòng dấu đoạn thành khoảng trắng để chữ của hai khối liền nhau không dính vào nhau
	doc.Find("p, div, h1, h2, h3, h4, h5, h6, li").AppendHtml(paragraphMark)

	return collapse(doc.Text(), opts.KeepParagraphs)
}

func collapse(text string, keepParagraphs bool) string {
	text = spaceRe.ReplaceAllString(text, " ")
	if !keepParagraphs {
		text = strings.ReplaceAll(text, lineMark, " ")
		text = strings.ReplaceAll(text, paragraphMark, " ")
		return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	}

	text = lineRe.ReplaceAllString(text, "\n")
	text = paragraphRe.ReplaceAllString(text, "\n\n")
	text = manyBreaksRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func stripTags(markup string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(markup, ""))
}

// Format là cách render nội dung chương
type Format string

const (
	FormatStructured Format = "structured"
	FormatLinks      Format = "links"
	FormatImages     Format = "images"
	FormatPlain      Format = "plain"
)

// Render chuyển markup thành văn bản theo format, format rỗng hoặc lạ dùng structured
func Render(markup string, format Format) string {
	switch format {
	case FormatLinks:
		return ExtractTextWithLinks(markup)
	case FormatImages:
		return ExtractTextWithImages(markup)
	case FormatPlain:
		return ExtractText(markup)
	default:
		return ExtractStructuredText(markup)
	}
}

// ExtractText trả về văn bản trên một dòng
func ExtractText(markup string) string {
	return CleanHTML(markup, Options{})
}

// ExtractStructuredText giữ lại ranh giới đoạn văn, dùng cho nội dung chương
func ExtractStructuredText(markup string) string {
	return CleanHTML(markup, Options{KeepParagraphs: true})
}

// ExtractTextWithImages giữ đoạn văn và thay ảnh bằng "[alt: src]"
func ExtractTextWithImages(markup string) string {
	return CleanHTML(markup, Options{KeepParagraphs: true, KeepImages: true})
}

// ExtractTextWithLinks render HTML bằng html2text, link được giữ dạng "text ( href )"
func ExtractTextWithLinks(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	text, err := html2text.FromString(markup, html2text.Options{OmitLinks: false})
	if err != nil {
		return CleanHTML(markup, Options{KeepParagraphs: true, KeepLinks: true})
	}
	return manyBreaksRe.ReplaceAllString(strings.TrimSpace(text), "\n\n")
}
