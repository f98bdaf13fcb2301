package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const minExcerptRunes = 20

var (
	ratingPrefixRe = regexp.MustCompile(`^\s*\d+/\d+\s+`)
	watermarkRes   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ebook miễn phí tại[\s\S]*?sachvui\.com`),
		regexp.MustCompile(`(?i)www\.sachvui\.com`),
		regexp.MustCompile(`(?i)sachvui\.com`),
	}
	headingRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*LỜI NÓI ĐẦU[^a-zA-Z0-9\x{00C0}-\x{1EF9}]*`),
		regexp.MustCompile(`(?i)^\s*LỜI MỞ ĐẦU[^a-zA-Z0-9\x{00C0}-\x{1EF9}]*`),
		regexp.MustCompile(`(?i)^\s*GIỚI THIỆU[^a-zA-Z0-9\x{00C0}-\x{1EF9}]*`),
		regexp.MustCompile(`(?i)^\s*NỘI DUNG[^a-zA-Z0-9\x{00C0}-\x{1EF9}]*`),
	}
	urlRes = []*regexp.Regexp{
		regexp.MustCompile(`https?://\S+`),
		regexp.MustCompile(`www\.\S+`),
	}
)

// CleanExcerpt làm sạch đoạn giới thiệu sách lấy từ trang chi tiết.
// ok = false khi phần còn lại quá ngắn để dùng.
func CleanExcerpt(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	cleaned := ratingPrefixRe.ReplaceAllString(text, "")
	for _, re := range watermarkRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	for _, re := range headingRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	for _, re := range urlRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(spaceRe.ReplaceAllString(cleaned, " "))

	if utf8.RuneCountInString(cleaned) < minExcerptRunes {
		return "", false
	}

	first, size := utf8.DecodeRuneInString(cleaned)
	return string(unicode.ToUpper(first)) + cleaned[size:], true
}
