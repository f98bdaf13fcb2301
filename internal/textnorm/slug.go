package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify chuyển chuỗi tiếng Việt thành dạng không dấu, chỉ gồm [a-z0-9] và "_".
// "Đắc Nhân Tâm" -> "dac_nhan_tam"
func Slugify(s string) string {
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		stripped = strings.ToLower(s)
	}
	stripped = strings.ReplaceAll(stripped, "đ", "d")

	slug := nonSlugRe.ReplaceAllString(stripped, "_")
	return strings.Trim(slug, "_")
}
