package model

import "unicode/utf8"

// TruncateString cắt chuỗi xuống tối đa maxLength ký tự (rune),
// không cắt giữa một ký tự UTF-8
func TruncateString(s string, maxLength int) string {
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLength])
}

// StringPtr trả về nil cho chuỗi rỗng
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue đọc giá trị của con trỏ chuỗi, nil thành ""
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
