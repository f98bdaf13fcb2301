package model

import "strings"

type BookStatus string

const (
	StatusFull     BookStatus = "Full"
	StatusUpdating BookStatus = "Updating"
	StatusPending  BookStatus = "Pending"
)

// NormalizeStatus đưa trạng thái dạng tự do về một trong ba giá trị Full, Updating, Pending.
// Chỉ nhận diện token "full" và "updating", còn lại là Pending.
func NormalizeStatus(status string) BookStatus {
	s := strings.ToLower(strings.TrimSpace(status))
	switch {
	case s == "":
		return StatusPending
	case strings.Contains(s, "full"):
		return StatusFull
	case strings.Contains(s, "updating"):
		return StatusUpdating
	default:
		return StatusPending
	}
}

func (s BookStatus) Valid() bool {
	return s == StatusFull || s == StatusUpdating || s == StatusPending
}
