package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Khoá message, mỗi loại snapshot một khoá
const (
	KeyCategories = "categories"
	KeyBooks      = "books"
	KeyBook       = "book"
	KeyChapter    = "chapter"
)

// SnapshotEvent báo một file snapshot vừa được ghi xuống đĩa
type SnapshotEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	BookDir   string    `json:"book_dir,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSnapshotEvent(kind, path, url string) SnapshotEvent {
	return SnapshotEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Path:      path,
		URL:       url,
		CreatedAt: time.Now(),
	}
}

func DecodeSnapshotEvent(data []byte) (SnapshotEvent, error) {
	var ev SnapshotEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode snapshot event: %w", err)
	}
	if ev.Kind == "" || ev.Path == "" {
		return ev, fmt.Errorf("decode snapshot event: missing kind or path")
	}
	return ev, nil
}
