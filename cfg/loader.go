package cfg

import (
	"errors"
	"fmt"
)

type Loader interface {
	Load() (*Config, error)
}

func NewLoader(l Loader) (Loader, error) {
	if l == nil {
		return nil, errors.New("[ERROR][CONFIG] nil loader")
	}
	return l, nil
}

// Validate kiểm tra các giá trị bắt buộc của cấu hình
func Validate(c *Config) error {
	switch c.Database.Driver {
	case "mysql", "postgres":
		if c.Database.Host == "" || c.Database.Database == "" {
			return fmt.Errorf("[ERROR][CONFIG] database host and name are required for driver %q", c.Database.Driver)
		}
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("[ERROR][CONFIG] database path is required for sqlite")
		}
	default:
		return fmt.Errorf("[ERROR][CONFIG] unsupported database driver %q", c.Database.Driver)
	}

	if c.Site.BaseUrl == "" {
		return errors.New("[ERROR][CONFIG] site base_url is required")
	}

	for name, r := range map[string]Range{
		"file_range":          c.Crawler.FileRange,
		"book_range_per_file": c.Crawler.BookRangePerFile,
		"book_range":          c.Crawler.BookRange,
		"chapter_range":       c.Crawler.ChapterRange,
	} {
		if r.Start < 0 {
			return fmt.Errorf("[ERROR][CONFIG] %s.start must not be negative", name)
		}
		if r.End >= 0 && r.End < r.Start {
			return fmt.Errorf("[ERROR][CONFIG] %s.end must be >= start or negative", name)
		}
	}

	switch c.Crawler.ContentFormat {
	case "", "structured", "links", "images", "plain":
	default:
		return fmt.Errorf("[ERROR][CONFIG] unsupported crawler.content_format %q", c.Crawler.ContentFormat)
	}
	return nil
}
