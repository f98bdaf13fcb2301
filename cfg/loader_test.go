package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestViperLoaderReadsYaml(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
database:
  driver: sqlite
  path: /tmp/test.db
crawler:
  fetch_all:
    chapters: true
  chapter_range: { start: 2, end: -1 }
  delay_between_chapters: 250ms
`)
	if err := os.WriteFile(filepath.Join(dir, "mode.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}

	loader, _ := NewViperLoaderFrom(dir, "mode")
	c, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if c.Database.Driver != "sqlite" || c.Database.Path != "/tmp/test.db" {
		t.Errorf("database = %+v", c.Database)
	}
	if !c.Crawler.FetchAll.Chapters || c.Crawler.FetchAll.Books {
		t.Errorf("fetch_all = %+v", c.Crawler.FetchAll)
	}
	if c.Crawler.ChapterRange != (Range{Start: 2, End: -1}) {
		t.Errorf("chapter_range = %+v", c.Crawler.ChapterRange)
	}
	if c.Crawler.DelayBetweenChapters != 250*time.Millisecond {
		t.Errorf("delay_between_chapters = %v", c.Crawler.DelayBetweenChapters)
	}
	// defaults
	if c.Crawler.DelayBetweenBooks != time.Second {
		t.Errorf("delay_between_books default = %v", c.Crawler.DelayBetweenBooks)
	}
	if c.Importer.DefaultAuthor != DefaultAuthor {
		t.Errorf("default_author = %q", c.Importer.DefaultAuthor)
	}
	if c.Crawler.ContentFormat != "structured" {
		t.Errorf("content_format default = %q", c.Crawler.ContentFormat)
	}
	if c.Site.Timeout != 30*time.Second {
		t.Errorf("site.timeout = %v", c.Site.Timeout)
	}
}

func TestViperLoaderEnvOverride(t *testing.T) {
	t.Setenv("SACH_CRAWLER_PAGE_LIMIT", "9")
	t.Setenv("SACH_DATABASE_DRIVER", "sqlite")

	loader, _ := NewViperLoaderFrom(t.TempDir(), "missing")
	c, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Crawler.PageLimit != 9 {
		t.Errorf("page_limit = %d, want 9", c.Crawler.PageLimit)
	}
	if c.Database.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", c.Database.Driver)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		ml, _ := NewMockLoader()
		c, _ := ml.Load()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "mock config is valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "mysql without host", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "missing base url", mutate: func(c *Config) { c.Site.BaseUrl = "" }, wantErr: true},
		{name: "negative start", mutate: func(c *Config) { c.Crawler.BookRange.Start = -1 }, wantErr: true},
		{name: "end before start", mutate: func(c *Config) { c.Crawler.FileRange = Range{Start: 3, End: 1} }, wantErr: true},
		{name: "open end", mutate: func(c *Config) { c.Crawler.FileRange = Range{Start: 3, End: -1} }},
		{name: "links content format", mutate: func(c *Config) { c.Crawler.ContentFormat = "links" }},
		{name: "unknown content format", mutate: func(c *Config) { c.Crawler.ContentFormat = "markdown" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := Validate(c)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
