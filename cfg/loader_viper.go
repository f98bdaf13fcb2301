package cfg

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ViperLoader struct {
	v          *viper.Viper
	configPath string
	configName string
}

func NewViperLoader() (*ViperLoader, error) {
	return NewViperLoaderFrom("cfg/yaml", "mode")
}

func NewViperLoaderFrom(configPath, configName string) (*ViperLoader, error) {
	return &ViperLoader{
		v:          viper.New(),
		configPath: configPath,
		configName: configName,
	}, nil
}

// Load đọc file cấu hình một lần. Cấu hình không thay đổi trong suốt một lần chạy.
func (vl *ViperLoader) Load() (*Config, error) {
	vl.setDefaults()

	vl.v.AddConfigPath(vl.configPath)
	vl.v.SetConfigName(vl.configName)
	vl.v.SetConfigType("yaml")
	vl.v.SetEnvPrefix("SACH")
	vl.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vl.v.AutomaticEnv()

	if err := vl.v.ReadInConfig(); err != nil {
		// Không có file thì chạy với giá trị mặc định + biến môi trường
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("[ERROR][CONFIG] failed to read config file: %w", err)
		}
	}

	// Unmarshal into the config
	cfg := &Config{}
	if err := vl.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (vl *ViperLoader) setDefaults() {
	v := vl.v
	v.SetDefault("app.name", "sach-crawler")
	v.SetDefault("app.version", "0.0.1")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "root")
	v.SetDefault("database.database", "book_brain")
	v.SetDefault("database.path", "./gacsach_data/book_brain.db")
	v.SetDefault("database.max_idle_connection", 10)
	v.SetDefault("database.max_open_connection", 20)
	v.SetDefault("database.max_life_time_connection", 3600)

	v.SetDefault("site.base_url", "https://gacsach.top")
	v.SetDefault("site.user_agent", DefaultUserAgent)
	v.SetDefault("site.accept_language", "vi-VN,vi;q=0.9")
	v.SetDefault("site.timeout", "30s")

	v.SetDefault("storage.categories_dir", "./gacsach_data/categories")
	v.SetDefault("storage.description_dir", "./gacsach_data/description")
	v.SetDefault("storage.content_dir", "./gacsach_data/book_content")
	v.SetDefault("storage.backup_dir", "./gacsach_data/db_backup")
	v.SetDefault("storage.report_dir", "./gacsach_data/reports")

	v.SetDefault("crawler.fetch_all.files", false)
	v.SetDefault("crawler.fetch_all.books_per_file", false)
	v.SetDefault("crawler.fetch_all.books", false)
	v.SetDefault("crawler.fetch_all.chapters", false)
	v.SetDefault("crawler.file_range.start", 0)
	v.SetDefault("crawler.file_range.end", 1)
	v.SetDefault("crawler.book_range_per_file.start", 0)
	v.SetDefault("crawler.book_range_per_file.end", 2)
	v.SetDefault("crawler.book_range.start", 0)
	v.SetDefault("crawler.book_range.end", 4)
	v.SetDefault("crawler.chapter_range.start", 0)
	v.SetDefault("crawler.chapter_range.end", 10)
	v.SetDefault("crawler.delay_between_chapters", "1s")
	v.SetDefault("crawler.delay_between_books", "1s")
	v.SetDefault("crawler.delay_between_pages", "2s")
	v.SetDefault("crawler.page_limit", 5)
	v.SetDefault("crawler.publish_events", false)
	v.SetDefault("crawler.content_format", "structured")

	v.SetDefault("importer.default_author", DefaultAuthor)

	v.SetDefault("maintenance.default_excerpt", DefaultExcerpt)
	v.SetDefault("maintenance.min_excerpt_length", 50)
	v.SetDefault("maintenance.delay_between_book", "1500ms")
	v.SetDefault("maintenance.image_check_delay", "200ms")

	v.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})
	v.SetDefault("kafka.topic", "sach-snapshots")
	v.SetDefault("kafka.group_id", "snapshot-importer")

	v.SetDefault("admin.port", 3000)
}
