package cfg

import "time"

type MockLoader struct {
	// Nếu được set, MockLoader dùng thư mục này làm gốc cho dữ liệu
	DataDir string
}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{DataDir: "./gacsach_data"}, nil
}

func (ml *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "sach-crawler",
			Version: "0.0.1",
		},

		// Database
		Database: Database{
			Driver:                "sqlite",
			Path:                  ml.DataDir + "/book_brain.db",
			MaxIdleConnection:     1,
			MaxOpenConnection:     1,
			MaxLifeTimeConnection: 3600,
		},

		// Site
		Site: Site{
			BaseUrl:        "https://gacsach.top",
			UserAgent:      DefaultUserAgent,
			AcceptLanguage: "vi-VN,vi;q=0.9",
			Timeout:        30 * time.Second,
		},

		// Storage
		Storage: Storage{
			CategoriesDir:  ml.DataDir + "/categories",
			DescriptionDir: ml.DataDir + "/description",
			ContentDir:     ml.DataDir + "/book_content",
			BackupDir:      ml.DataDir + "/db_backup",
			ReportDir:      ml.DataDir + "/reports",
		},

		// Crawler
		Crawler: Crawler{
			FetchAll:             FetchAll{},
			FileRange:            Range{Start: 0, End: 1},
			BookRangePerFile:     Range{Start: 0, End: 2},
			BookRange:            Range{Start: 0, End: 4},
			ChapterRange:         Range{Start: 0, End: 10},
			DelayBetweenChapters: time.Second,
			DelayBetweenBooks:    time.Second,
			DelayBetweenPages:    2 * time.Second,
			PageLimit:            5,
			ContentFormat:        "structured",
		},

		// Importer
		Importer: Importer{
			DefaultAuthor: DefaultAuthor,
		},

		// Maintenance
		Maintenance: Maintenance{
			DefaultExcerpt:   DefaultExcerpt,
			MinExcerptLength: 50,
			DelayBetweenBook: 1500 * time.Millisecond,
			ImageCheckDelay:  200 * time.Millisecond,
		},

		// Kafka
		Kafka: Kafka{
			Brokers: []string{"127.0.0.1:9092"},
			Topic:   "sach-snapshots",
			GroupID: "snapshot-importer",
		},

		// Admin
		Admin: Admin{
			Port: 3000,
		},
	}, nil
}
