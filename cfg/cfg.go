package cfg

import "time"

type (
	App struct {
		Name    string
		Version string
	}

	Database struct {
		// mysql | postgres | sqlite
		Driver                string
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		Path                  string
		MaxIdleConnection     int `mapstructure:"max_idle_connection"`
		MaxOpenConnection     int `mapstructure:"max_open_connection"`
		MaxLifeTimeConnection int `mapstructure:"max_life_time_connection"`
	}

	Site struct {
		BaseUrl        string        `mapstructure:"base_url"`
		UserAgent      string        `mapstructure:"user_agent"`
		AcceptLanguage string        `mapstructure:"accept_language"`
		Timeout        time.Duration `mapstructure:"timeout"`
	}

	Storage struct {
		CategoriesDir  string `mapstructure:"categories_dir"`
		DescriptionDir string `mapstructure:"description_dir"`
		ContentDir     string `mapstructure:"content_dir"`
		BackupDir      string `mapstructure:"backup_dir"`
		ReportDir      string `mapstructure:"report_dir"`
	}

	Range struct {
		Start int
		End   int
	}

	FetchAll struct {
		Files        bool
		BooksPerFile bool `mapstructure:"books_per_file"`
		Books        bool
		Chapters     bool
	}

	Crawler struct {
		FetchAll             FetchAll      `mapstructure:"fetch_all"`
		FileRange            Range         `mapstructure:"file_range"`
		BookRangePerFile     Range         `mapstructure:"book_range_per_file"`
		BookRange            Range         `mapstructure:"book_range"`
		ChapterRange         Range         `mapstructure:"chapter_range"`
		DelayBetweenChapters time.Duration `mapstructure:"delay_between_chapters"`
		DelayBetweenBooks    time.Duration `mapstructure:"delay_between_books"`
		DelayBetweenPages    time.Duration `mapstructure:"delay_between_pages"`
		PageLimit            int           `mapstructure:"page_limit"`
		PublishEvents        bool          `mapstructure:"publish_events"`
		// structured | links | images | plain
		ContentFormat string `mapstructure:"content_format"`
	}

	Importer struct {
		SpecificFile    string `mapstructure:"specific_file"`
		SpecificBookDir string `mapstructure:"specific_book_dir"`
		DefaultAuthor   string `mapstructure:"default_author"`
	}

	Maintenance struct {
		DefaultExcerpt   string        `mapstructure:"default_excerpt"`
		MinExcerptLength int           `mapstructure:"min_excerpt_length"`
		DelayBetweenBook time.Duration `mapstructure:"delay_between_book"`
		ImageCheckDelay  time.Duration `mapstructure:"image_check_delay"`
	}

	Kafka struct {
		Brokers []string
		Topic   string
		GroupID string `mapstructure:"group_id"`
	}

	Admin struct {
		Port int
	}
)

type Config struct {
	App         App
	Database    Database
	Site        Site
	Storage     Storage
	Crawler     Crawler
	Importer    Importer
	Maintenance Maintenance
	Kafka       Kafka
	Admin       Admin
}
