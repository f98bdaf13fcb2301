package db

import (
	"database/sql"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
	"sync"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/thep200/sach-crawler/cfg"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database giữ pool kết nối cho một lần chạy. Được tạo tường minh và truyền xuống,
// mở lười ở lần gọi Db() đầu tiên và đóng bằng Close().
type Database struct {
	Config  *cfg.Config
	once    sync.Once
	db      *gorm.DB
	initErr error
}

func NewDatabase(config *cfg.Config) (*Database, error) {
	return &Database{
		Config: config,
	}, nil
}

// newGormLogger chỉ in cảnh báo và lỗi. ErrRecordNotFound là kết quả bình thường
// của các bước tìm trước khi thêm nên không được log.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  true,
	})
}

func (d *Database) DSN() string {
	c := d.Config.Database
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.Host, c.Port, c.Username, c.Password, c.Database)
	case "sqlite":
		return c.Path
	default:
		config := mysqlDriver.Config{
			User:                 c.Username,
			Passwd:               c.Password,
			DBName:               c.Database,
			Addr:                 c.Host + ":" + c.Port,
			Net:                  "tcp",
			ParseTime:            true,
			AllowNativePasswords: true,
			Params:               map[string]string{"charset": "utf8mb4"},
		}
		return config.FormatDSN()
	}
}

func (d *Database) dialector() (gorm.Dialector, error) {
	switch d.Config.Database.Driver {
	case "mysql", "":
		return mysql.Open(d.DSN()), nil
	case "postgres":
		return postgres.Open(d.DSN()), nil
	case "sqlite":
		if dir := filepath.Dir(d.Config.Database.Path); dir != "" && d.Config.Database.Path != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("ensure sqlite dir: %w", err)
			}
		}
		return sqlite.Open(d.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", d.Config.Database.Driver)
	}
}

func (d *Database) Db() (*gorm.DB, error) {
	d.once.Do(func() {
		dialector, err := d.dialector()
		if err != nil {
			d.initErr = err
			return
		}

		// Open connection
		var gdb *gorm.DB
		gdb, d.initErr = gorm.Open(dialector, &gorm.Config{
			Logger: newGormLogger(stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags)),
		})
		if d.initErr != nil {
			return
		}

		// Get sqlDB
		var sqlDB *sql.DB
		sqlDB, d.initErr = gdb.DB()
		if d.initErr != nil {
			return
		}

		// Setting connection pool
		sqlDB.SetMaxIdleConns(d.Config.Database.MaxIdleConnection)
		sqlDB.SetMaxOpenConns(d.Config.Database.MaxOpenConnection)
		sqlDB.SetConnMaxLifetime(time.Duration(d.Config.Database.MaxLifeTimeConnection) * time.Second)

		d.db = gdb
	})
	return d.db, d.initErr
}

// Ping kiểm tra kết nối tới database
func (d *Database) Ping() error {
	gdb, err := d.Db()
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	if d.db != nil {
		sqlDB, err := d.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func (d *Database) Migrate(models ...interface{}) error {
	gdb, err := d.Db()
	if err != nil {
		return err
	}
	return gdb.AutoMigrate(models...)
}
