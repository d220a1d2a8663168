package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Init 初始化数据库连接并执行自动迁移。
// dsn 为空时将回退到默认值 contentgallery.db。
func Init(driver, dsn string) error {
	gdb, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open connects to sqlite or postgres depending on driver.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres:
		return gorm.Open(postgres.Open(dsn), cfg)
	case "", DriverSQLite:
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "contentgallery.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		return gorm.Open(sqlite.Open(path), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate creates the core tables.
func Migrate(gdb *gorm.DB) error {
	// 自动迁移模式，为核心模型创建表
	return gdb.AutoMigrate(
		&User{},
		&ContentType{},
		&Image{},
	)
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
