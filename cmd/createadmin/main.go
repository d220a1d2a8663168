package main

import (
	"flag"
	"log"

	"github.com/contentgallery/internal/config"
	"github.com/contentgallery/internal/db"
	"github.com/contentgallery/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	username := flag.String("username", "admin", "管理员用户名")
	password := flag.String("password", "", "管理员密码")
	flag.Parse()

	logger, err := logging.New(cfg.LogLevel, true)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if *password == "" {
		logger.Fatal("必须通过 -password 指定密码")
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseDSN); err != nil {
		logger.Fatal("数据库初始化失败", zap.Error(err))
	}

	created, err := db.EnsureUser(db.DB, *username, *password)
	if err != nil {
		logger.Fatal("创建用户失败", zap.Error(err))
	}
	if !created {
		logger.Info("用户已存在，无需初始化", zap.String("username", *username))
		return
	}
	logger.Info("管理员用户创建成功", zap.String("username", *username))
}
