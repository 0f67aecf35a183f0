package initial

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"CareerRAG/internal/config"
	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/pkg/zlog"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	gormMu sync.RWMutex
	gormDB *gorm.DB
)

// OpenGorm 建立 MySQL 连接并迁移镜像表。
// 数据库不可达不是致命错误：服务必须在仅有内存存储的情况下照常工作，
// 之后通过 reset-db-connection / 强制重同步补上持久化。
func OpenGorm() error {
	conf := config.GetConfig()
	user := conf.MysqlConfig.User
	password := conf.MysqlConfig.Password
	host := conf.MysqlConfig.Host
	port := conf.MysqlConfig.Port
	dbName := conf.MysqlConfig.DatabaseName
	if dbName == "" {
		dbName = conf.AppName
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", user, password, host, port, dbName)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		zlog.Warn("mysql open failed, running with memory store only")
		return err
	}
	if err := db.AutoMigrate(&document.RAGDocumentRecord{}); err != nil {
		zlog.Warn("mysql automigrate failed, running with memory store only")
		return err
	}

	gormMu.Lock()
	gormDB = db
	gormMu.Unlock()
	return nil
}

// ReopenGorm 丢弃现有连接并重新建立（reset-db-connection 接口使用）
func ReopenGorm() error {
	gormMu.Lock()
	if gormDB != nil {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		gormDB = nil
	}
	gormMu.Unlock()
	return OpenGorm()
}

// DB 返回当前连接，未连接时为 nil；调用方需自行容错
func DB() *gorm.DB {
	gormMu.RLock()
	defer gormMu.RUnlock()
	return gormDB
}
