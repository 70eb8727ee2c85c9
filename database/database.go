package database

import (
	"fmt"
	"log"

	"budget/config"
	"budget/models"
	"budget/repository"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN 构建 MySQL DSN 连接字符串
func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
	)
}

// Open 连接 MySQL 并完成迁移
func Open(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Info
	if cfg.Server.Mode == "release" {
		level = logger.Warn
	}

	db, err := gorm.Open(mysql.Open(DSN(&cfg.Database)), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("数据库初始化成功")
	return db, nil
}

// Migrate 自动迁移数据库表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Household{},
		&models.HouseholdMember{},
		&models.HouseholdInvitation{},
		&models.Category{},
		&models.BankAccount{},
		&models.Transaction{},
	); err != nil {
		return fmt.Errorf("迁移数据库失败: %w", err)
	}
	return nil
}

// NewStore 按 database.driver 创建存储，返回的 close 用于关闭连接
func NewStore(cfg *config.Config) (repository.Store, func() error, error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Println("使用内存存储，数据不会持久化")
		return repository.NewMemoryStore(), func() error { return nil }, nil
	case "", "mysql":
		db, err := Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return repository.NewGormStore(db), sqlDB.Close, nil
	}
	return nil, nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
}
