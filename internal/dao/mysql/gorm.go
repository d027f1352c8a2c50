// Package mysql 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"
	"time"

	"friend_chat_server/internal/config"
	"friend_chat_server/internal/dao/mysql/repository"
	"friend_chat_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init 初始化数据库连接并返回 Repository 聚合
//  1. 从配置构建 DSN
//  2. 打开连接（TranslateError 让唯一键冲突映射为 gorm.ErrDuplicatedKey）
//  3. 设置连接池
//  4. AutoMigrate
func Init(conf *config.MysqlConfig) (*repository.Repositories, error) {
	// 格式：user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)

	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if conf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	}
	if conf.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 不存在则建表，不会删除已有字段或数据
	if err = db.AutoMigrate(
		&model.UserInfo{},
		&model.FriendRequest{},
		&model.Friendship{},
		&model.Message{},
		&model.GroupInfo{},
		&model.GroupMember{},
		&model.GroupMessage{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	zap.L().Info("MySQL connected", zap.String("host", conf.Host), zap.String("db", conf.DatabaseName))
	return repository.NewRepositories(db), nil
}
