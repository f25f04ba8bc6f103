package initial

import (
	"log"
	"os"
	"time"

	"TutorHub/internal/config"
	adminEntity "TutorHub/internal/modules/admin/domain/entity"
	agentEntity "TutorHub/internal/modules/agent/domain/entity"
	cardEntity "TutorHub/internal/modules/card/domain/entity"
	chatEntity "TutorHub/internal/modules/chat/domain/entity"
	userEntity "TutorHub/internal/modules/user/domain/entity"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewGormDB 打开 mysql 连接
func NewGormDB(cfg config.MysqlConfig) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{Logger: gormLogger})
}

// AutoMigrate 没有建表时自动创建对应的表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userEntity.UserInfo{},
		&adminEntity.City{},
		&adminEntity.Department{},
		&adminEntity.ModelConfig{},
		&agentEntity.Agent{},
		&cardEntity.WebCard{},
		&cardEntity.FeishuCard{},
		&chatEntity.ChatHistory{},
	)
}
