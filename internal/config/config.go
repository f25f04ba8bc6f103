package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const DefaultPath = "configs/config_local.toml"

type MainConfig struct {
	AppName string `toml:"appName" env:"TUTORHUB_APP_NAME"`
	Host    string `toml:"host" env:"TUTORHUB_HOST"`
	Port    int    `toml:"port" env:"TUTORHUB_PORT"`
}

type MysqlConfig struct {
	Host         string `toml:"host" env:"TUTORHUB_MYSQL_HOST"`
	Port         int    `toml:"port" env:"TUTORHUB_MYSQL_PORT"`
	User         string `toml:"user" env:"TUTORHUB_MYSQL_USER"`
	Password     string `toml:"password" env:"TUTORHUB_MYSQL_PASSWORD"`
	DatabaseName string `toml:"databaseName" env:"TUTORHUB_MYSQL_DATABASE"`
}

func (m MysqlConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.User, m.Password, m.Host, m.Port, m.DatabaseName)
}

type LogConfig struct {
	LogPath    string `toml:"logPath" env:"TUTORHUB_LOG_PATH"`
	Level      string `toml:"level" env:"TUTORHUB_LOG_LEVEL"`
	MaxSizeMB  int    `toml:"maxSizeMB"`
	MaxBackups int    `toml:"maxBackups"`
	MaxAgeDays int    `toml:"maxAgeDays"`
}

type JwtConfig struct {
	Key         string `toml:"key" env:"TUTORHUB_JWT_KEY"`
	ExpireHours int    `toml:"expireHours" env:"TUTORHUB_JWT_EXPIRE_HOURS"`
	Issuer      string `toml:"issuer"`
}

type AuthConfig struct {
	InvitationCode string `toml:"invitationCode" env:"TUTORHUB_INVITATION_CODE"`
}

type ChatConfig struct {
	TimeoutSeconds     int     `toml:"timeoutSeconds" env:"TUTORHUB_CHAT_TIMEOUT_SECONDS"`
	VendorHistoryLimit int     `toml:"vendorHistoryLimit"`
	DefaultMaxTokens   int     `toml:"defaultMaxTokens"`
	DefaultTemperature float64 `toml:"defaultTemperature"`
}

type FeishuConfig struct {
	BaseURL                   string `toml:"baseURL" env:"TUTORHUB_FEISHU_BASE_URL"`
	TokenRefreshMarginSeconds int    `toml:"tokenRefreshMarginSeconds"`
	TimeoutSeconds            int    `toml:"timeoutSeconds"`
}

type KafkaConfig struct {
	Brokers        []string `toml:"brokers" env:"TUTORHUB_KAFKA_BROKERS" envSeparator:","`
	ClientID       string   `toml:"clientID"`
	ChatEventTopic string   `toml:"chatEventTopic" env:"TUTORHUB_KAFKA_CHAT_TOPIC"`

	// PublishTimeoutMs 请求路径上等待 broker 确认的上限
	PublishTimeoutMs int `toml:"publishTimeoutMs"`
}

type SecureConfig struct {
	SSLRedirect bool   `toml:"sslRedirect" env:"TUTORHUB_SSL_REDIRECT"`
	SSLHost     string `toml:"sslHost" env:"TUTORHUB_SSL_HOST"`
}

type Config struct {
	MainConfig   `toml:"mainConfig"`
	MysqlConfig  `toml:"mysqlConfig"`
	JwtConfig    `toml:"jwtConfig"`
	LogConfig    `toml:"logConfig"`
	AuthConfig   `toml:"authConfig"`
	ChatConfig   `toml:"chatConfig"`
	FeishuConfig `toml:"feishuConfig"`
	KafkaConfig  `toml:"kafkaConfig"`
	SecureConfig `toml:"secureConfig"`
}

func defaults() *Config {
	return &Config{
		MainConfig:  MainConfig{AppName: "TutorHub", Host: "0.0.0.0", Port: 8000},
		MysqlConfig: MysqlConfig{Host: "127.0.0.1", Port: 3306, User: "root", DatabaseName: "tutorhub"},
		JwtConfig:   JwtConfig{ExpireHours: 72, Issuer: "TutorHub"},
		LogConfig:   LogConfig{Level: "info", MaxSizeMB: 100, MaxBackups: 7, MaxAgeDays: 30},
		ChatConfig: ChatConfig{
			TimeoutSeconds:     600,
			VendorHistoryLimit: 10,
			DefaultMaxTokens:   2000,
			DefaultTemperature: 0.7,
		},
		FeishuConfig: FeishuConfig{
			BaseURL:                   "https://open.feishu.cn",
			TokenRefreshMarginSeconds: 300,
			TimeoutSeconds:            30,
		},
		KafkaConfig: KafkaConfig{ClientID: "tutorhub", ChatEventTopic: "chat.completed", PublishTimeoutMs: 3000},
	}
}

// Load 依次读取 toml 文件、.env 与环境变量，后者覆盖前者
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	// 接口路径前缀由 SDK 拼接，这里只保留域名
	c.FeishuConfig.BaseURL = strings.TrimSuffix(strings.TrimRight(c.FeishuConfig.BaseURL, "/"), "/open-apis")
	if c.ChatConfig.TimeoutSeconds <= 0 {
		c.ChatConfig.TimeoutSeconds = 600
	}
	if c.ChatConfig.VendorHistoryLimit <= 0 {
		c.ChatConfig.VendorHistoryLimit = 10
	}
	if c.ChatConfig.DefaultMaxTokens <= 0 {
		c.ChatConfig.DefaultMaxTokens = 2000
	}
	if c.FeishuConfig.TokenRefreshMarginSeconds < 0 {
		c.FeishuConfig.TokenRefreshMarginSeconds = 0
	}
}

var (
	mu     sync.RWMutex
	config *Config
)

// Init 加载配置并设为全局配置
func Init(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	config = cfg
	mu.Unlock()
	return cfg, nil
}

func GetConfig() *Config {
	mu.RLock()
	cfg := config
	mu.RUnlock()
	if cfg != nil {
		return cfg
	}
	cfg, err := Init("")
	if err != nil {
		return defaults()
	}
	return cfg
}
