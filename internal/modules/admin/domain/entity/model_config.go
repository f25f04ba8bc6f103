package entity

import (
	"strings"
	"time"
)

// 模型供应方类型
const (
	ProviderOpenAICompatible    = "openai-compatible"
	ProviderVendorKnowledgeBase = "vendor-knowledge-base"
	ProviderArk                 = "ark"
)

// ModelConfig 模型配置表，智能体通过 model_id 引用
type ModelConfig struct {
	ID              string    `gorm:"column:id;type:char(36);primaryKey;comment:模型id"`
	OriginalID      string    `gorm:"column:original_id;type:varchar(64);index;comment:迁移前的旧id"`
	Name            string    `gorm:"column:name;type:varchar(128);not null;comment:请求体中的 model 字段"`
	ModelType       string    `gorm:"column:model_type;type:varchar(32);not null;comment:供应方类型"`
	APIURL          string    `gorm:"column:api_url;type:varchar(512);not null;comment:接口地址"`
	APIKey          string    `gorm:"column:api_key;type:varchar(512);comment:鉴权密钥"`
	VendorServiceID string    `gorm:"column:volc_service_id;type:varchar(128);comment:知识库服务id"`
	Description     string    `gorm:"column:description;type:varchar(255)"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null"`
}

func (ModelConfig) TableName() string {
	return "models"
}

// ProviderKind 兼容旧数据中的 openai/volcengine
func (m *ModelConfig) ProviderKind() string {
	return NormalizeProviderKind(m.ModelType)
}

func NormalizeProviderKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "openai", ProviderOpenAICompatible:
		return ProviderOpenAICompatible
	case "volcengine", ProviderVendorKnowledgeBase:
		return ProviderVendorKnowledgeBase
	case ProviderArk:
		return ProviderArk
	default:
		return ""
	}
}

// MaskedKey 列表展示用，只保留首尾各 4 位
func (m *ModelConfig) MaskedKey() string {
	return MaskKey(m.APIKey)
}

func MaskKey(key string) string {
	if len(key) <= 8 {
		if key == "" {
			return ""
		}
		return "****"
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
