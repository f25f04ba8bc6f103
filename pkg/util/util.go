package util

import "github.com/google/uuid"

// GenerateUUID 记录主键统一使用 v4 UUID
func GenerateUUID() string {
	return uuid.New().String()
}
