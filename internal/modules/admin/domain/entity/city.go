package entity

import "time"

// City 城市字典
type City struct {
	ID        string    `gorm:"column:id;type:char(36);primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(64);uniqueIndex;not null"`
	Code      string    `gorm:"column:code;type:varchar(32);not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (City) TableName() string {
	return "cities"
}

// Department 部门字典
type Department struct {
	ID          string    `gorm:"column:id;type:char(36);primaryKey"`
	Name        string    `gorm:"column:name;type:varchar(64);uniqueIndex;not null"`
	Description string    `gorm:"column:description;type:varchar(255)"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (Department) TableName() string {
	return "departments"
}
