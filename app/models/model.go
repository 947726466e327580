// Package models 模型通用属性和方法
package models

import "time"

// BaseModel 模型基类
type BaseModel struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement;" json:"id,omitempty"`
}

// CommonTimestampsField 时间戳，由业务层写入，不使用 gorm 自动时间
type CommonTimestampsField struct {
	CreatedAt time.Time `gorm:"column:created_at;index;autoCreateTime:false;" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"column:updated_at;index;autoUpdateTime:false;" json:"updated_at,omitempty"`
}

// AuditField 操作人记录，只在内部使用，不对外输出
type AuditField struct {
	CreatedBy string `gorm:"column:created_by;type:varchar(64);" json:"-"`
	UpdatedBy string `gorm:"column:updated_by;type:varchar(64);" json:"-"`
}
