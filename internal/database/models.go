package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document 表示一份多语言简历文档。Content 按语言代码存储各版本内容
// （JSONB），PhotoKey 指向对象存储中的人像。
type Document struct {
	gorm.Model
	Title    string         `gorm:"size:255"`
	Content  datatypes.JSON `gorm:"type:jsonb"`
	PhotoKey string         `gorm:"size:512"`
	// Active marks the document the page currently serves. At most one
	// document is active at a time.
	Active bool `gorm:"index"`
}

// Export 表示一次 PDF 导出。Status 为 pending/completed/failed。
type Export struct {
	gorm.Model
	DocumentID uint     `gorm:"index"`
	Document   Document `gorm:"constraint:OnDelete:CASCADE"`
	Lang       string   `gorm:"size:16"`
	ObjectKey  string   `gorm:"size:512"`
	Status     string   `gorm:"size:32"`
	Error      string   `gorm:"size:512"`
}
