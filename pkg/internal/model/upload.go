// Package model 定义数据库持久化模型.
package model

import "gorm.io/gorm"

// UploadRecord 单次文件上传的审计记录.
type UploadRecord struct {
	gorm.Model
	Provider string `gorm:"size:32;index" json:"provider"`
	FileName string `gorm:"size:512" json:"file_name"`
	Size     int64  `json:"size"`
	Digest   string `gorm:"size:16;index" json:"digest"`
	Success  bool   `gorm:"index" json:"success"`
	URL      string `gorm:"size:2048" json:"url"`
	Error    string `gorm:"size:1024" json:"error"`
}

// TableName 指定表名.
func (UploadRecord) TableName() string {
	return "upload_records"
}
