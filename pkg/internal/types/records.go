package types

import "time"

// UploadRecordView GET /api/v1/uploads 返回的审计记录.
type UploadRecordView struct {
	ID        uint      `json:"id"`
	Provider  string    `json:"provider"`
	FileName  string    `json:"file_name"`
	Size      int64     `json:"size"`
	Digest    string    `json:"digest,omitempty"`
	Success   bool      `json:"success"`
	URL       string    `json:"url,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUploadsQuery 审计记录列表的查询参数.
type ListUploadsQuery struct {
	Provider string `form:"provider"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}
