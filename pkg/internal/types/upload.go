// Package types 定义 HTTP 层与服务层共享的请求/响应结构.
package types

// UploadResult 单个文件的上传结果. 成功时带链接，失败时带错误描述.
type UploadResult struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// UploadResponse POST /upload 的成功响应体.
type UploadResponse struct {
	Message string         `json:"message"`
	Links   []UploadResult `json:"links"`
}

// ErrorResponse 错误响应体，message 为面向用户的提示.
type ErrorResponse struct {
	Message string `json:"message"`
}

// StagedFile 已落盘待派发的文件.
type StagedFile struct {
	Name       string // 客户端原始文件名
	StoredName string // 服务端存储名
	Path       string // 磁盘绝对/相对路径
	Size       int64
	Digest     string // xxhash64 内容摘要
}

// ProviderStatus 单个 Provider 的启用状态.
type ProviderStatus struct {
	Name       string `json:"name"`
	Display    string `json:"display"`
	Configured bool   `json:"configured"`
}
