// Package provider 实现各上传后端（本地磁盘、Dropbox、TeraBox、S3、media.nz 占位）
// 的统一适配层. 每个后端实现 Adapter 接口；Registry 在进程启动时根据配置构建一次，
// 把 provider 名称映射到适配器实例或"已知但未配置"的空位，请求期只做查表.
package provider

import (
	"context"
)

// Provider 名称常量，作为 POST /upload 的 provider 字段取值.
const (
	ProviderLocal   = "local"
	ProviderDropbox = "dropbox"
	ProviderTeraBox = "terabox"
	ProviderMediaNZ = "medianz"
	ProviderS3      = "s3"
)

// Result 单文件上传的适配器结果.
// Success 为 true 但 URL 为空视为"成功但无可用链接"，由派发层按失败上报.
type Result struct {
	Success bool
	URL     string
	Message string
}

// Adapter 上传后端的统一契约. 失败可以通过返回 error，
// 也可以通过 Result{Success: false} 上报，派发层对两种渠道一视同仁.
type Adapter interface {
	// Name 返回 provider 的标识名（registry 键）.
	Name() string

	// DisplayName 返回面向用户的名称（用于 "<Provider> not configured." 等提示）.
	DisplayName() string

	// Upload 把本地文件 localPath 以 fileName 为远端名称上传.
	Upload(ctx context.Context, localPath, fileName string) (*Result, error)
}

// Entry registry 中的一个已知 provider. Adapter 为 nil 表示该后端
// 已知但凭证缺失，请求时应返回 "not configured" 而不是 "unknown".
type Entry struct {
	Name        string
	DisplayName string
	Adapter     Adapter
}

// Configured 该后端是否可用.
func (e Entry) Configured() bool {
	return e.Adapter != nil
}

// IsLocal 本地磁盘后端走同步直通路径，不经过逐文件清理循环.
func (e Entry) IsLocal() bool {
	return e.Name == ProviderLocal
}

// Registry 配置驱动的 provider 注册表，启动时构建后只读.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// NewRegistry 创建空注册表.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register 注册一个可用的后端.
func (r *Registry) Register(a Adapter) {
	r.add(Entry{Name: a.Name(), DisplayName: a.DisplayName(), Adapter: a})
}

// RegisterDisabled 注册一个已知但未配置的后端.
func (r *Registry) RegisterDisabled(name, displayName string) {
	r.add(Entry{Name: name, DisplayName: displayName})
}

func (r *Registry) add(e Entry) {
	if _, exists := r.entries[e.Name]; !exists {
		r.order = append(r.order, e.Name)
	}

	r.entries[e.Name] = e
}

// Lookup 按名称查找后端；第二个返回值为 false 表示 unknown provider.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Entries 按注册顺序返回所有已知后端.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}

	return out
}
