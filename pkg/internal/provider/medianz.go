package provider

import (
	"context"
)

// medianzMessage media.nz 后端尚未接入，每个文件固定上报此失败信息.
const medianzMessage = "media.nz upload not implemented yet"

// MediaNZ media.nz 占位后端：始终"可用"，但上传一律报未实现.
type MediaNZ struct{}

// NewMediaNZ 创建 media.nz 占位后端.
func NewMediaNZ() *MediaNZ {
	return &MediaNZ{}
}

func (m *MediaNZ) Name() string { return ProviderMediaNZ }

func (m *MediaNZ) DisplayName() string { return "media.nz" }

// Upload 固定返回未实现，不视为进程级错误.
func (m *MediaNZ) Upload(_ context.Context, _, _ string) (*Result, error) {
	return &Result{Success: false, Message: medianzMessage}, nil
}
