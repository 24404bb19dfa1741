package provider

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/yeisme/filerelay/pkg/configs"
)

// Local 本地磁盘后端. 文件在请求处理时已被写入上传目录，
// 这里只负责把服务端分配的文件名映射为公共挂载 URL，不做删除.
type Local struct {
	dir   string
	mount string
}

// NewLocal 创建本地磁盘后端.
func NewLocal(cfg configs.StorageConfig) *Local {
	return &Local{dir: cfg.Dir, mount: cfg.PublicMount}
}

func (l *Local) Name() string { return ProviderLocal }

func (l *Local) DisplayName() string { return "Local" }

// PublicURL 返回 storedName 对应的公共访问路径.
func (l *Local) PublicURL(storedName string) string {
	return path.Join(l.mount, storedName)
}

// Upload 对本地后端而言文件已在最终位置，校验存在后返回挂载 URL.
func (l *Local) Upload(_ context.Context, localPath, _ string) (*Result, error) {
	if _, err := os.Stat(localPath); err != nil {
		return nil, fmt.Errorf("stored file missing: %w", err)
	}

	return &Result{Success: true, URL: l.PublicURL(filepath.Base(localPath))}, nil
}
