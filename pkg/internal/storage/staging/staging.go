// Package staging 管理上传文件的本地落盘.
// local provider 的文件直接写入存储目录并长期保留；
// 远端 provider 的文件写入暂存子目录，派发完成后无条件删除.
package staging

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/yeisme/filerelay/pkg/configs"
	"github.com/yeisme/filerelay/pkg/internal/types"
)

// Store 本地落盘存储.
type Store struct {
	dir        string
	stagingDir string
}

// New 创建存储目录与暂存子目录.
func New(cfg configs.StorageConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	stagingDir := cfg.StagingPath()
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	return &Store{dir: cfg.Dir, stagingDir: stagingDir}, nil
}

// Dir 返回持久存储目录.
func (s *Store) Dir() string { return s.dir }

// Stage 把上传的文件写入磁盘. transient 为真时写入暂存子目录，
// 返回的 StagedFile 带 xxhash64 内容摘要.
func (s *Store) Stage(fh *multipart.FileHeader, transient bool) (*types.StagedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	// 存储名用 uuid 避免客户端文件名冲突或路径穿越
	storedName := uuid.NewString() + filepath.Ext(fh.Filename)

	dir := s.dir
	if transient {
		dir = s.stagingDir
	}

	dstPath := filepath.Join(dir, storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	defer dst.Close()

	digest := xxhash.New()

	size, err := io.Copy(io.MultiWriter(dst, digest), src)
	if err != nil {
		os.Remove(dstPath)

		return nil, fmt.Errorf("write staged file: %w", err)
	}

	return &types.StagedFile{
		Name:       filepath.Base(fh.Filename),
		StoredName: storedName,
		Path:       dstPath,
		Size:       size,
		Digest:     fmt.Sprintf("%016x", digest.Sum64()),
	}, nil
}

// Remove 删除已暂存文件. 文件不存在视为已删除.
func (s *Store) Remove(f *types.StagedFile) error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged file: %w", err)
	}

	return nil
}

// Resolve 把对外文件名解析为持久存储目录下的磁盘路径.
// 拒绝路径分隔符与上跳引用，防止目录穿越.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) ||
		strings.Contains(name, "..") || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	p := filepath.Join(s.dir, name)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("stat %s: %w", name, err)
	}

	return p, nil
}

// SweepStaging 清理暂存目录中滞留超过 olderThan 的孤儿文件，返回删除数量.
// 正常流程会在派发后立即删除暂存文件，这里兜底处理进程崩溃留下的残留.
func (s *Store) SweepStaging(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.stagingDir)
	if err != nil {
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.stagingDir, e.Name())); err == nil {
				removed++
			}
		}
	}

	return removed, nil
}
