package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filerelay/pkg/internal/provider"
	"github.com/yeisme/filerelay/pkg/internal/types"
	"github.com/yeisme/filerelay/pkg/log"
	"github.com/yeisme/filerelay/pkg/metrics"
)

// ErrUnknownProvider 表示请求的 provider 名不在注册表中.
var ErrUnknownProvider = errors.New("unknown provider")

// NotConfiguredError 表示 provider 已知但凭证缺失.
type NotConfiguredError struct {
	// Provider 为对外展示名，如 "Dropbox".
	Provider string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s not configured", e.Provider)
}

// defaultFailureMessage 后端未给出具体原因时的逐文件失败提示.
const defaultFailureMessage = "Upload failed"

// Resolve 校验 provider 名并返回注册表条目.
// 必须在任何文件落盘之前调用：未知或未配置的 provider 不应产生任何磁盘写入.
func (s *UploadService) Resolve(providerID string) (provider.Entry, error) {
	entry, ok := s.registry.Lookup(providerID)
	if !ok {
		return provider.Entry{}, ErrUnknownProvider
	}

	if !entry.Configured() {
		return provider.Entry{}, &NotConfiguredError{Provider: entry.DisplayName}
	}

	return entry, nil
}

// Dispatch 把已落盘的文件逐个交给 provider 上传，返回与输入同序的逐文件结果.
// 单个文件失败不中断后续文件；远端文件无论成败都会删除暂存副本.
func (s *UploadService) Dispatch(ctx context.Context, entry provider.Entry, files []*types.StagedFile) []types.UploadResult {
	results := make([]types.UploadResult, len(files))

	if s.upload.Parallel && !entry.IsLocal() && len(files) > 1 {
		s.dispatchParallel(ctx, entry, files, results)
	} else {
		for i, f := range files {
			results[i] = s.uploadOne(ctx, entry, f)
		}
	}

	s.recordResults(ctx, entry.Name, files, results)

	return results
}

// dispatchParallel 并发上传，按输入顺序写回结果.
func (s *UploadService) dispatchParallel(ctx context.Context, entry provider.Entry, files []*types.StagedFile, results []types.UploadResult) {
	g, gctx := errgroup.WithContext(ctx)

	limit := s.upload.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}

	g.SetLimit(limit)

	for i, f := range files {
		g.Go(func() error {
			results[i] = s.uploadOne(gctx, entry, f)

			// 逐文件失败已在结果中体现，不向 errgroup 传播
			return nil
		})
	}

	// goroutine 不返回错误，这里仅等待全部完成
	_ = g.Wait()
}

// uploadOne 上传单个文件并把三类失败（返回 error、Success=false、超时）
// 统一归一为带错误信息的 UploadResult.
func (s *UploadService) uploadOne(ctx context.Context, entry provider.Entry, f *types.StagedFile) types.UploadResult {
	logger := log.Logger()

	uctx := ctx

	if timeout := s.upload.Timeout(); timeout > 0 {
		var cancel context.CancelFunc

		uctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := entry.Adapter.Upload(uctx, f.Path, f.Name)
	elapsed := time.Since(start)

	// 远端上传后无条件清理暂存文件，失败也不保留
	if !entry.IsLocal() {
		if rmErr := s.staging.Remove(f); rmErr != nil {
			logger.Warn().Err(rmErr).Str("file", f.StoredName).Msg("暂存文件清理失败")
		}
	}

	metrics.UploadDuration.WithLabelValues(entry.Name).Observe(elapsed.Seconds())

	out := types.UploadResult{Name: f.Name}

	switch {
	case err != nil:
		logger.Error().Err(err).
			Str("provider", entry.Name).
			Str("file", f.Name).
			Msg("上传失败")

		// 异常信息原样回传给调用方
		out.Error = err.Error()
		if out.Error == "" {
			out.Error = defaultFailureMessage
		}
	case !res.Success, res.URL == "":
		// 成功但拿不到链接对调用方没有意义，一并按失败上报
		out.Error = res.Message
		if out.Error == "" {
			out.Error = defaultFailureMessage
		}

		logger.Warn().
			Str("provider", entry.Name).
			Str("file", f.Name).
			Str("reason", out.Error).
			Msg("上传未完成")
	default:
		out.URL = res.URL

		metrics.UploadBytes.WithLabelValues(entry.Name).Add(float64(f.Size))
		logger.Info().
			Str("provider", entry.Name).
			Str("file", f.Name).
			Dur("elapsed", elapsed).
			Msg("上传成功")
	}

	outcome := "success"
	if out.Error != "" {
		outcome = "failure"
	}

	metrics.UploadCounter.WithLabelValues(entry.Name, outcome).Inc()

	return out
}
