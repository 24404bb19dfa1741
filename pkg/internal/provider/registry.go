package provider

import (
	"context"

	"github.com/yeisme/filerelay/pkg/configs"
	"github.com/yeisme/filerelay/pkg/log"
)

// BuildRegistry 按配置构建 Provider 注册表.
// 凭证不全的后端注册为 disabled 条目，名字仍被识别但请求会以未配置拒绝；
// 后端初始化失败（如 S3 连不上）同样降级为 disabled，不影响进程启动.
func BuildRegistry(ctx context.Context, cfg *configs.AppConfig) *Registry {
	logger := log.Logger()
	reg := NewRegistry()

	reg.Register(NewLocal(cfg.Storage))
	logger.Info().Str("provider", ProviderLocal).Msg("Provider 已启用")

	if cfg.Providers.Dropbox.Enabled() {
		reg.Register(NewDropbox(cfg.Providers.Dropbox))
		logger.Info().Str("provider", ProviderDropbox).Msg("Provider 已启用")
	} else {
		reg.RegisterDisabled(ProviderDropbox, "Dropbox")
		logger.Warn().Str("provider", ProviderDropbox).Msg("凭证缺失，Provider 未启用")
	}

	if cfg.Providers.TeraBox.Enabled() {
		reg.Register(NewTeraBox(cfg.Providers.TeraBox))
		logger.Info().Str("provider", ProviderTeraBox).Msg("Provider 已启用")
	} else {
		reg.RegisterDisabled(ProviderTeraBox, "TeraBox")
		logger.Warn().Str("provider", ProviderTeraBox).Msg("凭证缺失，Provider 未启用")
	}

	// media.nz 后端始终注册，上传时返回固定的未实现提示
	reg.Register(NewMediaNZ())
	logger.Info().Str("provider", ProviderMediaNZ).Msg("Provider 已启用")

	if cfg.Providers.S3.Enabled() {
		s3, err := NewS3(ctx, cfg.Providers.S3)
		if err != nil {
			reg.RegisterDisabled(ProviderS3, "S3")
			logger.Error().Err(err).Str("provider", ProviderS3).Msg("初始化失败，Provider 未启用")
		} else {
			reg.Register(s3)
			logger.Info().Str("provider", ProviderS3).Str("bucket", cfg.Providers.S3.BucketName).Msg("Provider 已启用")
		}
	} else {
		reg.RegisterDisabled(ProviderS3, "S3")
		logger.Warn().Str("provider", ProviderS3).Msg("凭证缺失，Provider 未启用")
	}

	return reg
}
