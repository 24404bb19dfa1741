package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultUploadTimeout       = 60    // 单文件上传超时，单位秒
	DefaultUploadParallel      = false // 是否并行上传批次内文件
	DefaultUploadMaxConcurrent = 4     // 并行模式下的最大并发数
	DefaultUploadMaxFileSizeMB = 512   // 单文件大小上限（MB），0 表示不限制
)

// UploadConfig 上传调度行为配置.
// 默认严格按输入顺序逐个上传；Parallel 开启后并发执行，
// 但结果仍按输入顺序组装（不是完成顺序）.
type UploadConfig struct {
	TimeoutSeconds int  `mapstructure:"timeout_seconds" rule:"min=1,max=3600"`
	Parallel       bool `mapstructure:"parallel"`
	MaxConcurrent  int  `mapstructure:"max_concurrent"  rule:"min=1,max=64"`
	MaxFileSizeMB  int  `mapstructure:"max_file_size_mb" rule:"min=0"`
}

// Timeout 返回单文件上传超时作为 time.Duration.
func (c *UploadConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// setDefaults 设置上传配置的默认值.
func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.timeout_seconds", DefaultUploadTimeout)
	v.SetDefault("upload.parallel", DefaultUploadParallel)
	v.SetDefault("upload.max_concurrent", DefaultUploadMaxConcurrent)
	v.SetDefault("upload.max_file_size_mb", DefaultUploadMaxFileSizeMB)
}
