package configs

import (
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	DefaultStorageDir  = "uploads"  // 本地上传目录
	DefaultPublicMount = "/uploads" // 本地文件对外挂载前缀
	DefaultStagingDir  = ".staging" // 远端上传的暂存子目录（uploads 下）
)

// StorageConfig 本地磁盘存储配置.
// Dir 同时承担两种角色：local provider 的持久存储目录，
// 以及远端 provider 上传前的暂存空间（位于 Dir/StagingDir 下，上传后立即删除）.
type StorageConfig struct {
	Dir         string `mapstructure:"dir"          rule:"required"`
	PublicMount string `mapstructure:"public_mount" rule:"required,startswith=/"`
	StagingDir  string `mapstructure:"staging_dir"  rule:"required"`
}

// StagingPath 返回暂存目录的完整路径.
func (c *StorageConfig) StagingPath() string {
	return filepath.Join(c.Dir, c.StagingDir)
}

// setDefaults 设置存储配置的默认值.
func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.dir", DefaultStorageDir)
	v.SetDefault("storage.public_mount", DefaultPublicMount)
	v.SetDefault("storage.staging_dir", DefaultStagingDir)
}
