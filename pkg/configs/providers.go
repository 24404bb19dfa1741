// Package configs 管理各上传后端（Provider）的凭证配置.
// 凭证在进程启动时加载一次，缺失必填字段只会禁用对应 Provider，不会导致启动失败.
package configs

import (
	"fmt"
	"net/url"

	"github.com/spf13/viper"
)

// ProvidersConfig 各上传后端的凭证配置.
type ProvidersConfig struct {
	Dropbox DropboxConfig `mapstructure:"dropbox"`
	TeraBox TeraBoxConfig `mapstructure:"terabox"`
	S3      S3Config      `mapstructure:"s3"`
}

// DropboxConfig Dropbox API 凭证.
type DropboxConfig struct {
	AccessToken string `mapstructure:"access_token"`
}

// Enabled 仅当 access token 非空时启用.
func (c *DropboxConfig) Enabled() bool {
	return c.AccessToken != ""
}

// TeraBoxConfig TeraBox 网页端 API 凭证，五个字段全部非空才启用.
type TeraBoxConfig struct {
	NDUS      string `mapstructure:"ndus"`
	AppID     string `mapstructure:"app_id"`
	UploadID  string `mapstructure:"upload_id"`
	JSToken   string `mapstructure:"js_token"`
	BrowserID string `mapstructure:"browser_id"`
}

// Enabled 检查 TeraBox 凭证是否完整.
func (c *TeraBoxConfig) Enabled() bool {
	return c.NDUS != "" && c.AppID != "" && c.UploadID != "" &&
		c.JSToken != "" && c.BrowserID != ""
}

// S3Config MinIO/S3 对象存储凭证.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
}

// Enabled 检查 S3 凭证是否完整.
func (c *S3Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKeyID != "" &&
		c.SecretAccessKey != "" && c.BucketName != ""
}

// GetEndpointHost 返回去除 scheme 的端点地址，并在端点带 https scheme 时置位 UseSSL.
func (c *S3Config) GetEndpointHost() (string, bool) {
	endpoint := c.Endpoint
	useSSL := c.UseSSL

	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	return endpoint, useSSL
}

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// setDefaults 设置 Provider 配置的默认值（凭证无默认值，S3 region 除外）.
func (c *ProvidersConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("providers.s3.use_ssl", false)
	v.SetDefault("providers.s3.region", "us-east-1")
}
