// Package configs 管理应用程序配置，包括服务器、存储目录、上传与各 Provider 凭证的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载；
// 同时显式绑定一组扁平环境变量（PORT、DROPBOX_ACCESS_TOKEN、TERABOX_* 等），
// 使服务在完全没有配置文件的环境下也能通过环境变量运行.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用版本号.
const AppVersion = "1.0.0"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // 服务器端口、超时等
		Storage        StorageConfig        `mapstructure:"storage"`         // 上传目录与静态挂载
		Upload         UploadConfig         `mapstructure:"upload"`          // 上传调度行为
		Providers      ProvidersConfig      `mapstructure:"providers"`       // 各上传后端凭证
		DB             DBConfig             `mapstructure:"db"`              // 上传审计数据库
		Log            LogConfig            `mapstructure:"log"`             // 日志相关配置
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // 监控指标
		Tracing        TracingConfig        `mapstructure:"tracing"`         // 分布式追踪
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // 限流
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // 熔断
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// 配置文件是可选的：找不到时仅使用默认值与环境变量.
func InitConfig(path string) error {
	appViper = viper.New()
	// 设置默认值
	setAllDefaults(appViper)

	// 检查path是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，使用SetConfigFile，Viper会自动检测类型
		appViper.SetConfigFile(path)
	} else {
		// 是目录，设置配置名和路径
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(path + "/configs")

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)

				break
			}
		}
	}

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("FILERELAY")

	// 绑定扁平环境变量（旧版部署约定）
	bindFlatEnv(appViper)

	// 读取配置；配置文件缺失不是错误
	if err := appViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 解析到全局配置
	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// bindFlatEnv 显式绑定不带前缀的扁平环境变量，保证仅靠环境变量即可完成部署：
// PORT、DROPBOX_ACCESS_TOKEN、TERABOX_*、S3_*.
func bindFlatEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "FILERELAY_SERVER_PORT", "PORT")

	_ = v.BindEnv("providers.dropbox.access_token",
		"FILERELAY_PROVIDERS_DROPBOX_ACCESS_TOKEN", "DROPBOX_ACCESS_TOKEN")

	_ = v.BindEnv("providers.terabox.ndus", "FILERELAY_PROVIDERS_TERABOX_NDUS", "TERABOX_NDUS")
	_ = v.BindEnv("providers.terabox.app_id", "FILERELAY_PROVIDERS_TERABOX_APPID", "TERABOX_APPID")
	_ = v.BindEnv("providers.terabox.upload_id", "FILERELAY_PROVIDERS_TERABOX_UPLOADID", "TERABOX_UPLOADID")
	_ = v.BindEnv("providers.terabox.js_token", "FILERELAY_PROVIDERS_TERABOX_JSTOKEN", "TERABOX_JSTOKEN")
	_ = v.BindEnv("providers.terabox.browser_id", "FILERELAY_PROVIDERS_TERABOX_BROWSERID", "TERABOX_BROWSERID")

	_ = v.BindEnv("providers.s3.endpoint", "FILERELAY_PROVIDERS_S3_ENDPOINT", "S3_ENDPOINT")
	_ = v.BindEnv("providers.s3.access_key_id", "FILERELAY_PROVIDERS_S3_ACCESS_KEY", "S3_ACCESS_KEY")
	_ = v.BindEnv("providers.s3.secret_access_key", "FILERELAY_PROVIDERS_S3_SECRET_KEY", "S3_SECRET_KEY")
	_ = v.BindEnv("providers.s3.bucket_name", "FILERELAY_PROVIDERS_S3_BUCKET", "S3_BUCKET")
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var serverConfig ServerConfig

	var storageConfig StorageConfig

	var uploadConfig UploadConfig

	var providersConfig ProvidersConfig

	var dbConfig DBConfig

	var logConfig LogConfig

	var metricsConfig MetricsConfig

	var tracingConfig TracingConfig

	var rateLimitConfig RateLimitConfig

	var cbConfig CircuitBreakerConfig

	serverConfig.setDefaults(v)
	storageConfig.setDefaults(v)
	uploadConfig.setDefaults(v)
	providersConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	logConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	rateLimitConfig.setDefaults(v)
	cbConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
		fmt.Println("Reloading configuration...")

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
		}
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

func GetViper() *viper.Viper {
	return appViper
}
