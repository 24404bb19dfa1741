// Package configs 管理应用程序配置，包括Tracing的配置信息.
// Tracing配置支持OpenTelemetry等分布式追踪系统.
package configs

import (
	"github.com/spf13/viper"
)

// TracingConfig Tracing相关配置.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`         // 是否启用Tracing
	ServiceName    string  `mapstructure:"service_name"`    // 服务名称
	ServiceVersion string  `mapstructure:"service_version"` // 服务版本
	ExporterType   string  `mapstructure:"exporter_type"`   // 导出器类型，如 "otlp-http", "otlp-grpc", "zipkin"
	Endpoint       string  `mapstructure:"endpoint"`        // 导出器端点
	SampleRate     float64 `mapstructure:"sample_rate"`     // 采样率，0.0-1.0
}

// setDefaults 设置Tracing配置的默认值.
func (c *TracingConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "filerelay")
	v.SetDefault("tracing.service_version", AppVersion)
	v.SetDefault("tracing.exporter_type", "otlp-http")
	v.SetDefault("tracing.endpoint", "http://localhost:4318")
	v.SetDefault("tracing.sample_rate", 1.0)
}
