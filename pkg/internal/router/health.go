package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filerelay/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册健康检查路由.
func RegisterHealthCheckRoute(e *gin.Engine) {
	e.GET("/healthz", handle.Healthz)

	healthRoutes := e.Group("/health")
	{
		healthRoutes.GET("/providers", handle.ProvidersHealth)
		healthRoutes.GET("/db", handle.HealthDB)
	}
}
