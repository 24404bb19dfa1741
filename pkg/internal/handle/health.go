// Package handle 新增健康检查处理器实现.
package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/filerelay/pkg/context"
	"github.com/yeisme/filerelay/pkg/internal/types"
)

const healthTimeout = 2 * time.Second

// Healthz 存活探针.
func Healthz(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// ProvidersHealth 返回各上传后端的启用状态.
func ProvidersHealth(c *gin.Context) {
	reg := ctxPkg.GetRegistry(c.Request.Context())
	if reg == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "provider registry not initialized"})

		return
	}

	statuses := make([]types.ProviderStatus, 0)
	for _, e := range reg.Entries() {
		statuses = append(statuses, types.ProviderStatus{
			Name:       e.Name,
			Display:    e.DisplayName,
			Configured: e.Configured(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"providers": statuses})
}

// HealthDB 审计库健康检查.
func HealthDB(c *gin.Context) {
	dbc := ctxPkg.GetDBClient(c.Request.Context())
	if dbc == nil || dbc.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": "db client not initialized"})

		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	sqlDB, err := dbc.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": err.Error()})

		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "db", "status": "ok"})
}
