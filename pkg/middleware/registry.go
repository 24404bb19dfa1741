package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filerelay/pkg/context"
	"github.com/yeisme/filerelay/pkg/internal/provider"
)

// RegistryMiddleware 将 Provider 注册表注入到每个请求的 context 中.
func RegistryMiddleware(reg *provider.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithRegistry(c.Request.Context(), reg)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
