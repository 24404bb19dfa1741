// Package router 管理路由配置，将路径绑定到 pkg/internal/handle 提供的处理器.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filerelay/pkg/internal/handle"
)

// RegisterUploadRoutes 注册上传与文件访问路由.
//
//	GET  /              -> 内置上传页面
//	POST /upload        -> multipart 上传派发
//	GET  /uploads/:name -> 访问本地保存的文件
func RegisterUploadRoutes(e *gin.Engine) {
	e.GET("/", handle.Index)
	e.POST("/upload", handle.Upload)
	e.GET("/uploads/:name", handle.ServeStored)
}

// RegisterAPIRoutes 注册 /api/v1 下的管理接口.
func RegisterAPIRoutes(e *gin.Engine) {
	api := e.Group("/api/v1")
	{
		api.GET("/uploads", handle.ListUploads)
	}
}
