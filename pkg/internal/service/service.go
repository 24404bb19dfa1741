// Package service 实现上传派发的业务逻辑.
package service

import (
	"context"

	"github.com/yeisme/filerelay/pkg/configs"
	ctxPkg "github.com/yeisme/filerelay/pkg/context"
	"github.com/yeisme/filerelay/pkg/internal/provider"
	"github.com/yeisme/filerelay/pkg/internal/storage/db"
	"github.com/yeisme/filerelay/pkg/internal/storage/staging"
)

// UploadService 处理一次上传请求的校验、派发与审计.
type UploadService struct {
	registry *provider.Registry
	staging  *staging.Store
	dbClient *db.Client
	upload   configs.UploadConfig
}

// NewUploadService 从 context 中组装服务依赖.
func NewUploadService(c context.Context) *UploadService {
	return &UploadService{
		registry: ctxPkg.GetRegistry(c),
		staging:  ctxPkg.GetStagingStore(c),
		dbClient: ctxPkg.GetDBClient(c),
		upload:   configs.GetConfig().Upload,
	}
}
