// Package storage 聚合本地落盘存储与上传审计库.
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/filerelay/pkg/configs"
	dbc "github.com/yeisme/filerelay/pkg/internal/storage/db"
	"github.com/yeisme/filerelay/pkg/internal/storage/staging"
	nlog "github.com/yeisme/filerelay/pkg/log"
)

// Manager 聚合所有存储资源. DB 在审计库关闭时为 nil.
type Manager struct {
	Staging *staging.Store
	DB      *dbc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置. 重复调用只返回已初始化实例.
// 审计库打不开只降级告警，不阻塞启动；本地存储目录创建失败则为致命错误.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		st, e := staging.New(cfg.Storage)
		if e != nil {
			err = e

			return
		}

		m.Staging = st

		if cfg.DB.Enabled {
			if dbi, e := dbc.New(ctx, &cfg.DB, cfg.Metrics.Enabled); e != nil {
				nlog.Logger().Warn().Err(e).Msg("审计库初始化失败，上传审计已禁用")
			} else {
				m.DB = dbi
			}
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetStagingStore 获取本地落盘存储.
func (m *Manager) GetStagingStore() *staging.Store {
	return m.Staging
}

// GetDBClient 获取审计库客户端，未启用时返回 nil.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}
