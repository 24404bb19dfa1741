// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"
	"time"

	ctxPkg "github.com/yeisme/filerelay/pkg/context"
	"github.com/yeisme/filerelay/pkg/internal/model"
	"github.com/yeisme/filerelay/pkg/internal/storage"
	"github.com/yeisme/filerelay/pkg/log"
	"github.com/yeisme/filerelay/pkg/scheduler"
)

const (
	// stagingOrphanAge 暂存文件超过该时长视为孤儿（正常流程派发后立即删除）.
	stagingOrphanAge = time.Hour

	// auditRetentionDays 审计记录保留天数.
	auditRetentionDays = 90
)

// RegisterCronJobs 配置业务定时任务：
//   - 每 30 分钟清理暂存目录中的孤儿文件（进程崩溃残留）
//   - 每天 03:45 清理过期的上传审计记录
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	// 将 storage manager 注入到 context，便于任务使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	_ = sched.AddInterval(JobStagingSweep, IntervalStagingSweep, func(ctx context.Context) {
		runStagingSweep(ctx, mgr)
	}, baseCtx)

	if mgr.GetDBClient() != nil {
		_ = sched.AddCron(JobAuditPrune, CronAuditPrune, func(ctx context.Context) {
			runAuditPrune(ctx, mgr)
		}, baseCtx)
	}

	return nil
}

// runStagingSweep 清理暂存目录里的孤儿文件.
func runStagingSweep(_ context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobStagingSweep).Logger()

	store := mgr.GetStagingStore()
	if store == nil {
		l.Error().Msg("staging store not initialized")
		return
	}

	removed, err := store.SweepStaging(stagingOrphanAge)
	if err != nil {
		l.Error().Err(err).Msg("sweep failed")
		return
	}

	if removed > 0 {
		l.Info().Int("removed", removed).Msg("swept orphan staged files")
	}
}

// runAuditPrune 删除超过保留期的审计记录.
func runAuditPrune(ctx context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobAuditPrune).Logger()

	dbc := mgr.GetDBClient()
	if dbc == nil || dbc.GetDB() == nil {
		l.Error().Msg("db not initialized")
		return
	}

	before := time.Now().AddDate(0, 0, -auditRetentionDays)

	res := dbc.GetDB().WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&model.UploadRecord{})
	if res.Error != nil {
		l.Error().Err(res.Error).Msg("prune failed")
		return
	}

	if res.RowsAffected > 0 {
		l.Info().Int64("affected", res.RowsAffected).Time("before", before).Msg("pruned audit records")
	}
}
