package jobs

import "time"

// 任务名称常量，便于统一管理与引用.
const (
	JobStagingSweep = "staging.sweep"
	JobAuditPrune   = "audit.prune"
)

// 调度常量（可选，但推荐一并集中管理）.
const (
	// IntervalStagingSweep 暂存目录清扫周期.
	IntervalStagingSweep = 30 * time.Minute

	CronAuditPrune = "45 3 * * *"
)
