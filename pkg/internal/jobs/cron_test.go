package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeisme/filerelay/pkg/configs"
	"github.com/yeisme/filerelay/pkg/internal/storage"
	"github.com/yeisme/filerelay/pkg/internal/storage/staging"
	"github.com/yeisme/filerelay/pkg/scheduler"
)

func newTestManager(t *testing.T) *storage.Manager {
	t.Helper()

	store, err := staging.New(configs.StorageConfig{
		Dir:         filepath.Join(t.TempDir(), "uploads"),
		PublicMount: "/uploads",
		StagingDir:  ".staging",
	})
	if err != nil {
		t.Fatalf("staging.New: %v", err)
	}

	return &storage.Manager{Staging: store}
}

func TestRegisterCronJobsSchedulesSweep(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	t.Cleanup(func() { _ = sched.Stop() })

	if err := RegisterCronJobs(sched, newTestManager(t)); err != nil {
		t.Fatalf("RegisterCronJobs: %v", err)
	}

	info, err := sched.GetJobInfoByName(JobStagingSweep)
	if err != nil {
		t.Fatalf("GetJobInfoByName: %v", err)
	}

	if info.Schedule != IntervalStagingSweep.String() {
		t.Errorf("Schedule = %q, want %q", info.Schedule, IntervalStagingSweep.String())
	}

	// 无审计库时不注册清理任务
	if _, err := sched.GetJobInfoByName(JobAuditPrune); err == nil {
		t.Error("audit prune should not be scheduled without a db client")
	}
}

func TestRunStagingSweepRemovesOrphans(t *testing.T) {
	mgr := newTestManager(t)
	store := mgr.GetStagingStore()

	orphan := filepath.Join(store.Dir(), ".staging", "orphan.bin")
	if err := os.WriteFile(orphan, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	old := time.Now().Add(-2 * stagingOrphanAge)
	if err := os.Chtimes(orphan, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	runStagingSweep(context.Background(), mgr)

	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Errorf("orphan should be removed, stat err = %v", err)
	}
}
