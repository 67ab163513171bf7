package service

import (
	"testing"
	"time"
)

func TestJobLifecycle(t *testing.T) {
	s := NewJobService()

	id := s.Create(5)
	if id == "" {
		t.Fatal("expected non-empty job id")
	}

	job, ok := s.Get(id)
	if !ok {
		t.Fatal("job not found after create")
	}
	if job.Status != JobStatusPending {
		t.Fatalf("expected pending, got %s", job.Status)
	}
	if job.Total != 5 || job.Progress != 0 {
		t.Fatalf("unexpected totals: total=%d progress=%d", job.Total, job.Progress)
	}

	s.MarkProcessing(id)
	job, _ = s.Get(id)
	if job.Status != JobStatusProcessing {
		t.Fatalf("expected processing, got %s", job.Status)
	}

	s.Advance(id, 3)
	job, _ = s.Get(id)
	if job.Progress != 3 {
		t.Fatalf("expected progress 3, got %d", job.Progress)
	}

	// 进度只增不减
	s.Advance(id, 2)
	job, _ = s.Get(id)
	if job.Progress != 3 {
		t.Fatalf("progress went backwards: %d", job.Progress)
	}

	s.Advance(id, 5)
	s.Complete(id, map[string]int{"totalCount": 5})
	job, _ = s.Get(id)
	if job.Status != JobStatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if job.Result == nil {
		t.Fatal("completed job should carry a result")
	}

	// 终态不可变更
	s.Fail(id, "boom")
	job, _ = s.Get(id)
	if job.Status != JobStatusCompleted || job.Error != "" {
		t.Fatalf("terminal state mutated: status=%s error=%q", job.Status, job.Error)
	}
}

func TestJobFail(t *testing.T) {
	s := NewJobService()

	id := s.Create(3)
	s.MarkProcessing(id)
	s.Fail(id, "生成失败")

	job, _ := s.Get(id)
	if job.Status != JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if job.Error != "生成失败" {
		t.Fatalf("unexpected error message: %q", job.Error)
	}
	if job.Result != nil {
		t.Fatal("failed job should not carry a result")
	}

	s.Complete(id, "late")
	job, _ = s.Get(id)
	if job.Status != JobStatusFailed {
		t.Fatal("failed job transitioned after terminal state")
	}
}

func TestAdvanceIgnoredOutsideProcessing(t *testing.T) {
	s := NewJobService()

	id := s.Create(3)
	s.Advance(id, 2)
	job, _ := s.Get(id)
	if job.Progress != 0 {
		t.Fatalf("pending job advanced: %d", job.Progress)
	}

	s.MarkProcessing(id)
	s.Complete(id, nil)
	s.Advance(id, 3)
	job, _ = s.Get(id)
	if job.Progress != 0 {
		t.Fatalf("completed job advanced: %d", job.Progress)
	}
}

func TestGetUnknownJob(t *testing.T) {
	s := NewJobService()
	if _, ok := s.Get("nope"); ok {
		t.Fatal("expected not found")
	}
}

func TestSweepOnce(t *testing.T) {
	s := NewJobService()
	s.retention = time.Minute

	done := s.Create(1)
	s.MarkProcessing(done)
	s.Complete(done, nil)

	running := s.Create(1)
	s.MarkProcessing(running)

	// 保留期内不清理
	if n := s.sweepOnce(time.Now()); n != 0 {
		t.Fatalf("swept %d jobs inside retention window", n)
	}

	// 超过保留期后只清理终态任务
	if n := s.sweepOnce(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expected 1 swept job, got %d", n)
	}
	if _, ok := s.Get(done); ok {
		t.Fatal("terminal job survived sweep")
	}
	if _, ok := s.Get(running); !ok {
		t.Fatal("running job was swept")
	}
}

func TestSweeperLifecycle(t *testing.T) {
	s := NewJobService()
	s.sweepInterval = 10 * time.Millisecond
	s.retention = 0

	id := s.Create(1)
	s.MarkProcessing(id)
	s.Fail(id, "x")

	go s.sweepLoop()
	defer s.Stop()

	deadline := time.After(time.Second)
	for {
		if _, ok := s.Get(id); !ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("sweeper did not evict terminal job")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
