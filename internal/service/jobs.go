package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"loyalty-system/internal/config"
	"loyalty-system/internal/pkg/logger"
)

// 异步任务状态
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// JobStatus 异步任务的状态快照
// completed时Result非空，failed时Error非空
type JobStatus struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Progress  int         `json:"progress"`
	Total     int         `json:"total"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`

	finishedAt time.Time // 到达终态的时间，清理依据
}

// JobService 进程内的异步任务注册表
// 每个任务只由其后台goroutine写入，查询方只拿快照
// 终态任务超过保留时长后由后台清理协程删除；进程重启即全部丢失
type JobService struct {
	mu            sync.RWMutex
	jobs          map[string]*JobStatus
	retention     time.Duration
	sweepInterval time.Duration
	stopChan      chan struct{}
}

var Jobs = NewJobService()

// NewJobService 创建任务注册表，默认终态保留1小时、每分钟清理一次
func NewJobService() *JobService {
	return &JobService{
		jobs:          make(map[string]*JobStatus),
		retention:     time.Hour,
		sweepInterval: time.Minute,
		stopChan:      make(chan struct{}),
	}
}

// Start 启动清理协程
func (s *JobService) Start() {
	// 配置可覆盖保留时长
	if config.GlobalConfig != nil && config.GlobalConfig.QR.JobRetentionMinutes > 0 {
		s.retention = time.Duration(config.GlobalConfig.QR.JobRetentionMinutes) * time.Minute
	}
	go s.sweepLoop()
}

// Stop 停止清理协程
func (s *JobService) Stop() {
	close(s.stopChan)
}

// sweepLoop 周期清理过期终态任务
func (s *JobService) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.sweepOnce(time.Now()); n > 0 {
				logger.Debugf("清理了 %d 个过期任务", n)
			}
		case <-s.stopChan:
			return
		}
	}
}

// sweepOnce 删除所有到达终态且超过保留时长的任务，返回删除数量
func (s *JobService) sweepOnce(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.Status != JobStatusCompleted && job.Status != JobStatusFailed {
			continue
		}
		if now.Sub(job.finishedAt) >= s.retention {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// Create 登记一个新任务，立即返回任务ID
func (s *JobService) Create(total int) string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[id] = &JobStatus{
		ID:        id,
		Status:    JobStatusPending,
		Progress:  0,
		Total:     total,
		CreatedAt: time.Now(),
	}
	return id
}

// Get 返回任务状态快照
func (s *JobService) Get(id string) (JobStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return JobStatus{}, false
	}
	return *job, true
}

// MarkProcessing 后台任务开始执行
func (s *JobService) MarkProcessing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status != JobStatusPending {
		return
	}
	job.Status = JobStatusProcessing
}

// Advance 推进任务进度，进度只增不减
func (s *JobService) Advance(id string, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status != JobStatusProcessing {
		return
	}
	if progress > job.Progress {
		job.Progress = progress
	}
}

// Complete 任务完成，带上结果载荷
// 终态不可再变更
func (s *JobService) Complete(id string, result interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status == JobStatusCompleted || job.Status == JobStatusFailed {
		return
	}
	job.Status = JobStatusCompleted
	job.Result = result
	job.finishedAt = time.Now()
}

// Fail 任务失败，记录错误信息
// 终态不可再变更
func (s *JobService) Fail(id string, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status == JobStatusCompleted || job.Status == JobStatusFailed {
		return
	}
	job.Status = JobStatusFailed
	job.Error = msg
	job.finishedAt = time.Now()
}
