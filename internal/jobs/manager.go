package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/StatTag/StatWrap-sub000/internal/errors"
	"github.com/StatTag/StatWrap-sub000/internal/logging"
	"github.com/StatTag/StatWrap-sub000/model"
)

var log = logging.ForComponent(logging.CompJobs)

// Observer is told about every job reaching a terminal status.
type Observer interface {
	JobFinished(jobType model.JobType, status model.JobStatus, took time.Duration)
}

// Manager handles background job execution and tracking
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*model.Job
	workers  chan struct{} // Limits concurrent jobs
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	metrics  *JobMetrics
	observer Observer
	retain   time.Duration
}

// NewManager creates a new job manager with specified worker count. Finished
// jobs are kept for retain before cleanup removes them.
func NewManager(maxWorkers int, retain time.Duration, observer Observer) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if retain <= 0 {
		retain = 24 * time.Hour
	}
	return &Manager{
		jobs:     make(map[string]*model.Job),
		workers:  make(chan struct{}, maxWorkers),
		stopChan: make(chan struct{}),
		metrics:  NewJobMetrics(),
		observer: observer,
		retain:   retain,
	}
}

// Start begins the job manager and starts background cleanup
func (m *Manager) Start() {
	log.Info("job_manager_started", "max_workers", cap(m.workers))
	go m.cleanupRoutine()
}

// Stop waits for running jobs and shuts the manager down. It is safe to call
// more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
		log.Info("job_manager_stopped")
	})
}

// CreateJob creates a new pending job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.metrics.RecordJobCreated(jobType)
	log.Info("job_created", "job_id", job.ID, "type", string(job.Type))
	return job.ID
}

// GetJob retrieves a copy of a job by ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns every job, newest first, optionally filtered by status
func (m *Manager) ListJobs(status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if status == nil || job.Status == *status {
			result = append(result, copyJob(job))
		}
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	return &jobCopy
}

// ExecuteJob runs a job function in a goroutine with proper tracking. The
// function receives a context cancelled when the manager stops.
func (m *Manager) ExecuteJob(jobID string, jobFunc func(ctx context.Context, jobID string) error) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}

	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	jobType := job.Type
	m.mu.Unlock()

	// Acquire worker slot
	select {
	case m.workers <- struct{}{}:
	case <-m.stopChan:
		m.updateJobStatus(jobID, model.JobStatusFailed, "job manager shutting down")
		return fmt.Errorf("job manager is shutting down")
	}

	m.updateJobStatus(jobID, model.JobStatusRunning, "")

	m.wg.Add(1)
	go func() {
		defer func() {
			<-m.workers
			m.wg.Done()
		}()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-m.stopChan:
				cancel()
			case <-ctx.Done():
			}
		}()

		startTime := time.Now()
		err := runJob(ctx, jobID, jobFunc)
		executionTime := time.Since(startTime)

		// Counters and observers see the outcome before pollers see a terminal status.
		status := model.JobStatusCompleted
		errMsg := ""
		if err != nil {
			status = model.JobStatusFailed
			errMsg = err.Error()
			m.metrics.RecordJobFailed(jobType)
			log.Warn("job_failed", "job_id", jobID, "type", string(jobType),
				"duration_ms", executionTime.Milliseconds(), "error", errMsg)
		} else {
			m.metrics.RecordJobCompleted(jobType, executionTime)
			log.Info("job_completed", "job_id", jobID, "type", string(jobType),
				"duration_ms", executionTime.Milliseconds())
		}
		if m.observer != nil {
			m.observer.JobFinished(jobType, status, executionTime)
		}
		m.updateJobStatus(jobID, status, errMsg)
	}()

	return nil
}

// runJob converts a panic in jobFunc into an error.
func runJob(ctx context.Context, jobID string, jobFunc func(ctx context.Context, jobID string) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return jobFunc(ctx, jobID)
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	job.Progress = model.NewJobProgress(current, total, message)
}

// SetJobMetadata records a key/value result on a job.
func (m *Manager) SetJobMetadata(jobID, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Metadata == nil {
		job.Metadata = make(map[string]string)
	}
	job.Metadata[key] = value
}

// updateJobStatus updates the status of a job (internal method)
func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	now := time.Now()
	switch status {
	case model.JobStatusRunning:
		job.StartedAt = &now
	case model.JobStatusCompleted, model.JobStatusFailed:
		job.CompletedAt = &now
	}

	m.metrics.RecordJobStatusChange(oldStatus, status)
}

// cleanupRoutine runs periodic job cleanup
func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(m.retain)
		case <-m.stopChan:
			return
		}
	}
}

// CleanupOldJobs removes finished jobs older than the specified duration
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0

	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		log.Info("jobs_cleaned_up", "count", cleaned)
	}
	return cleaned
}

// GetMetrics returns current job performance metrics
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
}
