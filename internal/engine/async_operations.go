package engine

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/StatTag/StatWrap-sub000/internal/errors"
	"github.com/StatTag/StatWrap-sub000/internal/jobs"
	"github.com/StatTag/StatWrap-sub000/model"
)

// InitializeAsync runs Initialize as a background job and returns its ID.
func (s *Service) InitializeAsync(projects []model.Project) (string, error) {
	if err := s.checkIdle(); err != nil {
		return "", err
	}

	jobID := s.jobManager.CreateJob(model.JobTypeInitialize, map[string]string{
		"operation":     "initialize",
		"project_count": strconv.Itoa(len(projects)),
	})

	err := s.jobManager.ExecuteJob(jobID, func(ctx context.Context, jobID string) error {
		return s.executeInitializeJob(ctx, projects, jobID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start initialize job: %w", err)
	}
	return jobID, nil
}

func (s *Service) executeInitializeJob(ctx context.Context, projects []model.Project, jobID string) error {
	s.jobManager.UpdateJobProgress(jobID, 0, len(projects), "Starting initialization")

	result, err := s.initialize(ctx, projects, s.jobProgress(jobID))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	s.jobManager.SetJobMetadata(jobID, "documents", strconv.Itoa(result.Documents))
	s.jobManager.SetJobMetadata(jobID, "full_index", strconv.FormatBool(result.FullIndex))
	s.jobManager.SetJobMetadata(jobID, "added", strconv.Itoa(len(result.Added)))
	s.jobManager.SetJobMetadata(jobID, "removed", strconv.Itoa(len(result.Removed)))
	s.jobManager.UpdateJobProgress(jobID, len(projects), len(projects), "Initialization completed")
	return nil
}

// ReindexAllAsync runs ReindexAll as a background job and returns its ID.
func (s *Service) ReindexAllAsync() (string, error) {
	if err := s.checkIdle(); err != nil {
		return "", err
	}

	projects, _ := s.knownProjects()
	jobID := s.jobManager.CreateJob(model.JobTypeReindex, map[string]string{
		"operation":     "reindex",
		"project_count": strconv.Itoa(len(projects)),
	})

	err := s.jobManager.ExecuteJob(jobID, func(ctx context.Context, jobID string) error {
		s.jobManager.UpdateJobProgress(jobID, 0, len(projects), "Starting reindex")
		if err := s.reindexAll(ctx, s.jobProgress(jobID)); err != nil {
			return err
		}
		s.jobManager.SetJobMetadata(jobID, "documents", strconv.Itoa(s.documentStore.Size()))
		s.jobManager.UpdateJobProgress(jobID, len(projects), len(projects), "Reindex completed")
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to start reindex job: %w", err)
	}
	return jobID, nil
}

// checkIdle rejects a new indexing job up front; the job itself checks again.
func (s *Service) checkIdle() error {
	if s.closed.Load() {
		return apperrors.ErrClosed
	}
	if s.indexing.Load() {
		return apperrors.ErrIndexingInProgress
	}
	return nil
}

func (s *Service) jobProgress(jobID string) ProgressFunc {
	return func(done, total int, message string) {
		s.jobManager.UpdateJobProgress(jobID, done, total, message)
	}
}

// GetJob returns the job with the given ID.
func (s *Service) GetJob(jobID string) (*model.Job, error) {
	return s.jobManager.GetJob(jobID)
}

// ListJobs returns known jobs, newest first, optionally filtered by status.
func (s *Service) ListJobs(status *model.JobStatus) []*model.Job {
	return s.jobManager.ListJobs(status)
}

// JobMetrics returns job counters.
func (s *Service) JobMetrics() jobs.JobMetricsData {
	return s.jobManager.GetMetrics()
}
