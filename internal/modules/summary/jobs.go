package summary

import (
	"sync"
	"time"

	"github.com/sherpa-api/core/internal/modules/collaborator"
	"go.uber.org/zap"
)

// JobStatus is the lifecycle state of a summary job. Transitions only run
// forward: pending to completed, or pending to failed.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job tracks one summary-generation request from submission to its terminal
// state. Once completed, the transcript and artifact path are immutable.
type Job struct {
	ID           string
	SessionID    string
	PageURL      string
	PageTitle    string
	Context      string
	Status       JobStatus
	CacheKey     string
	ArtifactPath string
	Transcript   *collaborator.Transcript
	Cached       bool
	Error        string
	CreatedAt    time.Time
	FinishedAt   time.Time
}

// JobStore owns all job records. Every mutation is atomic with respect to
// concurrent pollers and background generators.
type JobStore struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	logger *zap.Logger
}

func NewJobStore(logger *zap.Logger) *JobStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobStore{
		jobs:   make(map[string]*Job),
		logger: logger.Named("JobStore"),
	}
}

// Create records a pending job under id.
func (s *JobStore) Create(id, sessionID, pageURL, pageTitle, contextText string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &Job{
		ID:        id,
		SessionID: sessionID,
		PageURL:   pageURL,
		PageTitle: pageTitle,
		Context:   contextText,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}
	s.jobs[id] = job
	return s.snapshot(job)
}

// SetCacheKey records the content hash computed for a pending job.
func (s *JobStore) SetCacheKey(id, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok && job.Status == JobStatusPending {
		job.CacheKey = key
	}
}

// Complete transitions a pending job to completed. A job already in a
// terminal state is left untouched and false is returned.
func (s *JobStore) Complete(id string, transcript *collaborator.Transcript, artifactPath string, cached bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status != JobStatusPending {
		return false
	}
	job.Status = JobStatusCompleted
	job.Transcript = transcript
	job.ArtifactPath = artifactPath
	job.Cached = cached
	job.FinishedAt = time.Now()
	return true
}

// Fail transitions a pending job to failed with a human-readable error.
func (s *JobStore) Fail(id, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status != JobStatusPending {
		return false
	}
	job.Status = JobStatusFailed
	job.Error = message
	job.FinishedAt = time.Now()
	s.logger.Warn("summary job failed", zap.String("job", id), zap.String("error", message))
	return true
}

// Get returns a snapshot of the job, so pollers never observe a half-applied
// transition.
func (s *JobStore) Get(id string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return s.snapshot(job), true
}

// Sweep removes terminal jobs older than maxAge, best-effort deleting their
// job-owned artifacts. Pending jobs are never swept.
func (s *JobStore) Sweep(maxAge time.Duration, removeArtifact func(path string)) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range s.jobs {
		if job.Status == JobStatusPending || job.CreatedAt.After(cutoff) {
			continue
		}
		if job.ArtifactPath != "" && removeArtifact != nil {
			removeArtifact(job.ArtifactPath)
		}
		delete(s.jobs, id)
		removed++
	}
	if removed > 0 {
		s.logger.Info("job store swept", zap.Int("removed", removed))
	}
	return removed
}

// Len reports the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *JobStore) snapshot(job *Job) *Job {
	copied := *job
	return &copied
}
