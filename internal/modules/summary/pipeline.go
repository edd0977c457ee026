package summary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sherpa-api/core/internal/modules/collaborator"
	"github.com/sherpa-api/core/internal/modules/session"
	"github.com/sherpa-api/core/internal/pkg/ident"
	"go.uber.org/zap"
)

var (
	// ErrSessionNotFound is returned when a submission names an unknown or
	// expired session.
	ErrSessionNotFound = errors.New("invalid or expired session")
	// ErrNotFound is returned when a job is unknown, not yet completed, or
	// its artifact is gone.
	ErrNotFound = errors.New("summary not found")
)

// inflight tracks one in-progress generation for a content hash so that
// concurrent identical submissions fan in to a single upstream call.
type inflight struct {
	done         chan struct{}
	transcript   *collaborator.Transcript
	artifactPath string
	err          error
}

// Pipeline turns summary submissions into audio artifacts. Submission
// returns a job id immediately; generation runs in a detached goroutine and
// reports through the job store.
type Pipeline struct {
	jobs        *JobStore
	cache       *ArtifactCache
	sessions    *session.Service
	collab      collaborator.Client
	artifactDir string
	logger      *zap.Logger

	mu       sync.Mutex
	inflight map[string]*inflight
}

func NewPipeline(jobs *JobStore, cache *ArtifactCache, sessions *session.Service, collab collaborator.Client, artifactDir string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		jobs:        jobs,
		cache:       cache,
		sessions:    sessions,
		collab:      collab,
		artifactDir: artifactDir,
		logger:      logger.Named("SummaryPipeline"),
		inflight:    make(map[string]*inflight),
	}
}

// Submit registers a summary job and returns its id without waiting for
// generation. A cache hit completes the job synchronously with a job-owned
// copy of the cached artifact; a miss dispatches background generation, and
// concurrent submissions for the same content adopt the one in flight.
func (p *Pipeline) Submit(sessionID, pageURL, pageTitle, contextText string) (string, error) {
	sess, ok := p.sessions.Get(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}
	sectionMap := sess.SectionMap

	jobID := ident.NewJobID()
	p.jobs.Create(jobID, sessionID, pageURL, pageTitle, contextText)

	key := contentHash(pageURL, pageTitle, contextText)
	p.jobs.SetCacheKey(jobID, key)

	if entry, hit := p.cache.Lookup(key); hit {
		p.adoptCachedResult(jobID, entry.ArtifactPath, entry.Transcript)
		return jobID, nil
	}

	p.mu.Lock()
	if fl, running := p.inflight[key]; running {
		p.mu.Unlock()
		go p.awaitInflight(jobID, fl)
		return jobID, nil
	}
	fl := &inflight{done: make(chan struct{})}
	p.inflight[key] = fl
	p.mu.Unlock()

	go p.generate(context.Background(), jobID, key, fl, &sectionMap)
	return jobID, nil
}

// generate runs the transcript and speech steps for one content hash, then
// publishes the result to the cache, the owning job, and any waiters.
func (p *Pipeline) generate(ctx context.Context, jobID, key string, fl *inflight, sectionMap *session.SectionMap) {
	job, ok := p.jobs.Get(jobID)
	if !ok {
		p.finishInflight(key, fl, errors.New("job disappeared before generation"))
		return
	}

	transcript, err := p.collab.SynthesizeTranscript(ctx, sectionMap, job.PageURL, job.PageTitle, job.Context)
	if err != nil {
		p.jobs.Fail(jobID, fmt.Sprintf("transcript generation failed: %v", err))
		p.finishInflight(key, fl, err)
		return
	}

	audio, err := p.collab.SynthesizeSpeech(ctx, transcript.Transcript)
	if err != nil {
		p.jobs.Fail(jobID, fmt.Sprintf("speech synthesis failed: %v", err))
		p.finishInflight(key, fl, err)
		return
	}

	cachePath := p.cacheArtifactPath(key)
	jobPath := p.jobArtifactPath(jobID)
	if err := p.writeArtifact(cachePath, audio); err != nil {
		p.jobs.Fail(jobID, fmt.Sprintf("artifact write failed: %v", err))
		p.finishInflight(key, fl, err)
		return
	}
	if err := p.writeArtifact(jobPath, audio); err != nil {
		p.jobs.Fail(jobID, fmt.Sprintf("artifact write failed: %v", err))
		p.finishInflight(key, fl, err)
		return
	}

	p.cache.Store(key, cachePath, transcript)
	p.jobs.Complete(jobID, transcript, jobPath, false)
	p.logger.Info("summary generated",
		zap.String("job", jobID),
		zap.String("url", job.PageURL),
		zap.Int("audio_bytes", len(audio)))

	fl.transcript = transcript
	fl.artifactPath = cachePath
	p.finishInflight(key, fl, nil)
}

// awaitInflight parks a duplicate submission until the owning generation
// resolves, then adopts its result as a cache hit.
func (p *Pipeline) awaitInflight(jobID string, fl *inflight) {
	<-fl.done
	if fl.err != nil {
		p.jobs.Fail(jobID, fmt.Sprintf("summary generation failed: %v", fl.err))
		return
	}
	p.adoptCachedResult(jobID, fl.artifactPath, fl.transcript)
}

// adoptCachedResult copies a cache-owned artifact into a job-owned file so
// a later cache sweep cannot take the audio out from under the job.
func (p *Pipeline) adoptCachedResult(jobID, cachedArtifactPath string, transcript *collaborator.Transcript) {
	jobPath := p.jobArtifactPath(jobID)
	if err := copyFile(cachedArtifactPath, jobPath); err != nil {
		p.jobs.Fail(jobID, fmt.Sprintf("cached artifact copy failed: %v", err))
		return
	}
	p.jobs.Complete(jobID, transcript, jobPath, true)
	p.logger.Info("summary served from cache", zap.String("job", jobID))
}

// GetAudio returns the completed job's audio bytes. Unknown job, pending or
// failed job, and a missing artifact all report not-found.
func (p *Pipeline) GetAudio(jobID string) ([]byte, error) {
	job, ok := p.jobs.Get(jobID)
	if !ok || job.Status != JobStatusCompleted || job.ArtifactPath == "" {
		return nil, ErrNotFound
	}
	audio, err := os.ReadFile(job.ArtifactPath)
	if err != nil {
		p.logger.Warn("job artifact missing on read",
			zap.String("job", jobID),
			zap.String("path", job.ArtifactPath))
		return nil, ErrNotFound
	}
	return audio, nil
}

// GetTranscript returns the completed job's transcript.
func (p *Pipeline) GetTranscript(jobID string) (*collaborator.Transcript, error) {
	job, ok := p.jobs.Get(jobID)
	if !ok || job.Status != JobStatusCompleted || job.Transcript == nil {
		return nil, ErrNotFound
	}
	return job.Transcript, nil
}

// Job exposes a snapshot of the job record for status polling.
func (p *Pipeline) Job(jobID string) (*Job, bool) {
	return p.jobs.Get(jobID)
}

// CacheStats reports the artifact cache's entry count and byte total.
func (p *Pipeline) CacheStats() CacheStats {
	return p.cache.Stats()
}

// SweepJobs removes terminal jobs older than maxAge along with their
// job-owned artifacts.
func (p *Pipeline) SweepJobs(maxAge time.Duration) int {
	return p.jobs.Sweep(maxAge, func(path string) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("failed to delete job artifact", zap.String("path", path), zap.Error(err))
		}
	})
}

func (p *Pipeline) finishInflight(key string, fl *inflight, err error) {
	p.mu.Lock()
	delete(p.inflight, key)
	p.mu.Unlock()
	fl.err = err
	close(fl.done)
}

func (p *Pipeline) cacheArtifactPath(key string) string {
	return filepath.Join(p.artifactDir, "cache_"+key+".wav")
}

func (p *Pipeline) jobArtifactPath(jobID string) string {
	return filepath.Join(p.artifactDir, jobID+".wav")
}

func (p *Pipeline) writeArtifact(path string, audio []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, audio, 0o644)
}

func copyFile(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, content, 0o644)
}
