package summary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sherpa-api/core/internal/modules/collaborator"
	"github.com/sherpa-api/core/internal/modules/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCollaborator scripts the external AI service for pipeline tests.
type fakeCollaborator struct {
	mu              sync.Mutex
	transcriptCalls int
	speechCalls     int
	followupCalls   int

	transcriptErr error
	speechErr     error
	followupErr   error

	transcriptText string
	answerText     string

	// gate, when set, blocks transcript generation until released.
	gate chan struct{}
}

func (f *fakeCollaborator) Interpret(ctx context.Context, sectionMap *session.SectionMap, input collaborator.Input) (*collaborator.InterpretResult, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeCollaborator) AnswerGeneralQuestion(ctx context.Context, question, contextText, pageTitle, pageURL string) (*collaborator.Answer, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeCollaborator) SynthesizeTranscript(ctx context.Context, sectionMap *session.SectionMap, pageURL, pageTitle, contextText string) (*collaborator.Transcript, error) {
	f.mu.Lock()
	f.transcriptCalls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.transcriptErr != nil {
		return nil, f.transcriptErr
	}
	text := f.transcriptText
	if text == "" {
		text = "Welcome to the page. First, the main article."
	}
	return &collaborator.Transcript{
		Transcript:    text,
		PlaybackTimes: []collaborator.PlaybackTime{{Name: "Main article", PlaybackTime: "00:00"}},
	}, nil
}

func (f *fakeCollaborator) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	f.speechCalls++
	f.mu.Unlock()
	if f.speechErr != nil {
		return nil, f.speechErr
	}
	return []byte("RIFF-audio:" + text[:min(8, len(text))]), nil
}

func (f *fakeCollaborator) AnswerFollowup(ctx context.Context, questionAudio []byte, transcriptContext, pageTitle string) (*collaborator.Followup, error) {
	f.mu.Lock()
	f.followupCalls++
	f.mu.Unlock()
	if f.followupErr != nil {
		return nil, f.followupErr
	}
	answer := f.answerText
	if answer == "" {
		answer = "It covers AI trends. Now, back to the summary."
	}
	return &collaborator.Followup{
		TranscribedQuestion: "what is this about",
		AnswerText:          answer,
	}, nil
}

func (f *fakeCollaborator) calls() (transcript, speech int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transcriptCalls, f.speechCalls
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func newTestPipeline(t *testing.T, collab collaborator.Client) (*Pipeline, string) {
	t.Helper()
	sessions := session.NewService(time.Hour, zap.NewNop())
	sess := sessions.Create(session.CreateInput{
		URL:    "https://x.com",
		Locale: "en-US",
		SectionMap: session.SectionMap{
			Title:    "T",
			Sections: []session.Section{{ID: "main-article", Label: "Main article", Role: "main"}},
		},
	})
	pipeline := NewPipeline(NewJobStore(zap.NewNop()), NewArtifactCache(zap.NewNop()), sessions, collab, t.TempDir(), zap.NewNop())
	return pipeline, sess.ID
}

func waitForTerminal(t *testing.T, p *Pipeline, jobID string) *Job {
	t.Helper()
	require.Eventually(t, func() bool {
		job, ok := p.Job(jobID)
		return ok && job.Status != JobStatusPending
	}, 2*time.Second, 5*time.Millisecond)
	job, _ := p.Job(jobID)
	return job
}

func TestSubmitUnknownSession(t *testing.T) {
	pipeline, _ := newTestPipeline(t, &fakeCollaborator{})
	_, err := pipeline.Submit("sess_missing", "https://x.com", "T", "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitGeneratesSummary(t *testing.T) {
	fake := &fakeCollaborator{}
	pipeline, sessID := newTestPipeline(t, fake)

	jobID, err := pipeline.Submit(sessID, "https://x.com", "T", "")
	require.NoError(t, err)
	assert.Regexp(t, `^job_[0-9a-f]{12}$`, jobID)

	job := waitForTerminal(t, pipeline, jobID)
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.False(t, job.Cached)

	audio, err := pipeline.GetAudio(jobID)
	require.NoError(t, err)
	assert.NotEmpty(t, audio)

	transcript, err := pipeline.GetTranscript(jobID)
	require.NoError(t, err)
	assert.NotEmpty(t, transcript.Transcript)
	assert.Equal(t, 1, pipeline.CacheStats().Entries)
}

func TestSecondSubmissionHitsCache(t *testing.T) {
	fake := &fakeCollaborator{transcriptText: "Identical narration text."}
	pipeline, sessID := newTestPipeline(t, fake)

	first, err := pipeline.Submit(sessID, "https://x.com", "T", "")
	require.NoError(t, err)
	firstJob := waitForTerminal(t, pipeline, first)
	require.Equal(t, JobStatusCompleted, firstJob.Status)

	second, err := pipeline.Submit(sessID, "https://x.com", "T", "")
	require.NoError(t, err)
	secondJob := waitForTerminal(t, pipeline, second)

	assert.Equal(t, JobStatusCompleted, secondJob.Status)
	assert.True(t, secondJob.Cached)

	firstTranscript, err := pipeline.GetTranscript(first)
	require.NoError(t, err)
	secondTranscript, err := pipeline.GetTranscript(second)
	require.NoError(t, err)
	assert.Equal(t, firstTranscript.Transcript, secondTranscript.Transcript)

	transcriptCalls, _ := fake.calls()
	assert.Equal(t, 1, transcriptCalls, "cache hit must not re-invoke generation")
}

func TestConcurrentSubmissionsFanIn(t *testing.T) {
	fake := &fakeCollaborator{gate: make(chan struct{})}
	pipeline, sessID := newTestPipeline(t, fake)

	first, err := pipeline.Submit(sessID, "https://x.com", "T", "")
	require.NoError(t, err)
	second, err := pipeline.Submit(sessID, "https://x.com", "T", "")
	require.NoError(t, err)

	close(fake.gate)

	firstJob := waitForTerminal(t, pipeline, first)
	secondJob := waitForTerminal(t, pipeline, second)
	assert.Equal(t, JobStatusCompleted, firstJob.Status)
	assert.Equal(t, JobStatusCompleted, secondJob.Status)
	assert.True(t, secondJob.Cached)

	transcriptCalls, _ := fake.calls()
	assert.Equal(t, 1, transcriptCalls, "duplicate in-flight submissions must share one upstream call")
}

func TestTranscriptFailureFailsJob(t *testing.T) {
	fake := &fakeCollaborator{transcriptErr: errors.New("model unavailable")}
	pipeline, sessID := newTestPipeline(t, fake)

	jobID, err := pipeline.Submit(sessID, "https://x.com", "T", "")
	require.NoError(t, err)

	job := waitForTerminal(t, pipeline, jobID)
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Contains(t, job.Error, "transcript generation failed")

	_, err = pipeline.GetAudio(jobID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSpeechFailureFailsJob(t *testing.T) {
	fake := &fakeCollaborator{speechErr: errors.New("tts down")}
	pipeline, sessID := newTestPipeline(t, fake)

	jobID, err := pipeline.Submit(sessID, "https://x.com", "T", "")
	require.NoError(t, err)

	job := waitForTerminal(t, pipeline, jobID)
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Contains(t, job.Error, "speech synthesis failed")
}

func TestGetAudioPendingJobNotFound(t *testing.T) {
	fake := &fakeCollaborator{gate: make(chan struct{})}
	pipeline, sessID := newTestPipeline(t, fake)

	jobID, err := pipeline.Submit(sessID, "https://x.com", "T", "")
	require.NoError(t, err)

	_, audioErr := pipeline.GetAudio(jobID)
	assert.ErrorIs(t, audioErr, ErrNotFound)
	_, transcriptErr := pipeline.GetTranscript(jobID)
	assert.ErrorIs(t, transcriptErr, ErrNotFound)

	close(fake.gate)
	waitForTerminal(t, pipeline, jobID)
}

func TestGetAudioUnknownJob(t *testing.T) {
	pipeline, _ := newTestPipeline(t, &fakeCollaborator{})
	_, err := pipeline.GetAudio("job_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
