package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedJob(t *testing.T, pipeline *Pipeline, sessID string) string {
	t.Helper()
	jobID, err := pipeline.Submit(sessID, "https://x.com", "T", "")
	require.NoError(t, err)
	job := waitForTerminal(t, pipeline, jobID)
	require.Equal(t, JobStatusCompleted, job.Status)
	return jobID
}

func TestInteractUnknownJob(t *testing.T) {
	pipeline, _ := newTestPipeline(t, &fakeCollaborator{})
	_, err := pipeline.Interact(context.Background(), "job_missing", []byte("audio"), 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInteractPendingJobNotFound(t *testing.T) {
	fake := &fakeCollaborator{gate: make(chan struct{})}
	pipeline, sessID := newTestPipeline(t, fake)

	jobID, err := pipeline.Submit(sessID, "https://x.com", "T", "")
	require.NoError(t, err)

	_, err = pipeline.Interact(context.Background(), jobID, []byte("audio"), 0)
	assert.ErrorIs(t, err, ErrNotFound)

	close(fake.gate)
	waitForTerminal(t, pipeline, jobID)
}

func TestInteractAnswersQuestion(t *testing.T) {
	fake := &fakeCollaborator{answerText: "It covers AI trends. Now, back to the summary."}
	pipeline, sessID := newTestPipeline(t, fake)
	jobID := completedJob(t, pipeline, sessID)

	result, err := pipeline.Interact(context.Background(), jobID, []byte("audio"), 12.5)
	require.NoError(t, err)
	assert.Equal(t, "what is this about", result.TranscribedQuestion)
	assert.Equal(t, "It covers AI trends. Now, back to the summary.", result.AnswerText)
	assert.NotEmpty(t, result.Audio)
}

func TestInteractCollaboratorFailureFallsBack(t *testing.T) {
	fake := &fakeCollaborator{}
	pipeline, sessID := newTestPipeline(t, fake)
	jobID := completedJob(t, pipeline, sessID)
	fake.followupErr = errors.New("whisper down")

	result, err := pipeline.Interact(context.Background(), jobID, []byte("audio"), 0)
	require.NoError(t, err)
	assert.Equal(t, "(unintelligible)", result.TranscribedQuestion)
	assert.Equal(t, "Sorry, I couldn't catch that. Let's get back to the summary.", result.AnswerText)
	assert.NotEmpty(t, result.Audio)
}

func TestInteractTTSFailureReturnsEmptyAudio(t *testing.T) {
	fake := &fakeCollaborator{}
	pipeline, sessID := newTestPipeline(t, fake)
	jobID := completedJob(t, pipeline, sessID)
	fake.speechErr = errors.New("tts down")

	result, err := pipeline.Interact(context.Background(), jobID, []byte("audio"), 0)
	require.NoError(t, err)
	assert.Equal(t, "what is this about", result.TranscribedQuestion)
	assert.NotEmpty(t, result.AnswerText)
	assert.Empty(t, result.Audio)
}
