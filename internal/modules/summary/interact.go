package summary

import (
	"context"

	"go.uber.org/zap"
)

const (
	// fallbackTranscription marks a question the collaborator could not
	// transcribe or answer.
	fallbackTranscription = "(unintelligible)"
	fallbackAnswer        = "Sorry, I couldn't catch that. Let's get back to the summary."

	// transcriptContextLimit bounds how much transcript is sent along with a
	// follow-up question.
	transcriptContextLimit = 8000
)

// InteractResult is the spoken reply to a mid-playback question.
type InteractResult struct {
	AnswerText          string
	TranscribedQuestion string
	Audio               []byte
}

// Interact answers a spoken question asked while the summary plays. The
// collaborator failing to transcribe or answer degrades to a fixed apology
// instead of an error, and a TTS failure degrades to empty audio, so the
// caller always gets something to play or show.
func (p *Pipeline) Interact(ctx context.Context, jobID string, questionAudio []byte, currentPosition float64) (*InteractResult, error) {
	job, ok := p.jobs.Get(jobID)
	if !ok || job.Status != JobStatusCompleted || job.Transcript == nil {
		return nil, ErrNotFound
	}

	transcriptContext := job.Transcript.Transcript
	if len(transcriptContext) > transcriptContextLimit {
		transcriptContext = transcriptContext[:transcriptContextLimit]
	}

	result := &InteractResult{}
	followup, err := p.collab.AnswerFollowup(ctx, questionAudio, transcriptContext, job.PageTitle)
	if err != nil {
		p.logger.Warn("follow-up answering failed, using fallback",
			zap.String("job", jobID),
			zap.Error(err))
		result.TranscribedQuestion = fallbackTranscription
		result.AnswerText = fallbackAnswer
	} else {
		result.TranscribedQuestion = followup.TranscribedQuestion
		result.AnswerText = followup.AnswerText
	}

	audio, err := p.collab.SynthesizeSpeech(ctx, result.AnswerText)
	if err != nil {
		p.logger.Warn("follow-up speech synthesis failed, returning empty audio",
			zap.String("job", jobID),
			zap.Error(err))
		audio = []byte{}
	}
	result.Audio = audio

	p.logger.Info("summary interaction answered",
		zap.String("job", jobID),
		zap.Float64("position", currentPosition))
	return result, nil
}
