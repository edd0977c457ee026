package collaborator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appcfg "github.com/sherpa-api/core/internal/config"
	"github.com/sherpa-api/core/internal/modules/session"
	"go.uber.org/zap"
)

const (
	interpretMaxTokens  = 1024
	answerMaxTokens     = 1024
	transcriptMaxTokens = 8192
)

// Service talks to the configured generative-AI providers. Text generation
// goes through the first enabled provider, audio through the first enabled
// OpenAI-style provider.
type Service struct {
	cfg     appcfg.AIConfig
	timeout time.Duration
	logger  *zap.Logger
}

var _ Client = (*Service)(nil)

func NewService(cfg appcfg.AIConfig, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:     cfg,
		timeout: timeout,
		logger:  logger.Named("Collaborator"),
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) generateJSON(ctx context.Context, systemPrompt, prompt string, maxTokens int, out interface{}) error {
	provider := selectProvider(s.cfg)
	if provider == nil {
		return ErrNoProvider
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := callAIWithSystemPrompt(ctx, provider, systemPrompt, prompt, maxTokens)
	if err != nil {
		return err
	}
	return unmarshalAIJSON(raw, out)
}

// Interpret resolves a voice or text command against a section map. Audio is
// transcribed first, then interpreted as text.
func (s *Service) Interpret(ctx context.Context, sectionMap *session.SectionMap, input Input) (*InterpretResult, error) {
	transcription := ""
	if len(input.Audio) > 0 {
		transcribed, err := s.transcribe(ctx, input.Audio)
		if err != nil {
			return nil, fmt.Errorf("transcribe command: %w", err)
		}
		transcription = transcribed
	}
	if transcription == "" && strings.TrimSpace(input.Text) == "" {
		return nil, errors.New("either audio or text must be provided")
	}

	var result InterpretResult
	err := s.generateJSON(
		ctx,
		buildInterpretSystemPrompt(sectionMap),
		buildInterpretPrompt(input, transcription),
		interpretMaxTokens,
		&result,
	)
	if err != nil {
		return nil, err
	}

	result.Intent = normalizeIntent(result.Intent)
	if transcription != "" {
		result.Transcription = transcription
	}
	if result.Alternatives == nil {
		result.Alternatives = []Alternative{}
	}
	s.logger.Debug("command interpreted",
		zap.String("intent", result.Intent),
		zap.String("target", result.TargetSectionID),
		zap.Float64("confidence", result.Confidence))
	return &result, nil
}

// AnswerGeneralQuestion answers a free-form question against optional page
// context.
func (s *Service) AnswerGeneralQuestion(ctx context.Context, question, contextText, pageTitle, pageURL string) (*Answer, error) {
	var answer Answer
	err := s.generateJSON(
		ctx,
		generalQuestionSystemPrompt,
		buildGeneralQuestionPrompt(question, contextText, pageTitle, pageURL),
		answerMaxTokens,
		&answer,
	)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(answer.TTSText) == "" {
		answer.TTSText = answer.Answer
	}
	return &answer, nil
}

// SynthesizeTranscript produces the narrated summary text for a page.
func (s *Service) SynthesizeTranscript(ctx context.Context, sectionMap *session.SectionMap, pageURL, pageTitle, contextText string) (*Transcript, error) {
	var transcript Transcript
	err := s.generateJSON(
		ctx,
		buildTranscriptSystemPrompt(sectionMap),
		buildTranscriptPrompt(pageURL, pageTitle, contextText),
		transcriptMaxTokens,
		&transcript,
	)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transcript.Transcript) == "" {
		return nil, errors.New("empty transcript from AI")
	}
	if transcript.PlaybackTimes == nil {
		transcript.PlaybackTimes = []PlaybackTime{}
	}
	return &transcript, nil
}

// SynthesizeSpeech renders text to WAV audio.
func (s *Service) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	provider := selectSpeechProvider(s.cfg)
	if provider == nil {
		return nil, ErrNoSpeechProvider
	}
	client, err := buildSpeechClient(provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	audio, err := synthesizeSpeechWAV(ctx, client, s.cfg.TTSModel, s.cfg.TTSVoice, flattenMarkdown(text))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("speech synthesized", zap.Int("bytes", len(audio)))
	return audio, nil
}

// AnswerFollowup transcribes a spoken question and answers it against the
// transcript context.
func (s *Service) AnswerFollowup(ctx context.Context, questionAudio []byte, transcriptContext, pageTitle string) (*Followup, error) {
	question, err := s.transcribe(ctx, questionAudio)
	if err != nil {
		return nil, fmt.Errorf("transcribe question: %w", err)
	}
	if question == "" {
		return nil, errors.New("empty transcription")
	}

	var answer struct {
		AnswerText string `json:"answer_text"`
	}
	err = s.generateJSON(
		ctx,
		buildFollowupSystemPrompt(pageTitle, transcriptContext),
		"Question: "+question,
		answerMaxTokens,
		&answer,
	)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(answer.AnswerText) == "" {
		return nil, errors.New("empty answer from AI")
	}

	return &Followup{
		TranscribedQuestion: question,
		AnswerText:          answer.AnswerText,
	}, nil
}

func (s *Service) transcribe(ctx context.Context, audio []byte) (string, error) {
	provider := selectSpeechProvider(s.cfg)
	if provider == nil {
		return "", ErrNoSpeechProvider
	}
	client, err := buildSpeechClient(provider)
	if err != nil {
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return transcribeAudio(ctx, client, s.cfg.TranscriptionModel, audio)
}

func normalizeIntent(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case IntentNavigate:
		return IntentNavigate
	case IntentReadSection:
		return IntentReadSection
	case IntentListSections:
		return IntentListSections
	default:
		return IntentUnknown
	}
}
