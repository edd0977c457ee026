package interpret

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sherpa-api/core/internal/modules/collaborator"
	"github.com/sherpa-api/core/internal/modules/session"
	"go.uber.org/zap"
)

var (
	// ErrSessionNotFound is returned when the session id is unknown or the
	// session has expired.
	ErrSessionNotFound = errors.New("invalid or expired session")
	// ErrInvalidInput is returned when neither audio nor text is provided.
	ErrInvalidInput = errors.New("either audio (in voice mode) or text must be provided")
)

// Telemetry reports measured processing times for a single interpretation.
type Telemetry struct {
	ASRMs int64 `json:"asr_ms"`
	NLUMs int64 `json:"nlu_ms"`
}

// Result is the interpretation plus its telemetry.
type Result struct {
	collaborator.InterpretResult
	Telemetry Telemetry `json:"telemetry"`
}

// Service resolves commands against a session's section map.
type Service struct {
	sessions *session.Service
	collab   collaborator.Client
	logger   *zap.Logger
}

func NewService(sessions *session.Service, collab collaborator.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions: sessions,
		collab:   collab,
		logger:   logger.Named("InterpretService"),
	}
}

// Interpret resolves a voice or text command for the given session. Audio
// takes precedence over text when both are present.
func (s *Service) Interpret(ctx context.Context, sessionID string, input collaborator.Input) (*Result, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if len(input.Audio) == 0 && strings.TrimSpace(input.Text) == "" {
		return nil, ErrInvalidInput
	}

	start := time.Now()
	interpreted, err := s.collab.Interpret(ctx, &sess.SectionMap, input)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Warn("interpretation failed", zap.String("session", sessionID), zap.Error(err))
		return nil, err
	}

	if interpreted.TargetSectionID != "" {
		interpreted.TargetSectionID = sess.SectionMap.ResolveAlias(interpreted.TargetSectionID)
	}

	// The collaborator transcribes and interprets in one round trip, so the
	// split is attributed: transcription time when audio was sent, the rest
	// as language understanding.
	telemetry := Telemetry{NLUMs: elapsed.Milliseconds()}
	if len(input.Audio) > 0 && interpreted.Transcription != "" {
		telemetry.ASRMs = elapsed.Milliseconds() / 2
		telemetry.NLUMs = elapsed.Milliseconds() - telemetry.ASRMs
	}

	s.logger.Info("command interpreted",
		zap.String("session", sessionID),
		zap.String("intent", interpreted.Intent),
		zap.String("target", interpreted.TargetSectionID))

	return &Result{
		InterpretResult: *interpreted,
		Telemetry:       telemetry,
	}, nil
}
