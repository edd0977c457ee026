package collaborator

import (
	"context"
	"errors"

	"github.com/sherpa-api/core/internal/modules/session"
)

// Intent values returned by Interpret.
const (
	IntentNavigate     = "NAVIGATE"
	IntentReadSection  = "READ_SECTION"
	IntentListSections = "LIST_SECTIONS"
	IntentUnknown      = "UNKNOWN"
)

var (
	// ErrNoProvider is returned when no enabled AI provider is configured.
	ErrNoProvider = errors.New("no enabled AI provider")
	// ErrNoSpeechProvider is returned when audio operations are requested but
	// no speech-capable (OpenAI-style) provider is enabled.
	ErrNoSpeechProvider = errors.New("no enabled speech-capable AI provider")
)

// Input is the command to interpret: spoken audio or typed text, plus an
// optional hint ("navigate", "read", "list").
type Input struct {
	Audio []byte
	Text  string
	Hint  string
}

type Alternative struct {
	Label      string  `json:"label"`
	SectionID  string  `json:"section_id"`
	Confidence float64 `json:"confidence"`
}

// InterpretResult is the structured interpretation of a command.
type InterpretResult struct {
	Intent          string        `json:"intent"`
	TargetSectionID string        `json:"target_section_id"`
	Confidence      float64       `json:"confidence"`
	TTSText         string        `json:"tts_text"`
	Transcription   string        `json:"transcription,omitempty"`
	Alternatives    []Alternative `json:"alternatives"`
}

// Answer is the response to a general question.
type Answer struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	TTSText    string  `json:"tts_text"`
}

type PlaybackTime struct {
	Name         string `json:"name"`
	PlaybackTime string `json:"playback_time"` // "mm:ss"
}

// Transcript is a narrated long-form summary with per-section playback
// markers.
type Transcript struct {
	Transcript    string         `json:"transcript"`
	PlaybackTimes []PlaybackTime `json:"playback_times"`
}

// Followup is the answer to a spoken question asked mid-playback.
type Followup struct {
	TranscribedQuestion string `json:"transcribed_question"`
	AnswerText          string `json:"answer_text"`
}

// Client is the boundary to the external generative-AI service. Every call
// is blocking I/O bounded by the service's configured timeout.
type Client interface {
	// Interpret resolves a voice or text command against a section map.
	Interpret(ctx context.Context, sectionMap *session.SectionMap, input Input) (*InterpretResult, error)

	// AnswerGeneralQuestion answers a free-form question with optional page context.
	AnswerGeneralQuestion(ctx context.Context, question, contextText, pageTitle, pageURL string) (*Answer, error)

	// SynthesizeTranscript produces the narrated summary text for a page.
	SynthesizeTranscript(ctx context.Context, sectionMap *session.SectionMap, pageURL, pageTitle, contextText string) (*Transcript, error)

	// SynthesizeSpeech renders text to audio (WAV bytes).
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)

	// AnswerFollowup transcribes a spoken question and answers it against
	// the transcript context.
	AnswerFollowup(ctx context.Context, questionAudio []byte, transcriptContext, pageTitle string) (*Followup, error)
}
