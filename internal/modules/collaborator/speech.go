package collaborator

import (
	"bytes"
	"context"
	"io"
	"strings"

	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	appcfg "github.com/sherpa-api/core/internal/config"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func buildSpeechClient(provider *appcfg.AIProvider) (*openaiclient.Client, error) {
	if provider == nil {
		return nil, ErrNoSpeechProvider
	}
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(provider.APIKey)),
	}
	if normalized := normalizeOpenAIBaseURL(provider.Endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	client := openaiclient.NewClient(opts...)
	return &client, nil
}

func synthesizeSpeechWAV(ctx context.Context, client *openaiclient.Client, model, voice, input string) ([]byte, error) {
	resp, err := client.Audio.Speech.New(ctx, openaiclient.AudioSpeechNewParams{
		Model:          openaiclient.SpeechModel(model),
		Input:          input,
		Voice:          openaiclient.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openaiclient.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func transcribeAudio(ctx context.Context, client *openaiclient.Client, model string, audio []byte) (string, error) {
	transcription, err := client.Audio.Transcriptions.New(ctx, openaiclient.AudioTranscriptionNewParams{
		Model: openaiclient.AudioModel(model),
		File:  openaiclient.File(bytes.NewReader(audio), "question.wav", "audio/wav"),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(transcription.Text), nil
}

// flattenMarkdown strips markdown structure out of model output so the TTS
// input reads as plain spoken text. Input without markdown passes through
// unchanged apart from whitespace normalization.
func flattenMarkdown(input string) string {
	source := []byte(input)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if _, isBlock := n.(*ast.Paragraph); isBlock && b.Len() > 0 {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString(" ")
			}
		case *ast.AutoLink:
			b.Write(node.URL(source))
		}
		return ast.WalkContinue, nil
	})

	flattened := strings.TrimSpace(b.String())
	if flattened == "" {
		return strings.TrimSpace(input)
	}
	return flattened
}
