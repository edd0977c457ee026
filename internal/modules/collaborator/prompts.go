package collaborator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sherpa-api/core/internal/modules/session"
)

const interpretSystemPromptTemplate = `You are a helpful assistant that interprets voice or text commands to navigate through different sections of a web page.
You are given a section map of the page and a command.
You need to return the intent, target section id, confidence, tts text, transcription, and alternatives.
The intent must be one of NAVIGATE, READ_SECTION, LIST_SECTIONS, or UNKNOWN.
The target section id is the id of the section the user wants, taken from the section map. Leave it empty for LIST_SECTIONS and UNKNOWN.
The confidence is a number between 0 and 1.
The tts text is a short confirmation line the client can speak back to the user.
If the command is ambiguous, fill alternatives with the plausible sections and lower the confidence.

Respond with a single JSON object of this shape and nothing else:
{"intent": "...", "target_section_id": "...", "confidence": 0.0, "tts_text": "...", "transcription": "...", "alternatives": [{"label": "...", "section_id": "...", "confidence": 0.0}]}

Section map:
%s`

const generalQuestionSystemPrompt = `You are a helpful assistant answering a user's question about a web page they are browsing.
Use the provided page context when it is relevant. If the context does not cover the question, answer from general knowledge and say so briefly.
Keep the answer concise and speakable.

Respond with a single JSON object of this shape and nothing else:
{"answer": "...", "confidence": 0.0, "tts_text": "..."}`

const transcriptSystemPromptTemplate = `You are a narrator producing a spoken summary of a web page for a listener who cannot see it.
You are given the page's section map and extracted content.
Write a flowing transcript that walks through the page section by section, in the order listed. Speak naturally, as if guiding the listener. Do not use markdown or headings.
Also estimate where each section starts in the narration, assuming roughly 150 spoken words per minute, and report it as mm:ss playback times.

Respond with a single JSON object of this shape and nothing else:
{"transcript": "...", "playback_times": [{"name": "<section label>", "playback_time": "mm:ss"}]}

Section map:
%s`

const followupSystemPromptTemplate = `You are narrating a spoken summary of a web page. The listener paused playback to ask a question.
Answer the question using the transcript below. If the transcript does not cover it, answer from general knowledge and note that briefly.
Keep the answer short and speakable, and end with a natural transition back to the summary, such as "Now, back to the summary."

Respond with a single JSON object of this shape and nothing else:
{"answer_text": "..."}

Page title: %s

Transcript:
%s`

func marshalSectionMap(m *session.SectionMap) string {
	if m == nil {
		return "{}"
	}
	encoded, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func buildInterpretSystemPrompt(m *session.SectionMap) string {
	return fmt.Sprintf(interpretSystemPromptTemplate, marshalSectionMap(m))
}

func buildInterpretPrompt(in Input, transcription string) string {
	var b strings.Builder
	if transcription != "" {
		fmt.Fprintf(&b, "Command: %s", transcription)
	} else {
		fmt.Fprintf(&b, "Command: %s", in.Text)
	}
	if hint := strings.TrimSpace(in.Hint); hint != "" {
		fmt.Fprintf(&b, "\nHint: the user likely wants to %s.", hint)
	}
	return b.String()
}

func buildGeneralQuestionPrompt(question, contextText, pageTitle, pageURL string) string {
	var b strings.Builder
	if pageTitle != "" {
		fmt.Fprintf(&b, "Page title: %s\n", pageTitle)
	}
	if pageURL != "" {
		fmt.Fprintf(&b, "Page URL: %s\n", pageURL)
	}
	if contextText != "" {
		fmt.Fprintf(&b, "Page context:\n%s\n\n", contextText)
	}
	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}

func buildTranscriptSystemPrompt(m *session.SectionMap) string {
	return fmt.Sprintf(transcriptSystemPromptTemplate, marshalSectionMap(m))
}

func buildTranscriptPrompt(pageURL, pageTitle, contextText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page title: %s\nPage URL: %s\n", pageTitle, pageURL)
	if contextText != "" {
		fmt.Fprintf(&b, "\nPage content:\n%s", contextText)
	}
	return b.String()
}

func buildFollowupSystemPrompt(pageTitle, transcriptContext string) string {
	return fmt.Sprintf(followupSystemPromptTemplate, pageTitle, transcriptContext)
}
