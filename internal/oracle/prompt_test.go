package oracle

import (
	"strings"
	"testing"

	"cafe_voice_backend/internal/conversation/domain"
	"cafe_voice_backend/internal/menu"
)

func TestBuildUserPromptWrapsTranscript(t *testing.T) {
	input := testInput()
	prompt := buildUserPrompt(input)

	begin := strings.Index(prompt, userDataBegin)
	end := strings.Index(prompt, userDataEnd)
	if begin < 0 || end < 0 || end < begin {
		t.Fatalf("expected transcript wrapped in data markers:\n%s", prompt)
	}
	if !strings.Contains(prompt[begin:end], "quiero un capuchino") {
		t.Fatalf("expected transcript inside the markers")
	}
}

func TestBuildUserPromptIncludesMenuAndStage(t *testing.T) {
	prompt := buildUserPrompt(testInput())

	if !strings.Contains(prompt, "Capuchino") {
		t.Fatalf("expected menu items in prompt")
	}
	if !strings.Contains(prompt, "leche de almendra") {
		t.Fatalf("expected extras in prompt")
	}
	if !strings.Contains(prompt, string(domain.StageInitialOrder)) {
		t.Fatalf("expected current stage in prompt")
	}
}

func TestBuildUserPromptHandlesSilenceAndControlChars(t *testing.T) {
	input := TurnInput{
		Transcript: "\x00\x1b",
		Stage:      domain.StageInitialOrder,
		Menu:       menu.Default(),
		Extras:     menu.DefaultExtras(),
	}
	prompt := buildUserPrompt(input)

	if !strings.Contains(prompt, "(silencio)") {
		t.Fatalf("expected silence placeholder for empty transcript")
	}
}

func TestBuildUserPromptTruncatesLongTranscript(t *testing.T) {
	input := testInput()
	input.Transcript = strings.Repeat("a", maxTranscriptChars*2)

	prompt := buildUserPrompt(input)

	if strings.Contains(prompt, strings.Repeat("a", maxTranscriptChars+1)) {
		t.Fatalf("expected transcript truncated to %d characters", maxTranscriptChars)
	}
}
