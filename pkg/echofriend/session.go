package echofriend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// AudioCapturer records one clip per call. Implemented by Recorder.
type AudioCapturer interface {
	Capture(destPath string) (string, error)
	Close() error
}

// AudioPlayer plays one audio file to completion. Implemented by Player.
type AudioPlayer interface {
	Play(path string) error
}

// Session owns the conversation transcript and drives one turn at a time
// through the record → transcribe → respond → synthesize → play pipeline.
// It is not safe for concurrent use; the turn loop calls it sequentially.
type Session struct {
	config      *Config
	scenario    string
	transcript  []TranscriptEntry
	userLog     []string
	recorder    AudioCapturer
	player      AudioPlayer
	transcriber Transcriber
	responder   Responder
	synthesizer Synthesizer
	logger      *EchoLogger
	cleanupOnce sync.Once
}

func NewSession(config *Config, scenario string, recorder AudioCapturer, player AudioPlayer,
	transcriber Transcriber, responder Responder, synthesizer Synthesizer) *Session {
	s := &Session{
		config:      config,
		scenario:    scenario,
		recorder:    recorder,
		player:      player,
		transcriber: transcriber,
		responder:   responder,
		synthesizer: synthesizer,
		logger:      GetGlobalLogger().WithComponent("Session"),
	}

	// The transcript always starts with exactly one system entry describing
	// the scenario and behavioral rules.
	s.transcript = []TranscriptEntry{{Role: RoleSystem, Content: systemPrompt(scenario)}}

	if err := os.MkdirAll(config.AudioDir, 0o755); err != nil {
		s.logger.WithError(err).Warn("Failed to create audio directory")
	}

	return s
}

// RunTurn drives one full conversation turn. Failure at any stage aborts the
// turn immediately; transcript entries already appended stay in place. There
// is no retry inside a turn — the caller decides whether to run another turn.
func (s *Session) RunTurn(ctx context.Context, turn int) TurnResult {
	result := TurnResult{Turn: turn}

	// Step 1: capture
	audioFile, err := s.recorder.Capture(s.userClipPath(turn))
	if err != nil {
		s.failTurn(turn, StageCapture, err)
		result.FailedStage = StageCapture
		return result
	}

	// Step 2: transcribe
	userText, err := s.transcriber.Transcribe(ctx, audioFile, s.config.Language)
	if err != nil || strings.TrimSpace(userText) == "" {
		if err == nil {
			err = NewTranscriptionError("transcription returned empty text")
		}
		s.failTurn(turn, StageTranscription, err)
		result.FailedStage = StageTranscription
		return result
	}
	result.UserText = userText

	// Step 3: the utterance was real, record it before asking for a reply so
	// that it informs later turns even if this one fails from here on.
	s.transcript = append(s.transcript, TranscriptEntry{Role: RoleUser, Content: userText})
	s.userLog = append(s.userLog, userText)

	// Step 4: respond
	reply, err := s.responder.Respond(ctx, s.Transcript())
	if err != nil {
		s.failTurn(turn, StageResponse, err)
		result.FailedStage = StageResponse
		return result
	}
	result.AssistantText = reply

	// Step 5
	s.transcript = append(s.transcript, TranscriptEntry{Role: RoleAssistant, Content: reply})

	// Step 6: synthesize
	clip, err := s.synthesizer.Synthesize(ctx, reply, s.replyClipPath(turn))
	if err != nil {
		s.failTurn(turn, StageSynthesis, err)
		result.FailedStage = StageSynthesis
		return result
	}

	// Step 7: playback trouble never downgrades the turn; the clip stays on
	// disk for manual listening.
	if err := s.player.Play(clip); err != nil {
		s.logger.WithError(err).Warnf("Playback failed, audio saved to %s — you can play it manually", clip)
	}

	result.Completed = true
	s.logger.LogTurnEvent(turn, "", map[string]interface{}{"outcome": "completed"})
	return result
}

func (s *Session) failTurn(turn int, stage Stage, err error) {
	s.logger.WithError(err).LogTurnEvent(turn, stage, map[string]interface{}{
		"outcome":    "failed",
		"error_code": ErrorCode(err),
	})
}

// GenerateFeedback produces the end-of-session report. With no user
// utterances it short-circuits to a fixed message without any network call,
// and a summarize failure degrades to a fixed apology: by the time feedback
// runs, the interactive loop is over and there is no recovery path left.
func (s *Session) GenerateFeedback(ctx context.Context) string {
	if len(s.userLog) == 0 {
		return feedbackPlaceholder
	}

	text, err := s.responder.Summarize(ctx, s.formatConversation(), s.scenario)
	if err != nil {
		s.logger.WithError(err).Error("Feedback generation failed")
		return feedbackApology
	}
	return text
}

// formatConversation flattens the transcript into a two-speaker labeled log,
// skipping the system entry.
func (s *Session) formatConversation() string {
	lines := make([]string, 0, len(s.transcript))
	for _, entry := range s.transcript {
		switch entry.Role {
		case RoleUser:
			lines = append(lines, "Learner: "+entry.Content)
		case RoleAssistant:
			lines = append(lines, "Assistant: "+entry.Content)
		}
	}
	return strings.Join(lines, "\n")
}

func (s *Session) userClipPath(turn int) string {
	return filepath.Join(s.config.AudioDir, fmt.Sprintf("user_input_%d.wav", turn))
}

func (s *Session) replyClipPath(turn int) string {
	return filepath.Join(s.config.AudioDir, fmt.Sprintf("ai_response_%d.wav", turn))
}

// Scenario returns the session's roleplay scenario label.
func (s *Session) Scenario() string {
	return s.scenario
}

// Welcome returns the greeting shown when the session starts.
func (s *Session) Welcome() string {
	return welcomeMessage(s.scenario)
}

// Transcript returns a copy of the conversation transcript.
func (s *Session) Transcript() []TranscriptEntry {
	return append([]TranscriptEntry(nil), s.transcript...)
}

// UserUtterances returns a copy of the raw user utterance log.
func (s *Session) UserUtterances() []string {
	return append([]string(nil), s.userLog...)
}

// Cleanup releases the session's audio resources. Safe to call from multiple
// exit paths; the release happens once.
func (s *Session) Cleanup() {
	s.cleanupOnce.Do(func() {
		if err := s.recorder.Close(); err != nil {
			s.logger.WithError(err).Warn("Recorder close failed")
		}
		s.logger.Info("Session cleaned up")
	})
}
