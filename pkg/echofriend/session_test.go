package echofriend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCapturer struct {
	paths  []string
	err    error
	closed int
}

func (f *fakeCapturer) Capture(destPath string) (string, error) {
	f.paths = append(f.paths, destPath)
	if f.err != nil {
		return "", f.err
	}
	return destPath, nil
}

func (f *fakeCapturer) Close() error {
	f.closed++
	return nil
}

type fakePlayer struct {
	played []string
	err    error
}

func (f *fakePlayer) Play(path string) error {
	f.played = append(f.played, path)
	return f.err
}

type fakeTranscriber struct {
	texts []string
	err   error
	calls int
	langs []string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, language string) (string, error) {
	f.calls++
	f.langs = append(f.langs, language)
	if f.err != nil {
		return "", f.err
	}
	if len(f.texts) == 0 {
		return "Hallo!", nil
	}
	text := f.texts[0]
	if len(f.texts) > 1 {
		f.texts = f.texts[1:]
	}
	return text, nil
}

type fakeResponder struct {
	reply          string
	respondErrs    []error
	seen           [][]TranscriptEntry
	summary        string
	summarizeErr   error
	summarizeCalls int
	conversation   string
	scenario       string
}

func (f *fakeResponder) Respond(_ context.Context, transcript []TranscriptEntry) (string, error) {
	f.seen = append(f.seen, transcript)
	if len(f.respondErrs) > 0 {
		err := f.respondErrs[0]
		f.respondErrs = f.respondErrs[1:]
		if err != nil {
			return "", err
		}
	}
	if f.reply == "" {
		return "Natuurlijk! Alstublieft.", nil
	}
	return f.reply, nil
}

func (f *fakeResponder) Summarize(_ context.Context, conversation, scenario string) (string, error) {
	f.summarizeCalls++
	f.conversation = conversation
	f.scenario = scenario
	if f.summarizeErr != nil {
		return "", f.summarizeErr
	}
	if f.summary == "" {
		return "Great progress today!", nil
	}
	return f.summary, nil
}

type fakeSynthesizer struct {
	err   error
	texts []string
	dests []string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, destPath string) (string, error) {
	f.texts = append(f.texts, text)
	f.dests = append(f.dests, destPath)
	if f.err != nil {
		return "", f.err
	}
	return destPath, nil
}

type sessionFixture struct {
	session     *Session
	capturer    *fakeCapturer
	player      *fakePlayer
	transcriber *fakeTranscriber
	responder   *fakeResponder
	synthesizer *fakeSynthesizer
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		capturer:    &fakeCapturer{},
		player:      &fakePlayer{},
		transcriber: &fakeTranscriber{},
		responder:   &fakeResponder{},
		synthesizer: &fakeSynthesizer{},
	}
	config := &Config{
		Language:   "nl",
		AudioDir:   t.TempDir(),
		SampleRate: 44100,
		Channels:   1,
	}
	f.session = NewSession(config, "Supermarket Shopping",
		f.capturer, f.player, f.transcriber, f.responder, f.synthesizer)
	return f
}

func TestSessionTranscriptStartsWithSystemEntry(t *testing.T) {
	f := newSessionFixture(t)

	transcript := f.session.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, RoleSystem, transcript[0].Role)
	assert.Contains(t, transcript[0].Content, "Supermarket Shopping")
}

func TestRunTurnHappyPath(t *testing.T) {
	f := newSessionFixture(t)
	f.transcriber.texts = []string{"I want an apple"}
	f.responder.reply = "Natuurlijk! Hier is een appel."

	result := f.session.RunTurn(context.Background(), 1)

	require.True(t, result.Completed)
	assert.Empty(t, result.FailedStage)
	assert.Equal(t, "I want an apple", result.UserText)
	assert.Equal(t, "Natuurlijk! Hier is een appel.", result.AssistantText)

	transcript := f.session.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, RoleSystem, transcript[0].Role)
	assert.Equal(t, TranscriptEntry{Role: RoleUser, Content: "I want an apple"}, transcript[1])
	assert.Equal(t, TranscriptEntry{Role: RoleAssistant, Content: "Natuurlijk! Hier is een appel."}, transcript[2])

	require.Len(t, f.capturer.paths, 1)
	assert.Contains(t, f.capturer.paths[0], "user_input_1.wav")
	require.Len(t, f.synthesizer.dests, 1)
	assert.Contains(t, f.synthesizer.dests[0], "ai_response_1.wav")
	assert.Equal(t, []string{"Natuurlijk! Hier is een appel."}, f.synthesizer.texts)
	assert.Equal(t, f.synthesizer.dests, f.player.played)
	assert.Equal(t, []string{"nl"}, f.transcriber.langs)
}

func TestRunTurnRespondSeesNewUtterance(t *testing.T) {
	f := newSessionFixture(t)
	f.transcriber.texts = []string{"I want an apple"}

	f.session.RunTurn(context.Background(), 1)

	require.Len(t, f.responder.seen, 1)
	seen := f.responder.seen[0]
	require.NotEmpty(t, seen)
	assert.Equal(t, TranscriptEntry{Role: RoleUser, Content: "I want an apple"}, seen[len(seen)-1])
}

func TestRunTurnCaptureFailureLeavesTranscriptUnchanged(t *testing.T) {
	f := newSessionFixture(t)
	f.capturer.err = NewCaptureEmptyError("no audio was recorded")

	result := f.session.RunTurn(context.Background(), 1)

	assert.False(t, result.Completed)
	assert.Equal(t, StageCapture, result.FailedStage)
	assert.Len(t, f.session.Transcript(), 1)
	assert.Zero(t, f.transcriber.calls, "transcriber must not run after a failed capture")
}

func TestRunTurnEmptyTranscriptionFailsTurn(t *testing.T) {
	for _, text := range []string{"", "   \n\t"} {
		f := newSessionFixture(t)
		f.transcriber.texts = []string{text}

		result := f.session.RunTurn(context.Background(), 1)

		assert.False(t, result.Completed)
		assert.Equal(t, StageTranscription, result.FailedStage)
		assert.Len(t, f.session.Transcript(), 1, "blank transcription must not reach the transcript")
		assert.Empty(t, f.responder.seen)
	}
}

func TestRunTurnTranscriberErrorFailsTurn(t *testing.T) {
	f := newSessionFixture(t)
	f.transcriber.err = NewTranscriptionError("service unavailable")

	result := f.session.RunTurn(context.Background(), 1)

	assert.False(t, result.Completed)
	assert.Equal(t, StageTranscription, result.FailedStage)
	assert.Len(t, f.session.Transcript(), 1)
}

func TestRunTurnRespondFailureKeepsUserEntry(t *testing.T) {
	f := newSessionFixture(t)
	f.transcriber.texts = []string{"Waar is de melk?", "I want an apple"}
	f.responder.respondErrs = []error{NewResponseError("model overloaded"), nil}

	result := f.session.RunTurn(context.Background(), 1)
	assert.False(t, result.Completed)
	assert.Equal(t, StageResponse, result.FailedStage)

	// The utterance survived the failed turn.
	transcript := f.session.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, TranscriptEntry{Role: RoleUser, Content: "Waar is de melk?"}, transcript[1])

	// And the next respond call sees it.
	result = f.session.RunTurn(context.Background(), 2)
	require.True(t, result.Completed)
	require.Len(t, f.responder.seen, 2)
	contents := make([]string, 0, len(f.responder.seen[1]))
	for _, entry := range f.responder.seen[1] {
		contents = append(contents, entry.Content)
	}
	assert.Contains(t, contents, "Waar is de melk?")
	assert.Contains(t, contents, "I want an apple")
}

func TestRunTurnSynthesisFailureAfterTranscriptUpdate(t *testing.T) {
	f := newSessionFixture(t)
	f.synthesizer.err = NewSynthesisError("voice unavailable")

	result := f.session.RunTurn(context.Background(), 1)

	assert.False(t, result.Completed)
	assert.Equal(t, StageSynthesis, result.FailedStage)

	// Both entries land before synthesis runs, so they stay.
	transcript := f.session.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, RoleAssistant, transcript[2].Role)
	assert.Empty(t, f.player.played)
}

func TestRunTurnPlaybackFailureStillCompletes(t *testing.T) {
	f := newSessionFixture(t)
	f.player.err = NewPlaybackUnavailableError("no output device")

	result := f.session.RunTurn(context.Background(), 1)

	assert.True(t, result.Completed)
	assert.Empty(t, result.FailedStage)
	assert.Len(t, f.session.Transcript(), 3)
}

func TestRunTurnClipPathsDoNotCollide(t *testing.T) {
	f := newSessionFixture(t)

	f.session.RunTurn(context.Background(), 1)
	f.session.RunTurn(context.Background(), 2)

	require.Len(t, f.capturer.paths, 2)
	assert.NotEqual(t, f.capturer.paths[0], f.capturer.paths[1])
	require.Len(t, f.synthesizer.dests, 2)
	assert.NotEqual(t, f.synthesizer.dests[0], f.synthesizer.dests[1])
}

func TestGenerateFeedbackWithoutUtterances(t *testing.T) {
	f := newSessionFixture(t)

	feedback := f.session.GenerateFeedback(context.Background())

	assert.Equal(t, feedbackPlaceholder, feedback)
	assert.Zero(t, f.responder.summarizeCalls, "no summarize call without conversation content")
}

func TestGenerateFeedbackApologyOnError(t *testing.T) {
	f := newSessionFixture(t)
	f.transcriber.texts = []string{"I want an apple"}
	f.responder.summarizeErr = errors.New("rate limited")

	f.session.RunTurn(context.Background(), 1)
	feedback := f.session.GenerateFeedback(context.Background())

	assert.Equal(t, feedbackApology, feedback)
	assert.Equal(t, 1, f.responder.summarizeCalls)
}

func TestGenerateFeedbackConversationFormat(t *testing.T) {
	f := newSessionFixture(t)
	f.transcriber.texts = []string{"I want an apple"}
	f.responder.reply = "Hier is een appel."
	f.responder.summary = "Feedback Report"

	f.session.RunTurn(context.Background(), 1)
	feedback := f.session.GenerateFeedback(context.Background())

	assert.Equal(t, "Feedback Report", feedback)
	assert.Equal(t, "Supermarket Shopping", f.responder.scenario)
	assert.Equal(t, "Learner: I want an apple\nAssistant: Hier is een appel.", f.responder.conversation)
}

func TestGenerateFeedbackCountsUtterancesFromFailedTurns(t *testing.T) {
	f := newSessionFixture(t)
	f.transcriber.texts = []string{"Waar is de melk?"}
	f.responder.respondErrs = []error{NewResponseError("model overloaded")}

	f.session.RunTurn(context.Background(), 1)
	f.session.GenerateFeedback(context.Background())

	// The turn failed after transcription, but the learner did speak.
	assert.Equal(t, 1, f.responder.summarizeCalls)
	assert.Equal(t, "Learner: Waar is de melk?", f.responder.conversation)
}

func TestCleanupClosesRecorderOnce(t *testing.T) {
	f := newSessionFixture(t)

	f.session.Cleanup()
	f.session.Cleanup()

	assert.Equal(t, 1, f.capturer.closed)
}
