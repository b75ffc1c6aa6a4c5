package echofriend

import "time"

// Role identifies the speaker of a transcript entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TranscriptEntry is one entry in the conversation transcript. The transcript
// is append-only: entries are never mutated or reordered after insertion.
type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Stage identifies a pipeline stage of a conversation turn.
type Stage string

const (
	StageCapture       Stage = "capture"
	StageTranscription Stage = "transcription"
	StageResponse      Stage = "response"
	StageSynthesis     Stage = "synthesis"
	StagePlayback      Stage = "playback"
)

// TurnResult is the outcome of one conversation turn. Either Completed is true
// and UserText/AssistantText are set, or FailedStage names the pipeline stage
// that aborted the turn.
type TurnResult struct {
	Turn          int
	Completed     bool
	FailedStage   Stage
	UserText      string
	AssistantText string
}

// RecordingState enum
type RecordingState string

const (
	IdleRecording    RecordingState = "idle"
	WaitingRecording RecordingState = "waiting"
	Recording        RecordingState = "recording"
	ErrorRecording   RecordingState = "error"
)

// PlaybackState enum
type PlaybackState string

const (
	IdlePlayback    PlaybackState = "idle"
	PlayingPlayback PlaybackState = "playing"
	ErrorPlayback   PlaybackState = "error"
)

// EchoError struct
type EchoError struct {
	Message   string
	Code      string
	Timestamp float64
	err       error
	Details   map[string]interface{} // Additional details about the error
}

func (e *EchoError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *EchoError) Unwrap() error {
	return e.err
}

func NewEchoError(message, code string) *EchoError {
	return &EchoError{
		Message:   message,
		Code:      code,
		Timestamp: float64(time.Now().UnixMilli()),
	}
}
