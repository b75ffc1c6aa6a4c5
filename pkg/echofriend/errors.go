package echofriend

import "errors"

// Error codes as constants
const (
	ErrCodeCaptureEmpty    = "CAPTURE_EMPTY"
	ErrCodeCaptureDevice   = "CAPTURE_DEVICE_FAILURE"
	ErrCodeTranscription   = "TRANSCRIPTION_FAILED"
	ErrCodeTranscriptShape = "TRANSCRIPT_SHAPE_UNRECOGNIZED"
	ErrCodeResponse        = "RESPONSE_FAILED"
	ErrCodeSynthesis       = "SYNTHESIS_FAILED"
	ErrCodePlaybackUnavail = "PLAYBACK_UNAVAILABLE"
	ErrCodePlaybackDevice  = "PLAYBACK_DEVICE_FAILURE"
	ErrCodeConfigInvalid   = "CONFIG_INVALID"
	ErrCodeAudioFile       = "AUDIO_FILE_ERROR"
	ErrCodeUnknown         = "UNKNOWN_ERROR"
)

// Specific error creators with common codes
func NewCaptureEmptyError(message string) *EchoError {
	return NewEchoError(message, ErrCodeCaptureEmpty)
}

func NewCaptureDeviceError(message string) *EchoError {
	return NewEchoError(message, ErrCodeCaptureDevice).AddDetail("device", "default")
}

func NewTranscriptionError(message string) *EchoError {
	return NewEchoError(message, ErrCodeTranscription)
}

func NewTranscriptShapeError(message string) *EchoError {
	return NewEchoError(message, ErrCodeTranscriptShape)
}

func NewResponseError(message string) *EchoError {
	return NewEchoError(message, ErrCodeResponse)
}

func NewSynthesisError(message string) *EchoError {
	return NewEchoError(message, ErrCodeSynthesis)
}

func NewPlaybackUnavailableError(message string) *EchoError {
	return NewEchoError(message, ErrCodePlaybackUnavail)
}

func NewPlaybackDeviceError(message string) *EchoError {
	return NewEchoError(message, ErrCodePlaybackDevice)
}

func NewConfigError(message string) *EchoError {
	return NewEchoError(message, ErrCodeConfigInvalid)
}

func NewAudioFileError(message string) *EchoError {
	return NewEchoError(message, ErrCodeAudioFile)
}

func NewUnknownError(message string) *EchoError {
	return NewEchoError(message, ErrCodeUnknown)
}

// Helper to wrap any error as EchoError
func WrapError(err error, code string) *EchoError {
	if err == nil {
		return nil
	}
	eErr := NewEchoError(err.Error(), code)
	eErr.err = err
	eErr.AddDetail("original_error", err.Error())
	return eErr
}

// Helper to check if error carries a specific code
func IsErrorCode(err error, code string) bool {
	var eErr *EchoError
	if !errors.As(err, &eErr) {
		return false
	}
	return eErr.Code == code
}

// ErrorCode extracts the code from an error, or ErrCodeUnknown for foreign errors.
func ErrorCode(err error) string {
	var eErr *EchoError
	if errors.As(err, &eErr) {
		return eErr.Code
	}
	return ErrCodeUnknown
}

// Helper to add details to existing EchoError
func (e *EchoError) AddDetail(key string, value interface{}) *EchoError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Helper to get error details
func (e *EchoError) GetDetail(key string) (interface{}, bool) {
	if e.Details == nil {
		return nil, false
	}
	value, exists := e.Details[key]
	return value, exists
}

// StageForError maps a pipeline error to the stage it belongs to.
func StageForError(err error) Stage {
	switch ErrorCode(err) {
	case ErrCodeCaptureEmpty, ErrCodeCaptureDevice:
		return StageCapture
	case ErrCodeTranscription, ErrCodeTranscriptShape:
		return StageTranscription
	case ErrCodeResponse:
		return StageResponse
	case ErrCodeSynthesis:
		return StageSynthesis
	case ErrCodePlaybackUnavail, ErrCodePlaybackDevice:
		return StagePlayback
	}
	return ""
}
