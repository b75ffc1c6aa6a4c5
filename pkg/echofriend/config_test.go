package echofriend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL",
		"ECHOFRIEND_CHAT_MODEL", "ECHOFRIEND_TRANSCRIBE_MODEL", "ECHOFRIEND_SPEECH_MODEL",
		"ECHOFRIEND_VOICE", "ECHOFRIEND_SPEECH_SPEED", "ECHOFRIEND_LANGUAGE",
		"ECHOFRIEND_AUDIO_DIR", "ECHOFRIEND_SAMPLE_RATE", "ECHOFRIEND_DEBUG_LEVEL",
		"ECHOFRIEND_INPUT_DEVICE_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	config := NewConfig()

	assert.Equal(t, "https://api.openai.com/v1", config.BaseURL)
	assert.Equal(t, "gpt-4", config.ChatModel)
	assert.Equal(t, "whisper-1", config.TranscribeModel)
	assert.Equal(t, "tts-1", config.SpeechModel)
	assert.Equal(t, "nova", config.Voice)
	assert.Equal(t, 0.9, config.SpeechSpeed)
	assert.Equal(t, "nl", config.Language)
	assert.Equal(t, "audio_files", config.AudioDir)
	assert.Equal(t, 44100, config.SampleRate)
	assert.Equal(t, 1, config.Channels)
	assert.Equal(t, 1024, config.BufferSize)
	assert.Nil(t, config.InputDeviceID)
	assert.Equal(t, "INFO", config.DebugLevel)
}

func TestNewConfigEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test-1234567890")
	t.Setenv("OPENAI_BASE_URL", "https://gateway.example.com/v1")
	t.Setenv("ECHOFRIEND_CHAT_MODEL", "gpt-4o")
	t.Setenv("ECHOFRIEND_VOICE", "alloy")
	t.Setenv("ECHOFRIEND_SPEECH_SPEED", "1.1")
	t.Setenv("ECHOFRIEND_LANGUAGE", "de")
	t.Setenv("ECHOFRIEND_SAMPLE_RATE", "16000")
	t.Setenv("ECHOFRIEND_INPUT_DEVICE_ID", "2")

	config := NewConfig()

	assert.Equal(t, "sk-test-1234567890", config.APIKey)
	assert.Equal(t, "https://gateway.example.com/v1", config.BaseURL)
	assert.Equal(t, "gpt-4o", config.ChatModel)
	assert.Equal(t, "alloy", config.Voice)
	assert.Equal(t, 1.1, config.SpeechSpeed)
	assert.Equal(t, "de", config.Language)
	assert.Equal(t, 16000, config.SampleRate)
	require.NotNil(t, config.InputDeviceID)
	assert.Equal(t, 2, *config.InputDeviceID)
}

func TestNewConfigInvalidEnvValuesIgnored(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ECHOFRIEND_SPEECH_SPEED", "fast")
	t.Setenv("ECHOFRIEND_SAMPLE_RATE", "high")
	t.Setenv("ECHOFRIEND_INPUT_DEVICE_ID", "builtin")

	config := NewConfig()

	assert.Equal(t, 0.9, config.SpeechSpeed)
	assert.Equal(t, 44100, config.SampleRate)
	assert.Nil(t, config.InputDeviceID)
}

func TestValidateMissingAPIKey(t *testing.T) {
	clearConfigEnv(t)

	config := NewConfig()
	issues := config.Validate()

	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0], "OPENAI_API_KEY")
}

func TestValidateCleanConfig(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	config := NewConfig()

	assert.Empty(t, config.Validate())
}

func TestValidateBadValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	config := NewConfig()
	config.SampleRate = 0
	config.Channels = -1
	config.SpeechSpeed = 0
	config.DebugLevel = "LOUD"

	issues := config.Validate()
	assert.Len(t, issues, 4)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "<not set>", maskKey(""))
	assert.Equal(t, "****", maskKey("short"))
	assert.Equal(t, "sk-t****7890", maskKey("sk-test-1234567890"))
}
