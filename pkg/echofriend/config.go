package echofriend

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Config struct {
	APIKey  string `json:"-"`
	BaseURL string `json:"base_url"`

	ChatModel       string  `json:"chat_model"`
	TranscribeModel string  `json:"transcribe_model"`
	SpeechModel     string  `json:"speech_model"`
	Voice           string  `json:"voice"`
	SpeechSpeed     float64 `json:"speech_speed"`
	Language        string  `json:"language"`

	AudioDir      string `json:"audio_dir"`
	SampleRate    int    `json:"sample_rate"`
	Channels      int    `json:"channels"`
	BufferSize    int    `json:"buffer_size"`
	InputDeviceID *int   `json:"input_device_id,omitempty"`

	DebugLevel string `json:"debug_level"`
}

func NewConfig() *Config {
	c := &Config{
		BaseURL:         defaultBaseURL,
		ChatModel:       "gpt-4",
		TranscribeModel: "whisper-1",
		SpeechModel:     "tts-1",
		Voice:           "nova",
		SpeechSpeed:     0.9, // slightly slower speech reads better for learners
		Language:        "nl",
		AudioDir:        "audio_files",
		SampleRate:      44100,
		Channels:        1,
		BufferSize:      1024,
		DebugLevel:      "INFO",
	}

	// Load from env
	c.loadFromEnv()

	return c
}

func (c *Config) loadFromEnv() {
	// Load .env if exists
	_ = godotenv.Load()

	c.APIKey = os.Getenv("OPENAI_API_KEY")

	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		c.BaseURL = baseURL
	}

	if model := os.Getenv("ECHOFRIEND_CHAT_MODEL"); model != "" {
		c.ChatModel = model
	}
	if model := os.Getenv("ECHOFRIEND_TRANSCRIBE_MODEL"); model != "" {
		c.TranscribeModel = model
	}
	if model := os.Getenv("ECHOFRIEND_SPEECH_MODEL"); model != "" {
		c.SpeechModel = model
	}
	if voice := os.Getenv("ECHOFRIEND_VOICE"); voice != "" {
		c.Voice = voice
	}
	if speed := os.Getenv("ECHOFRIEND_SPEECH_SPEED"); speed != "" {
		if val, err := strconv.ParseFloat(speed, 64); err == nil {
			c.SpeechSpeed = val
		}
	}
	if lang := os.Getenv("ECHOFRIEND_LANGUAGE"); lang != "" {
		c.Language = lang
	}
	if dir := os.Getenv("ECHOFRIEND_AUDIO_DIR"); dir != "" {
		c.AudioDir = dir
	}
	if rate := os.Getenv("ECHOFRIEND_SAMPLE_RATE"); rate != "" {
		if val, err := strconv.Atoi(rate); err == nil {
			c.SampleRate = val
		}
	}
	if level := os.Getenv("ECHOFRIEND_DEBUG_LEVEL"); level != "" {
		c.DebugLevel = level
	}
	if deviceIDStr := os.Getenv("ECHOFRIEND_INPUT_DEVICE_ID"); deviceIDStr != "" {
		if deviceID, err := strconv.Atoi(deviceIDStr); err == nil {
			c.InputDeviceID = &deviceID
		}
	}
}

// Validate returns list of issues
func (c *Config) Validate() []string {
	issues := []string{}

	if c.APIKey == "" {
		issues = append(issues, "OPENAI_API_KEY environment variable not set")
	}

	if c.BaseURL == "" {
		issues = append(issues, "API base URL is empty")
	}

	if c.SampleRate <= 0 {
		issues = append(issues, fmt.Sprintf("Invalid sample rate: %d", c.SampleRate))
	}
	if c.Channels <= 0 {
		issues = append(issues, fmt.Sprintf("Invalid channel count: %d", c.Channels))
	}
	if c.BufferSize <= 0 {
		issues = append(issues, fmt.Sprintf("Invalid buffer size: %d", c.BufferSize))
	}
	if c.SpeechSpeed <= 0 {
		issues = append(issues, fmt.Sprintf("Invalid speech speed: %.2f", c.SpeechSpeed))
	}

	validLevels := []string{"DEBUG", "INFO", "WARNING", "ERROR"}
	found := false
	for _, level := range validLevels {
		if level == c.DebugLevel {
			found = true
			break
		}
	}
	if !found {
		issues = append(issues, fmt.Sprintf("Invalid debug level: %s", c.DebugLevel))
	}

	return issues
}

func (c *Config) PrintConfig() {
	fmt.Println("🎤 EchoFriend Configuration")
	fmt.Println("==================================================")

	if c.APIKey != "" {
		fmt.Printf("API Key: %s\n", maskKey(c.APIKey))
	} else {
		fmt.Println("API Key: NOT SET")
	}

	fmt.Printf("API Endpoint: %s\n", c.BaseURL)
	fmt.Printf("Chat Model: %s\n", c.ChatModel)
	fmt.Printf("Transcribe Model: %s\n", c.TranscribeModel)
	fmt.Printf("Speech Model: %s (voice %s, speed %.1fx)\n", c.SpeechModel, c.Voice, c.SpeechSpeed)
	fmt.Printf("Language: %s\n", c.Language)
	fmt.Printf("Audio Dir: %s\n", c.AudioDir)
	fmt.Printf("Sample Rate: %d Hz, Channels: %d, Buffer: %d\n", c.SampleRate, c.Channels, c.BufferSize)
	fmt.Printf("Debug Level: %s\n", c.DebugLevel)

	if c.InputDeviceID != nil {
		fmt.Printf("Input Device ID: %d\n", *c.InputDeviceID)
	} else {
		fmt.Println("Input Device: Default")
	}
}

func maskKey(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
