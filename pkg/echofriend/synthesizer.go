package echofriend

import (
	"context"
	"io"
	"os"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"
)

// Synthesizer converts assistant text to a speech audio file.
type Synthesizer interface {
	// Synthesize writes spoken audio for text to destPath and returns the
	// path on success.
	Synthesize(ctx context.Context, text, destPath string) (string, error)
}

// SpeechClient implements Synthesizer on top of the OpenAI speech endpoint.
// It requests WAV output so the Player can render the file without a
// transcoding step, at a fixed voice and a playback rate slower than natural.
type SpeechClient struct {
	client *openai.Client
	model  string
	voice  string
	speed  float64
	logger *EchoLogger
}

func NewSpeechClient(config *Config) *SpeechClient {
	return &SpeechClient{
		client: newOpenAIClient(config),
		model:  config.SpeechModel,
		voice:  config.Voice,
		speed:  config.SpeechSpeed,
		logger: GetGlobalLogger().WithComponent("SpeechClient"),
	}
}

func (sc *SpeechClient) Synthesize(ctx context.Context, text, destPath string) (string, error) {
	sc.logger.WithField("text_length", len(text)).Debug("Synthesizing speech")

	resp, err := sc.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(sc.model),
		Input:          text,
		Voice:          openai.SpeechVoice(sc.voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
		Speed:          sc.speed,
	})
	if err != nil {
		return "", WrapError(err, ErrCodeSynthesis)
	}
	defer resp.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", WrapError(err, ErrCodeSynthesis)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return "", WrapError(err, ErrCodeSynthesis)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp); err != nil {
		return "", WrapError(err, ErrCodeSynthesis)
	}

	sc.logger.WithField("path", destPath).Debug("Speech synthesized")
	return destPath, nil
}
