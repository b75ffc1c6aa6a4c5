package echofriend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Transcriber maps a recorded audio file to recognized text in the target
// learning language.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// WhisperClient calls an OpenAI-compatible /audio/transcriptions endpoint.
// It speaks raw HTTP instead of a typed SDK because gateway deployments of
// this endpoint disagree on the response shape; see decodeTranscript.
type WhisperClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *EchoLogger
}

func NewWhisperClient(config *Config) *WhisperClient {
	return &WhisperClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		model:   config.TranscribeModel,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
		logger: GetGlobalLogger().WithComponent("WhisperClient"),
	}
}

// Transcribe uploads the audio file and returns the recognized text.
// Single attempt; any network, auth, or service error surfaces as a
// transcription error without retry.
func (wc *WhisperClient) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", WrapError(err, ErrCodeTranscription)
	}
	defer file.Close()

	body := new(bytes.Buffer)
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", WrapError(err, ErrCodeTranscription)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", WrapError(err, ErrCodeTranscription)
	}
	if err := form.WriteField("model", wc.model); err != nil {
		return "", WrapError(err, ErrCodeTranscription)
	}
	if language != "" {
		if err := form.WriteField("language", language); err != nil {
			return "", WrapError(err, ErrCodeTranscription)
		}
	}
	if err := form.Close(); err != nil {
		return "", WrapError(err, ErrCodeTranscription)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", WrapError(err, ErrCodeTranscription)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+wc.apiKey)

	wc.logger.WithField("path", audioPath).Debug("Transcribing audio")

	resp, err := wc.httpClient.Do(req)
	if err != nil {
		return "", WrapError(err, ErrCodeTranscription)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", WrapError(err, ErrCodeTranscription)
	}
	if resp.StatusCode >= 400 {
		return "", NewTranscriptionError(string(respBody)).AddDetail("status_code", resp.StatusCode)
	}

	text, err := decodeTranscript(respBody)
	if err != nil {
		return "", err
	}

	wc.logger.WithField("text_length", len(text)).Debug("Transcription complete")
	return text, nil
}

// decodeTranscript normalizes the transcription response body into plain
// text. Backends are known to return one of three shapes: a bare JSON string,
// a JSON object with a "text" field, or non-JSON plain text. Each case is
// handled explicitly; any other shape is an error rather than a guess.
func decodeTranscript(body []byte) (string, error) {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Not JSON at all: treat the raw body as the transcript.
		return string(body), nil
	}

	switch v := decoded.(type) {
	case string:
		return v, nil
	case map[string]interface{}:
		if text, ok := v["text"].(string); ok {
			return text, nil
		}
		return "", NewTranscriptShapeError("transcription object has no text field").
			AddDetail("keys", mapKeys(v))
	default:
		return "", NewTranscriptShapeError(fmt.Sprintf("unexpected transcription shape %T", decoded))
	}
}

func mapKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
