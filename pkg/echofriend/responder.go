package echofriend

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Conversational replies favor variety; feedback reports favor consistency.
const (
	respondTemperature   = 0.7
	summarizeTemperature = 0.5
)

// Responder produces assistant utterances from the conversation transcript
// and, at session end, a structured feedback report.
type Responder interface {
	// Respond maps the transcript so far (system entry plus all prior turns)
	// to the next assistant utterance. Single attempt, no retry.
	Respond(ctx context.Context, transcript []TranscriptEntry) (string, error)
	// Summarize produces the feedback report for a finished session from the
	// two-speaker conversation log and the scenario label.
	Summarize(ctx context.Context, conversation, scenario string) (string, error)
}

// ChatClient implements Responder on top of OpenAI chat completions.
type ChatClient struct {
	client *openai.Client
	model  string
	logger *EchoLogger
}

func NewChatClient(config *Config) *ChatClient {
	return &ChatClient{
		client: newOpenAIClient(config),
		model:  config.ChatModel,
		logger: GetGlobalLogger().WithComponent("ChatClient"),
	}
}

func newOpenAIClient(config *Config) *openai.Client {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

func (cc *ChatClient) Respond(ctx context.Context, transcript []TranscriptEntry) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(transcript))
	for _, entry := range transcript {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(entry.Role),
			Content: entry.Content,
		})
	}

	cc.logger.WithField("transcript_length", len(transcript)).Debug("Generating response")

	resp, err := cc.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       cc.model,
		Messages:    messages,
		Temperature: respondTemperature,
	})
	if err != nil {
		return "", WrapError(err, ErrCodeResponse)
	}
	if len(resp.Choices) == 0 {
		return "", NewResponseError("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (cc *ChatClient) Summarize(ctx context.Context, conversation, scenario string) (string, error) {
	cc.logger.WithField("scenario", scenario).Debug("Generating feedback report")

	resp, err := cc.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: cc.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: feedbackTeacherPrompt},
			{Role: openai.ChatMessageRoleUser, Content: feedbackPrompt(conversation, scenario)},
		},
		Temperature: summarizeTemperature,
	})
	if err != nil {
		return "", WrapError(err, ErrCodeResponse)
	}
	if len(resp.Choices) == 0 {
		return "", NewResponseError("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
