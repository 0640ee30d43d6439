package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/adapters"
	"github.com/iamwavecut/guardbot/internal/adapters/classifier"
)

const DefaultModel = "gpt-4o-mini"

const screeningPrompt = "You are a strict image moderation system for a public group chat. " +
	"Respond with exactly one word: \"heavy\" if the image contains nudity, sexual content, " +
	"weapons, gore or graphic violence, otherwise \"clean\"."

// API screens images through an OpenAI-compatible vision model.
type API struct {
	client *openai.Client
	model  string
	logger *log.Entry
}

func NewOpenAI(apiKey, model, baseURL string, logger *log.Entry) adapters.ImageClassifier {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &API{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger,
	}
}

func (a *API) ClassifyImage(ctx context.Context, filePath string) (classifier.Verdict, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return classifier.VerdictClean, fmt.Errorf("read media file: %w", err)
	}
	imageURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(raw))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: screeningPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		MaxTokens: 4,
	})
	if err != nil {
		return classifier.VerdictClean, err
	}
	if len(resp.Choices) == 0 {
		return classifier.VerdictClean, fmt.Errorf("no response choices available")
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	a.logger.WithField("answer", answer).Debug("image screened")
	if answer == string(classifier.VerdictHeavy) {
		return classifier.VerdictHeavy, nil
	}
	return classifier.VerdictClean, nil
}
