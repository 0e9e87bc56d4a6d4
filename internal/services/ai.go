package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/timetrack-api/internal/constants"
	"github.com/yukikurage/timetrack-api/internal/models"
)

type AIService struct {
	client *openai.Client
	model  string
}

type SuggestedTask struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// SuggestTasks breaks the text down into tasks for the given project using OpenAI GPT
func (s *AIService) SuggestTasks(ctx context.Context, project *models.Project, text string) ([]SuggestedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	description := ""
	if project.Description != nil {
		description = *project.Description
	}

	today := time.Now().UTC().Format(constants.DateLayout)
	prompt := fmt.Sprintf(`You are a project planning assistant. Break the text below into concrete tasks for the project.

Today: %s
Project: %s
Project description: %s

Text:
%s

Reply with a JSON array of at most %d tasks in this shape:
[
  {
    "title": "short task title",
    "description": "what needs to be done",
    "priority": "low, medium or high",
    "due_date": "deadline in ISO8601 (e.g. 2025-10-28T00:00:00Z), or null when none is stated"
  }
]

Rules:
- Reply with [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next week") to concrete dates
- Reply with JSON only, no prose`, today, project.Name, description, text, constants.MaxAISuggestedTasks)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

// parseSuggestions decodes the model reply, tolerating a fenced code block around it.
func parseSuggestions(content string) ([]SuggestedTask, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")

	var tasks []SuggestedTask
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
