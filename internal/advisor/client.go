package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrNoToken is returned when neither a configured token nor ANTHROPIC_API_KEY is set
var ErrNoToken = errors.New("no API token provided: set advisor.token or the ANTHROPIC_API_KEY environment variable")

// Client wraps the Anthropic API client
type Client struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new advice client
func NewClient(model string, apiToken string, timeoutSeconds int) (*Client, error) {
	// Resolve API token: parameter > environment variable
	token := apiToken
	if token == "" {
		token = os.Getenv("ANTHROPIC_API_KEY")
	}
	if token == "" {
		return nil, ErrNoToken
	}

	client := anthropic.NewClient(option.WithAPIKey(token))

	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:  client,
		model:   mapModelName(model),
		timeout: timeout,
	}, nil
}

// Model returns the model id requests are sent to
func (c *Client) Model() string {
	return c.model
}

// Suggest asks the model for a compatible alternative to one feature
func (c *Client) Suggest(ctx context.Context, req *Request) (*Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(c.model),
		MaxTokens: anthropic.F(int64(1024)),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(SystemPrompt),
		}),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildAdvicePrompt(req))),
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	responseText := extractTextContent(message)
	if responseText == "" {
		return nil, errors.New("empty response from API")
	}

	suggestion, err := parseSuggestion(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	suggestion.TokensUsed = int(message.Usage.InputTokens + message.Usage.OutputTokens)

	return suggestion, nil
}

// extractTextContent extracts text from the message response
func extractTextContent(message *anthropic.Message) string {
	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			text.WriteString(block.Text)
		}
	}
	return text.String()
}

// parseSuggestion parses the JSON answer into a Suggestion
func parseSuggestion(text string) (*Suggestion, error) {
	var s Suggestion
	if err := json.Unmarshal([]byte(extractJSON(text)), &s); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.Summary) == "" && strings.TrimSpace(s.Alternative) == "" {
		return nil, errors.New("response has neither summary nor alternative")
	}
	return &s, nil
}

// extractJSON extracts JSON from text that might contain markdown code blocks
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.Contains(text, "```") {
		start := strings.Index(text, "```json")
		if start == -1 {
			start = strings.Index(text, "```")
		}
		if start != -1 {
			// Skip the rest of the opening fence line
			if nl := strings.Index(text[start:], "\n"); nl != -1 {
				start += nl + 1
			}
		}

		end := strings.LastIndex(text, "```")
		if start != -1 && end > start {
			text = text[start:end]
		}
	}

	// Trim to the outermost object
	text = strings.TrimSpace(text)
	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart != -1 && jsonEnd > jsonStart {
		text = text[jsonStart : jsonEnd+1]
	}

	return strings.TrimSpace(text)
}
