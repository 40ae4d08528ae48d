// Package summarize asks an OpenAI-compatible chat model about a scan result.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/raysh454/rawdata/internal/content"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
)

var (
	ErrNotConfigured = errors.New("summarizer not configured: missing API key or model")
	ErrNoChoices     = errors.New("model returned no choices")
	ErrPDFUnreadable = errors.New("could not extract PDF text")
)

// ChatClient is the part of *openai.Client the summarizer uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	// HistoryLimit is how many earlier messages are replayed to the model.
	HistoryLimit int `yaml:"history_limit"`
}

func DefaultConfig() Config {
	return Config{
		Model:        "gpt-4o-mini",
		MaxTokens:    2048,
		HistoryLimit: 10,
	}
}

// NewClient builds an OpenAI-compatible client from cfg.
func NewClient(cfg Config) ChatClient {
	transportCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		transportCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(transportCfg)
}

// Message is one turn of an earlier conversation about the same scan.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Summarizer struct {
	client ChatClient
	cfg    Config
	logger logging.Logger
}

func New(client ChatClient, cfg Config, logger logging.Logger) *Summarizer {
	def := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	return &Summarizer{
		client: client,
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "summarize"}),
	}
}

// Summarize answers question about result. An empty question asks for the
// default summary of the result's kind. history is replayed before the
// question, trimmed to the most recent HistoryLimit user and assistant turns.
func (s *Summarizer) Summarize(ctx context.Context, result *model.ScanResult, history []Message, question string) (string, error) {
	if s.client == nil || s.cfg.Model == "" {
		return "", ErrNotConfigured
	}
	if result.IsPDF() && result.PDF.Failed() {
		return "", fmt.Errorf("%w: %s", ErrPDFUnreadable, result.PDF.Error)
	}
	if strings.TrimSpace(question) == "" {
		question = DefaultQuestion(result)
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(result)},
	}
	recent := history
	if len(recent) > s.cfg.HistoryLimit {
		recent = recent[len(recent)-s.cfg.HistoryLimit:]
	}
	for _, m := range recent {
		if m.Role == openai.ChatMessageRoleUser || m.Role == openai.ChatMessageRoleAssistant {
			messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
		}
	}
	if len(recent) == 0 || recent[len(recent)-1].Content != question {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question})
	}

	s.logger.Debug("sending chat request",
		logging.Field{Key: "model", Value: s.cfg.Model},
		logging.Field{Key: "messages", Value: len(messages)})

	return s.complete(ctx, messages, s.cfg.MaxTokens)
}

func (s *Summarizer) complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.cfg.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", describe(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func describe(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("invalid API key: %w", err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("rate limit exceeded, try again in a moment: %w", err)
		case http.StatusInternalServerError, http.StatusServiceUnavailable:
			return fmt.Errorf("model API temporarily unavailable: %w", err)
		}
	}
	return fmt.Errorf("chat completion: %w", err)
}

// DefaultQuestion picks the summary prompt for result's kind.
func DefaultQuestion(result *model.ScanResult) string {
	switch {
	case result.IsPDF():
		return "Analyze this PDF document and provide a concise summary (2-3 sentences): What is this document about? What are the key topics or findings?"
	case result.DeepData != nil && result.DeepData.Source == model.SourceGitHub:
		return "Analyze this GitHub repository and provide a concise summary (2-3 sentences): What is this project? What language/tech stack? What does it do?"
	case result.DeepData != nil:
		return "Analyze this blockchain address and provide a summary: What type of address is this? What activity or balance do you see?"
	case result.Page != nil:
		return "Analyze this webpage and provide a concise summary (2-3 sentences): What is the main purpose of this page? What key information or actions are available?"
	}
	return "Analyze this webpage and provide a concise summary."
}

const (
	promptHeadings  = 10
	promptRepoFiles = 30
	promptPDFText   = 20000
)

// SystemPrompt describes result to the model.
func SystemPrompt(result *model.ScanResult) string {
	var b strings.Builder
	b.WriteString("You are raw.data AI assistant. You can see and analyze webpages through structured scan data.\n\n")
	b.WriteString("**Current Page Context:**\n")
	fmt.Fprintf(&b, "URL: %s\n", orUnknown(result.Meta.URL))
	fmt.Fprintf(&b, "Title: %s\n\n", orUnknown(result.Meta.Title))

	if len(result.UIElements) > 0 {
		b.WriteString("**Interactive Elements on Page:**\n")
		for _, el := range result.UIElements {
			text := el.Text
			if text == "" {
				text = el.Placeholder
			}
			if text == "" {
				text = "No text"
			}
			fmt.Fprintf(&b, "- [%s] %s: %q", el.ID, el.Type, text)
			if el.Href != "" {
				fmt.Fprintf(&b, " → %s", el.Href)
			}
			if el.State != "" && el.State != model.StateEnabled {
				fmt.Fprintf(&b, " (%s)", el.State)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if p := result.Page; p != nil {
		if len(p.Headings) > 0 {
			b.WriteString("**Page Structure:**\n")
			for i, h := range p.Headings {
				if i == promptHeadings {
					break
				}
				fmt.Fprintf(&b, "%s %s\n", strings.Repeat("#", h.Level), h.Text)
			}
			b.WriteString("\n")
		}
		if p.MainText != "" {
			fmt.Fprintf(&b, "**Page Content:**\n%s\n\n", p.MainText)
		}
	}
	if p := result.PDF; p != nil && !p.Failed() {
		fmt.Fprintf(&b, "**PDF Text (%d words, %s):**\n%s\n\n", p.WordCount, p.Method, content.Truncate(p.Text, promptPDFText))
	}

	if d := result.DeepData; d != nil {
		fmt.Fprintf(&b, "**Special Data (%s):**\n", d.Source)
		switch data := d.Data.(type) {
		case *model.GitHubData:
			if data.Repo != nil {
				fmt.Fprintf(&b, "Repository: %s\n", *data.Repo)
			}
			if len(data.Files) > 0 {
				b.WriteString("\nFiles in repository:\n")
				for i, f := range data.Files {
					if i == promptRepoFiles {
						break
					}
					fmt.Fprintf(&b, "- %s\n", f.Name)
				}
			}
			if data.Readme != nil {
				fmt.Fprintf(&b, "\nREADME:\n%s\n", *data.Readme)
			}
		case *model.ExplorerData:
			writeAddress(&b, data.Address, data.Balance)
		case *model.SolscanData:
			writeAddress(&b, data.Address, data.Balance)
		}
		b.WriteString("\n")
	}

	b.WriteString(`**Instructions:**
- Help users understand and navigate this webpage
- Reference elements by their IDs (e.g., BTN-01, LINK-05) when relevant
- Be concise and helpful
- If asked about actions, explain what elements can do
- For GitHub repos, provide summaries and insights about the codebase`)
	return b.String()
}

func writeAddress(b *strings.Builder, address, balance *string) {
	if address != nil {
		fmt.Fprintf(b, "Address: %s\n", *address)
	}
	if balance != nil {
		fmt.Fprintf(b, "Balance: %s\n", *balance)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
