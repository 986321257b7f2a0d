package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

// DefaultModels is the completion model preference order. The first model
// the endpoint accepts wins.
var DefaultModels = []string{"gpt-4-turbo-preview", "gpt-4", "gpt-3.5-turbo"}

const (
	completionTemperature = 0.1
	completionMaxTokens   = 3000
)

const systemPrompt = "You are a site provisioning expert who returns only valid JSON " +
	"structures for provisioning templates. Follow the exact schema provided and " +
	"extract precise information from the user's description."

// OpenAIParser asks a chat completion endpoint for the site structure.
type OpenAIParser struct {
	client openai.Client
	models []string
	logger *zap.Logger
}

// OpenAIOptions configures the completion client.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Models  []string
}

// NewOpenAIParser creates a parser against the configured endpoint.
func NewOpenAIParser(opts OpenAIOptions, logger *zap.Logger) *OpenAIParser {
	reqOpts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(opts.APIKey))}
	if u := strings.TrimSpace(opts.BaseURL); u != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(u))
	}
	models := opts.Models
	if len(models) == 0 {
		models = DefaultModels
	}
	return &OpenAIParser{
		client: openai.NewClient(reqOpts...),
		models: models,
		logger: logger,
	}
}

// Parse requests the structure, trying each configured model in order. The
// response is defenced and decoded; a response that is not JSON is an error
// so the caller can fall back.
func (p *OpenAIParser) Parse(ctx context.Context, description string) (map[string]any, string, error) {
	var lastErr error
	for _, m := range p.models {
		resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: shared.ChatModel(m),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(buildPrompt(description)),
			},
			Temperature: openai.Float(completionTemperature),
			MaxTokens:   openai.Int(completionMaxTokens),
		})
		if err != nil {
			p.logger.Warn("completion model unavailable",
				zap.String("model", m), zap.Error(err))
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("model %s returned no choices", m)
			continue
		}

		text := StripFences(resp.Choices[0].Message.Content)
		var structure map[string]any
		if err := json.Unmarshal([]byte(text), &structure); err != nil {
			return nil, "", fmt.Errorf("decode completion from %s: %w", m, err)
		}
		p.logger.Info("structure generated", zap.String("model", m))
		return structure, text, nil
	}
	return nil, "", fmt.Errorf("no completion model available: %w", lastErr)
}

// StripFences removes a surrounding markdown code fence, with or without a
// json language tag, leaving other text untouched.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+len("```"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	return s
}

func buildPrompt(description string) string {
	var b strings.Builder
	b.WriteString("Based on the following description, generate a JSON structure ")
	b.WriteString("for a site provisioning template.\n\n")
	b.WriteString("Description: \"")
	b.WriteString(description)
	b.WriteString("\"\n\n")
	b.WriteString(`Analyze the description carefully and extract:
1. Site type and purpose
2. Exact names from quotes or "called" phrases
3. Document libraries and their purposes
4. Lists and their types
5. Relevant site columns and their field types
6. Views with filters, sorting, and grouping
7. Navigation structure
8. A theme color if one is implied

Return ONLY a valid JSON object with this exact structure:

{
    "site_type": "TeamSite" or "CommunicationSite",
    "site_title": "Meaningful title extracted from description - be specific",
    "description": "Brief description of the site purpose",
    "site_fields": [
        {
            "name": "FieldName",
            "displayName": "Display Name",
            "type": "Text|Note|Choice|DateTime|Boolean|Number|Currency|Person",
            "choices": ["Option1", "Option2"],
            "required": false
        }
    ],
    "lists": [
        {
            "title": "Exact List/Library Title",
            "template_type": 100,
            "url": "Lists/ListName or LibraryName",
            "description": "Purpose of this list/library",
            "enable_versioning": true,
            "on_quick_launch": true,
            "fields": [],
            "views": [
                {
                    "name": "View Name",
                    "kind": "html" or "calendar",
                    "fields": ["FieldName1"],
                    "filter": {"match": "all", "conditions": [{"field": "FieldName", "op": "equals", "value": "X"}]},
                    "sort": [{"field": "FieldName", "direction": "asc"}],
                    "row_limit": 30
                }
            ]
        }
    ],
    "navigation": [
        {"title": "Navigation Item", "url": "{site}/path"}
    ],
    "theme": {"name": "Theme Name", "color": "#0078d4"}
}

Rules:
1. Extract EXACT names from quotes or "called" phrases - don't modify them
2. Be specific with site titles - avoid generic names like "Team Site"
3. For document libraries, always use template_type 101
4. Choose appropriate template types: 100=Custom List, 101=Document Library, 104=Announcements, 105=Contacts, 106=Events, 107=Tasks
5. Include relevant site columns based on the context
6. Add meaningful navigation items
7. Return ONLY the JSON, no explanation text
8. Make URLs friendly: no spaces, proper casing`)
	return b.String()
}
