package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Jason121485/StudyMate-AI/app/models"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// emptyObject is the fallback for structured responses that fail to parse:
// the caller gets a shape it can render instead of a propagated parse error.
var emptyObject = json.RawMessage("{}")

// GeminiClient shapes domain prompts and parses structured responses from the
// generative AI provider.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// AssignmentHelp returns {explanation, steps, example} for one assignment.
func (c *GeminiClient) AssignmentHelp(ctx context.Context, subject, topic, instructions string, grade models.GradeLevel) (json.RawMessage, error) {
	prompt := fmt.Sprintf(`As an academic assistant for a %s student, help with the following assignment:
    Subject: %s
    Topic: %s
    Instructions: %s

    Provide:
    1. A clear explanation of the core concepts.
    2. A step-by-step solution or guide.
    3. An example answer or template.`, grade, subject, topic, instructions)

	schema := map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "STRING"},
			"steps":       map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"example":     map[string]any{"type": "STRING"},
		},
		"required": []string{"explanation", "steps", "example"},
	}

	text, err := c.generate(ctx, prompt, schema)
	if err != nil {
		return nil, err
	}

	var parsed models.AssignmentHelp
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return emptyObject, nil
	}
	return json.RawMessage(text), nil
}

// ResearchAssistance returns titles, questions, an outline, and methodology
// suggestions for a research topic.
func (c *GeminiClient) ResearchAssistance(ctx context.Context, topic string) (json.RawMessage, error) {
	prompt := fmt.Sprintf(`Provide research assistance for the topic: %s.
    Include:
    1. 3-5 suggested research titles.
    2. 3-5 key research questions.
    3. A detailed outline (chapter structure).
    4. Methodology suggestions.`, topic)

	schema := map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"titles":    map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"questions": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"outline": map[string]any{"type": "ARRAY", "items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"chapter":     map[string]any{"type": "STRING"},
					"description": map[string]any{"type": "STRING"},
				},
			}},
			"methodology": map[string]any{"type": "STRING"},
		},
		"required": []string{"titles", "questions", "outline", "methodology"},
	}

	text, err := c.generate(ctx, prompt, schema)
	if err != nil {
		return nil, err
	}

	var parsed models.ResearchAssistance
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return emptyObject, nil
	}
	return json.RawMessage(text), nil
}

// StudyExplanation returns a free-text explanation tuned to the requested
// difficulty. No response schema applies here.
func (c *GeminiClient) StudyExplanation(ctx context.Context, topic string, difficulty models.Difficulty) (string, error) {
	prompt := fmt.Sprintf(`Explain the topic "%s" at a %s level.
    If simple: use analogies and basic language.
    If detailed: provide comprehensive coverage with examples.
    If advanced: include technical details, current research, and complex implications.`, topic, difficulty)

	return c.generate(ctx, prompt, nil)
}

type generateRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Status int
	Body   string
}

func (e geminiError) Error() string { return fmt.Sprintf("gemini http %d: %s", e.Status, e.Body) }

// generate posts one prompt and returns the first candidate's text, retrying
// on 429/5xx with a short backoff.
func (c *GeminiClient) generate(ctx context.Context, prompt string, schema map[string]any) (string, error) {
	reqBody := generateRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if schema != nil {
		reqBody.GenerationConfig = &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var last geminiError
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.httpc.Do(req)
		if err != nil {
			return "", err
		}

		if res.StatusCode == http.StatusOK {
			var out generateResponse
			err := json.NewDecoder(res.Body).Decode(&out)
			res.Body.Close()
			if err != nil {
				return "", err
			}
			if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
				return "", nil
			}
			return out.Candidates[0].Content.Parts[0].Text, nil
		}

		var msg struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&msg)
		res.Body.Close()
		last = geminiError{Status: res.StatusCode, Body: msg.Error.Message}

		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			time.Sleep(time.Duration(250*(attempt+1)) * time.Millisecond)
			continue
		}
		break
	}
	return "", last
}
