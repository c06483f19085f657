package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"tenor/apperr"
	"tenor/config"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"golang.org/x/time/rate"
)

// Provider turns a prompt into raw model text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// TokenCounter is implemented by providers that can count prompt tokens.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

const GeminiBaseURL = "https://generativelanguage.googleapis.com"

type Gemini struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	TotalTokens int `json:"totalTokens"`
	Error       *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *Gemini) Name() string { return config.AIGemini }

func (g *Gemini) endpoint(method string) string {
	base := g.BaseURL
	if base == "" {
		base = GeminiBaseURL
	}
	return fmt.Sprintf("%s/v1beta/models/%s:%s?key=%s", base, g.Model, method, url.QueryEscape(g.APIKey))
}

func (g *Gemini) call(ctx context.Context, method, text string) (*geminiResponse, error) {
	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: text}}}}})
	if err != nil {
		return nil, err
	}
	var out geminiResponse
	if err := postJSON(ctx, g.Client, g.endpoint(method), body, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("gemini %s: %s", out.Error.Status, out.Error.Message)
	}
	return &out, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := g.call(ctx, "generateContent", prompt)
	if err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 || out.Candidates[0].Content.Parts[0].Text == "" {
		return "", errors.New("gemini: invalid response structure")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (g *Gemini) CountTokens(ctx context.Context, text string) (int, error) {
	out, err := g.call(ctx, "countTokens", text)
	if err != nil {
		return 0, err
	}
	return out.TotalTokens, nil
}

// Softtek is the fallback text endpoint. It treats braces as template
// markers, so they are doubled before sending.
type Softtek struct {
	URL    string
	Client *http.Client
}

func (s *Softtek) Name() string { return config.AISofttek }

func (s *Softtek) Generate(ctx context.Context, prompt string) (string, error) {
	prepared := strings.NewReplacer("{", "{{", "}", "}}").Replace(prompt)
	body, err := json.Marshal(map[string]any{"prompt": prepared, "data": map[string]any{}})
	if err != nil {
		return "", err
	}
	var out struct {
		Success bool   `json:"success"`
		Data    string `json:"data"`
	}
	if err := postJSON(ctx, s.Client, s.URL, body, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", errors.New("softtek: generation failed")
	}
	return out.Data, nil
}

// Fallback asks Secondary when Primary fails.
type Fallback struct {
	Primary   Provider
	Secondary Provider
}

func (f *Fallback) Name() string { return f.Primary.Name() }

func (f *Fallback) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := f.Primary.Generate(ctx, prompt)
	if err == nil {
		return text, nil
	}
	slog.WarnContext(ctx, "primary AI provider unavailable, using backup",
		"primary", f.Primary.Name(),
		"backup", f.Secondary.Name(),
		"error", err,
	)
	return f.Secondary.Generate(ctx, prompt)
}

func (f *Fallback) CountTokens(ctx context.Context, text string) (int, error) {
	if tc, ok := f.Primary.(TokenCounter); ok {
		return tc.CountTokens(ctx, text)
	}
	return EstimateTokens(text), nil
}

// NewProvider picks the provider named by GENERATIVE_AI.
func NewProvider(cfg *config.Config) Provider {
	client := &http.Client{Timeout: 90 * time.Second}
	softtek := &Softtek{URL: cfg.SofttekURL, Client: client}
	if cfg.GenerativeAI == config.AISofttek {
		return softtek
	}
	return &Fallback{
		Primary:   &Gemini{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, Client: client},
		Secondary: softtek,
	}
}

func postJSON(ctx context.Context, client *http.Client, endpoint string, body []byte, out any) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

// DefaultAIRetries is how many times a mismatching answer is re-requested.
const DefaultAIRetries = 3

type AIClient struct {
	provider   Provider
	limiter    *rate.Limiter
	validate   *validator.Validate
	maxRetries int
}

func NewAIClient(provider Provider, perMinute int) *AIClient {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &AIClient{
		provider:   provider,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		validate:   validator.New(),
		maxRetries: DefaultAIRetries,
	}
}

// Prompt sends raw text to the provider, waiting for the rate limiter.
func (a *AIClient) Prompt(ctx context.Context, prompt string) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return a.provider.Generate(ctx, prompt)
}

func (a *AIClient) CountTokens(ctx context.Context, text string) (int, error) {
	if tc, ok := a.provider.(TokenCounter); ok {
		n, err := tc.CountTokens(ctx, text)
		if err == nil {
			return n, nil
		}
		slog.WarnContext(ctx, "token count failed, estimating", "error", err)
	}
	return EstimateTokens(text), nil
}

// EstimateTokens assumes about four characters per token.
func EstimateTokens(text string) int {
	n := len([]rune(text))
	return (n + 3) / 4
}

// SchemaFor renders the JSON schema of T as sent to the model.
func SchemaFor[T any]() (string, error) {
	r := &jsonschema.Reflector{DoNotReference: true, Anonymous: true}
	var zero T
	data, err := json.MarshalIndent(r.Reflect(zero), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func schemaPrompt(prompt, schema string) string {
	return prompt + `

Please generate a JSON object that strictly conforms to the following schema:

` + schema + `

Important instructions:
- Only return valid JSON that exactly matches the schema.
- Do NOT include markdown, code blocks, comments, or any explanation.
- Do NOT include any line breaks or formatting. Return a single-line JSON string only.
- All required fields must be present.
- Use realistic sample data for each field (don't use placeholders like "string" or "123").
- Do NOT include any additional fields or properties that are not in the schema.
- Do NOT add any top level keys or metadata such as a type, version or items array.
- IF the schema has an array as the root type, make sure to always return an array, do NOT return an object.

Return only the JSON on one line. Pay very close attention to make sure the JSON is valid and matches the schema exactly.`
}

// StripCodeFences removes markdown json fences wherever they appear.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func (a *AIClient) check(v any) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		for i := range rv.Len() {
			if err := a.check(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	case reflect.Struct:
		return a.validate.Struct(v)
	}
	return nil
}

// GenerateJSON asks the model for a value of type T. Answers that do not
// parse or validate are retried up to the client's retry bound.
func GenerateJSON[T any](ctx context.Context, a *AIClient, prompt string) (T, error) {
	var zero T
	schema, err := SchemaFor[T]()
	if err != nil {
		return zero, err
	}
	full := schemaPrompt(prompt, schema)

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		text, err := a.Prompt(ctx, full)
		if err != nil {
			return zero, apperr.Wrap(apperr.CodeInternal, err, "AI generation failed")
		}

		var out T
		err = json.Unmarshal([]byte(StripCodeFences(text)), &out)
		if err == nil {
			err = a.check(out)
		}
		if err == nil {
			return out, nil
		}
		lastErr = err
		slog.WarnContext(ctx, "retrying AI generation due to schema mismatch",
			"attempt", attempt+1,
			"error", err,
		)
	}
	return zero, apperr.Wrap(apperr.CodeInternal, lastErr, "AI generation failed after multiple attempts")
}
