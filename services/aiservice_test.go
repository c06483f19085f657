package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tenor/apperr"
	"tenor/model"
)

type scriptedProvider struct {
	replies []string
	err     error
	prompts []string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return "", errors.New("no more replies")
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r, nil
}

type autocompletion struct {
	AssistantMessage string `json:"assistant_message" validate:"required"`
	Autocompletion   string `json:"autocompletion" validate:"required"`
}

func TestGenerateJSONStripsFences(t *testing.T) {
	p := &scriptedProvider{replies: []string{"```json\n{\"assistant_message\":\"ok\",\"autocompletion\":\"done\"}\n```"}}
	ai := NewAIClient(p, 600)

	got, err := GenerateJSON[autocompletion](context.Background(), ai, "Help me")
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if got.AssistantMessage != "ok" || got.Autocompletion != "done" {
		t.Errorf("got %+v", got)
	}
	if !strings.Contains(p.prompts[0], `"assistant_message"`) {
		t.Error("prompt should embed the schema")
	}
	if !strings.HasPrefix(p.prompts[0], "Help me") {
		t.Error("prompt should start with the caller's text")
	}
}

func TestGenerateJSONRetriesMismatch(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"not json",
		`{"assistant_message":""}`,
		`[{"name":"Write tests","description":"Cover the parser","size":"S"}]`,
	}}
	ai := NewAIClient(p, 600)

	got, err := GenerateJSON[[]model.TaskPreview](context.Background(), ai, "tasks")
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Write tests" {
		t.Errorf("got %+v", got)
	}
	if len(p.prompts) != 3 {
		t.Errorf("attempts = %d, want 3", len(p.prompts))
	}
}

func TestGenerateJSONGivesUp(t *testing.T) {
	p := &scriptedProvider{replies: []string{"{}", "{}", "{}", "{}", "{}"}}
	ai := NewAIClient(p, 600)

	_, err := GenerateJSON[autocompletion](context.Background(), ai, "x")
	if err == nil {
		t.Fatal("GenerateJSON() should fail")
	}
	if len(p.prompts) != DefaultAIRetries+1 {
		t.Errorf("attempts = %d, want %d", len(p.prompts), DefaultAIRetries+1)
	}
	var e *apperr.Error
	if !errors.As(err, &e) || e.Message != "AI generation failed after multiple attempts" {
		t.Errorf("err = %v", err)
	}
}

func TestGenerateJSONValidatesSliceItems(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		`[{"name":"a","description":"b","size":"HUGE"}]`,
		`[{"name":"a","description":"b","size":"XL"}]`,
	}}
	ai := NewAIClient(p, 600)

	got, err := GenerateJSON[[]model.TaskPreview](context.Background(), ai, "x")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Size != model.SizeXL {
		t.Errorf("size = %q", got[0].Size)
	}
	if len(p.prompts) != 2 {
		t.Errorf("attempts = %d, want 2", len(p.prompts))
	}
}

func TestGenerateJSONProviderErrorIsTerminal(t *testing.T) {
	p := &scriptedProvider{err: errors.New("down")}
	ai := NewAIClient(p, 600)
	if _, err := GenerateJSON[autocompletion](context.Background(), ai, "x"); err == nil {
		t.Fatal("expected error")
	}
	if len(p.prompts) != 1 {
		t.Errorf("attempts = %d, want 1", len(p.prompts))
	}
}

func TestGeminiGenerateAndFallback(t *testing.T) {
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 403, "message": "bad key", "status": "PERMISSION_DENIED"}})
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req geminiRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": "echo " + req.Contents[0].Parts[0].Text}}}}},
		})
	}))
	defer gemini.Close()

	var softtekPrompt string
	softtek := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt string `json:"prompt"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		softtekPrompt = body.Prompt
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": "from softtek"})
	}))
	defer softtek.Close()

	ok := &Gemini{APIKey: "secret", Model: "gemini-2.0-flash", BaseURL: gemini.URL}
	got, err := ok.Generate(context.Background(), "hi")
	if err != nil || got != "echo hi" {
		t.Fatalf("Generate() = %q, %v", got, err)
	}

	f := &Fallback{
		Primary:   &Gemini{APIKey: "wrong", Model: "gemini-2.0-flash", BaseURL: gemini.URL},
		Secondary: &Softtek{URL: softtek.URL},
	}
	got, err = f.Generate(context.Background(), `{"a":1}`)
	if err != nil || got != "from softtek" {
		t.Fatalf("fallback Generate() = %q, %v", got, err)
	}
	if softtekPrompt != `{{"a":1}}` {
		t.Errorf("softtek prompt = %q, braces should be doubled", softtekPrompt)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens("abcdefgh"); got != 2 {
		t.Errorf("EstimateTokens = %d, want 2", got)
	}
	if got := EstimateTokens("abc"); got != 1 {
		t.Errorf("EstimateTokens = %d, want 1", got)
	}
}
