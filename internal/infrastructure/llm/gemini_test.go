package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"newstracker/internal/config"
	"newstracker/internal/domain"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"id":     "resp-1",
			"object": "chat.completion",
			"model":  "gemini-2.5-flash",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func analyzerFor(server *httptest.Server) *GeminiAnalyzer {
	return NewGeminiAnalyzer(config.GeminiConfig{
		Endpoint: server.URL + "/v1beta/openai",
		Model:    "gemini-2.5-flash",
		APIKey:   "test-key",
	})
}

func TestAnalyzeParsesFencedJSON(t *testing.T) {
	t.Parallel()

	content := "```json\n{\"chinese_summary\":\"Acme 財報優於預期\",\"html_report\":\"<h2>二、關聯分析</h2>\"}\n```"
	server := completionServer(t, content)
	defer server.Close()

	result, err := analyzerFor(server).Analyze(context.Background(), domain.PromptContext{
		Label: "【標準摘要分析模式】",
		Title: "Acme beats earnings",
	})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if result.Summary != "Acme 財報優於預期" {
		t.Fatalf("unexpected summary: %s", result.Summary)
	}
	if result.ReportHTML != "<h2>二、關聯分析</h2>" {
		t.Fatalf("unexpected report: %s", result.ReportHTML)
	}
}

func TestAnalyzeMissingFieldIsMalformed(t *testing.T) {
	t.Parallel()

	server := completionServer(t, "{\"chinese_summary\":\"只有摘要\"}")
	defer server.Close()

	_, err := analyzerFor(server).Analyze(context.Background(), domain.PromptContext{})
	if !errors.Is(err, domain.ErrMalformedAnalysis) {
		t.Fatalf("expected ErrMalformedAnalysis, got %v", err)
	}
}

func TestAnalyzeInvalidJSONIsMalformed(t *testing.T) {
	t.Parallel()

	server := completionServer(t, "sorry, I cannot do that")
	defer server.Close()

	_, err := analyzerFor(server).Analyze(context.Background(), domain.PromptContext{})
	if !errors.Is(err, domain.ErrMalformedAnalysis) {
		t.Fatalf("expected ErrMalformedAnalysis, got %v", err)
	}
}

func TestDigestFiling(t *testing.T) {
	t.Parallel()

	server := completionServer(t, "### 本季一句話營運判斷\n穩健成長")
	defer server.Close()

	digest, err := analyzerFor(server).DigestFiling(context.Background(), "ACME", "md&a text")
	if err != nil {
		t.Fatalf("DigestFiling error: %v", err)
	}
	if digest != "### 本季一句話營運判斷\n穩健成長" {
		t.Fatalf("unexpected digest: %q", digest)
	}
}

func TestStripCodeFences(t *testing.T) {
	t.Parallel()

	got := stripCodeFences("```json\n{\"a\":1}\n```")
	if got != "{\"a\":1}" {
		t.Fatalf("unexpected result: %q", got)
	}
}
