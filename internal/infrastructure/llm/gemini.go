// Package llm talks to Gemini through its OpenAI-compatible endpoint.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"newstracker/internal/config"
	"newstracker/internal/domain"
	"newstracker/internal/ports"
)

// GeminiAnalyzer implements ports.Analyzer backed by the go-openai
// client pointed at the Gemini API.
type GeminiAnalyzer struct {
	client *openai.Client
	model  string
}

var _ ports.Analyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer builds a client from configuration.
func NewGeminiAnalyzer(cfg config.GeminiConfig) *GeminiAnalyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}
	return &GeminiAnalyzer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// analysisResponse is the JSON object the model is instructed to return.
type analysisResponse struct {
	ChineseSummary string `json:"chinese_summary"`
	HTMLReport     string `json:"html_report"`
}

// Analyze sends one prompt context and parses the structured response.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, prompt domain.PromptContext) (domain.AnalysisResult, error) {
	content, err := g.complete(ctx, buildAnalysisPrompt(prompt))
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	var parsed analysisResponse
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &parsed); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("parse analysis json: %v: %w", err, domain.ErrMalformedAnalysis)
	}

	if parsed.ChineseSummary == "" || parsed.HTMLReport == "" {
		return domain.AnalysisResult{}, fmt.Errorf("analysis response missing required fields: %w", domain.ErrMalformedAnalysis)
	}

	return domain.AnalysisResult{
		Summary:    parsed.ChineseSummary,
		ReportHTML: parsed.HTMLReport,
	}, nil
}

// DigestFiling produces the MD&A digest used by the filings job.
func (g *GeminiAnalyzer) DigestFiling(ctx context.Context, symbol, text string) (string, error) {
	content, err := g.complete(ctx, buildFilingPrompt(symbol, text))
	if err != nil {
		return "", err
	}

	digest := strings.TrimSpace(content)
	if digest == "" {
		return "", fmt.Errorf("empty filing digest: %w", domain.ErrMalformedAnalysis)
	}

	return digest, nil
}

func (g *GeminiAnalyzer) complete(ctx context.Context, prompt string) (string, error) {
	if g.model == "" {
		return "", fmt.Errorf("analyzer misconfigured: %w", domain.ErrAnalysisFailed)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %v: %w", err, domain.ErrAnalysisFailed)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices: %w", domain.ErrAnalysisFailed)
	}

	return resp.Choices[0].Message.Content, nil
}

func buildAnalysisPrompt(prompt domain.PromptContext) string {
	return fmt.Sprintf(`
    你是一位專業投資助理。目前正在執行：%s
    【客戶監控理由】：%s
    【監控關鍵字】：%s

    【新聞標題】：%s
    【新聞原文內容】：
    %s

    請以 JSON 格式回傳分析結果：
    {
        "chinese_summary": "繁體中文一句話摘要(50字內)",
        "html_report": "HTML代碼(包含<h2>二、關聯分析</h2>與<h2>三、完整翻譯與重點標註</h2>)"
    }
    `, prompt.Label, prompt.Reason, strings.Join(prompt.Keywords, ", "), prompt.Title, prompt.Content)
}

func buildFilingPrompt(symbol, text string) string {
	return fmt.Sprintf(`
你是 %[1]s 公司的策略顧問。請閱讀這份 10-Q 財報的 MD&A（管理層討論）部分。

使用者不想看枯燥的財務報表數據，請你整理出「官方對於營運狀況的文字說明」，並幫助投資人快速判斷本季營運是否符合原本的長期成長方向。

請遵守以下規則：
1. 🚫 嚴禁羅列財務報表數據，除非該數字對理解 %[1]s 的策略是否成功至關重要。
2. 🗣️ 專注於「管理層的官方解釋」：營收變化原因、成本投入方向。
3. 🧭 每一段請先描述「官方說法」，再補充一句「對投資人的觀察含意」。
4. 🔮 請整理管理層對未來幾季的佈局與主要擔憂。
5. 🧠 避免行銷式語言，保持中性分析。

請使用以下結構，並以繁體中文輸出：
### 本季一句話營運判斷
### 1. 官方業務重點 (Business Highlights)
### 2. 成長與衰退的背後原因 (The "Why")
### 3. 公司的下一步 (Future Outlook)
### 4. 投資人接下來該觀察什麼

---
[文件內容]: %[2]s
`, symbol, text)
}

// stripCodeFences removes markdown code fences some models wrap around
// JSON payloads.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
