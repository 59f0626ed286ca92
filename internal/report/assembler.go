// Package report turns an analysis result into an outbound email.
package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"newstracker/internal/domain"
)

const subjectSummaryRunes = 15

// Assembler formats notifications. It does not call the analyzer; it
// only renders an already-produced result.
type Assembler struct {
	location *time.Location
}

// NewAssembler builds an assembler using the given timezone for the
// report date line.
func NewAssembler(location *time.Location) *Assembler {
	if location == nil {
		location = time.UTC
	}
	return &Assembler{location: location}
}

// Assemble renders the notification for one match. It fails with
// ErrMalformedAnalysis when the analyzer result is missing either
// required field; the surrounding parse step already validates them,
// so this only guards against stub misuse.
func (a *Assembler) Assemble(m domain.MatchResult, enriched domain.EnrichedContent, analysis domain.AnalysisResult) (domain.Notification, error) {
	if strings.TrimSpace(analysis.Summary) == "" || strings.TrimSpace(analysis.ReportHTML) == "" {
		return domain.Notification{}, fmt.Errorf("assemble report for %s: %w", m.Item.URL, domain.ErrMalformedAnalysis)
	}

	return domain.Notification{
		Recipient: m.Rule.Recipient,
		Subject:   buildSubject(enriched.Label, analysis.Summary),
		HTMLBody:  a.buildBody(m, enriched, analysis),
	}, nil
}

func buildSubject(label, summary string) string {
	return fmt.Sprintf("🔔 %s %s...", label, truncateRunes(summary, subjectSummaryRunes))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func (a *Assembler) buildBody(m domain.MatchResult, enriched domain.EnrichedContent, analysis domain.AnalysisResult) string {
	today := time.Now().In(a.location).Format("2006-01-02")
	keywords := strings.Join(m.Rule.Keywords, ", ")

	planBadge := ""
	if m.Rule.Tier == domain.TierPro {
		planBadge = `<span style="background:#ffd700; color:#000; padding:2px 6px; border-radius:4px;">PRO</span>`
	}

	// The report HTML comes straight from the analyzer and is rendered
	// unescaped; everything else is user/feed data and gets escaped.
	return fmt.Sprintf(`
        <div style="font-family: sans-serif; max-width: 600px; margin: auto; border: 1px solid #eee; padding: 20px;">
            <h2>懂才抱投資快訊 %s</h2>
            <p style="font-size:12px; color:#666;">分析模式: %s | 日期: %s</p>
            <div style="background:#f0f9ff; padding:12px; border-left:4px solid #0ea5e9; margin: 15px 0;">
                <strong>追蹤關鍵字：</strong> %s<br>
                <strong>您的筆記：</strong> %s
            </div>
            <h3 style="color:#1e40af;">%s</h3>
            <div style="background:#fff7ed; padding:12px; border-left:4px solid #f97316; margin: 15px 0;">
                <strong>AI 核心摘要：</strong> %s
            </div>
            <hr style="border:0; border-top:1px solid #eee;">
            %s
            <br>
            <p style="text-align:center;"><a href="%s" style="color:#0ea5e9;">閱讀原始新聞連結</a></p>
            <div style="text-align:center; font-size:11px; color:#999; margin-top:30px; border-top: 1px solid #eee; padding-top:10px;">
                懂才抱 AI 自動追蹤系統 | 專為 %s 方案提供
            </div>
        </div>`,
		planBadge,
		html.EscapeString(enriched.Label),
		today,
		html.EscapeString(keywords),
		html.EscapeString(m.Rule.Reason),
		html.EscapeString(m.Item.Title),
		html.EscapeString(analysis.Summary),
		analysis.ReportHTML,
		html.EscapeString(m.Item.URL),
		strings.ToUpper(string(m.Rule.Tier)),
	)
}
