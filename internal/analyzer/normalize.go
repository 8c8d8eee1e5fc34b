package analyzer

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/modalyze/modalyze/internal/gateway"
	"github.com/modalyze/modalyze/internal/models"
)

const (
	rateLimitSummary    = "错误: API 额度超限"
	rateLimitKeyPoint   = "请求过于频繁，请稍后再试"
	rateLimitConclusion = "请稍后重试"

	parsedSummaryFallback = "分析完成"
	plainConclusion       = "解析完成"

	// Plain-text summaries are truncated to this many runes.
	summaryRuneLimit = 100
)

// upstreamEnvelope mirrors the generateContent success shape just far
// enough to reach the first text fragment.
type upstreamEnvelope struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// structuredResult is the JSON shape the model is asked to produce. Fields
// are pointers so each one can fall back independently when missing.
type structuredResult struct {
	Summary          *string         `json:"summary"`
	KeyPoints        []string        `json:"keyPoints"`
	Conclusion       *string         `json:"conclusion"`
	DetailedAnalysis *string         `json:"detailedAnalysis"`
	Sources          []models.Source `json:"sources"`
}

// Normalize converts a gateway response of any status into the canonical
// result. It never fails: unparseable input degrades to a plain-text
// presentation, errors to an error-shaped result.
func Normalize(status int, body []byte) models.AnalysisResult {
	if status == http.StatusTooManyRequests {
		return rateLimitResult(body)
	}
	if status < 200 || status >= 300 {
		var env gateway.ErrorEnvelope
		_ = json.Unmarshal(body, &env)
		kind := env.Error
		if kind == "" {
			kind = gateway.ErrUpstream
		}
		message := env.Message
		if message == "" {
			message = "未知错误"
		}
		return errorResult(kind, message)
	}

	var env upstreamEnvelope
	_ = json.Unmarshal(body, &env)
	return NormalizeText(firstText(env))
}

// NormalizeText converts a raw model reply into the canonical result: a
// structured parse when the text carries JSON, a plain-text presentation
// otherwise.
func NormalizeText(text string) models.AnalysisResult {
	if strings.Contains(text, "{") {
		if result, ok := parseStructured(text); ok {
			return result
		}
	}
	return plainResult(text)
}

// parseStructured extracts the JSON object embedded in the model reply.
// Markdown code fences around it are stripped first.
func parseStructured(text string) (models.AnalysisResult, bool) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return models.AnalysisResult{}, false
	}

	var parsed structuredResult
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &parsed); err != nil {
		return models.AnalysisResult{}, false
	}

	result := models.AnalysisResult{
		Summary:          parsedSummaryFallback,
		KeyPoints:        []string{},
		Conclusion:       "",
		DetailedAnalysis: text,
		Sources:          []models.Source{},
	}
	if parsed.Summary != nil {
		result.Summary = *parsed.Summary
	}
	if parsed.KeyPoints != nil {
		result.KeyPoints = parsed.KeyPoints
	}
	if parsed.Conclusion != nil {
		result.Conclusion = *parsed.Conclusion
	}
	if parsed.DetailedAnalysis != nil {
		result.DetailedAnalysis = *parsed.DetailedAnalysis
	}
	if parsed.Sources != nil {
		result.Sources = parsed.Sources
	}
	return result, true
}

// plainResult presents a free-form reply without structure: truncated
// summary, the full text as the single key point and as the detail.
func plainResult(text string) models.AnalysisResult {
	summary := text
	if runes := []rune(text); len(runes) > summaryRuneLimit {
		summary = string(runes[:summaryRuneLimit])
	}
	return models.AnalysisResult{
		Summary:          summary + "...",
		KeyPoints:        []string{text},
		Conclusion:       plainConclusion,
		DetailedAnalysis: text,
		Sources:          []models.Source{},
	}
}

func rateLimitResult(body []byte) models.AnalysisResult {
	var env gateway.ErrorEnvelope
	_ = json.Unmarshal(body, &env)
	keyPoint := env.Message
	if keyPoint == "" {
		keyPoint = rateLimitKeyPoint
	}
	return models.AnalysisResult{
		Summary:    rateLimitSummary,
		KeyPoints:  []string{keyPoint},
		Conclusion: rateLimitConclusion,
		Sources:    []models.Source{},
		ErrorKind:  gateway.ErrRateLimit,
	}
}

func errorResult(kind, message string) models.AnalysisResult {
	return models.AnalysisResult{
		Summary:   "分析失败: " + message,
		KeyPoints: []string{},
		Sources:   []models.Source{},
		ErrorKind: kind,
	}
}

// internalErrorResult shapes a local failure (marshalling, transport, read)
// the same way the gateway shapes its own internal errors.
func internalErrorResult(message string) models.AnalysisResult {
	return errorResult(gateway.ErrInternal, message)
}

func firstText(env upstreamEnvelope) string {
	if len(env.Candidates) == 0 {
		return ""
	}
	parts := env.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}
