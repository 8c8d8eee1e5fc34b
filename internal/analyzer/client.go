package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/modalyze/modalyze/internal/models"
)

// Fixed instruction prompts per modality. The URL modalities hand the URL
// to the model as text; nothing is fetched or dereferenced locally.
const (
	imagePrompt    = "请分析这张图片的内容，提供摘要、关键要点和结论。"
	documentPrompt = "请分析这个文件的内容，提供摘要、关键要点和结论。"
	webURLPrompt   = "请分析这个网页的内容：%s"
	videoURLPrompt = "请分析这个视频的内容：%s"
)

// Client is the calling-side entry point: one operation per modality, all
// converging on a single gateway round trip. Every operation resolves to an
// AnalysisResult — failures of any kind (transport, validation, upstream)
// fold into an error-shaped result instead of an error return, so callers
// can render the result unconditionally.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the gateway at the given base URL.
func NewClient(gatewayURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(gatewayURL, "/"),
		httpClient: &http.Client{},
	}
}

// AnalyzeText analyzes a plain-text input.
func (c *Client) AnalyzeText(ctx context.Context, text string) models.AnalysisResult {
	return c.analyze(ctx, models.RequestPayload{Text: text})
}

// AnalyzeImage analyzes a base64-encoded image. A data-URL prefix, if
// present, is stripped and its declared MIME type propagated.
func (c *Client) AnalyzeImage(ctx context.Context, imageBase64 string) models.AnalysisResult {
	data, mimeType := models.StripDataURL(imageBase64)
	return c.analyze(ctx, models.RequestPayload{
		Text:          imagePrompt,
		Image:         data,
		ImageMimeType: mimeType,
	})
}

// AnalyzeDocument analyzes a base64-encoded file of the given MIME type.
// When mimeType is empty, a data-URL prefix on the input supplies it.
func (c *Client) AnalyzeDocument(ctx context.Context, fileBase64, mimeType string) models.AnalysisResult {
	data, declared := models.StripDataURL(fileBase64)
	if mimeType == "" {
		mimeType = declared
	}
	return c.analyze(ctx, models.RequestPayload{
		Text: documentPrompt,
		File: &models.FilePayload{Base64: data, MimeType: mimeType},
	})
}

// AnalyzeAudioFile analyzes a base64-encoded audio file. Audio travels as a
// generic inline file; it gets no dedicated upstream handling.
func (c *Client) AnalyzeAudioFile(ctx context.Context, fileBase64, mimeType string) models.AnalysisResult {
	return c.AnalyzeDocument(ctx, fileBase64, mimeType)
}

// AnalyzeVideoFile analyzes a base64-encoded video file, carried the same
// way as audio.
func (c *Client) AnalyzeVideoFile(ctx context.Context, fileBase64, mimeType string) models.AnalysisResult {
	return c.AnalyzeDocument(ctx, fileBase64, mimeType)
}

// AnalyzeWebURL asks the model to analyze a web page. The URL is embedded
// in the prompt; whether the model resolves it is up to the upstream.
func (c *Client) AnalyzeWebURL(ctx context.Context, url string) models.AnalysisResult {
	return c.analyze(ctx, models.RequestPayload{Text: fmt.Sprintf(webURLPrompt, url)})
}

// AnalyzeVideoURL asks the model to analyze a video by its URL.
func (c *Client) AnalyzeVideoURL(ctx context.Context, url string) models.AnalysisResult {
	return c.analyze(ctx, models.RequestPayload{Text: fmt.Sprintf(videoURLPrompt, url)})
}

// analyze performs the single gateway round trip and hands the outcome to
// the normalizer. This is the only transport path; nothing here returns an
// error value.
func (c *Client) analyze(ctx context.Context, payload models.RequestPayload) models.AnalysisResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return internalErrorResult(fmt.Sprintf("构建请求失败: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gateway", bytes.NewReader(body))
	if err != nil {
		return internalErrorResult(fmt.Sprintf("构建请求失败: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return internalErrorResult(fmt.Sprintf("请求失败: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return internalErrorResult(fmt.Sprintf("读取响应失败: %v", err))
	}

	return Normalize(resp.StatusCode, raw)
}
