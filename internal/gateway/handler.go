package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/modalyze/modalyze/internal/config"
	"github.com/modalyze/modalyze/internal/metrics"
	"github.com/modalyze/modalyze/internal/models"
	"github.com/modalyze/modalyze/internal/upstream"
)

// GenerateClient is the slice of the upstream client the handler needs.
// Tests substitute a fake.
type GenerateClient interface {
	Generate(ctx context.Context, parts []upstream.Part) (*upstream.Response, error)
}

// Handler serves the single gateway endpoint. Configuration and the
// upstream client are injected at construction, never looked up ambiently.
type Handler struct {
	cfg    config.Config
	client GenerateClient
}

// NewHandler builds the gateway handler.
func NewHandler(cfg config.Config, client GenerateClient) *Handler {
	return &Handler{cfg: cfg, client: client}
}

// Liveness handles GET /gateway. It performs no upstream call.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "analysis gateway is running",
	})
}

// Analyze handles POST /gateway: validate the payload, build the content
// parts, issue exactly one upstream call and classify the outcome. No error
// leaves this handler unclassified.
func (h *Handler) Analyze(c *gin.Context) {
	var payload models.RequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.fail(c, http.StatusBadRequest, ErrInvalidRequest, "request body must be valid JSON", nil)
		return
	}
	if !payload.HasContent() {
		h.fail(c, http.StatusBadRequest, ErrInvalidRequest, "at least one of text, image or file is required", nil)
		return
	}

	parts := upstream.BuildParts(payload)
	resp, err := h.client.Generate(c.Request.Context(), parts)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, ErrInternal, err.Error(), nil)
		return
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// The upstream body passes through verbatim; normalization happens
		// on the calling side.
		c.Data(http.StatusOK, "application/json", resp.Body)
	case resp.StatusCode == http.StatusTooManyRequests:
		h.fail(c, http.StatusTooManyRequests, ErrRateLimit,
			upstream.ErrorMessage(resp.Body, resp.StatusCode), rawBody(resp.Body))
	default:
		// Mirror the upstream status so the caller sees what the upstream
		// actually answered.
		h.fail(c, resp.StatusCode, ErrUpstream,
			upstream.ErrorMessage(resp.Body, resp.StatusCode), rawBody(resp.Body))
	}
}

// MethodNotAllowed rejects any /gateway method other than GET and POST.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ErrorEnvelope{
		Error:   ErrMethodNotAllowed,
		Message: c.Request.Method + " is not supported",
	})
}

func (h *Handler) fail(c *gin.Context, status int, kind, message string, raw any) {
	metrics.AnalysisErrorsTotal.WithLabelValues(kind).Inc()
	c.JSON(status, ErrorEnvelope{Error: kind, Message: message, Raw: raw})
}

// rawBody preserves the upstream body in the error envelope: embedded as
// JSON when it parses, as a string otherwise.
func rawBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}
