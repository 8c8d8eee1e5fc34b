package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/modalyze/modalyze/internal/config"
	"github.com/modalyze/modalyze/internal/models"
	"github.com/modalyze/modalyze/internal/upstream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeClient counts upstream calls and returns a canned outcome.
type fakeClient struct {
	resp  *upstream.Response
	err   error
	calls int
	parts []upstream.Part
}

func (f *fakeClient) Generate(_ context.Context, parts []upstream.Part) (*upstream.Response, error) {
	f.calls++
	f.parts = parts
	return f.resp, f.err
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:       "development",
		GeminiAPIKey: "test-key",
		GeminiModel:  "gemini-2.0-flash",
	}
}

func newTestRouter(client GenerateClient) *gin.Engine {
	return NewRouter(testConfig(), NewHandler(testConfig(), client))
}

func doRequest(t *testing.T, router *gin.Engine, method string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/gateway", bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an error envelope: %v (%s)", err, w.Body.String())
	}
	return env
}

func TestLivenessNoUpstreamCall(t *testing.T) {
	client := &fakeClient{}
	w := doRequest(t, newTestRouter(client), http.MethodGet, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || body.Message == "" {
		t.Errorf("liveness body = %s", w.Body.String())
	}
	if client.calls != 0 {
		t.Errorf("GET must never trigger an upstream call, got %d", client.calls)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			client := &fakeClient{}
			w := doRequest(t, newTestRouter(client), method, []byte(`{"text":"hi"}`))

			if w.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want 405", w.Code)
			}
			if env := decodeEnvelope(t, w); env.Error != ErrMethodNotAllowed {
				t.Errorf("error = %q", env.Error)
			}
			if client.calls != 0 {
				t.Errorf("%s must not reach the upstream", method)
			}
		})
	}
}

func TestEmptyPayloadRejected(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"empty object", []byte(`{}`)},
		{"file without base64", []byte(`{"file":{"mimeType":"application/pdf"}}`)},
		{"not json", []byte(`not json`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			w := doRequest(t, newTestRouter(client), http.MethodPost, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if env := decodeEnvelope(t, w); env.Error != ErrInvalidRequest {
				t.Errorf("error = %q, want INVALID_REQUEST", env.Error)
			}
			if client.calls != 0 {
				t.Error("invalid payload must be rejected before any network call")
			}
		})
	}
}

func TestUpstreamSuccessPassthrough(t *testing.T) {
	upstreamBody := []byte(`{"candidates":[{"content":{"parts":[{"text":"结果"}]}}]}`)
	client := &fakeClient{resp: &upstream.Response{StatusCode: http.StatusOK, Body: upstreamBody}}
	w := doRequest(t, newTestRouter(client), http.MethodPost, []byte(`{"text":"你好"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), upstreamBody) {
		t.Errorf("body must pass through verbatim, got %s", w.Body.String())
	}
	if client.calls != 1 {
		t.Errorf("exactly one upstream call expected, got %d", client.calls)
	}
	if len(client.parts) != 1 || client.parts[0].Text != "你好" {
		t.Errorf("upstream received parts %+v", client.parts)
	}
}

func TestUpstreamRateLimit(t *testing.T) {
	client := &fakeClient{resp: &upstream.Response{
		StatusCode: http.StatusTooManyRequests,
		Body:       []byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`),
	}}
	w := doRequest(t, newTestRouter(client), http.MethodPost, []byte(`{"text":"hi"}`))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error != ErrRateLimit {
		t.Errorf("error = %q, want RATE_LIMIT", env.Error)
	}
	if env.Message != "Resource has been exhausted" {
		t.Errorf("message = %q", env.Message)
	}
	if env.Raw == nil {
		t.Error("raw upstream body should be preserved")
	}
}

func TestUpstreamErrorMirrorsStatus(t *testing.T) {
	tests := []int{http.StatusBadRequest, http.StatusForbidden, http.StatusInternalServerError, http.StatusServiceUnavailable}

	for _, status := range tests {
		client := &fakeClient{resp: &upstream.Response{StatusCode: status, Body: []byte(`{"error":{"message":"boom"}}`)}}
		w := doRequest(t, newTestRouter(client), http.MethodPost, []byte(`{"text":"hi"}`))

		if w.Code != status {
			t.Errorf("status = %d, want mirrored %d", w.Code, status)
		}
		if env := decodeEnvelope(t, w); env.Error != ErrUpstream {
			t.Errorf("error = %q, want UPSTREAM_ERROR", env.Error)
		}
	}
}

func TestTransportFailureIsInternalError(t *testing.T) {
	client := &fakeClient{err: errors.New("dial tcp: connection refused")}
	w := doRequest(t, newTestRouter(client), http.MethodPost, []byte(`{"text":"hi"}`))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != ErrInternal {
		t.Errorf("error = %q, want INTERNAL_ERROR", env.Error)
	}
}

func TestNonJSONUpstreamErrorBody(t *testing.T) {
	client := &fakeClient{resp: &upstream.Response{StatusCode: http.StatusBadGateway, Body: []byte("<html>bad</html>")}}
	w := doRequest(t, newTestRouter(client), http.MethodPost, []byte(`{"text":"hi"}`))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Message == "" {
		t.Error("message should fall back to a generic description")
	}
	if raw, ok := env.Raw.(string); !ok || raw != "<html>bad</html>" {
		t.Errorf("raw = %#v, want the body as a string", env.Raw)
	}
}

func TestPayloadValidationUsesModels(t *testing.T) {
	// Image-only payloads are valid; the builder supplies the placeholder text.
	client := &fakeClient{resp: &upstream.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	payload, _ := json.Marshal(models.RequestPayload{Image: "AAAA"})
	w := doRequest(t, newTestRouter(client), http.MethodPost, payload)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(client.parts) != 2 {
		t.Fatalf("expected text + image parts, got %+v", client.parts)
	}
	if client.parts[0].Text == "" {
		t.Error("first part must carry the placeholder text")
	}
}
