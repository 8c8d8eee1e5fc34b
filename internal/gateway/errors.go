package gateway

// Error kinds returned by the gateway. Callers branch on these values, so
// they are part of the wire contract.
const (
	ErrInvalidRequest   = "INVALID_REQUEST"
	ErrMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrRateLimit        = "RATE_LIMIT"
	ErrUpstream         = "UPSTREAM_ERROR"
	ErrInternal         = "INTERNAL_ERROR"
)

// ErrorEnvelope is the JSON wrapper for every failed gateway call. It is
// constructed once per failure and never mutated.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Raw     any    `json:"raw,omitempty"`
}
