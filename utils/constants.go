package utils

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Request context keys populated by the HTTP layer
const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
)
