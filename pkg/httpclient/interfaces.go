package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Implementations return non-2xx responses as-is; only transport failures are errors.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Post(ctx context.Context, url string, body any, headers map[string]string) (Response, error)
}

// Cache stores raw response bodies by key.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// Logger is the logging surface used by the caching client.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, interface{}) {}
func (nopLogger) WarnObj(string, string, interface{})  {}
