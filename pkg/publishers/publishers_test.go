package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
}

func TestValidatePublisherConfigRejectsMissingHTTP(t *testing.T) {
	err := validatePublisherConfig(PublisherConfig{
		ID:   "h1",
		Type: TypeHTTP,
	})
	if err == nil {
		t.Fatalf("expected validation error for missing http block")
	}
}

func TestValidatePublisherConfigTypeBlocks(t *testing.T) {
	cases := map[string]PublisherConfig{
		"sns missing block":    {ID: "s", Type: TypeSNS},
		"sns missing region":   {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn"}},
		"pubsub missing":       {ID: "p", Type: TypePubSub},
		"pubsub missing topic": {ID: "p", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "x"}},
		"sqs missing uri":      {ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{Region: "us-east-1"}},
		"unknown type":         {ID: "k", Type: "kafka"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := validatePublisherConfig(cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadRegistryJSONWithAllTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.json")
	raw := `{"publishers": [
  {"id": "hook", "type": "HTTP", "http": {"url": " https://example.com/hook ", "method": "put"}},
  {"id": "queue", "type": "sqs", "sqs": {"uri": "https://sqs.example/q", "region": "us-east-1"}},
  {"id": "topic", "type": "sns", "sns": {"topic_arn": "arn:aws:sns:us-east-1:1:t", "region": "us-east-1"}},
  {"id": "gcp", "type": "pubsub", "pubsub": {"project_id": "p", "topic": "t"}}
]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Enabled()) != 4 {
		t.Fatalf("expected 4 enabled publishers, got %d", len(reg.Enabled()))
	}
	hook, ok := reg.ByID("hook")
	if !ok {
		t.Fatalf("expected hook publisher")
	}
	if hook.Type != TypeHTTP || hook.HTTP.URL != "https://example.com/hook" || hook.HTTP.Method != "PUT" {
		t.Fatalf("unexpected sanitized config %#v", hook.HTTP)
	}
	if hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("expected default timeout, got %d", hook.HTTP.TimeoutSeconds)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: dup
    type: http
    http: {url: https://a.example}
  - id: dup
    type: http
    http: {url: https://b.example}
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate publisher error")
	}
}

func TestLoadRegistryExampleFile(t *testing.T) {
	reg, err := LoadRegistry("../../configs/publishers.example.yaml")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := len(reg.All()); got != 4 {
		t.Fatalf("expected 4 publishers, got %d", got)
	}
	if got := len(reg.Enabled()); got != 0 {
		t.Fatalf("expected example publishers to be disabled, got %d enabled", got)
	}
}
