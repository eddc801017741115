package publishers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samvad-hq/samvad-connection/pkg/lifecycle"
)

func writeRegistry(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := writeRegistry(t, "publishers.yaml", `
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
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
	cfg, ok := reg.ByID("http2")
	if !ok || cfg.HTTP.Method != httpDefaultMethod || cfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("expected http defaults applied, got %#v", cfg.HTTP)
	}
}

func TestLoadRegistryAWSAndPubSub(t *testing.T) {
	path := writeRegistry(t, "publishers.yml", `
publishers:
  - id: queue
    type: SQS
    kinds: [" Success ", failure]
    sqs:
      uri: http://localhost:4566/000000000000/events
      region: us-east-1
      endpoint: http://localhost:4566
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:us-east-1:000000000000:events
      region: us-east-1
      access_key_id: test
      secret_access_key: test
  - id: gcp
    type: pubsub
    pubsub:
      project_id: demo
      topic: events
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	queue, _ := reg.ByID("queue")
	if queue.Type != TypeSQS || queue.SQS.Region != "us-east-1" || queue.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("unexpected sqs config %#v", queue.SQS)
	}
	if !queue.Accepts(lifecycle.KindSuccess) || queue.Accepts(lifecycle.KindError) {
		t.Fatalf("kind filter not applied: %v", queue.Kinds)
	}

	topic, _ := reg.ByID("topic")
	if topic.SNS.AccessKeyID != "test" || topic.SNS.TopicARN == "" {
		t.Fatalf("unexpected sns config %#v", topic.SNS)
	}
	if !topic.Accepts(lifecycle.KindError) {
		t.Fatalf("publisher without kinds should accept everything")
	}

	gcp, _ := reg.ByID("gcp")
	if gcp.PubSub.ProjectID != "demo" || gcp.PubSub.Topic != "events" {
		t.Fatalf("unexpected pubsub config %#v", gcp.PubSub)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeRegistry(t, "publishers.json", `{"publishers":[{"id":"h","type":"http","http":{"url":"https://example.com"}}]}`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 1 {
		t.Fatalf("expected 1 publisher, got %d", len(reg.All()))
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := writeRegistry(t, "publishers.yaml", `
publishers:
  - id: h
    type: http
    http: {url: https://a.example}
  - id: h
    type: http
    http: {url: https://b.example}
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing http":    {ID: "h1", Type: TypeHTTP},
		"missing sns":     {ID: "s1", Type: TypeSNS},
		"sns no region":   {ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn"}},
		"sqs no url":      {ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{AWSConfig: AWSConfig{Region: "us-east-1"}}},
		"pubsub no topic": {ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "demo"}},
		"unknown kind": {
			ID: "h1", Type: TypeHTTP, Kinds: []string{"finished"},
			HTTP: &HTTPPublisherConfig{URL: "https://example.com"},
		},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := validatePublisherConfig(cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
