package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherPublishSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		typ:      TypeSQS,
		queueURL: "https://example.com/queue",
		client:   client,
		log:      discardLogger{},
	}

	err := pub.Publish(context.Background(), Event{ID: "evt-1", Query: "cats", Format: "wide", ResultCount: 2})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["query"]
	if !ok || aws.ToString(attr.StringValue) != "cats" || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("query attribute missing or wrong: %#v", attr)
	}
	if _, ok := client.input.MessageAttributes["format"]; !ok {
		t.Fatalf("expected format attribute")
	}
	if body := aws.ToString(client.input.MessageBody); !strings.Contains(body, `"result_count":2`) {
		t.Fatalf("MessageBody missing result_count: %s", body)
	}
}

func TestSQSPublisherPublishError(t *testing.T) {
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   &fakeSQSClient{err: errors.New("boom")},
		log:      discardLogger{},
	}
	if err := pub.Publish(context.Background(), Event{ID: "e", Query: "q"}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}
