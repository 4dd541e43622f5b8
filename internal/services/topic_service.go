package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// TopicPublisher is the SNS call used for event notifications
type TopicPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// TopicService publishes workflow events as JSON to an SNS topic
type TopicService struct {
	client   TopicPublisher
	topicARN string
}

// NewTopicService creates an SNS sink for topicARN
func NewTopicService(cfg aws.Config, topicARN string) *TopicService {
	return NewTopicServiceWithClient(sns.NewFromConfig(cfg), topicARN)
}

// NewTopicServiceWithClient wires an existing SNS client
func NewTopicServiceWithClient(client TopicPublisher, topicARN string) *TopicService {
	return &TopicService{client: client, topicARN: topicARN}
}

// Publish implements Publisher
func (t *TopicService) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	_, err = t.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(t.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"kind": {DataType: aws.String("String"), StringValue: aws.String(string(ev.Kind))},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Kind, err)
	}
	return nil
}
