package sqsgath

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Sender is the subset of *sqs.Client used by the gatherer.
type Sender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// NewClient loads the default AWS configuration for region.
func NewClient(ctx context.Context, region string) (*sqs.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

func NewSqsResponseQueueGatherer(client Sender, queueUrl string, jobUuid string) *sqsResQueueGatherer {
	return &sqsResQueueGatherer{
		sqsClient: client,
		queueUrl:  queueUrl,
		jobUuid:   jobUuid,
	}
}
