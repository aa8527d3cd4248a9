package services

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"worthwatch.me/watchlists/internal/notifications"
)

type SnsApi interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type NotificationSNSService struct {
	Sns      SnsApi
	TopicArn string
}

func (n *NotificationSNSService) WatchlistLiked(ctx context.Context, event notifications.WatchlistLikedEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = n.Sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.TopicArn),
		Message:  aws.String(string(message)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("WatchlistLiked"),
			},
		},
	})
	return err
}

var _ notifications.CuratorNotifier = (*NotificationSNSService)(nil)
