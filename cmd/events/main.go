package main

import (
	"context"
	"os"

	lambdaEvents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"
	"worthwatch.me/watchlists/internal/dynamodb/likes"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/events"
)

func HandleRequest(ctx context.Context, event lambdaEvents.DynamoDBEvent) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	tableName := os.Getenv("TABLE_NAME")
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}

	client := dynamodb.NewFromConfig(cfg)
	marshaler := token.NewGCM()
	likeData := likes.NewLikeService(tableName, client, marshaler)

	handlers := []events.EventFilter{
		&events.WatchlistRemovedHandler{Logger: logger, Likes: likeData},
		&events.UserRemovedHandler{Logger: logger, Likes: likeData},
	}

	for _, record := range event.Records {
		for _, handler := range handlers {
			if handler.Filter(record) {
				if err := handler.Apply(record); err != nil {
					logger.Error().
						Err(err).
						Str("eventId", record.EventID).
						Msg("failed to handle stream record")
					break
				}
			}
		}
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
