package test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"worthwatch.me/watchlists/internal/dynamodb/services"
)

const LocalTableName = "WatchlistData"

// LocalClient connects to a locally running DynamoDB when the
// DYNAMODB_ENDPOINT environment variable is set, and skips the test
// otherwise. Unit tests use MemoryDynamoDB; this path exercises the real
// wire behavior.
func LocalClient(t *testing.T) *dynamodb.Client {
	t.Helper()
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("DYNAMODB_ENDPOINT is not set")
	}
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRetryMaxAttempts(10),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     "fake",
				SecretAccessKey: "fake",
				SessionToken:    "fake",
			}}),
	)
	if err != nil {
		t.Fatalf("Failed to load AWS config: %s", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
}

func globalIndex(name string, hashAttr string, rangeAttr string) types.GlobalSecondaryIndex {
	schema := []types.KeySchemaElement{
		{
			AttributeName: aws.String(hashAttr),
			KeyType:       types.KeyTypeHash,
		},
	}
	if rangeAttr != "" {
		schema = append(schema, types.KeySchemaElement{
			AttributeName: aws.String(rangeAttr),
			KeyType:       types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName: aws.String(name),
		KeySchema: schema,
		Projection: &types.Projection{
			ProjectionType: types.ProjectionTypeAll,
		},
	}
}

// CreateTable builds the single watchlist table with its four secondary
// indexes and waits for it to become active.
func CreateTable(client *dynamodb.Client) (string, error) {
	stringAttrs := []string{"PK", "SK", services.EmailIndexAttr, services.OwnerIndexAttr, services.VisibilityIndexAttr, services.TypeIndexAttr, "createdAt"}
	attributes := make([]types.AttributeDefinition, 0, len(stringAttrs))
	for _, name := range stringAttrs {
		attributes = append(attributes, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}
	output, err := client.CreateTable(context.TODO(), &dynamodb.CreateTableInput{
		TableName:   aws.String(LocalTableName),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("PK"),
				KeyType:       types.KeyTypeHash,
			},
			{
				AttributeName: aws.String("SK"),
				KeyType:       types.KeyTypeRange,
			},
		},
		AttributeDefinitions: attributes,
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			globalIndex(services.EmailIndex, services.EmailIndexAttr, ""),
			globalIndex(services.OwnerIndex, services.OwnerIndexAttr, "createdAt"),
			globalIndex(services.VisibilityIndex, services.VisibilityIndexAttr, "createdAt"),
			globalIndex(services.TypeIndex, services.TypeIndexAttr, "createdAt"),
		},
	})
	if err != nil {
		return "", err
	}
	waiter := dynamodb.NewTableExistsWaiter(client)
	_, err = waiter.WaitForOutput(context.TODO(), &dynamodb.DescribeTableInput{
		TableName: output.TableDescription.TableName,
	}, time.Second*30)
	return *output.TableDescription.TableName, err
}
