package token_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worthwatch.me/watchlists/internal/dynamodb/token"
)

func TestEncryptionMarshaler(t *testing.T) {
	marshaler := token.NewGCM()
	scope := "curator-0123"
	lastKey := map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: "WATCHLIST#w1"},
		"SK":        &types.AttributeValueMemberS{Value: "METADATA"},
		"createdAt": &types.AttributeValueMemberS{Value: "2026-01-02T03:04:05Z"},
	}

	t.Run("lastKey==Unmarshal(Marshal(lastKey))", func(t *testing.T) {
		nextToken, err := marshaler.Marshal(scope, lastKey)
		require.NoError(t, err)
		require.NotEmpty(t, nextToken)
		roundTrip, err := marshaler.Unmarshal(scope, nextToken)
		require.NoError(t, err)
		require.Len(t, roundTrip, len(lastKey))
		for name, value := range lastKey {
			sv, ok := roundTrip[name].(*types.AttributeValueMemberS)
			require.True(t, ok, "attribute %s lost its type", name)
			assert.Equal(t, value.(*types.AttributeValueMemberS).Value, sv.Value)
		}
	})

	t.Run("empty lastKey yields no token", func(t *testing.T) {
		nextToken, err := marshaler.Marshal(scope, nil)
		require.NoError(t, err)
		assert.Nil(t, nextToken)
		lastKey, err := marshaler.Unmarshal(scope, nil)
		require.NoError(t, err)
		assert.Nil(t, lastKey)
	})

	t.Run("token bound to issuing scope", func(t *testing.T) {
		nextToken, err := marshaler.Marshal(scope, lastKey)
		require.NoError(t, err)
		stolen, err := marshaler.Unmarshal("someone-else", nextToken)
		require.Error(t, err)
		assert.Nil(t, stolen)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := marshaler.Unmarshal(scope, []byte("not-a-token"))
		require.Error(t, err)
	})
}
