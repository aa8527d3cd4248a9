package events

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/likes"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/dynamodb/watchlists"
	"worthwatch.me/watchlists/internal/test"
)

type fixture struct {
	Watchlists data.WatchlistDataService
	Likes      data.LikeDataService
}

func newFixture() fixture {
	client := test.NewMemoryDynamoDB()
	marshaler := token.NewGCM()
	return fixture{
		Watchlists: watchlists.NewWatchlistService(test.LocalTableName, client, marshaler),
		Likes:      likes.NewLikeService(test.LocalTableName, client, marshaler),
	}
}

func removal(pk string, sk string) events.DynamoDBEventRecord {
	return events.DynamoDBEventRecord{
		EventName: "REMOVE",
		Change: events.DynamoDBStreamRecord{
			Keys: map[string]events.DynamoDBAttributeValue{
				"PK": events.NewStringAttribute(pk),
				"SK": events.NewStringAttribute(sk),
			},
		},
	}
}

func likedWatchlist(t *testing.T, fx fixture, curatorId string, fans []string) data.WatchlistDTO {
	t.Helper()
	ctx := context.Background()
	title := "Soon to be removed"
	created, err := fx.Watchlists.CreateWatchlist(ctx, data.WatchlistInputDTO{
		CuratorId: &curatorId,
		Title:     &title,
	})
	require.NoError(t, err)
	for _, fan := range fans {
		_, err := fx.Likes.Like(ctx, fan, created.WatchlistId)
		require.NoError(t, err)
	}
	return created
}

func TestWatchlistRemovedHandler(t *testing.T) {
	fx := newFixture()
	handler := &WatchlistRemovedHandler{
		Logger: zerolog.Nop(),
		Likes:  fx.Likes,
	}

	t.Run("Filter", func(t *testing.T) {
		assert.True(t, handler.Filter(removal("WATCHLIST#w-1", "METADATA")))
		assert.False(t, handler.Filter(removal("WATCHLIST#w-1", "ITEM#MOVIE#m-1")))
		assert.False(t, handler.Filter(removal("USER#u-1", "PROFILE")))
		assert.False(t, handler.Filter(events.DynamoDBEventRecord{EventName: "INSERT"}))
	})

	t.Run("Apply", func(t *testing.T) {
		watchlist := likedWatchlist(t, fx, "curator-1", []string{"fan-1", "fan-2"})
		require.NoError(t, fx.Watchlists.DeleteWatchlist(context.Background(), watchlist.WatchlistId))

		require.NoError(t, handler.Apply(removal(watchlist.PK, watchlist.SK)))

		remaining, err := fx.Likes.ListLikesByWatchlist(context.Background(), watchlist.WatchlistId, data.QueryParams{})
		require.NoError(t, err)
		assert.Empty(t, remaining.Items)
	})
}

func TestUserRemovedHandler(t *testing.T) {
	fx := newFixture()
	handler := &UserRemovedHandler{
		Logger: zerolog.Nop(),
		Likes:  fx.Likes,
	}

	t.Run("Filter", func(t *testing.T) {
		assert.True(t, handler.Filter(removal("USER#u-1", "PROFILE")))
		assert.False(t, handler.Filter(removal("WATCHLIST#w-1", "METADATA")))
		// A like row's key also begins with USER#; it must never trigger the
		// user cleanup.
		assert.False(t, handler.Filter(removal("USER#u-1#LIKE#WATCHLIST#w-1", "USER#u-1#LIKE#WATCHLIST#w-1")))
		assert.False(t, handler.Filter(events.DynamoDBEventRecord{EventName: "MODIFY"}))
	})

	t.Run("Apply", func(t *testing.T) {
		ctx := context.Background()
		watchlist := likedWatchlist(t, fx, "curator-1", []string{"fan-1"})

		require.NoError(t, handler.Apply(removal("USER#fan-1", "PROFILE")))

		remaining, err := fx.Likes.ListLikesByUser(ctx, "fan-1", data.QueryParams{})
		require.NoError(t, err)
		assert.Empty(t, remaining.Items)

		refreshed, err := fx.Watchlists.GetWatchlistById(ctx, watchlist.WatchlistId)
		require.NoError(t, err)
		assert.Zero(t, refreshed.LikeCount)
	})
}
