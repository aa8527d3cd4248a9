package items_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/items"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/dynamodb/watchlists"
	"worthwatch.me/watchlists/internal/exceptions"
	"worthwatch.me/watchlists/internal/test"
)

type fixture struct {
	Watchlists data.WatchlistDataService
	Items      data.WatchlistItemDataService
}

func newFixture() fixture {
	client := test.NewMemoryDynamoDB()
	marshaler := token.NewGCM()
	return fixture{
		Watchlists: watchlists.NewWatchlistService(test.LocalTableName, client, marshaler),
		Items:      items.NewWatchlistItemService(test.LocalTableName, client, marshaler),
	}
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func newWatchlist(t *testing.T, fx fixture) data.WatchlistDTO {
	t.Helper()
	curator := "curator-1"
	title := "Rainy day picks"
	created, err := fx.Watchlists.CreateWatchlist(context.Background(), data.WatchlistInputDTO{
		CuratorId: &curator,
		Title:     &title,
	})
	require.NoError(t, err)
	return created
}

func itemCount(t *testing.T, fx fixture, watchlistId string) int {
	t.Helper()
	watchlist, err := fx.Watchlists.GetWatchlistById(context.Background(), watchlistId)
	require.NoError(t, err)
	return watchlist.ItemCount
}

func TestWatchlistItems(t *testing.T) {
	ctx := context.Background()

	t.Run("AddIncrementsCount", func(t *testing.T) {
		fx := newFixture()
		watchlist := newWatchlist(t, fx)

		added, err := fx.Items.AddItem(ctx, watchlist.WatchlistId, data.WatchlistItemInputDTO{
			ContentType: strPtr("MOVIE"),
			ContentId:   strPtr("m-1"),
			CuratorNote: strPtr("Start here."),
		})
		require.NoError(t, err)
		assert.Equal(t, "ITEM#MOVIE#m-1", added.SK)
		assert.Equal(t, watchlist.PK, added.PK)
		assert.Zero(t, added.Position)
		assert.Equal(t, 1, itemCount(t, fx, watchlist.WatchlistId))
	})

	t.Run("DuplicateAddLeavesCountAlone", func(t *testing.T) {
		fx := newFixture()
		watchlist := newWatchlist(t, fx)
		input := data.WatchlistItemInputDTO{
			ContentType: strPtr("SHOW"),
			ContentId:   strPtr("s-1"),
		}
		_, err := fx.Items.AddItem(ctx, watchlist.WatchlistId, input)
		require.NoError(t, err)

		_, err = fx.Items.AddItem(ctx, watchlist.WatchlistId, input)
		var conflict *exceptions.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, 1, itemCount(t, fx, watchlist.WatchlistId))
	})

	t.Run("AddToMissingWatchlistLeavesNoOrphan", func(t *testing.T) {
		fx := newFixture()
		_, err := fx.Items.AddItem(ctx, "missing", data.WatchlistItemInputDTO{
			ContentType: strPtr("MOVIE"),
			ContentId:   strPtr("m-1"),
		})
		var notFound *exceptions.NotFoundError
		require.ErrorAs(t, err, &notFound)

		leftovers, err := fx.Items.ListItemsByWatchlist(ctx, "missing", data.QueryParams{})
		require.NoError(t, err)
		assert.Empty(t, leftovers.Items)
	})

	t.Run("AddRejectsUnknownContentType", func(t *testing.T) {
		fx := newFixture()
		watchlist := newWatchlist(t, fx)
		_, err := fx.Items.AddItem(ctx, watchlist.WatchlistId, data.WatchlistItemInputDTO{
			ContentType: strPtr("BOOK"),
			ContentId:   strPtr("b-1"),
		})
		var invalid *exceptions.InvalidIdError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("RemoveDecrementsOnlyWhenPresent", func(t *testing.T) {
		fx := newFixture()
		watchlist := newWatchlist(t, fx)
		_, err := fx.Items.AddItem(ctx, watchlist.WatchlistId, data.WatchlistItemInputDTO{
			ContentType: strPtr("MOVIE"),
			ContentId:   strPtr("m-1"),
		})
		require.NoError(t, err)

		require.NoError(t, fx.Items.RemoveItem(ctx, watchlist.WatchlistId, "MOVIE", "m-1"))
		assert.Equal(t, 0, itemCount(t, fx, watchlist.WatchlistId))

		// A second removal finds nothing and must not drive the count negative.
		require.NoError(t, fx.Items.RemoveItem(ctx, watchlist.WatchlistId, "MOVIE", "m-1"))
		assert.Equal(t, 0, itemCount(t, fx, watchlist.WatchlistId))
	})

	t.Run("ListOrdersByPosition", func(t *testing.T) {
		fx := newFixture()
		watchlist := newWatchlist(t, fx)
		entries := []struct {
			ContentId string
			Position  int
		}{
			{"m-c", 2},
			{"m-a", 0},
			{"m-b", 1},
		}
		for _, entry := range entries {
			contentId := entry.ContentId
			_, err := fx.Items.AddItem(ctx, watchlist.WatchlistId, data.WatchlistItemInputDTO{
				ContentType: strPtr("MOVIE"),
				ContentId:   &contentId,
				Position:    intPtr(entry.Position),
			})
			require.NoError(t, err)
		}

		results, err := fx.Items.ListItemsByWatchlist(ctx, watchlist.WatchlistId, data.QueryParams{})
		require.NoError(t, err)
		require.Len(t, results.Items, 3)
		assert.Equal(t, "m-a", results.Items[0].ContentId)
		assert.Equal(t, "m-b", results.Items[1].ContentId)
		assert.Equal(t, "m-c", results.Items[2].ContentId)
	})

	t.Run("ListDrainsEveryPageBeforeSorting", func(t *testing.T) {
		fx := newFixture()
		watchlist := newWatchlist(t, fx)
		// Content ids ascend while positions descend, so a sort confined to
		// single pages would leave the sequence key-ordered.
		for i := 0; i < 5; i++ {
			contentId := fmt.Sprintf("m-%d", i)
			_, err := fx.Items.AddItem(ctx, watchlist.WatchlistId, data.WatchlistItemInputDTO{
				ContentType: strPtr("MOVIE"),
				ContentId:   &contentId,
				Position:    intPtr(4 - i),
			})
			require.NoError(t, err)
		}

		results, err := fx.Items.ListItemsByWatchlist(ctx, watchlist.WatchlistId, data.QueryParams{Limit: 2})
		require.NoError(t, err)
		require.Len(t, results.Items, 5)
		assert.Nil(t, results.NextToken)
		for i, item := range results.Items {
			assert.Equal(t, i, item.Position)
			assert.Equal(t, fmt.Sprintf("m-%d", 4-i), item.ContentId)
		}
	})

	t.Run("ReorderRewritesPositions", func(t *testing.T) {
		fx := newFixture()
		watchlist := newWatchlist(t, fx)
		for _, contentId := range []string{"m-1", "m-2", "m-3"} {
			id := contentId
			_, err := fx.Items.AddItem(ctx, watchlist.WatchlistId, data.WatchlistItemInputDTO{
				ContentType: strPtr("MOVIE"),
				ContentId:   &id,
			})
			require.NoError(t, err)
		}

		err := fx.Items.ReorderItems(ctx, watchlist.WatchlistId, []data.ItemRef{
			{ContentType: "MOVIE", ContentId: "m-3"},
			{ContentType: "MOVIE", ContentId: "m-1"},
			{ContentType: "MOVIE", ContentId: "m-2"},
		})
		require.NoError(t, err)

		results, err := fx.Items.ListItemsByWatchlist(ctx, watchlist.WatchlistId, data.QueryParams{})
		require.NoError(t, err)
		require.Len(t, results.Items, 3)
		assert.Equal(t, "m-3", results.Items[0].ContentId)
		assert.Equal(t, "m-1", results.Items[1].ContentId)
		assert.Equal(t, "m-2", results.Items[2].ContentId)
	})

	t.Run("ReorderUnknownItemReportsRemainder", func(t *testing.T) {
		fx := newFixture()
		watchlist := newWatchlist(t, fx)
		_, err := fx.Items.AddItem(ctx, watchlist.WatchlistId, data.WatchlistItemInputDTO{
			ContentType: strPtr("MOVIE"),
			ContentId:   strPtr("m-1"),
		})
		require.NoError(t, err)

		err = fx.Items.ReorderItems(ctx, watchlist.WatchlistId, []data.ItemRef{
			{ContentType: "MOVIE", ContentId: "m-ghost"},
			{ContentType: "MOVIE", ContentId: "m-1"},
		})
		var partial *exceptions.PartialFailureError
		require.ErrorAs(t, err, &partial)
		assert.Len(t, partial.Remaining, 2)
	})
}
