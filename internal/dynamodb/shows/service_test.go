package shows_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/shows"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/exceptions"
	"worthwatch.me/watchlists/internal/test"
)

func newShowService() data.ShowDataService {
	return shows.NewShowService(test.LocalTableName, test.NewMemoryDynamoDB(), token.NewGCM())
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func statusPtr(s data.ShowStatus) *data.ShowStatus {
	return &s
}

func TestShows(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateDefaultsToOngoing", func(t *testing.T) {
		showData := newShowService()
		created, err := showData.CreateShow(ctx, data.ShowInputDTO{
			Title:     strPtr("The Leftovers"),
			StartYear: intPtr(2014),
		})
		require.NoError(t, err)
		assert.Equal(t, "SHOW#"+created.ShowId, created.PK)
		assert.Equal(t, data.ShowOngoing, created.Status)
		assert.Nil(t, created.EndYear)
	})

	t.Run("CreateRejectsUnknownStatus", func(t *testing.T) {
		showData := newShowService()
		unknown := data.ShowStatus("paused")
		_, err := showData.CreateShow(ctx, data.ShowInputDTO{
			Title:  strPtr("The Leftovers"),
			Status: &unknown,
		})
		var invalid *exceptions.InvalidInputError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("EndYearExplicitNull", func(t *testing.T) {
		showData := newShowService()
		endYear := intPtr(2017)
		created, err := showData.CreateShow(ctx, data.ShowInputDTO{
			Title:   strPtr("The Leftovers"),
			EndYear: &endYear,
			Status:  statusPtr(data.ShowEnded),
		})
		require.NoError(t, err)
		require.NotNil(t, created.EndYear)
		assert.Equal(t, 2017, *created.EndYear)

		// Updating without EndYear leaves the stored year alone.
		updated, err := showData.UpdateShow(ctx, created.ShowId, data.ShowInputDTO{
			Synopsis: strPtr("The departure, three years on."),
		})
		require.NoError(t, err)
		require.NotNil(t, updated.EndYear)
		assert.Equal(t, 2017, *updated.EndYear)

		// The revival case: an explicit null clears the year.
		var cleared *int
		updated, err = showData.UpdateShow(ctx, created.ShowId, data.ShowInputDTO{
			EndYear: &cleared,
			Status:  statusPtr(data.ShowOngoing),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.EndYear)
		assert.Equal(t, data.ShowOngoing, updated.Status)
	})

	t.Run("GetByTmdbId", func(t *testing.T) {
		showData := newShowService()
		created, err := showData.CreateShow(ctx, data.ShowInputDTO{
			Title:  strPtr("The Leftovers"),
			TmdbId: strPtr("54708"),
		})
		require.NoError(t, err)

		found, err := showData.GetShowByTmdbId(ctx, "54708")
		require.NoError(t, err)
		assert.Equal(t, created.ShowId, found.ShowId)

		var notFound *exceptions.NotFoundError
		_, err = showData.GetShowByTmdbId(ctx, "999999")
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("List", func(t *testing.T) {
		showData := newShowService()
		for _, title := range []string{"The Leftovers", "Severance"} {
			name := title
			_, err := showData.CreateShow(ctx, data.ShowInputDTO{Title: &name})
			require.NoError(t, err)
		}
		results, err := showData.ListShows(ctx, data.QueryParams{})
		require.NoError(t, err)
		assert.Len(t, results.Items, 2)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		showData := newShowService()
		created, err := showData.CreateShow(ctx, data.ShowInputDTO{Title: strPtr("The Leftovers")})
		require.NoError(t, err)

		require.NoError(t, showData.DeleteShow(ctx, created.ShowId))
		require.NoError(t, showData.DeleteShow(ctx, created.ShowId))

		var notFound *exceptions.NotFoundError
		_, err = showData.GetShowById(ctx, created.ShowId)
		require.ErrorAs(t, err, &notFound)
	})
}
